package contextagg

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/sage/internal/models"
)

const (
	newsRenderLimit   = 3
	titleTruncateRune = 80
)

// Format renders a context as plain text for prompt embedding. Rendering is
// deterministic; only the quote, overview and news sources are rendered, in
// that order. Other sources pass through the JSON response untouched but do
// not appear in the text.
func (s *Service) Format(ctx *models.ComprehensiveContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "COMPREHENSIVE MARKET DATA FOR %s\n", ctx.Symbol)
	fmt.Fprintf(&b, "Data Sources: %s\n\n", strings.Join(ctx.DataSources, ", "))

	if p, ok := ctx.Get(models.SourceStockQuote); ok && p.Quote != nil {
		quote := p.Quote
		b.WriteString("CURRENT PERFORMANCE:\n")
		fmt.Fprintf(&b, "  Price: $%.2f\n", quote.Price)
		fmt.Fprintf(&b, "  Change: %s%%\n", quote.ChangePercent)
		if quote.Volume > 0 {
			fmt.Fprintf(&b, "  Volume: %d\n", quote.Volume)
		}
		b.WriteString("\n")
	}

	if p, ok := ctx.Get(models.SourceCompanyOverview); ok && p.Overview != nil {
		overview := p.Overview
		b.WriteString("COMPANY FUNDAMENTALS:\n")
		fmt.Fprintf(&b, "  Name: %s\n", orNA(overview.Name))
		fmt.Fprintf(&b, "  Sector: %s\n", orNA(overview.Sector))
		fmt.Fprintf(&b, "  Industry: %s\n", orNA(overview.Industry))
		if overview.MarketCap != "" {
			fmt.Fprintf(&b, "  Market Cap: $%s\n", overview.MarketCap)
		}
		if overview.PERatio != "" {
			fmt.Fprintf(&b, "  P/E Ratio: %s\n", overview.PERatio)
		}
		if overview.EPS != "" {
			fmt.Fprintf(&b, "  EPS: $%s\n", overview.EPS)
		}
		if overview.DividendYield != "" {
			fmt.Fprintf(&b, "  Dividend Yield: %s\n", overview.DividendYield)
		}
		if overview.High52Week != "" && overview.Low52Week != "" {
			fmt.Fprintf(&b, "  52-Week Range: $%s - $%s\n", overview.Low52Week, overview.High52Week)
		}
		b.WriteString("\n")
	}

	if p, ok := ctx.Get(models.SourceNewsSentiment); ok && len(p.News) > 0 {
		b.WriteString("RECENT NEWS & SENTIMENT:\n")
		articles := p.News
		if len(articles) > newsRenderLimit {
			articles = articles[:newsRenderLimit]
		}
		for _, article := range articles {
			sentiment := article.Sentiment
			if sentiment == "" {
				sentiment = "Neutral"
			}
			source := article.Source
			if source == "" {
				source = "Unknown"
			}
			fmt.Fprintf(&b, "  - %s (%s) - %s\n", truncate(article.Title, titleTruncateRune), sentiment, source)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
