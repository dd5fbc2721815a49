package alphavantage

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/sage/internal/models"
)

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// globalQuote mirrors the numbered field labels of the GLOBAL_QUOTE payload.
type globalQuote struct {
	Symbol        string `json:"01. symbol"`
	High          string `json:"03. high"`
	Low           string `json:"04. low"`
	Price         string `json:"05. price"`
	Volume        string `json:"06. volume"`
	PreviousClose string `json:"08. previous close"`
	Change        string `json:"09. change"`
	ChangePercent string `json:"10. change percent"`
}

func parseQuote(symbol string, body map[string]json.RawMessage) (*models.Quote, bool) {
	raw, ok := body["Global Quote"]
	if !ok {
		return nil, false
	}

	var gq globalQuote
	if err := json.Unmarshal(raw, &gq); err != nil || gq.Price == "" {
		return nil, false
	}

	quote := &models.Quote{
		Symbol:        strings.ToUpper(symbol),
		Price:         parseFloat(gq.Price),
		PreviousClose: parseFloat(gq.PreviousClose),
		Change:        parseFloat(gq.Change),
		ChangePercent: strings.TrimSuffix(gq.ChangePercent, "%"),
		Volume:        parseInt(gq.Volume),
		High52Week:    parseFloat(gq.High),
		Low52Week:     parseFloat(gq.Low),
		Source:        models.QuoteSourceLive,
	}
	if gq.Symbol != "" {
		quote.Symbol = strings.ToUpper(gq.Symbol)
	}
	return quote, true
}

func parseQuotePayload(symbol string, body map[string]json.RawMessage) (models.ContextPayload, bool) {
	quote, ok := parseQuote(symbol, body)
	if !ok {
		return models.ContextPayload{}, false
	}
	return models.QuotePayload(quote), true
}

// companyOverview carries the subset of OVERVIEW fields the advisor renders.
type companyOverview struct {
	Symbol        string `json:"Symbol"`
	Name          string `json:"Name"`
	Sector        string `json:"Sector"`
	Industry      string `json:"Industry"`
	MarketCap     string `json:"MarketCapitalization"`
	PERatio       string `json:"PERatio"`
	DividendYield string `json:"DividendYield"`
	EPS           string `json:"EPS"`
	High52Week    string `json:"52WeekHigh"`
	Low52Week     string `json:"52WeekLow"`
}

func parseOverview(body map[string]json.RawMessage) (*models.CompanyOverview, bool) {
	// OVERVIEW returns fields at the top level; an unknown symbol yields {}.
	merged, err := json.Marshal(body)
	if err != nil {
		return nil, false
	}
	var co companyOverview
	if err := json.Unmarshal(merged, &co); err != nil || co.Symbol == "" {
		return nil, false
	}

	return &models.CompanyOverview{
		Symbol:        co.Symbol,
		Name:          co.Name,
		Sector:        co.Sector,
		Industry:      co.Industry,
		MarketCap:     co.MarketCap,
		PERatio:       co.PERatio,
		DividendYield: co.DividendYield,
		EPS:           co.EPS,
		High52Week:    co.High52Week,
		Low52Week:     co.Low52Week,
	}, true
}

func parseOverviewPayload(_ string, body map[string]json.RawMessage) (models.ContextPayload, bool) {
	overview, ok := parseOverview(body)
	if !ok {
		return models.ContextPayload{}, false
	}
	return models.OverviewPayload(overview), true
}

type newsFeedItem struct {
	Title                 string `json:"title"`
	Summary               string `json:"summary"`
	Source                string `json:"source"`
	OverallSentimentLabel string `json:"overall_sentiment_label"`
	Topics                []struct {
		Topic string `json:"topic"`
	} `json:"topics"`
	TickerSentiment []struct {
		Ticker         string `json:"ticker"`
		RelevanceScore string `json:"relevance_score"`
		SentimentLabel string `json:"ticker_sentiment_label"`
	} `json:"ticker_sentiment"`
}

func parseNews(symbol string, body map[string]json.RawMessage, limit int) ([]models.NewsArticle, bool) {
	raw, ok := body["feed"]
	if !ok {
		return nil, false
	}

	var feed []newsFeedItem
	if err := json.Unmarshal(raw, &feed); err != nil || len(feed) == 0 {
		return nil, false
	}
	if limit > 0 && len(feed) > limit {
		feed = feed[:limit]
	}

	symbol = strings.ToUpper(symbol)
	articles := make([]models.NewsArticle, 0, len(feed))
	for _, item := range feed {
		article := models.NewsArticle{
			Title:     item.Title,
			Summary:   item.Summary,
			Source:    item.Source,
			Sentiment: item.OverallSentimentLabel,
		}
		for _, topic := range item.Topics {
			article.Topics = append(article.Topics, topic.Topic)
		}
		for _, ts := range item.TickerSentiment {
			if strings.EqualFold(ts.Ticker, symbol) {
				article.TickerSentiment = ts.SentimentLabel
				article.TickerRelevance = parseFloat(ts.RelevanceScore)
				break
			}
		}
		articles = append(articles, article)
	}
	return articles, true
}

func parseNewsPayload(symbol string, body map[string]json.RawMessage) (models.ContextPayload, bool) {
	articles, ok := parseNews(symbol, body, newsArticleLimit)
	if !ok {
		return models.ContextPayload{}, false
	}
	return models.NewsPayload(articles), true
}

// parseEarningsPayload keeps the most recent quarterly earnings reports.
func parseEarningsPayload(symbol string, body map[string]json.RawMessage) (models.ContextPayload, bool) {
	raw, ok := body["quarterlyEarnings"]
	if !ok {
		return models.ContextPayload{}, false
	}

	var quarters []map[string]any
	if err := json.Unmarshal(raw, &quarters); err != nil || len(quarters) == 0 {
		return models.ContextPayload{}, false
	}
	if len(quarters) > earningsQuarterLimit {
		quarters = quarters[:earningsQuarterLimit]
	}

	return models.OpaquePayload(map[string]any{
		"symbol":          strings.ToUpper(symbol),
		"recent_quarters": quarters,
	}), true
}

// parseStatementPayload keeps the latest quarterly report from a financial
// statement endpoint. CASH_FLOW, BALANCE_SHEET and INCOME_STATEMENT all share
// this shape.
func parseStatementPayload(symbol string, body map[string]json.RawMessage) (models.ContextPayload, bool) {
	raw, ok := body["quarterlyReports"]
	if !ok {
		return models.ContextPayload{}, false
	}

	var reports []map[string]any
	if err := json.Unmarshal(raw, &reports); err != nil || len(reports) == 0 {
		return models.ContextPayload{}, false
	}

	return models.OpaquePayload(map[string]any{
		"symbol":         strings.ToUpper(symbol),
		"latest_quarter": reports[0],
	}), true
}

// parseOpaquePayload passes a response body through untyped. Used for
// ETF_PROFILE, whose holdings breakdown the advisor does not interpret.
func parseOpaquePayload(symbol string, body map[string]json.RawMessage) (models.ContextPayload, bool) {
	if len(body) == 0 {
		return models.ContextPayload{}, false
	}
	data := make(map[string]any, len(body)+1)
	for key, raw := range body {
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			continue
		}
		data[key] = value
	}
	if len(data) == 0 {
		return models.ContextPayload{}, false
	}
	data["symbol"] = strings.ToUpper(symbol)
	return models.OpaquePayload(data), true
}
