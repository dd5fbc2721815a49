// Package models defines data structures for Sage
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Quote source tags. Every quote carries exactly one of these so downstream
// formatting never has to guess where a number came from.
const (
	QuoteSourceLive     = "live"
	QuoteSourceFallback = "fallback-sample"
	QuoteSourceGenerat  = "generated"
)

// Quote holds a point-in-time price snapshot for a symbol.
// Numeric fields default to zero rather than being absent; ChangePercent is
// kept as a string because the upstream feed sometimes returns a non-numeric
// placeholder there.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name,omitempty"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previous_close"`
	Change        float64 `json:"change"`
	ChangePercent string  `json:"change_percent"`
	Volume        int64   `json:"volume"`
	High52Week    float64 `json:"52_week_high,omitempty"`
	Low52Week     float64 `json:"52_week_low,omitempty"`
	Source        string  `json:"source"`
	Note          string  `json:"note,omitempty"`
}

// CompanyOverview holds fundamental data for a company.
// All fields except Symbol are optional; an empty field means the upstream
// source did not report it, not that the fetch failed.
type CompanyOverview struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name,omitempty"`
	Sector        string `json:"sector,omitempty"`
	Industry      string `json:"industry,omitempty"`
	MarketCap     string `json:"market_cap,omitempty"`
	PERatio       string `json:"pe_ratio,omitempty"`
	DividendYield string `json:"dividend_yield,omitempty"`
	EPS           string `json:"eps,omitempty"`
	High52Week    string `json:"52_week_high,omitempty"`
	Low52Week     string `json:"52_week_low,omitempty"`
}

// NewsArticle represents one article from the news/sentiment feed.
// Sentiment labels are source-defined strings (Positive, Somewhat-Bullish,
// Neutral, ...), not a closed enum.
type NewsArticle struct {
	Title           string   `json:"title"`
	Summary         string   `json:"summary,omitempty"`
	Source          string   `json:"source"`
	Sentiment       string   `json:"sentiment,omitempty"`
	Topics          []string `json:"topics,omitempty"`
	TickerSentiment string   `json:"ticker_sentiment,omitempty"`
	TickerRelevance float64  `json:"ticker_relevance,omitempty"`
}

// Data source keys used by the aggregator and formatter.
const (
	SourceStockQuote      = "stock_quote"
	SourceCompanyOverview = "company_overview"
	SourceNewsSentiment   = "news_sentiment"
	SourceETFProfile      = "etf_profile"
	SourceEarnings        = "earnings"
	SourceCashFlow        = "cash_flow"
	SourceBalanceSheet    = "balance_sheet"
	SourceIncomeStatement = "income_statement"
)

// PayloadKind discriminates the variants of a ContextPayload.
type PayloadKind int

const (
	PayloadQuote PayloadKind = iota
	PayloadOverview
	PayloadNews
	PayloadOpaque
)

// ContextPayload is a tagged variant holding one data source's parsed value.
// Opaque carries source-shaped excerpts (financial statements, ETF profile)
// that pass through to the JSON response but are never rendered as text.
type ContextPayload struct {
	Kind     PayloadKind
	Quote    *Quote
	Overview *CompanyOverview
	News     []NewsArticle
	Opaque   map[string]any
}

// QuotePayload wraps a quote as a context payload.
func QuotePayload(q *Quote) ContextPayload {
	return ContextPayload{Kind: PayloadQuote, Quote: q}
}

// OverviewPayload wraps a company overview as a context payload.
func OverviewPayload(o *CompanyOverview) ContextPayload {
	return ContextPayload{Kind: PayloadOverview, Overview: o}
}

// NewsPayload wraps a news article list as a context payload.
func NewsPayload(articles []NewsArticle) ContextPayload {
	return ContextPayload{Kind: PayloadNews, News: articles}
}

// OpaquePayload wraps a raw source excerpt as a passthrough context payload.
func OpaquePayload(data map[string]any) ContextPayload {
	return ContextPayload{Kind: PayloadOpaque, Opaque: data}
}

// value returns the variant's underlying value for JSON encoding.
func (p ContextPayload) value() any {
	switch p.Kind {
	case PayloadQuote:
		return p.Quote
	case PayloadOverview:
		return p.Overview
	case PayloadNews:
		return map[string]any{"articles": p.News}
	default:
		return p.Opaque
	}
}

// ComprehensiveContext is the aggregated bundle of all data sources fetched
// for one symbol. DataSources lists the populated sources in fetch order and
// always matches the Payloads key set.
type ComprehensiveContext struct {
	Symbol      string
	Timestamp   time.Time
	DataSources []string
	Payloads    map[string]ContextPayload
}

// NewComprehensiveContext creates an empty context for a symbol.
func NewComprehensiveContext(symbol string, ts time.Time) *ComprehensiveContext {
	return &ComprehensiveContext{
		Symbol:    symbol,
		Timestamp: ts,
		Payloads:  make(map[string]ContextPayload),
	}
}

// Add stores a payload under the given source key and records the key in
// DataSources. This is the single mutation point, which keeps the
// DataSources/Payloads invariant true by construction.
func (c *ComprehensiveContext) Add(source string, payload ContextPayload) {
	if _, exists := c.Payloads[source]; exists {
		return
	}
	c.Payloads[source] = payload
	c.DataSources = append(c.DataSources, source)
}

// Get returns the payload for a source key.
func (c *ComprehensiveContext) Get(source string) (ContextPayload, bool) {
	p, ok := c.Payloads[source]
	return p, ok
}

// Has reports whether a source key is populated.
func (c *ComprehensiveContext) Has(source string) bool {
	_, ok := c.Payloads[source]
	return ok
}

// MarshalJSON renders the context in its wire shape: symbol, timestamp and
// data_sources first, then one top-level key per populated source.
func (c *ComprehensiveContext) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Payloads)+3)
	out["symbol"] = c.Symbol
	out["timestamp"] = c.Timestamp.Format(time.RFC3339)
	sources := c.DataSources
	if sources == nil {
		sources = []string{}
	}
	out["data_sources"] = sources
	for key, payload := range c.Payloads {
		out[key] = payload.value()
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds a context from its wire shape. Sources outside the
// known set come back as opaque payloads.
func (c *ComprehensiveContext) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if sym, ok := raw["symbol"]; ok {
		if err := json.Unmarshal(sym, &c.Symbol); err != nil {
			return fmt.Errorf("context symbol: %w", err)
		}
	}
	if ts, ok := raw["timestamp"]; ok {
		var s string
		if err := json.Unmarshal(ts, &s); err == nil {
			c.Timestamp, _ = time.Parse(time.RFC3339, s)
		}
	}
	var sources []string
	if ds, ok := raw["data_sources"]; ok {
		if err := json.Unmarshal(ds, &sources); err != nil {
			return fmt.Errorf("context data_sources: %w", err)
		}
	}

	c.DataSources = nil
	c.Payloads = make(map[string]ContextPayload, len(sources))
	for _, key := range sources {
		body, ok := raw[key]
		if !ok {
			continue
		}
		payload, err := decodePayload(key, body)
		if err != nil {
			return fmt.Errorf("context source %s: %w", key, err)
		}
		c.Add(key, payload)
	}
	return nil
}

func decodePayload(source string, body json.RawMessage) (ContextPayload, error) {
	switch source {
	case SourceStockQuote:
		var q Quote
		if err := json.Unmarshal(body, &q); err != nil {
			return ContextPayload{}, err
		}
		return QuotePayload(&q), nil
	case SourceCompanyOverview:
		var o CompanyOverview
		if err := json.Unmarshal(body, &o); err != nil {
			return ContextPayload{}, err
		}
		return OverviewPayload(&o), nil
	case SourceNewsSentiment:
		var wrapper struct {
			Articles []NewsArticle `json:"articles"`
		}
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return ContextPayload{}, err
		}
		return NewsPayload(wrapper.Articles), nil
	default:
		var m map[string]any
		if err := json.Unmarshal(body, &m); err != nil {
			return ContextPayload{}, err
		}
		return OpaquePayload(m), nil
	}
}
