package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/sage/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("test-key",
		WithBaseURL(server.URL),
		WithRateLimit(100),
	)
}

func TestGetQuote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"Global Quote": {
				"01. symbol": "AAPL",
				"03. high": "199.62",
				"04. low": "164.08",
				"05. price": "189.84",
				"06. volume": "48087681",
				"08. previous close": "188.01",
				"09. change": "1.83",
				"10. change percent": "0.9733%"
			}
		}`))
	})

	quote, err := client.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 189.84, quote.Price)
	assert.Equal(t, 188.01, quote.PreviousClose)
	assert.Equal(t, 1.83, quote.Change)
	assert.Equal(t, "0.9733", quote.ChangePercent)
	assert.Equal(t, int64(48087681), quote.Volume)
	assert.Equal(t, models.QuoteSourceLive, quote.Source)
}

func TestGetQuoteEmptyPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Global Quote": {}}`))
	})

	_, err := client.GetQuote(context.Background(), "ZZZZ")
	assert.Error(t, err)
}

func TestGetQuoteRateLimitNote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	})

	_, err := client.GetQuote(context.Background(), "AAPL")
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Contains(t, apiErr.Message, "rate limit")
}

func TestGetOverview(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "OVERVIEW", r.URL.Query().Get("function"))
		w.Write([]byte(`{
			"Symbol": "AAPL",
			"Name": "Apple Inc",
			"Sector": "TECHNOLOGY",
			"Industry": "ELECTRONIC COMPUTERS",
			"MarketCapitalization": "2914396000000",
			"PERatio": "29.52",
			"DividendYield": "0.0051",
			"EPS": "6.43",
			"52WeekHigh": "199.62",
			"52WeekLow": "164.08"
		}`))
	})

	overview, err := client.GetOverview(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc", overview.Name)
	assert.Equal(t, "TECHNOLOGY", overview.Sector)
	assert.Equal(t, "29.52", overview.PERatio)
}

func TestGetOverviewUnknownSymbol(t *testing.T) {
	// Unknown symbols return an empty object rather than an error marker.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := client.GetOverview(context.Background(), "ZZZZ")
	assert.Error(t, err)
}

func TestGetNews(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "NEWS_SENTIMENT", r.URL.Query().Get("function"))
		assert.Equal(t, "TSLA", r.URL.Query().Get("tickers"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Write([]byte(`{
			"feed": [
				{
					"title": "Tesla Announces New Gigafactory",
					"summary": "Tesla plans to expand production capacity.",
					"source": "Reuters",
					"overall_sentiment_label": "Bullish",
					"topics": [{"topic": "Manufacturing"}, {"topic": "Earnings"}],
					"ticker_sentiment": [
						{"ticker": "TSLA", "relevance_score": "0.82", "ticker_sentiment_label": "Bullish"},
						{"ticker": "PANW", "relevance_score": "0.11", "ticker_sentiment_label": "Neutral"}
					]
				},
				{
					"title": "EV Market Outlook",
					"source": "Bloomberg",
					"overall_sentiment_label": "Neutral"
				}
			]
		}`))
	})

	articles, err := client.GetNews(context.Background(), "TSLA", 5)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "Tesla Announces New Gigafactory", articles[0].Title)
	assert.Equal(t, "Bullish", articles[0].Sentiment)
	assert.Equal(t, []string{"Manufacturing", "Earnings"}, articles[0].Topics)
	assert.Equal(t, "Bullish", articles[0].TickerSentiment)
	assert.Equal(t, 0.82, articles[0].TickerRelevance)
	assert.Empty(t, articles[1].TickerSentiment)
}

func TestFetchSourceStatement(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "CASH_FLOW", r.URL.Query().Get("function"))
		w.Write([]byte(`{
			"symbol": "AAPL",
			"quarterlyReports": [
				{"fiscalDateEnding": "2024-03-31", "operatingCashflow": "28200000000"},
				{"fiscalDateEnding": "2023-12-31", "operatingCashflow": "39900000000"}
			]
		}`))
	})

	payload, ok := client.FetchSource(context.Background(), "AAPL", models.SourceCashFlow)
	require.True(t, ok)
	require.Equal(t, models.PayloadOpaque, payload.Kind)
	latest, ok := payload.Opaque["latest_quarter"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2024-03-31", latest["fiscalDateEnding"])
}

func TestFetchSourceFailureIsNotFatal(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, ok := client.FetchSource(context.Background(), "AAPL", models.SourceStockQuote)
	assert.False(t, ok)
}

func TestFetchSourceUnknownKey(t *testing.T) {
	client := NewClient("test-key")
	_, ok := client.FetchSource(context.Background(), "AAPL", "not_a_source")
	assert.False(t, ok)
}

func TestEnabledSourcesDemoKey(t *testing.T) {
	demo := NewClient("demo")
	assert.Equal(t, []string{
		models.SourceStockQuote,
		models.SourceCompanyOverview,
		models.SourceNewsSentiment,
	}, demo.EnabledSources())

	empty := NewClient("")
	assert.Equal(t, demo.EnabledSources(), empty.EnabledSources())
}

func TestEnabledSourcesFullKey(t *testing.T) {
	client := NewClient("real-key")
	sources := client.EnabledSources()
	assert.Len(t, sources, 8)
	assert.Contains(t, sources, models.SourceETFProfile)
	assert.Contains(t, sources, models.SourceIncomeStatement)

	// Statement endpoints refuse to fire for demo keys even when asked directly.
	demo := NewClient("demo")
	_, ok := demo.FetchSource(context.Background(), "AAPL", models.SourceEarnings)
	assert.False(t, ok)
}
