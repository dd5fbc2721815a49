// Package interfaces defines service contracts for Sage
package interfaces

import (
	"context"

	"github.com/bobmcallan/sage/internal/models"
)

// MarketDataClient provides access to the Alpha Vantage API.
//
// The typed getters return errors for direct callers. FetchSource is the
// aggregator-facing entry point: it maps any transport, decode or rate-limit
// failure to ok=false and never returns an error.
type MarketDataClient interface {
	// GetQuote retrieves a real-time quote
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)

	// GetOverview retrieves company fundamental data
	GetOverview(ctx context.Context, symbol string) (*models.CompanyOverview, error)

	// GetNews retrieves up to limit news articles with sentiment labels
	GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsArticle, error)

	// FetchSource fetches and parses one named data source for a symbol
	FetchSource(ctx context.Context, symbol, source string) (models.ContextPayload, bool)

	// EnabledSources lists the data sources this client will fetch, in
	// aggregation order. Demo keys are restricted to quote/overview/news.
	EnabledSources() []string
}

// GenerativeClient provides access to the Gemini API
type GenerativeClient interface {
	// GenerateContent generates text from a prompt within a token budget
	GenerateContent(ctx context.Context, prompt string, maxTokens int) (string, error)
}
