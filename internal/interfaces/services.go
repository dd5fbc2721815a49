package interfaces

import (
	"context"

	"github.com/bobmcallan/sage/internal/models"
)

// QuoteService retrieves quotes with the sample/generated fallback chain.
type QuoteService interface {
	// GetQuote returns a quote for the symbol, tagged with its source.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// ContextService aggregates and formats multi-source market context.
type ContextService interface {
	// Aggregate fetches all enabled data sources for a symbol. The result
	// always carries at least one data source.
	Aggregate(ctx context.Context, symbol string) (*models.ComprehensiveContext, error)

	// Format renders a context as a bounded plain-text block for prompts.
	Format(ctx *models.ComprehensiveContext) string
}

// ConversationStore keeps per-session conversation history in memory.
type ConversationStore interface {
	// Append records a turn for a session, trimming to the retention cap.
	Append(sessionID string, entry models.ConversationEntry)

	// RecentHistory renders up to maxEntries most recent turns as text,
	// oldest first. Returns "" for unknown or empty sessions.
	RecentHistory(sessionID string, maxEntries int) string

	// Len reports the number of retained entries for a session.
	Len(sessionID string) int
}

// AdvisorService handles one conversational turn end to end.
type AdvisorService interface {
	Chat(ctx context.Context, req models.AdvisorRequest) (*models.AdvisorResponse, error)
}
