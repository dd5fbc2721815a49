// Package advisor orchestrates one conversational turn end to end
package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/sage/internal/common"
	"github.com/bobmcallan/sage/internal/interfaces"
	"github.com/bobmcallan/sage/internal/models"
	"github.com/bobmcallan/sage/internal/services/ticker"
)

// defaultUserLevel is the experience level attached to every response. Level
// classification from query language is not wired yet; see prompts.go.
const defaultUserLevel = "INTERMEDIATE"

const generatorUnavailableMessage = "I'm unable to generate an analysis right now. The market data above is still accurate, so please try again in a few minutes."

// Resolver maps free text to candidate symbols.
type Resolver interface {
	Resolve(query string) []string
}

// Service implements the AdvisorService interface
type Service struct {
	resolver  Resolver
	quotes    interfaces.QuoteService
	contexts  interfaces.ContextService
	store     interfaces.ConversationStore
	generator interfaces.GenerativeClient
	config    common.AdvisorConfig
	logger    *common.Logger
	now       func() time.Time
}

// NewService creates the advisor orchestrator. generator may be nil when no
// credential is configured; responses then carry a fixed placeholder.
func NewService(
	resolver Resolver,
	quotes interfaces.QuoteService,
	contexts interfaces.ContextService,
	store interfaces.ConversationStore,
	generator interfaces.GenerativeClient,
	config common.AdvisorConfig,
	logger *common.Logger,
) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		resolver:  resolver,
		quotes:    quotes,
		contexts:  contexts,
		store:     store,
		generator: generator,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// Chat handles one conversational turn: resolve, fetch, aggregate, format,
// generate, persist. Collaborator failures degrade per branch; the only
// terminal error is an empty query.
func (s *Service) Chat(ctx context.Context, req models.AdvisorRequest) (*models.AdvisorResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	symbol := s.resolver.Resolve(query)[0]
	s.logger.Info().
		Str("session_id", sessionID).
		Str("ticker", symbol).
		Msg("Handling chat turn")

	if symbol == ticker.Unknown {
		return s.handleGeneralQuery(ctx, query, sessionID), nil
	}
	return s.handleStockQuery(ctx, query, symbol, sessionID), nil
}

// handleGeneralQuery answers queries with no resolvable ticker. No market
// data is fetched; the turn is persisted with an empty ticker.
func (s *Service) handleGeneralQuery(ctx context.Context, query, sessionID string) *models.AdvisorResponse {
	history := s.store.RecentHistory(sessionID, s.config.HistoryEntries)
	response := s.generate(ctx, buildGeneralPrompt(query, history), s.config.FallbackTokens)

	s.persist(sessionID, query, response, "")

	return &models.AdvisorResponse{
		Response:        response,
		StructuredQuery: classifyQuery(query, ""),
		UserLevel:       defaultUserLevel,
		OriginalQuery:   query,
		SessionID:       sessionID,
	}
}

func (s *Service) handleStockQuery(ctx context.Context, query, symbol, sessionID string) *models.AdvisorResponse {
	structured := classifyQuery(query, symbol)

	quote, err := s.quotes.GetQuote(ctx, symbol)
	if err != nil {
		s.logger.Warn().Str("ticker", symbol).Err(err).Msg("Quote unavailable, skipping analysis")
		response := fmt.Sprintf(
			"I'm sorry, I couldn't retrieve market data for %s right now. The data provider may be unavailable or the symbol may not be listed. Please try again shortly or double-check the ticker.",
			symbol,
		)
		s.persist(sessionID, query, response, symbol)
		return &models.AdvisorResponse{
			Response:        response,
			StructuredQuery: structured,
			UserLevel:       defaultUserLevel,
			OriginalQuery:   query,
			SessionID:       sessionID,
		}
	}

	history := s.store.RecentHistory(sessionID, s.config.HistoryEntries)

	var response string
	var fullContext *models.ComprehensiveContext

	aggregated, err := s.contexts.Aggregate(ctx, symbol)
	if err != nil {
		s.logger.Warn().Str("ticker", symbol).Err(err).Msg("Context aggregation failed, using quote-only prompt")
		prompt := buildFallbackPrompt(query, summarizeQuote(quote), history)
		response = s.generate(ctx, prompt, s.config.FallbackTokens)
	} else {
		fullContext = aggregated
		prompt := buildAnalysisPrompt(query, symbol, s.contexts.Format(aggregated), history)
		response = s.generate(ctx, prompt, s.config.AnalysisTokens)
	}

	s.persist(sessionID, query, response, symbol)

	return &models.AdvisorResponse{
		Response:             response,
		StructuredQuery:      structured,
		UserLevel:            defaultUserLevel,
		StockData:            quote,
		ComprehensiveContext: fullContext,
		OriginalQuery:        query,
		SessionID:            sessionID,
	}
}

// generate invokes the generator, degrading to a fixed placeholder when the
// client is missing or fails. A turn never fails because of the generator.
func (s *Service) generate(ctx context.Context, prompt string, maxTokens int) string {
	if s.generator == nil {
		return generatorUnavailableMessage
	}
	text, err := s.generator.GenerateContent(ctx, prompt, maxTokens)
	if err != nil {
		s.logger.Error().Err(err).Msg("Content generation failed")
		return generatorUnavailableMessage
	}
	return text
}

func (s *Service) persist(sessionID, query, response, ticker string) {
	s.store.Append(sessionID, models.ConversationEntry{
		Timestamp: s.now(),
		Query:     query,
		Response:  response,
		Ticker:    ticker,
	})
}

// summarizeQuote renders bare quote fields for the fallback prompt.
func summarizeQuote(q *models.Quote) string {
	percent := q.ChangePercent
	if percent == "" && q.PreviousClose != 0 {
		percent = fmt.Sprintf("%.2f", q.Change/q.PreviousClose*100)
	}
	return fmt.Sprintf("%s price $%.2f, change %.2f (%s%%), volume %d, source %s",
		q.Symbol, q.Price, q.Change, percent, q.Volume, q.Source)
}

// classifyQuery derives short labels from query keywords. Free-form, not an
// enum; unrecognized queries are "general"/"current".
func classifyQuery(query, ticker string) models.StructuredQuery {
	lower := strings.ToLower(query)

	queryType := "general"
	switch {
	case strings.Contains(lower, "price") || strings.Contains(lower, "cost") || strings.Contains(lower, "worth"):
		queryType = "price"
	case strings.Contains(lower, "perform") || strings.Contains(lower, "doing") || strings.Contains(lower, "change"):
		queryType = "performance"
	case strings.Contains(lower, "analy") || strings.Contains(lower, "should i") || strings.Contains(lower, "buy") || strings.Contains(lower, "sell"):
		queryType = "analysis"
	}

	timeFrame := "current"
	switch {
	case strings.Contains(lower, "today"):
		timeFrame = "today"
	case strings.Contains(lower, "week"):
		timeFrame = "this_week"
	case strings.Contains(lower, "month"):
		timeFrame = "this_month"
	case strings.Contains(lower, "year"):
		timeFrame = "this_year"
	}

	intent := "general financial question"
	if ticker != "" {
		intent = fmt.Sprintf("%s %s %s", timeFrame, ticker, queryType)
	}

	return models.StructuredQuery{
		Ticker:    ticker,
		QueryType: queryType,
		TimeFrame: timeFrame,
		Intent:    intent,
	}
}

// Ensure Service implements AdvisorService
var _ interfaces.AdvisorService = (*Service)(nil)
