package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/sage/internal/app"
	"github.com/bobmcallan/sage/internal/common"
	"github.com/bobmcallan/sage/internal/models"
	"github.com/bobmcallan/sage/internal/services/conversation"
)

func testTimestamp() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

type stubMarketClient struct{}

func (stubMarketClient) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	return nil, errors.New("not implemented")
}
func (stubMarketClient) GetOverview(ctx context.Context, symbol string) (*models.CompanyOverview, error) {
	return nil, errors.New("not implemented")
}
func (stubMarketClient) GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsArticle, error) {
	return nil, errors.New("not implemented")
}
func (stubMarketClient) FetchSource(ctx context.Context, symbol, source string) (models.ContextPayload, bool) {
	return models.ContextPayload{}, false
}
func (stubMarketClient) EnabledSources() []string {
	return []string{models.SourceStockQuote, models.SourceCompanyOverview, models.SourceNewsSentiment}
}

type stubQuoteService struct {
	quote *models.Quote
	err   error
}

func (s stubQuoteService) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.quote, nil
}

type stubContextService struct {
	result *models.ComprehensiveContext
	err    error
}

func (s stubContextService) Aggregate(ctx context.Context, symbol string) (*models.ComprehensiveContext, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s stubContextService) Format(ctx *models.ComprehensiveContext) string {
	return "COMPREHENSIVE MARKET DATA FOR " + ctx.Symbol + "\n"
}

type stubAdvisor struct {
	resp *models.AdvisorResponse
	err  error
}

func (s stubAdvisor) Chat(ctx context.Context, req models.AdvisorRequest) (*models.AdvisorResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func newTestServer(t *testing.T, mutate func(*app.App)) *Server {
	t.Helper()

	cfg := common.NewDefaultConfig()
	cfg.Clients.AlphaVantage.APIKey = "secret-test-key"

	a := &app.App{
		Config:            cfg,
		Logger:            common.NewSilentLogger(),
		MarketClient:      stubMarketClient{},
		QuoteService:      stubQuoteService{},
		ContextService:    stubContextService{},
		ConversationStore: conversation.NewStore(),
		AdvisorService:    stubAdvisor{},
	}
	if mutate != nil {
		mutate(a)
	}
	return NewServer(a)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Len(t, body["data_sources"], 3)
}

func TestVersionEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodGet, "/api/version", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["version"])
}

func TestChatEndpoint(t *testing.T) {
	s := newTestServer(t, func(a *app.App) {
		a.AdvisorService = stubAdvisor{resp: &models.AdvisorResponse{
			Response:      "Tesla looks healthy.",
			UserLevel:     "INTERMEDIATE",
			OriginalQuery: "How is Tesla?",
			SessionID:     "s1",
		}}
	})

	rec := doRequest(t, s, http.MethodPost, "/api/chat", `{"query": "How is Tesla?", "session_id": "s1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body models.AdvisorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Tesla looks healthy.", body.Response)
	assert.Equal(t, "s1", body.SessionID)
}

func TestChatEndpointValidation(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing query", `{"session_id": "s1"}`},
		{"empty query", `{"query": ""}`},
		{"invalid json", `{"query": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/api/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestChatEndpointMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodGet, "/api/chat", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Allow"))
}

func TestMarketQuoteEndpoint(t *testing.T) {
	s := newTestServer(t, func(a *app.App) {
		a.QuoteService = stubQuoteService{quote: &models.Quote{
			Symbol: "TSLA", Price: 242.68, Source: models.QuoteSourceLive,
		}}
	})

	rec := doRequest(t, s, http.MethodGet, "/api/market/quote/TSLA", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var quote models.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, "TSLA", quote.Symbol)
	assert.Equal(t, models.QuoteSourceLive, quote.Source)
}

func TestMarketQuoteNotFound(t *testing.T) {
	s := newTestServer(t, func(a *app.App) {
		a.QuoteService = stubQuoteService{err: errors.New("no quote")}
	})

	rec := doRequest(t, s, http.MethodGet, "/api/market/quote/ZZZQ", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarketContextEndpoint(t *testing.T) {
	result := models.NewComprehensiveContext("TSLA", testTimestamp())
	result.Add(models.SourceStockQuote, models.QuotePayload(&models.Quote{Symbol: "TSLA", Price: 242.68}))

	s := newTestServer(t, func(a *app.App) {
		a.ContextService = stubContextService{result: result}
	})

	rec := doRequest(t, s, http.MethodGet, "/api/market/context/TSLA", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "TSLA", body["symbol"])
	assert.Contains(t, body, "stock_quote")

	// Text rendering
	rec = doRequest(t, s, http.MethodGet, "/api/market/context/TSLA?format=text", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "COMPREHENSIVE MARKET DATA FOR TSLA")
}

func TestConfigEndpointMasksSecrets(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodGet, "/api/config", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-test-key")
	assert.Contains(t, rec.Body.String(), "-key") // last four survive the mask
}

func TestShutdownDisabledInProduction(t *testing.T) {
	s := newTestServer(t, func(a *app.App) {
		a.Config.Environment = "production"
	})

	rec := doRequest(t, s, http.MethodPost, "/api/shutdown", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCorrelationIDHeader(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/health", "")
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Correlation-ID"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(t, s, http.MethodOptions, "/api/chat", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
