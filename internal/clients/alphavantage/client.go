// Package alphavantage provides a client for the Alpha Vantage API
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/sage/internal/common"
	"github.com/bobmcallan/sage/internal/interfaces"
	"github.com/bobmcallan/sage/internal/models"
)

const (
	DefaultBaseURL   = "https://www.alphavantage.co/query"
	DefaultTimeout   = 10 // seconds
	DefaultRateLimit = 1  // requests per second; free tier allows 5/min

	newsArticleLimit     = 5
	earningsQuarterLimit = 4
)

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	apiKey     string
	demoKey    bool
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout in seconds
func WithTimeout(seconds int) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = secondsToDuration(seconds)
	}
}

// NewClient creates a new Alpha Vantage client. An empty or "demo" key
// restricts the enabled sources to quote, overview and news to conserve the
// shared demo quota.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	key := strings.TrimSpace(apiKey)
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  key,
		demoKey: key == "" || strings.EqualFold(key, "demo"),
		httpClient: &http.Client{
			Timeout: secondsToDuration(DefaultTimeout),
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}
	if c.apiKey == "" {
		c.apiKey = "demo"
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Function   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Alpha Vantage API error: %s (status: %d, function: %s)", e.Message, e.StatusCode, e.Function)
}

// endpoint binds an API function to a data-source key and its parser.
type endpoint struct {
	function  string
	source    string
	statement bool // disabled for demo keys
	parse     func(symbol string, body map[string]json.RawMessage) (models.ContextPayload, bool)
}

// endpoints is the fixed fetch table, in aggregation order.
var endpoints = []endpoint{
	{function: "GLOBAL_QUOTE", source: models.SourceStockQuote, parse: parseQuotePayload},
	{function: "OVERVIEW", source: models.SourceCompanyOverview, parse: parseOverviewPayload},
	{function: "NEWS_SENTIMENT", source: models.SourceNewsSentiment, parse: parseNewsPayload},
	{function: "ETF_PROFILE", source: models.SourceETFProfile, statement: true, parse: parseOpaquePayload},
	{function: "EARNINGS", source: models.SourceEarnings, statement: true, parse: parseEarningsPayload},
	{function: "CASH_FLOW", source: models.SourceCashFlow, statement: true, parse: parseStatementPayload},
	{function: "BALANCE_SHEET", source: models.SourceBalanceSheet, statement: true, parse: parseStatementPayload},
	{function: "INCOME_STATEMENT", source: models.SourceIncomeStatement, statement: true, parse: parseStatementPayload},
}

// EnabledSources lists the data sources this client will fetch, in order.
func (c *Client) EnabledSources() []string {
	sources := make([]string, 0, len(endpoints))
	for _, ep := range endpoints {
		if ep.statement && c.demoKey {
			continue
		}
		sources = append(sources, ep.source)
	}
	return sources
}

// get performs a rate-limited GET request and decodes the JSON body.
// Responses carrying an upstream error or rate-limit marker are treated the
// same as transport failures.
func (c *Client) get(ctx context.Context, function string, params url.Values) (map[string]json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("function", function)
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("function", function).Msg("Alpha Vantage API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Function:   function,
		}
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// "Error Message" flags an invalid request, "Note" and "Information"
	// flag quota exhaustion. All of them mean no data for this endpoint.
	for _, marker := range []string{"Error Message", "Note", "Information"} {
		if raw, ok := body[marker]; ok {
			var msg string
			json.Unmarshal(raw, &msg)
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Message:    msg,
				Function:   function,
			}
		}
	}

	return body, nil
}

// FetchSource fetches and parses one named data source for a symbol.
// All failures collapse to ok=false so the aggregator can skip and continue.
func (c *Client) FetchSource(ctx context.Context, symbol, source string) (models.ContextPayload, bool) {
	for _, ep := range endpoints {
		if ep.source != source {
			continue
		}
		if ep.statement && c.demoKey {
			return models.ContextPayload{}, false
		}

		body, err := c.get(ctx, ep.function, c.paramsFor(ep, symbol))
		if err != nil {
			c.logger.Debug().Str("symbol", symbol).Str("source", source).Err(err).Msg("Data source unavailable")
			return models.ContextPayload{}, false
		}

		payload, ok := ep.parse(symbol, body)
		if !ok {
			c.logger.Debug().Str("symbol", symbol).Str("source", source).Msg("Data source returned no usable payload")
		}
		return payload, ok
	}
	return models.ContextPayload{}, false
}

// paramsFor builds the query parameters an endpoint requires.
// The news endpoint addresses symbols via "tickers" and caps the article count.
func (c *Client) paramsFor(ep endpoint, symbol string) url.Values {
	params := url.Values{}
	if ep.function == "NEWS_SENTIMENT" {
		params.Set("tickers", symbol)
		params.Set("limit", strconv.Itoa(newsArticleLimit))
	} else {
		params.Set("symbol", symbol)
	}
	return params
}

// GetQuote retrieves a real-time quote for a symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	body, err := c.get(ctx, "GLOBAL_QUOTE", params)
	if err != nil {
		return nil, err
	}

	quote, ok := parseQuote(symbol, body)
	if !ok {
		return nil, &APIError{Message: "empty quote", Function: "GLOBAL_QUOTE"}
	}
	return quote, nil
}

// GetOverview retrieves company fundamental data for a symbol.
func (c *Client) GetOverview(ctx context.Context, symbol string) (*models.CompanyOverview, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	body, err := c.get(ctx, "OVERVIEW", params)
	if err != nil {
		return nil, err
	}

	overview, ok := parseOverview(body)
	if !ok {
		return nil, &APIError{Message: "empty overview", Function: "OVERVIEW"}
	}
	return overview, nil
}

// GetNews retrieves up to limit news articles with sentiment labels.
func (c *Client) GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsArticle, error) {
	if limit <= 0 {
		limit = newsArticleLimit
	}
	params := url.Values{}
	params.Set("tickers", symbol)
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "NEWS_SENTIMENT", params)
	if err != nil {
		return nil, err
	}

	articles, ok := parseNews(symbol, body, limit)
	if !ok {
		return nil, &APIError{Message: "empty news feed", Function: "NEWS_SENTIMENT"}
	}
	return articles, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
