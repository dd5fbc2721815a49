// Package app wires configuration, clients, and services together
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/sage/internal/clients/alphavantage"
	"github.com/bobmcallan/sage/internal/clients/gemini"
	"github.com/bobmcallan/sage/internal/common"
	"github.com/bobmcallan/sage/internal/interfaces"
	"github.com/bobmcallan/sage/internal/services/advisor"
	"github.com/bobmcallan/sage/internal/services/contextagg"
	"github.com/bobmcallan/sage/internal/services/conversation"
	"github.com/bobmcallan/sage/internal/services/quote"
	"github.com/bobmcallan/sage/internal/services/ticker"
)

// App holds all initialized clients and services.
type App struct {
	Config            *common.Config
	Logger            *common.Logger
	MarketClient      interfaces.MarketDataClient
	GeminiClient      interfaces.GenerativeClient
	QuoteService      interfaces.QuoteService
	ContextService    interfaces.ContextService
	ConversationStore interfaces.ConversationStore
	AdvisorService    interfaces.AdvisorService
	StartupTime       time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Config resolution: flag, SAGE_CONFIG, binary dir, then dev fallback
	if configPath == "" {
		configPath = os.Getenv("SAGE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "sage.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/sage.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	marketClient := alphavantage.NewClient(config.Clients.AlphaVantage.APIKey,
		alphavantage.WithBaseURL(config.Clients.AlphaVantage.BaseURL),
		alphavantage.WithLogger(logger),
		alphavantage.WithRateLimit(config.Clients.AlphaVantage.RateLimit),
		alphavantage.WithTimeout(int(config.Clients.AlphaVantage.GetTimeout().Seconds())),
	)
	if config.Clients.AlphaVantage.IsDemoKey() {
		logger.Warn().Msg("Alpha Vantage demo key in use - financial statement sources disabled")
	}

	var geminiClient interfaces.GenerativeClient
	if config.Clients.Gemini.APIKey != "" {
		client, err := gemini.NewClient(context.Background(), config.Clients.Gemini.APIKey,
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithLogger(logger),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Gemini client initialization failed - analysis will be unavailable")
		} else {
			geminiClient = client
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured - analysis will be unavailable")
	}

	quoteService := quote.NewService(marketClient, config.Advisor.SyntheticQuotes, logger)
	contextService := contextagg.NewService(marketClient, logger)
	store := conversation.NewStore()
	advisorService := advisor.NewService(
		ticker.NewResolver(logger),
		quoteService,
		contextService,
		store,
		geminiClient,
		config.Advisor,
		logger,
	)

	return &App{
		Config:            config,
		Logger:            logger,
		MarketClient:      marketClient,
		GeminiClient:      geminiClient,
		QuoteService:      quoteService,
		ContextService:    contextService,
		ConversationStore: store,
		AdvisorService:    advisorService,
		StartupTime:       time.Now(),
	}, nil
}
