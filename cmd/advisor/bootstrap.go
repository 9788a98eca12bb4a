package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"

	"chart-advisor/internal/analysis"
	"chart-advisor/internal/analysis/analysisobs"
	"chart-advisor/internal/interfaces"
	"chart-advisor/internal/llm"
	"chart-advisor/internal/logger"
	"chart-advisor/internal/marketdata"
	"chart-advisor/internal/marketdata/marketobs"
	"chart-advisor/internal/parser"
	"chart-advisor/internal/store"
)

// initializeSystem loads .env and sets up logging and tracing. Logs go to
// stderr so command output on stdout stays machine readable.
func initializeSystem() error {
	_ = godotenv.Load()

	lc := logger.LoadConfigFromEnv()
	lc.Output = os.Stderr
	if err := logger.InitWithConfig(lc); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// loadConfig reads the config file. A missing file falls back to defaults
// unless the path was given explicitly.
func loadConfig(ctx context.Context, path string, explicit bool) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		logger.Warn(ctx, "Config file not found, using defaults", "path", path)
		return store.Default(), nil
	}
	logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
	return nil, err
}

func initializeParser(cfg *store.Config) (*parser.Parser, error) {
	table, err := cfg.KeywordTable()
	if err != nil {
		return nil, err
	}
	return parser.New(table), nil
}

// initializeMarketData builds the configured provider with observability.
func initializeMarketData(ctx context.Context, cfg *store.Config) interfaces.MarketDataProvider {
	if cfg.Market.DataSource == "LIVE" {
		logger.Info(ctx, "Using LIVE market data", "base_url", cfg.Market.BaseURL, "interval", cfg.Market.Interval)
		if cfg.MarketKeyMissing() {
			logger.Warn(ctx, "Market data API key not set - symbol analysis will report data as unavailable",
				"env", cfg.Market.APIKeyEnv)
		}
	} else {
		logger.Info(ctx, "Using STATIC synthetic market data")
	}

	p := marketdata.New(marketdata.Params{
		Source:     cfg.Market.DataSource,
		BaseURL:    cfg.Market.BaseURL,
		APIKey:     cfg.Market.APIKey,
		Interval:   cfg.Market.Interval,
		OutputSize: cfg.Market.OutputSize,
		Timeout:    cfg.MarketTimeout(),
		Retries:    cfg.Market.Retries,
	})
	return marketobs.Wrap(p)
}

// initializeGateway builds the LLM client and wraps it in the gateway.
func initializeGateway(ctx context.Context, cfg *store.Config) (interfaces.Gateway, error) {
	if cfg.LLM.Provider == "NOOP" {
		logger.Warn(ctx, "No LLM provider configured - using Noop client (always WAIT)")
	}

	client, err := llm.NewClient(ctx, llm.ProviderConfig{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLMTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	return llm.NewGateway(client,
		llm.WithTimeout(cfg.LLMTimeout()),
		llm.WithRetries(cfg.LLM.Retries, 2*time.Second),
	), nil
}

// initializeAnalyzer wires parser, market data and gateway into the analysis
// service. Secrets are checked here since only analysis calls out.
func initializeAnalyzer(ctx context.Context, cfg *store.Config) (interfaces.Analyzer, error) {
	if err := cfg.ValidateSecrets(); err != nil {
		logger.ErrorWithErr(ctx, "Missing credentials", err)
		return nil, err
	}

	p, err := initializeParser(cfg)
	if err != nil {
		return nil, err
	}
	gw, err := initializeGateway(ctx, cfg)
	if err != nil {
		return nil, err
	}
	market := initializeMarketData(ctx, cfg)

	logger.Info(ctx, "Analyzer ready",
		"llm_provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"data_source", cfg.Market.DataSource,
		"symbols", len(cfg.Symbols),
	)
	return analysisobs.Wrap(analysis.New(gw, market, p, cfg.Symbols)), nil
}
