package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"chart-advisor/internal/parser"
)

// DefaultSymbols is the symbol set offered when the config lists none.
var DefaultSymbols = []string{
	"EURUSD", "GBPUSD", "USDJPY", "AUDUSD", "USDCAD",
	"USDCHF", "EURGBP", "BTCUSD", "ETHUSD", "SOLUSD",
}

var defaultModels = map[string]string{
	"GEMINI": "gemini-2.5-flash",
	"OPENAI": "gpt-4o-mini",
	"CLAUDE": "claude-sonnet-4-5",
	"NOOP":   "",
}

var defaultKeyEnvs = map[string]string{
	"GEMINI": "GEMINI_API_KEY",
	"OPENAI": "OPENAI_API_KEY",
	"CLAUDE": "ANTHROPIC_API_KEY",
}

type SectionConfig struct {
	Field    string   `yaml:"field"`
	Keywords []string `yaml:"keywords"`
}

type Config struct {
	Server struct {
		Addr                string   `yaml:"addr"`
		UploadDir           string   `yaml:"upload_dir"`
		MaxUploadMB         int      `yaml:"max_upload_mb"`
		ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
		ShutdownSeconds     int      `yaml:"shutdown_seconds"`
		CORSOrigins         []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Symbols []string `yaml:"symbols"`
	Market  struct {
		DataSource     string `yaml:"data_source"`
		BaseURL        string `yaml:"base_url"`
		APIKeyEnv      string `yaml:"api_key_env"`
		APIKey         string `yaml:"-"`
		Interval       string `yaml:"interval"`
		OutputSize     string `yaml:"outputsize"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		Retries        int    `yaml:"retries"`
	} `yaml:"market"`
	LLM struct {
		Provider       string  `yaml:"provider"`
		Model          string  `yaml:"model"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float32 `yaml:"temperature"`
		BaseURL        string  `yaml:"base_url"`
		APIKeyEnv      string  `yaml:"api_key_env"`
		APIKey         string  `yaml:"-"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		Retries        int     `yaml:"retries"`
	} `yaml:"llm"`
	Parser struct {
		Sections []SectionConfig `yaml:"sections"`
	} `yaml:"parser"`
}

func (c *Config) Validate() error {
	if c.Market.DataSource != "STATIC" && c.Market.DataSource != "LIVE" {
		return fmt.Errorf("invalid market.data_source '%s': must be 'STATIC' or 'LIVE'", c.Market.DataSource)
	}
	if _, ok := defaultModels[c.LLM.Provider]; !ok {
		return fmt.Errorf("invalid llm.provider '%s': must be 'GEMINI', 'OPENAI', 'CLAUDE' or 'NOOP'", c.LLM.Provider)
	}
	if len(c.Symbols) == 0 {
		return errors.New("symbols cannot be empty")
	}
	if c.Server.MaxUploadMB <= 0 || c.Server.MaxUploadMB > 100 {
		return fmt.Errorf("server.max_upload_mb must be between 1-100, got %d", c.Server.MaxUploadMB)
	}
	if c.Market.Retries < 0 || c.LLM.Retries < 0 {
		return errors.New("retries cannot be negative")
	}
	if c.Market.TimeoutSeconds <= 0 || c.LLM.TimeoutSeconds <= 0 {
		return errors.New("timeouts must be positive")
	}
	if _, err := c.KeywordTable(); err != nil {
		return fmt.Errorf("parser.sections: %w", err)
	}
	return nil
}

// ValidateSecrets checks that the LLM provider has credentials. It is
// separate from Validate so commands that never call out (parse, symbols)
// work without keys. A missing market data key is not an error: image mode
// still works and symbol requests report market data as unavailable.
func (c *Config) ValidateSecrets() error {
	if c.LLM.Provider != "NOOP" && c.LLM.APIKey == "" {
		return fmt.Errorf("%s missing for llm.provider %s", c.LLM.APIKeyEnv, c.LLM.Provider)
	}
	return nil
}

// MarketKeyMissing reports a LIVE data source without an API key.
func (c *Config) MarketKeyMissing() bool {
	return c.Market.DataSource == "LIVE" && c.Market.APIKey == ""
}

// KeywordTable builds the parser table, or the default one when
// parser.sections is not configured.
func (c *Config) KeywordTable() (parser.KeywordTable, error) {
	if len(c.Parser.Sections) == 0 {
		return parser.DefaultTable(), nil
	}
	sections := make([]parser.Section, 0, len(c.Parser.Sections))
	for _, s := range c.Parser.Sections {
		f, err := parser.ParseField(s.Field)
		if err != nil {
			return nil, err
		}
		sections = append(sections, parser.Section{Field: f, Keywords: s.Keywords})
	}
	return parser.NewTable(sections)
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

func (c *Config) MarketTimeout() time.Duration {
	return time.Duration(c.Market.TimeoutSeconds) * time.Second
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(b)
}

// ParseConfig decodes YAML, applies defaults, resolves secrets from the
// environment and validates the result.
func ParseConfig(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()
	c.LLM.APIKey = strings.TrimSpace(os.Getenv(c.LLM.APIKeyEnv))
	c.Market.APIKey = strings.TrimSpace(os.Getenv(c.Market.APIKeyEnv))

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	c, err := ParseConfig(nil)
	if err != nil {
		// defaults are always valid
		panic(err)
	}
	return c
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":5000"
	}
	if c.Server.UploadDir == "" {
		c.Server.UploadDir = "uploads"
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 16
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 30
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 120
	}
	if c.Server.ShutdownSeconds == 0 {
		c.Server.ShutdownSeconds = 10
	}
	if len(c.Symbols) == 0 {
		c.Symbols = append([]string(nil), DefaultSymbols...)
	}
	for i, s := range c.Symbols {
		c.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}

	c.Market.DataSource = strings.ToUpper(c.Market.DataSource)
	if c.Market.DataSource == "" {
		c.Market.DataSource = "LIVE"
	}
	if c.Market.BaseURL == "" {
		c.Market.BaseURL = "https://www.alphavantage.co"
	}
	if c.Market.APIKeyEnv == "" {
		c.Market.APIKeyEnv = "ALPHAVANTAGE_API_KEY"
	}
	if c.Market.Interval == "" {
		c.Market.Interval = "5min"
	}
	if c.Market.OutputSize == "" {
		c.Market.OutputSize = "compact"
	}
	if c.Market.TimeoutSeconds == 0 {
		c.Market.TimeoutSeconds = 10
	}

	c.LLM.Provider = strings.ToUpper(c.LLM.Provider)
	if c.LLM.Provider == "" {
		c.LLM.Provider = "GEMINI"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultModels[c.LLM.Provider]
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = defaultKeyEnvs[c.LLM.Provider]
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1024
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 60
	}
}
