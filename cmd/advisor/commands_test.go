package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chart-advisor/internal/types"
)

const testConfig = `
symbols: [eurusd, btcusd]
market:
  data_source: STATIC
llm:
  provider: NOOP
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSymbolsCommand(t *testing.T) {
	out, err := run(t, "", "symbols", "--config", writeConfig(t))
	require.NoError(t, err)
	assert.Equal(t, "EURUSD\nBTCUSD\n", out)
}

func TestParseCommandFromStdin(t *testing.T) {
	reply := "DECISION: NO OPERAR\nRIESGO: alto\nMOTIVO: Rango lateral"
	out, err := run(t, reply, "parse", "--config", writeConfig(t))
	require.NoError(t, err)

	var res types.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, types.DecisionDoNotOperate, res.Decision)
	assert.Equal(t, types.RiskHigh, res.Risk)
	assert.Equal(t, "Rango lateral", res.Rationale)
	assert.Equal(t, types.NotDetected, res.TechnicalSummary)
}

func TestParseCommandFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reply.txt")
	require.NoError(t, os.WriteFile(path, []byte("TIPO: VENTA\nDECISION: OPERAR"), 0o644))

	out, err := run(t, "", "parse", path, "--config", writeConfig(t))
	require.NoError(t, err)

	var res types.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, types.DecisionOperate, res.Decision)
	assert.Equal(t, types.PositionSell, res.PositionType)
}

func TestAnalyzeSymbolWithNoopAndStaticData(t *testing.T) {
	out, err := run(t, "", "analyze", "symbol", "btcusd", "--config", writeConfig(t))
	require.NoError(t, err)

	var res types.AnalysisOutcome
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Result)
	assert.Equal(t, types.DecisionWait, res.Result.Decision)
	require.NotNil(t, res.Result.MarketData)
	assert.Equal(t, "BTCUSD", res.Result.MarketData.Symbol)
}

func TestAnalyzeUnknownSymbolFails(t *testing.T) {
	out, err := run(t, "", "analyze", "symbol", "XAUUSD", "--config", writeConfig(t))
	assert.ErrorIs(t, err, errAnalysisFailed)
	assert.Contains(t, out, `"error"`)
}

func TestExplicitMissingConfigFails(t *testing.T) {
	_, err := run(t, "", "symbols", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

const liveNoKeyConfig = `
symbols: [EURUSD]
market:
  data_source: LIVE
llm:
  provider: NOOP
`

func writeLiveConfig(t *testing.T) string {
	t.Helper()
	t.Setenv("ALPHAVANTAGE_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(liveNoKeyConfig), 0o644))
	return path
}

func TestAnalyzerBuildsWithOnlyLLMKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "g")
	t.Setenv("ALPHAVANTAGE_API_KEY", "")

	cfg, err := loadConfig(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)
	require.Equal(t, "GEMINI", cfg.LLM.Provider)
	require.Equal(t, "LIVE", cfg.Market.DataSource)

	a, err := initializeAnalyzer(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, a.Symbols())
}

func TestMissingMarketKeyStillAnalyzesImages(t *testing.T) {
	cfgPath := writeLiveConfig(t)
	img := filepath.Join(t.TempDir(), "chart.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01"), 0o644))

	out, err := run(t, "", "analyze", "image", img, "--config", cfgPath)
	require.NoError(t, err)

	var res types.AnalysisOutcome
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Result)
	assert.Equal(t, types.DecisionWait, res.Result.Decision)
	assert.Equal(t, "chart.png", res.Result.Filename)
}

func TestMissingMarketKeyReportsUnavailable(t *testing.T) {
	out, err := run(t, "", "analyze", "symbol", "EURUSD", "--config", writeLiveConfig(t))
	assert.ErrorIs(t, err, errAnalysisFailed)

	var res types.AnalysisOutcome
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Nil(t, res.Result)
	assert.Contains(t, res.Error, "No se pudieron obtener datos de mercado")
}
