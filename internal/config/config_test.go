package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperbroker/pkg/utility/fixed"
)

func writeConfig(t *testing.T, yamlContent string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "backtest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))
	return path
}

const validSyntheticConfig = `
account:
  start_cash: 100000
fees:
  per_order: 1.0
  per_contract: 0.5
execution:
  slippage: 0.01
  max_participation: 0.1
margins:
  ES: 12000
data:
  kind: synthetic
  symbol: ACME
  period: 24h
  seed: 42
  bars: 250
  start_price: 100.0
  mu: 0.05
  sigma: 0.2
audit:
  min_snapshot_interval: 24h
logging:
  level: info
  dev: true
`

func TestLoad_Synthetic(t *testing.T) {
	path := writeConfig(t, validSyntheticConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 100000.0, cfg.Account.StartCash)
	assert.Equal(t, "synthetic", cfg.Data.Kind)
	assert.Equal(t, int64(250), cfg.Data.Bars)
	assert.Equal(t, 24*time.Hour, cfg.BarPeriod())
	assert.Equal(t, 24*time.Hour, cfg.SnapshotInterval())
	assert.True(t, cfg.StartCash().Eq(fixed.FromInt(100000, 0)))

	table := cfg.MarginTable()
	require.Contains(t, table, "ES")
	assert.True(t, table["ES"].Eq(fixed.FromInt(12000, 0)))

	fees := cfg.FeeSchedule()
	assert.True(t, fees.PerOrder.Eq(fixed.One))
}

func TestLoad_HistoricalRequiresPath(t *testing.T) {
	path := writeConfig(t, `
account:
  start_cash: 50000
data:
  kind: historical
  symbol: ACME
  from: 2024-01-01T00:00:00Z
  to: 2024-06-01T00:00:00Z
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "data.path")
}

func TestLoad_UnknownKind(t *testing.T) {
	path := writeConfig(t, `
account:
  start_cash: 50000
data:
  kind: csv
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown data.kind")
}

func TestLoad_NonPositiveStartCash(t *testing.T) {
	path := writeConfig(t, `
account:
  start_cash: 0
data:
  kind: synthetic
  symbol: ACME
  bars: 10
  start_price: 100
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "start_cash")
}

func TestLoad_BadPeriod(t *testing.T) {
	path := writeConfig(t, `
account:
  start_cash: 50000
data:
  kind: synthetic
  symbol: ACME
  bars: 10
  start_price: 100
  period: daily
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "data.period")
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
account:
  start_cash: 50000
data:
  kind: historical
  path: /data/bars.bin
  symbol: ACME
  from: 2024-01-01T00:00:00Z
  to: 2024-06-01T00:00:00Z
`)

	t.Setenv("PAPERBROKER_DATA_PATH", "/override/bars.bin")
	t.Setenv("PAPERBROKER_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/override/bars.bin", cfg.Data.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_NegativeMarginRate(t *testing.T) {
	path := writeConfig(t, `
account:
  start_cash: 50000
margins:
  ES: -1
data:
  kind: synthetic
  symbol: ACME
  bars: 10
  start_price: 100
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "margins.ES")
}
