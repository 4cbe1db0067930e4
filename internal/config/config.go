package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"paperbroker/pkg/margin"
	"paperbroker/pkg/utility/fixed"
)

// Config is the top-level configuration for a backtest run.
type Config struct {
	Account   Account            `yaml:"account"`
	Fees      Fees               `yaml:"fees"`
	Execution Execution          `yaml:"execution"`
	Margins   map[string]float64 `yaml:"margins"`
	Data      Data               `yaml:"data"`
	Audit     Audit              `yaml:"audit"`
	Logging   Logging            `yaml:"logging"`
}

type Account struct {
	StartCash float64 `yaml:"start_cash"`
}

// Fees mirrors the brokerage commission model: a flat charge per order plus
// a charge per contract or share.
type Fees struct {
	PerOrder    float64 `yaml:"per_order"`
	PerContract float64 `yaml:"per_contract"`
}

type Execution struct {
	Slippage         float64 `yaml:"slippage"`
	MaxParticipation float64 `yaml:"max_participation"`
}

// Data selects and parametrizes the bar source. Kind is one of "historical",
// "duckdb" or "synthetic"; fields that do not apply to the chosen kind are
// ignored.
type Data struct {
	Kind   string    `yaml:"kind"`
	Path   string    `yaml:"path"`
	Symbol string    `yaml:"symbol"`
	Period string    `yaml:"period"`
	From   time.Time `yaml:"from"`
	To     time.Time `yaml:"to"`

	// Synthetic generator parameters.
	Seed       int64   `yaml:"seed"`
	Bars       int64   `yaml:"bars"`
	StartPrice float64 `yaml:"start_price"`
	Mu         float64 `yaml:"mu"`
	Sigma      float64 `yaml:"sigma"`
}

type Audit struct {
	MinSnapshotInterval string `yaml:"min_snapshot_interval"`
}

type Logging struct {
	Level string `yaml:"level"`
	Dev   bool   `yaml:"dev"`
}

// Load reads the YAML configuration file at the given path, parses it and
// applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PAPERBROKER_DATA_PATH"); v != "" {
		cfg.Data.Path = v
	}
	if v := os.Getenv("PAPERBROKER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func (c *Config) Validate() error {
	if c.Account.StartCash <= 0 {
		return fmt.Errorf("account.start_cash must be positive, got %v", c.Account.StartCash)
	}

	switch c.Data.Kind {
	case "historical", "duckdb":
		if c.Data.Path == "" {
			return fmt.Errorf("data.path is required for kind %q", c.Data.Kind)
		}
		if c.Data.Symbol == "" {
			return fmt.Errorf("data.symbol is required for kind %q", c.Data.Kind)
		}
		if !c.Data.From.Before(c.Data.To) {
			return fmt.Errorf("data.from must precede data.to")
		}
	case "synthetic":
		if c.Data.Bars <= 0 {
			return fmt.Errorf("data.bars must be positive for synthetic data")
		}
		if c.Data.StartPrice <= 0 {
			return fmt.Errorf("data.start_price must be positive for synthetic data")
		}
		if c.Data.Symbol == "" {
			return fmt.Errorf("data.symbol is required for synthetic data")
		}
	default:
		return fmt.Errorf("unknown data.kind %q", c.Data.Kind)
	}

	if c.Data.Period != "" {
		if _, err := time.ParseDuration(c.Data.Period); err != nil {
			return fmt.Errorf("data.period: %w", err)
		}
	}
	if c.Audit.MinSnapshotInterval != "" {
		if _, err := time.ParseDuration(c.Audit.MinSnapshotInterval); err != nil {
			return fmt.Errorf("audit.min_snapshot_interval: %w", err)
		}
	}

	for root, rate := range c.Margins {
		if rate <= 0 {
			return fmt.Errorf("margins.%s must be positive, got %v", root, rate)
		}
	}
	return nil
}

// BarPeriod returns the configured bar period, defaulting to one day.
func (c *Config) BarPeriod() time.Duration {
	if c.Data.Period == "" {
		return 24 * time.Hour
	}
	d, _ := time.ParseDuration(c.Data.Period)
	return d
}

// SnapshotInterval returns the audit snapshot gate, defaulting to daily.
func (c *Config) SnapshotInterval() time.Duration {
	if c.Audit.MinSnapshotInterval == "" {
		return 24 * time.Hour
	}
	d, _ := time.ParseDuration(c.Audit.MinSnapshotInterval)
	return d
}

// MarginTable converts the configured per-root margin rates to the ledger's
// fixed-point table.
func (c *Config) MarginTable() margin.Table {
	table := make(margin.Table, len(c.Margins))
	for root, rate := range c.Margins {
		table[root] = fixed.FromFloat64(rate)
	}
	return table
}

func (c *Config) FeeSchedule() margin.FeeSchedule {
	return margin.FeeSchedule{
		PerOrder:    fixed.FromFloat64(c.Fees.PerOrder),
		PerContract: fixed.FromFloat64(c.Fees.PerContract),
	}
}

func (c *Config) StartCash() fixed.Point {
	return fixed.FromFloat64(c.Account.StartCash)
}
