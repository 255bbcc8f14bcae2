package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"momentum/internal/engine"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config is the complete configuration of a sweep.
type Config struct {
	Data       DataConfig       `json:"data" yaml:"data"`
	Sweep      SweepConfig      `json:"sweep" yaml:"sweep"`
	Settlement SettlementConfig `json:"settlement" yaml:"settlement"`
	Log        LogConfig        `json:"log" yaml:"log"`
	Output     OutputConfig     `json:"output" yaml:"output"`
}

// DataConfig selects the price source. Start and End are YYYY-MM-DD and may be
// left empty.
type DataConfig struct {
	Source       string `json:"source" yaml:"source"`
	PricesFile   string `json:"prices_file,omitempty" yaml:"prices_file,omitempty"`
	CurrencyFile string `json:"currency_file,omitempty" yaml:"currency_file,omitempty"`
	DateLayout   string `json:"date_layout,omitempty" yaml:"date_layout,omitempty"`
	DatabaseURL  string `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	Start        string `json:"start,omitempty" yaml:"start,omitempty"`
	End          string `json:"end,omitempty" yaml:"end,omitempty"`
}

type SweepConfig struct {
	Runs         int             `json:"runs" yaml:"runs"`
	StartingCash decimal.Decimal `json:"starting_cash" yaml:"starting_cash"`
	Workers      int             `json:"workers" yaml:"workers"`
	Seed         uint64          `json:"seed" yaml:"seed"`
	JMin         int             `json:"j_min" yaml:"j_min"`
	JMax         int             `json:"j_max" yaml:"j_max"`
	KMin         int             `json:"k_min" yaml:"k_min"`
	KMax         int             `json:"k_max" yaml:"k_max"`
	RatioMin     decimal.Decimal `json:"ratio_min" yaml:"ratio_min"`
	RatioMax     decimal.Decimal `json:"ratio_max" yaml:"ratio_max"`
	RatioStep    decimal.Decimal `json:"ratio_step" yaml:"ratio_step"`
	RiskFreeRate decimal.Decimal `json:"risk_free_rate" yaml:"risk_free_rate"`
}

type SettlementConfig struct {
	OnMissing     string          `json:"on_missing" yaml:"on_missing"` // "warn" or "abort"
	AtMaturity    bool            `json:"at_maturity" yaml:"at_maturity"`
	JumpThreshold decimal.Decimal `json:"jump_threshold" yaml:"jump_threshold"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "json" or "console"
}

type OutputConfig struct {
	Dir        string `json:"dir" yaml:"dir"`
	ReportName string `json:"report_name" yaml:"report_name"`
	WriteFiles bool   `json:"write_files" yaml:"write_files"`
	Progress   bool   `json:"progress" yaml:"progress"`
}

// Default returns a configuration that sweeps the full J, K and ratio space
// over data/dummy_data.csv.
func Default() *Config {
	space := engine.DefaultSearchSpace()
	return &Config{
		Data: DataConfig{
			Source:       SourceCSV,
			PricesFile:   "data/dummy_data.csv",
			CurrencyFile: "data/code_to_currency.json",
			DateLayout:   time.DateOnly,
		},
		Sweep: SweepConfig{
			Runs:         1000,
			StartingCash: decimal.NewFromInt(10000),
			JMin:         space.JMin,
			JMax:         space.JMax,
			KMin:         space.KMin,
			KMax:         space.KMax,
			RatioMin:     space.RatioMin,
			RatioMax:     space.RatioMax,
			RatioStep:    space.RatioStep,
			RiskFreeRate: decimal.RequireFromString("0.02"),
		},
		Settlement: SettlementConfig{
			OnMissing:     string(engine.MissPolicyWarn),
			JumpThreshold: decimal.RequireFromString("0.15"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{
			Dir:        "reports",
			ReportName: "sweep",
			WriteFiles: true,
			Progress:   true,
		},
	}
}

// Load reads the optional .env file, then the config file at path (Default
// when path is empty), then applies environment overrides.
func Load(path string) (*Config, error) {
	loadEnvFile()

	cfg := Default()
	if path != "" {
		var err error
		cfg, err = readFile(path)
		if err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads and validates a YAML or JSON configuration file.
func LoadFromFile(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Keys missing from the file keep their defaults.
	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", jsonErr)
		}
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Data.Source {
	case SourceCSV:
		if c.Data.PricesFile == "" {
			return fmt.Errorf("%w: data.prices_file is required for csv source", ErrInvalidConfig)
		}
	case SourcePostgres:
		if c.Data.DatabaseURL == "" {
			return fmt.Errorf("%w: data.database_url (or DATABASE_URL) is required for postgres source", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: data.source must be 'csv' or 'postgres', got %q", ErrInvalidConfig, c.Data.Source)
	}

	dataRange, err := c.DataRange()
	if err != nil {
		return err
	}
	if !dataRange.Start.IsZero() && !dataRange.End.IsZero() && dataRange.End.Before(dataRange.Start) {
		return fmt.Errorf("%w: data.end is before data.start", ErrInvalidConfig)
	}

	if c.Sweep.Runs < 1 {
		return fmt.Errorf("%w: sweep.runs must be positive", ErrInvalidConfig)
	}
	if !c.Sweep.StartingCash.IsPositive() {
		return fmt.Errorf("%w: sweep.starting_cash must be positive", ErrInvalidConfig)
	}
	if c.Sweep.Workers < 0 {
		return fmt.Errorf("%w: sweep.workers must not be negative", ErrInvalidConfig)
	}
	if err := c.SearchSpace().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if !engine.MissPolicy(c.Settlement.OnMissing).Valid() {
		return fmt.Errorf("%w: settlement.on_missing must be 'warn' or 'abort'", ErrInvalidConfig)
	}
	if c.Settlement.JumpThreshold.IsNegative() {
		return fmt.Errorf("%w: settlement.jump_threshold must not be negative", ErrInvalidConfig)
	}

	if c.Output.WriteFiles && (c.Output.Dir == "" || c.Output.ReportName == "") {
		return fmt.Errorf("%w: output.dir and output.report_name required to write files", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) SearchSpace() engine.SearchSpace {
	return engine.SearchSpace{
		JMin:      c.Sweep.JMin,
		JMax:      c.Sweep.JMax,
		KMin:      c.Sweep.KMin,
		KMax:      c.Sweep.KMax,
		RatioMin:  c.Sweep.RatioMin,
		RatioMax:  c.Sweep.RatioMax,
		RatioStep: c.Sweep.RatioStep,
	}
}

func (c *Config) DataRange() (engine.DataRange, error) {
	var r engine.DataRange
	var err error
	if c.Data.Start != "" {
		if r.Start, err = time.Parse(time.DateOnly, c.Data.Start); err != nil {
			return r, fmt.Errorf("%w: data.start: %w", ErrInvalidConfig, err)
		}
	}
	if c.Data.End != "" {
		if r.End, err = time.Parse(time.DateOnly, c.Data.End); err != nil {
			return r, fmt.Errorf("%w: data.end: %w", ErrInvalidConfig, err)
		}
	}
	return r, nil
}

func (c *Config) SweepConfig() *engine.SweepConfig {
	return engine.NewSweepConfig(c.Sweep.Runs, c.Sweep.StartingCash, c.Sweep.Workers, c.Sweep.Seed, c.SearchSpace())
}

func (c *Config) SettlementConfig() *engine.SettlementConfig {
	return engine.NewSettlementConfig(engine.MissPolicy(c.Settlement.OnMissing), c.Settlement.AtMaturity, c.Settlement.JumpThreshold)
}

func (c *Config) ReportingConfig() *engine.ReportingConfig {
	return engine.NewReportingConfig(c.Sweep.RiskFreeRate, c.Output.WriteFiles, c.Output.ReportName, c.Output.Dir, c.Output.Progress)
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Data.DatabaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

// loadEnvFile loads .env from the working directory or next to the executable.
// Variables already set in the environment win.
func loadEnvFile() {
	paths := []string{".env"}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), ".env"))
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}
