package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"momentum/internal/engine"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, SourceCSV, cfg.Data.Source)
	assert.Equal(t, 14400, cfg.SearchSpace().Size())
	assert.Equal(t, string(engine.MissPolicyWarn), cfg.Settlement.OnMissing)
	assert.True(t, cfg.Sweep.StartingCash.Equal(decimal.NewFromInt(10000)))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown source", func(c *Config) { c.Data.Source = "sqlite" }},
		{"csv without prices file", func(c *Config) { c.Data.PricesFile = "" }},
		{"postgres without url", func(c *Config) { c.Data.Source = SourcePostgres }},
		{"bad start date", func(c *Config) { c.Data.Start = "01/02/2020" }},
		{"end before start", func(c *Config) { c.Data.Start, c.Data.End = "2021-01-01", "2020-01-01" }},
		{"zero runs", func(c *Config) { c.Sweep.Runs = 0 }},
		{"no starting cash", func(c *Config) { c.Sweep.StartingCash = decimal.Zero }},
		{"negative workers", func(c *Config) { c.Sweep.Workers = -1 }},
		{"J below one", func(c *Config) { c.Sweep.JMin = 0 }},
		{"K range inverted", func(c *Config) { c.Sweep.KMin, c.Sweep.KMax = 5, 2 }},
		{"ratio above one", func(c *Config) { c.Sweep.RatioMax = decimal.RequireFromString("1.5") }},
		{"zero ratio step", func(c *Config) { c.Sweep.RatioStep = decimal.Zero }},
		{"unknown miss policy", func(c *Config) { c.Settlement.OnMissing = "ignore" }},
		{"negative jump threshold", func(c *Config) { c.Settlement.JumpThreshold = decimal.NewFromInt(-1) }},
		{"files without dir", func(c *Config) { c.Output.Dir = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestValidateSearchSpaceWrapped(t *testing.T) {
	cfg := Default()
	cfg.Sweep.JMax = 0
	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, engine.ErrInvalidSearchSpace)
}

func TestSaveAndLoad(t *testing.T) {
	for _, name := range []string{"sweep.yaml", "sweep.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := Default()
			cfg.Sweep.Runs = 42
			cfg.Sweep.Seed = 7
			cfg.Sweep.StartingCash = decimal.RequireFromString("2500.5")
			cfg.Settlement.OnMissing = string(engine.MissPolicyAbort)
			cfg.Data.Start = "2020-01-01"
			require.NoError(t, cfg.SaveToFile(path))

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, 42, loaded.Sweep.Runs)
			assert.Equal(t, uint64(7), loaded.Sweep.Seed)
			assert.True(t, loaded.Sweep.StartingCash.Equal(decimal.RequireFromString("2500.5")))
			assert.True(t, loaded.Sweep.RatioStep.Equal(decimal.RequireFromString("0.01")))
			assert.Equal(t, string(engine.MissPolicyAbort), loaded.Settlement.OnMissing)

			r, err := loaded.DataRange()
			require.NoError(t, err)
			assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), r.Start)
			assert.True(t, r.End.IsZero())
		})
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("sweep:\n  runs: 5\n  j_max: 3\nsettlement:\n  at_maturity: true\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Sweep.Runs)
	assert.Equal(t, 3, cfg.Sweep.JMax)
	assert.Equal(t, 1, cfg.Sweep.JMin)
	assert.True(t, cfg.Settlement.AtMaturity)
	assert.Equal(t, "data/dummy_data.csv", cfg.Data.PricesFile)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sweep:\n  runs: 0\n"), 0o644))
	_, err = LoadFromFile(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	path = filepath.Join(t.TempDir(), "garbage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sweep: [unclosed"), 0o644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/prices")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	path := filepath.Join(t.TempDir(), "pg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data:\n  source: postgres\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@localhost:5432/prices", cfg.Data.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Sweep.Runs, cfg.Sweep.Runs)
}

func TestEngineConfigs(t *testing.T) {
	cfg := Default()
	cfg.Sweep.JMin, cfg.Sweep.JMax = 2, 4
	space := cfg.SearchSpace()
	assert.Equal(t, 2, space.JMin)
	assert.Equal(t, 4, space.JMax)
	assert.NotNil(t, cfg.SweepConfig())
	assert.NotNil(t, cfg.SettlementConfig())
	assert.NotNil(t, cfg.ReportingConfig())
}
