package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/zipafford/internal/config"
	"github.com/sells-group/zipafford/internal/model"
)

const testHousingJSON = `{
  "meta": {"zhvi_date": "2025-06-30", "zori_date": "2025-06-30", "fetched_at": "2025-07-01"},
  "zips": {
    "80202": {"name": "Denver", "state": "CO", "median_home_value": 550000, "median_rent": 2100},
    "80012": {"name": "Aurora", "state": "CO", "median_home_value": 300000, "median_rent": 1700},
    "44101": {"name": "Cleveland", "state": "OH", "median_home_value": 150000, "median_rent": 1000},
    "1001":  {"name": "Agawam", "state": "ma", "median_home_value": 350000, "median_rent": null}
  }
}`

const testCentroidsCSV = `zip,lat,lon
80202,39.75,-104.99
80012,39.70,-104.83
44101,41.50,-81.69
01001,42.06,-72.61
`

const testIsochrone = `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[-105.1,39.5],[-104.7,39.5],[-104.7,40.0],[-105.1,40.0],[-105.1,39.5]]]}}`

// useTestConfig points cfg at fixture tables and a temp SQLite store.
func useTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	housing := filepath.Join(dir, "housing.json")
	centroids := filepath.Join(dir, "centroids.csv")
	require.NoError(t, os.WriteFile(housing, []byte(testHousingJSON), 0o644))
	require.NoError(t, os.WriteFile(centroids, []byte(testCentroidsCSV), 0o644))

	defaults := model.DefaultInputs()
	defaults.AnnualIncome = model.Float64(90000)

	prev := cfg
	cfg = &config.Config{
		Data: config.DataConfig{
			HousingPath:   housing,
			CentroidsPath: centroids,
			TempDir:       filepath.Join(dir, "tmp"),
			UserAgent:     "zipafford-test",
			TimeoutSecs:   5,
		},
		Cache:    config.CacheConfig{MaxEntries: 4},
		Defaults: defaults,
		Store:    config.StoreConfig{Driver: "sqlite", SQLitePath: filepath.Join(dir, "test.db")},
		Server:   config.ServerConfig{Port: 8080},
		Log:      config.LogConfig{Level: "info", Format: "json"},
	}
	t.Cleanup(func() { cfg = prev })
	return dir
}

// setFlags sets flags on cmd and restores their defaults after the test.
func setFlags(t *testing.T, cmd *cobra.Command, flags map[string]string) {
	t.Helper()
	for name, val := range flags {
		require.NoError(t, cmd.Flags().Set(name, val), name)
	}
	t.Cleanup(func() {
		for name := range flags {
			f := cmd.Flags().Lookup(name)
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
}
