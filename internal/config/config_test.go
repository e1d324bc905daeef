package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const requestYAML = `
session:
  id: sess-42
  start: "2024-03-12T10:00:00Z"
  end: "2024-03-12T11:00:00Z"
  time_zone: Europe/Berlin
  samples:
    - { timestamp: "2024-03-12T10:00:00Z", energy_wh: "0" }
    - { timestamp: "2024-03-12T11:00:00Z", energy_wh: "5000" }
tariffs:
  - id: inline
    currency: EUR
    elements:
      - price_components:
          - { type: ENERGY, price: "0.50", step_size: 1 }
        restrictions:
          max_duration: 1800
          day_of_week: [TUESDAY]
tariff_files:
  - tariffs/fallback.yaml
`

const fallbackTariffYAML = `
id: fallback
currency: EUR
elements:
  - price_components:
      - { type: TIME, price: "1.20", step_size: 60 }
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	t.Run("loads request and resolves tariff files relative to the config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "request.yaml")
		writeFile(t, path, requestYAML)
		writeFile(t, filepath.Join(dir, "tariffs", "fallback.yaml"), fallbackTariffYAML)

		cfg, err := Load(path)
		require.NoError(t, err)
		req, err := cfg.ToRequest()
		require.NoError(t, err)

		assert.Equal(t, "sess-42", req.Session.ID)
		assert.Equal(t, time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC), req.Session.Start.UTC())
		assert.Equal(t, "Europe/Berlin", req.Session.TimeZone)
		require.Len(t, req.Session.MeteringSamples, 2)
		assert.Equal(t, "5000", req.Session.MeteringSamples[1].EnergyWh)
		assert.Nil(t, req.Samples)
		assert.False(t, req.Extrapolate)

		require.Len(t, req.Tariffs, 2)
		assert.Equal(t, "inline", req.Tariffs[0].ID)
		restrictions := req.Tariffs[0].Elements[0].Restrictions
		require.NotNil(t, restrictions)
		require.NotNil(t, restrictions.MaxDuration)
		assert.Equal(t, 1800, *restrictions.MaxDuration)
		assert.Equal(t, []string{"TUESDAY"}, restrictions.DayOfWeek)

		assert.Equal(t, "fallback", req.Tariffs[1].ID)
		assert.Equal(t, "TIME", req.Tariffs[1].Elements[0].PriceComponents[0].Type)
		assert.Equal(t, 60, req.Tariffs[1].Elements[0].PriceComponents[0].StepSize)
	})

	t.Run("maps signed data", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "request.yaml")
		writeFile(t, path, `
session:
  start: "2024-03-12T10:00:00Z"
  end: "2024-03-12T11:00:00Z"
  signed_data: { start_value: "100", stop_value: "900" }
extrapolate: true
`)

		cfg, err := Load(path)
		require.NoError(t, err)
		req, err := cfg.ToRequest()
		require.NoError(t, err)

		require.NotNil(t, req.Session.SignedData)
		assert.Equal(t, "900", req.Session.SignedData.StopValue)
		assert.True(t, req.Extrapolate)
	})

	t.Run("maps reported charging period dimensions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "request.yaml")
		writeFile(t, path, `
session:
  start: "2024-03-12T10:00:00Z"
  end: "2024-03-12T11:00:00Z"
  charging_periods:
    - dimensions: [{ type: ENERGY, volume: "3.2" }]
    - dimensions:
        - { type: TIME, volume: "1" }
        - { type: ENERGY, volume: "7.5" }
`)

		cfg, err := Load(path)
		require.NoError(t, err)
		req, err := cfg.ToRequest()
		require.NoError(t, err)

		require.Len(t, req.Session.ChargingPeriods, 2)
		last := req.Session.ChargingPeriods[1]
		require.Len(t, last.Dimensions, 2)
		assert.Equal(t, "ENERGY", last.Dimensions[1].Type)
		assert.Equal(t, "7.5", last.Dimensions[1].Volume)
		assert.Nil(t, req.Session.MeteringSamples)
	})

	t.Run("requires session bounds", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "request.yaml")
		writeFile(t, path, "session:\n  id: x\n")

		_, err := Load(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "session.start is required")
	})

	t.Run("rejects malformed timestamps", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "request.yaml")
		writeFile(t, path, `
session:
  start: "yesterday"
  end: "2024-03-12T11:00:00Z"
`)

		_, err := Load(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "session.start")
	})

	t.Run("fails on missing tariff file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "request.yaml")
		writeFile(t, path, `
session:
  start: "2024-03-12T10:00:00Z"
  end: "2024-03-12T11:00:00Z"
tariff_files: [nope.yaml]
`)

		_, err := Load(path)

		assert.Error(t, err)
	})
}
