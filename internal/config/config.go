package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	specs "github.com/chrisconley/ocpirating/specs"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of a rating request (YAML).
type Config struct {
	Session SessionConfig `yaml:"session"`

	// Optional: explicit metering samples. Take precedence over session.samples.
	Samples []SampleConfig `yaml:"samples"`

	// Optional: candidate tariffs. Inline tariffs come first, then tariff_files
	// in order. Paths are relative to the config file directory.
	Tariffs     []TariffConfig `yaml:"tariffs"`
	TariffFiles []string       `yaml:"tariff_files"`

	Extrapolate bool `yaml:"extrapolate"`
}

type SessionConfig struct {
	ID         string            `yaml:"id"`
	Start      string            `yaml:"start"`
	End        string            `yaml:"end"`
	TimeZone   string            `yaml:"time_zone"`
	Samples    []SampleConfig    `yaml:"samples"`
	SignedData *SignedDataConfig `yaml:"signed_data"`

	// Optional: periods already reported by the CPO. Only the ENERGY
	// dimension of the last one is read, as a last-resort energy total.
	ChargingPeriods []ChargingPeriodConfig `yaml:"charging_periods"`

	Tariffs []TariffConfig `yaml:"tariffs"`
}

type ChargingPeriodConfig struct {
	Dimensions []DimensionConfig `yaml:"dimensions"`
}

type DimensionConfig struct {
	Type   string `yaml:"type"`
	Volume string `yaml:"volume"`
}

type SampleConfig struct {
	Timestamp string `yaml:"timestamp"`
	EnergyWh  string `yaml:"energy_wh"`
}

type SignedDataConfig struct {
	StartValue string `yaml:"start_value"`
	StopValue  string `yaml:"stop_value"`
}

type TariffConfig struct {
	ID       string          `yaml:"id"`
	Currency string          `yaml:"currency"`
	Elements []ElementConfig `yaml:"elements"`
}

type ElementConfig struct {
	PriceComponents []PriceComponentConfig `yaml:"price_components"`
	Restrictions    *RestrictionsConfig    `yaml:"restrictions"`
}

type PriceComponentConfig struct {
	Type     string `yaml:"type"`
	Price    string `yaml:"price"`
	StepSize int    `yaml:"step_size"`
}

type RestrictionsConfig struct {
	StartTime   string   `yaml:"start_time"`
	EndTime     string   `yaml:"end_time"`
	StartDate   string   `yaml:"start_date"`
	EndDate     string   `yaml:"end_date"`
	MinKWh      string   `yaml:"min_kwh"`
	MaxKWh      string   `yaml:"max_kwh"`
	MinCurrent  string   `yaml:"min_current"`
	MaxCurrent  string   `yaml:"max_current"`
	MinPower    string   `yaml:"min_power"`
	MaxPower    string   `yaml:"max_power"`
	MinDuration *int     `yaml:"min_duration"`
	MaxDuration *int     `yaml:"max_duration"`
	DayOfWeek   []string `yaml:"day_of_week"`
}

// Request is a rating request ready to hand to the engine.
type Request struct {
	Session     specs.SessionSpec
	Samples     []specs.MeteringSampleSpec
	Tariffs     []specs.TariffSpec
	Extrapolate bool
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads the config and resolves tariff_files into Tariffs, but
// does not validate it.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, file := range c.TariffFiles {
		tariffPath := file
		if !filepath.IsAbs(tariffPath) {
			// Prefer the config file directory, fall back to cwd.
			cand := filepath.Join(filepath.Dir(path), tariffPath)
			if _, err := os.Stat(cand); err == nil {
				tariffPath = cand
			}
		}
		tariff, err := loadTariffFile(tariffPath)
		if err != nil {
			return nil, err
		}
		c.Tariffs = append(c.Tariffs, tariff)
	}
	return &c, nil
}

func loadTariffFile(path string) (TariffConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return TariffConfig{}, err
	}
	var t TariffConfig
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return TariffConfig{}, fmt.Errorf("parse tariff file %s: %w", path, err)
	}
	return t, nil
}

// Validate checks the request is well-formed enough to convert. Domain rules
// are left to the engine.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Session.Start == "" {
		return errors.New("session.start is required")
	}
	if c.Session.End == "" {
		return errors.New("session.end is required")
	}
	_, err := c.ToRequest()
	return err
}

func (c *Config) ToRequest() (Request, error) {
	session, err := c.Session.ToSpec()
	if err != nil {
		return Request{}, err
	}
	samples, err := toSampleSpecs(c.Samples)
	if err != nil {
		return Request{}, fmt.Errorf("samples: %w", err)
	}
	return Request{
		Session:     session,
		Samples:     samples,
		Tariffs:     toTariffSpecs(c.Tariffs),
		Extrapolate: c.Extrapolate,
	}, nil
}

func (s SessionConfig) ToSpec() (specs.SessionSpec, error) {
	start, err := parseTimestamp(s.Start)
	if err != nil {
		return specs.SessionSpec{}, fmt.Errorf("session.start: %w", err)
	}
	end, err := parseTimestamp(s.End)
	if err != nil {
		return specs.SessionSpec{}, fmt.Errorf("session.end: %w", err)
	}
	samples, err := toSampleSpecs(s.Samples)
	if err != nil {
		return specs.SessionSpec{}, fmt.Errorf("session.samples: %w", err)
	}

	spec := specs.SessionSpec{
		ID:              s.ID,
		Start:           start,
		End:             end,
		TimeZone:        s.TimeZone,
		MeteringSamples: samples,
		Tariffs:         toTariffSpecs(s.Tariffs),
	}
	for _, period := range s.ChargingPeriods {
		dimensions := make([]specs.CdrDimensionSpec, 0, len(period.Dimensions))
		for _, d := range period.Dimensions {
			dimensions = append(dimensions, specs.CdrDimensionSpec{Type: d.Type, Volume: d.Volume})
		}
		spec.ChargingPeriods = append(spec.ChargingPeriods, specs.ChargingPeriodSpec{Dimensions: dimensions})
	}
	if s.SignedData != nil {
		spec.SignedData = &specs.SignedMeterDataSpec{
			StartValue: s.SignedData.StartValue,
			StopValue:  s.SignedData.StopValue,
		}
	}
	return spec, nil
}

func (t TariffConfig) ToSpec() specs.TariffSpec {
	spec := specs.TariffSpec{
		ID:       t.ID,
		Currency: t.Currency,
		Elements: make([]specs.TariffElementSpec, 0, len(t.Elements)),
	}
	for _, e := range t.Elements {
		element := specs.TariffElementSpec{
			PriceComponents: make([]specs.PriceComponentSpec, 0, len(e.PriceComponents)),
		}
		for _, pc := range e.PriceComponents {
			element.PriceComponents = append(element.PriceComponents, specs.PriceComponentSpec{
				Type:     pc.Type,
				Price:    pc.Price,
				StepSize: pc.StepSize,
			})
		}
		if r := e.Restrictions; r != nil {
			element.Restrictions = &specs.TariffRestrictionsSpec{
				StartTime:   r.StartTime,
				EndTime:     r.EndTime,
				StartDate:   r.StartDate,
				EndDate:     r.EndDate,
				MinKWh:      r.MinKWh,
				MaxKWh:      r.MaxKWh,
				MinCurrent:  r.MinCurrent,
				MaxCurrent:  r.MaxCurrent,
				MinPower:    r.MinPower,
				MaxPower:    r.MaxPower,
				MinDuration: r.MinDuration,
				MaxDuration: r.MaxDuration,
				DayOfWeek:   r.DayOfWeek,
			}
		}
		spec.Elements = append(spec.Elements, element)
	}
	return spec
}

func toTariffSpecs(tariffs []TariffConfig) []specs.TariffSpec {
	if len(tariffs) == 0 {
		return nil
	}
	out := make([]specs.TariffSpec, 0, len(tariffs))
	for _, t := range tariffs {
		out = append(out, t.ToSpec())
	}
	return out
}

func toSampleSpecs(samples []SampleConfig) ([]specs.MeteringSampleSpec, error) {
	if len(samples) == 0 {
		return nil, nil
	}
	out := make([]specs.MeteringSampleSpec, 0, len(samples))
	for i, s := range samples {
		ts, err := parseTimestamp(s.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		out = append(out, specs.NewMeteringSample(s.EnergyWh, ts))
	}
	return out, nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
