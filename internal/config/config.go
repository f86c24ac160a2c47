package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/cvsim/internal/cardio"
)

const (
	DefaultDt          = cardio.DefaultStepSize
	DefaultDuration    = 30.0
	DefaultCompression = 16
	DefaultDecimation  = "turning_point"
	DefaultLogLevel    = "info"
	DefaultNATSURL     = "nats://127.0.0.1:4222"
	DefaultSubject     = "cvsim.samples"
)

type Config struct {
	Duration         float64            `yaml:"duration"`
	Dt               float64            `yaml:"dt"`
	Compression      int                `yaml:"compression"`
	Decimation       string             `yaml:"decimation"`
	VolumeCorrection bool               `yaml:"volume_correction"`
	Reflex           ReflexConfig       `yaml:"reflex"`
	Tilt             TiltConfig         `yaml:"tilt"`
	Params           map[string]float64 `yaml:"params,omitempty"`
	LogLevel         string             `yaml:"log_level"`
	Stream           StreamConfig       `yaml:"stream"`
}

type ReflexConfig struct {
	Arterial        bool `yaml:"arterial"`
	Cardiopulmonary bool `yaml:"cardiopulmonary"`
}

type TiltConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Angle     float64 `yaml:"angle"`
	Onset     float64 `yaml:"onset"`
	TimeToMax float64 `yaml:"time_to_max"`
	Duration  float64 `yaml:"duration"`
	Stop      float64 `yaml:"stop,omitempty"`
}

type StreamConfig struct {
	URL     string   `yaml:"url"`
	Subject string   `yaml:"subject"`
	Series  []string `yaml:"series,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Duration:    DefaultDuration,
		Dt:          DefaultDt,
		Compression: DefaultCompression,
		Decimation:  DefaultDecimation,
		Reflex: ReflexConfig{
			Arterial:        true,
			Cardiopulmonary: true,
		},
		Tilt: TiltConfig{
			Angle:     cardio.TiltAngle.Default(),
			Onset:     cardio.TiltOnset.Default(),
			TimeToMax: cardio.TiltTime.Default(),
			Duration:  cardio.TiltDuration.Default(),
		},
		LogLevel: DefaultLogLevel,
		Stream: StreamConfig{
			URL:     DefaultNATSURL,
			Subject: DefaultSubject,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run settings. Parameter values are checked when they
// are applied to a parameter set.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if c.Compression < 1 {
		return fmt.Errorf("compression must be at least 1, got %d", c.Compression)
	}
	if c.Decimation == DefaultDecimation && c.Compression&(c.Compression-1) != 0 {
		return fmt.Errorf("turning point compression must be a power of two, got %d", c.Compression)
	}
	switch c.Decimation {
	case DefaultDecimation, "none":
	default:
		return fmt.Errorf("unknown decimation %q", c.Decimation)
	}
	if c.Tilt.Stop < 0 {
		return fmt.Errorf("tilt stop must not be negative, got %f", c.Tilt.Stop)
	}
	return nil
}

// Flags returns the engine switches selected by the configuration.
func (c *Config) Flags() cardio.Flags {
	return cardio.Flags{
		ArterialBaroreflex: c.Reflex.Arterial,
		Cardiopulmonary:    c.Reflex.Cardiopulmonary,
		Tilt:               c.Tilt.Enabled,
		TiltStop:           c.Tilt.Stop,
	}
}

// BuildParams starts from the default parameter set, applies the tilt
// schedule and then the named overrides.
func (c *Config) BuildParams() (cardio.Params, error) {
	p := cardio.DefaultParams()
	values := map[string]float64{
		cardio.TiltAngle.String():    c.Tilt.Angle,
		cardio.TiltOnset.String():    c.Tilt.Onset,
		cardio.TiltTime.String():     c.Tilt.TimeToMax,
		cardio.TiltDuration.String(): c.Tilt.Duration,
	}
	for name, v := range c.Params {
		values[name] = v
	}
	if err := p.Apply(values); err != nil {
		return p, fmt.Errorf("config params: %w", err)
	}
	return p, nil
}

// Samples returns the number of samples covering the configured duration.
func (c *Config) Samples() int {
	perSample := c.Dt * float64(c.Compression)
	n := int(c.Duration/perSample + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	out.Stream.Series = append([]string(nil), c.Stream.Series...)
	return &out
}
