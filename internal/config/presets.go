package config

import "sort"

// Presets are complete run configurations built on DefaultConfig.
var Presets = map[string]*Config{
	"supine": preset(func(c *Config) {
		c.Duration = 60
	}),
	"tilt": preset(func(c *Config) {
		c.Duration = 120
		c.Tilt = TiltConfig{Enabled: true, Angle: 75, Onset: 20, TimeToMax: 5, Duration: 60}
	}),
	"no-reflex": preset(func(c *Config) {
		c.Duration = 30
		c.Reflex = ReflexConfig{}
	}),
	"hemorrhage": preset(func(c *Config) {
		c.Duration = 90
		c.Params = map[string]float64{"total_blood_volume": 4650}
	}),
	"exercise": preset(func(c *Config) {
		c.Duration = 60
		c.Params = map[string]float64{
			"nominal_heart_rate":          110,
			"leg_micro_resistance":        1.8,
			"splanchnic_micro_resistance": 3.6,
			"abr_set_point":               100,
		}
	}),
}

func preset(edit func(*Config)) *Config {
	cfg := DefaultConfig()
	edit(cfg)
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
