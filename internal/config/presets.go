package config

import (
	"math"
	"sort"
)

func preset(mutate func(c *Config)) *Config {
	c := DefaultConfig()
	mutate(c)
	return c
}

var Presets = map[string]*Config{
	"stock": DefaultConfig(),
	"gentle": preset(func(c *Config) {
		c.InitState = StateConfig{Phi1: 0.3, Phi2: 0.3}
		c.Duration = 30
	}),
	"symmetric": preset(func(c *Config) {
		c.Params = ParamsConfig{L1: 1, L2: 1, M1: 1, M2: 1}
		c.InitState = StateConfig{Phi1: 1.5, Phi2: 1.5}
		c.Step = 0.005
		c.Duration = 30
	}),
	"chaos": preset(func(c *Config) {
		c.Params = ParamsConfig{L1: 1, L2: 1, M1: 1, M2: 1}
		c.InitState = StateConfig{Phi1: 3, Phi2: 3}
		c.Step = 0.005
		c.Duration = 60
	}),
	"heavy_tip": preset(func(c *Config) {
		c.Params = ParamsConfig{L1: 150, L2: 150, M1: 5, M2: 100}
		c.InitState = StateConfig{Phi1: math.Pi / 2, Phi2: 0}
		c.Duration = 30
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
