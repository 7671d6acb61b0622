package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	EnvStep       = "DPSIM_STEP"
	EnvHorizon    = "DPSIM_HORIZON"
	EnvDuration   = "DPSIM_DURATION"
	EnvIntegrator = "DPSIM_INTEGRATOR"
)

// ApplyEnv loads the optional dotenv files, then overrides the timing
// fields from the environment. Variables already set in the process
// environment win over the files.
func ApplyEnv(cfg *Config, files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	for _, v := range []struct {
		key string
		dst *float64
	}{
		{EnvStep, &cfg.Step},
		{EnvHorizon, &cfg.Horizon},
		{EnvDuration, &cfg.Duration},
	} {
		if err := getEnvFloat(v.key, v.dst); err != nil {
			return err
		}
	}
	if name := os.Getenv(EnvIntegrator); name != "" {
		cfg.Integrator = name
	}
	return nil
}

func getEnvFloat(key string, dst *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}
