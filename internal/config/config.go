package config

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/kaminglui/circuit-sim/internal/consts"
	"github.com/kaminglui/circuit-sim/pkg/circuit"
	"github.com/kaminglui/circuit-sim/pkg/matrix"
)

// Config holds solver and runner settings for one circuitsim invocation.
// Values are populated from .circuitsim.yaml, CIRCUITSIM_* env vars, and CLI
// flags.
type Config struct {
	VTol           float64 `mapstructure:"vtol"`
	ITol           float64 `mapstructure:"itol"`
	MaxNewtonIters int     `mapstructure:"max_newton_iters"`
	Dt             float64 `mapstructure:"dt"`
	DtMin          float64 `mapstructure:"dt_min"`
	DtMax          float64 `mapstructure:"dt_max"`
	Gmin           float64 `mapstructure:"gmin"`
	Backend        string  `mapstructure:"backend"`
	Workers        int     `mapstructure:"workers"`
	Verbose        bool    `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("vtol", consts.VTol)
	viper.SetDefault("itol", consts.ITol)
	viper.SetDefault("max_newton_iters", consts.MaxNewtonIters)
	viper.SetDefault("dt", consts.TimeStep)
	viper.SetDefault("dt_min", consts.DtMin)
	viper.SetDefault("dt_max", consts.DtMax)
	viper.SetDefault("gmin", consts.Gmin)
	viper.SetDefault("backend", matrix.DenseBackend.String())
	viper.SetDefault("workers", 0)
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := matrix.ParseBackend(c.Backend); err != nil {
		return fmt.Errorf("config backend: %w", err)
	}
	if c.DtMin <= 0 || c.DtMax < c.DtMin {
		return fmt.Errorf("config: dt bounds [%g, %g] invalid", c.DtMin, c.DtMax)
	}
	if c.Gmin < 0 {
		return fmt.Errorf("config: gmin %g is negative", c.Gmin)
	}
	return nil
}

// SolverOptions converts the configuration into solver options. logger may be
// nil.
func (c Config) SolverOptions(logger *slog.Logger) []circuit.Option {
	backend, _ := matrix.ParseBackend(c.Backend)
	return []circuit.Option{
		circuit.WithTolerances(c.VTol, c.ITol),
		circuit.WithMaxNewtonIters(c.MaxNewtonIters),
		circuit.WithStepBounds(c.DtMin, c.DtMax),
		circuit.WithTimeStep(c.Dt),
		circuit.WithGmin(c.Gmin),
		circuit.WithBackend(backend),
		circuit.WithLogger(logger),
	}
}
