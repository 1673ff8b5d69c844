package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kaminglui/circuit-sim/internal/config"
	"github.com/kaminglui/circuit-sim/pkg/netlist"
)

var rootCmd = &cobra.Command{
	Use:   "circuitsim",
	Short: "Modified nodal analysis circuit simulator",
	Long: `circuitsim solves schematics (.toml, .json) and SPICE decks (.cir, .sp)
with Newton-Raphson over a modified nodal analysis system.`,
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .circuitsim.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging, including Newton residuals")
	rootCmd.PersistentFlags().String("backend", "", "matrix backend: dense or sparse")
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".circuitsim")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("CIRCUITSIM")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("backend", rootCmd.PersistentFlags().Lookup("backend"))

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// environment is what every simulation command needs before it can run.
type environment struct {
	cfg        config.Config
	log        *slog.Logger
	netlist    *netlist.Netlist
	directives *netlist.Directives
}

func loadEnvironment(cmd *cobra.Command, path string) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	nl, dir, err := netlist.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("circuit loaded", "file", path, "nodes", len(nl.Nodes)-1, "devices", len(nl.Devices))

	return &environment{cfg: cfg, log: logger, netlist: nl, directives: dir}, nil
}
