package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaminglui/circuit-sim/pkg/analysis"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep <file>",
	Short: "Sweep a DC source and solve each operating point in parallel",
	Long: `Sweep a DC voltage or current source from --start to --stop.

Flags default to the deck's .dc line when present.`,
	Args: cobra.ExactArgs(1),
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().String("source", "", "DC source to sweep")
	sweepCmd.Flags().Float64("start", 0, "first value")
	sweepCmd.Flags().Float64("stop", 0, "last value")
	sweepCmd.Flags().Float64("step", 0, "increment")
	sweepCmd.Flags().Int("workers", 0, "parallel solvers (default from config, 0 = GOMAXPROCS)")
	sweepCmd.Flags().StringSlice("probe", nil, "nodes or currents to print")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd, args[0])
	if err != nil {
		return err
	}

	source, _ := cmd.Flags().GetString("source")
	start, _ := cmd.Flags().GetFloat64("start")
	stop, _ := cmd.Flags().GetFloat64("stop")
	step, _ := cmd.Flags().GetFloat64("step")
	if d := env.directives.DC; d != nil {
		if !cmd.Flags().Changed("source") {
			source = d.Source
		}
		if !cmd.Flags().Changed("start") {
			start = d.Start
		}
		if !cmd.Flags().Changed("stop") {
			stop = d.Stop
		}
		if !cmd.Flags().Changed("step") {
			step = d.Step
		}
	}
	if source == "" {
		return fmt.Errorf("--source is required when the circuit has no .dc line")
	}

	sw := analysis.NewDCSweep(source, start, stop, step)
	sw.SetLogger(env.log)
	sw.Workers = env.cfg.Workers
	if cmd.Flags().Changed("workers") {
		sw.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if err := sw.Setup(env.netlist, env.cfg.SolverOptions(env.log)...); err != nil {
		return err
	}
	if err := sw.Execute(cmd.Context()); err != nil {
		return err
	}

	results := sw.GetResults()
	probes, _ := cmd.Flags().GetStringSlice("probe")
	keys, err := probeKeys(probes, results)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSeries(out, results, analysis.KeySweep, keys)
	if sw.NonConverged > 0 {
		fmt.Fprintf(out, "warning: %d sweep points did not converge\n", sw.NonConverged)
	}
	return nil
}
