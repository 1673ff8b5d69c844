package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kaminglui/circuit-sim/pkg/analysis"
	"github.com/kaminglui/circuit-sim/pkg/util"
)

var tranCmd = &cobra.Command{
	Use:   "tran <file>",
	Short: "Run a fixed-step transient analysis",
	Long: `Run a backward-Euler transient analysis at a fixed time step.

--stop and --step default to the deck's .tran line when present.`,
	Args: cobra.ExactArgs(1),
	RunE: runTran,
}

func init() {
	tranCmd.Flags().Float64("stop", 0, "stop time (s)")
	tranCmd.Flags().Float64("step", 0, "time step (s); defaults to the configured dt")
	tranCmd.Flags().Float64("start", 0, "first time to record (s)")
	tranCmd.Flags().Bool("uic", false, "use initial conditions, skip the operating point")
	tranCmd.Flags().String("plot", "", "write waveforms to this image file (.png, .svg, .pdf)")
	tranCmd.Flags().StringSlice("probe", nil, "nodes or currents to print and plot, e.g. N001,I(V1)")
	tranCmd.Flags().Bool("quiet", false, "do not print the sample table")
	rootCmd.AddCommand(tranCmd)
}

func runTran(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd, args[0])
	if err != nil {
		return err
	}

	stop, _ := cmd.Flags().GetFloat64("stop")
	step, _ := cmd.Flags().GetFloat64("step")
	start, _ := cmd.Flags().GetFloat64("start")
	uic, _ := cmd.Flags().GetBool("uic")
	if d := env.directives.Tran; d != nil {
		if !cmd.Flags().Changed("stop") {
			stop = d.Stop
		}
		if !cmd.Flags().Changed("step") {
			step = d.Step
		}
		if !cmd.Flags().Changed("start") {
			start = d.Start
		}
		if !cmd.Flags().Changed("uic") {
			uic = d.UIC
		}
	}
	if step == 0 {
		step = env.cfg.Dt
	}
	if stop <= 0 {
		return fmt.Errorf("--stop is required when the circuit has no .tran line")
	}

	s, err := env.netlist.Build(env.cfg.SolverOptions(env.log)...)
	if err != nil {
		return err
	}

	tr := analysis.NewTransient(start, stop, step, uic)
	tr.SetLogger(env.log)
	if err := tr.Setup(s); err != nil {
		return err
	}
	if err := tr.Execute(cmd.Context()); err != nil {
		return err
	}

	results := tr.GetResults()
	probes, _ := cmd.Flags().GetStringSlice("probe")
	keys, err := probeKeys(probes, results)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		printSeries(out, results, analysis.KeyTime, keys)
	}
	if tr.NonConverged > 0 {
		fmt.Fprintf(out, "warning: %d steps did not converge\n", tr.NonConverged)
	}

	if path, _ := cmd.Flags().GetString("plot"); path != "" {
		title := env.directives.Title
		if title == "" {
			title = filepath.Base(args[0])
		}
		if err := util.SavePlot(path, title, results, analysis.KeyTime, keys); err != nil {
			return err
		}
		fmt.Fprintf(out, "plot written to %s\n", path)
	}
	return nil
}
