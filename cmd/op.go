package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaminglui/circuit-sim/pkg/analysis"
)

var opCmd = &cobra.Command{
	Use:   "op <file>",
	Short: "Solve the DC operating point",
	Args:  cobra.ExactArgs(1),
	RunE:  runOP,
}

func init() {
	rootCmd.AddCommand(opCmd)
}

func runOP(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd, args[0])
	if err != nil {
		return err
	}

	s, err := env.netlist.Build(env.cfg.SolverOptions(env.log)...)
	if err != nil {
		return err
	}

	op := analysis.NewOP()
	op.SetLogger(env.log)
	if err := op.Setup(s); err != nil {
		return err
	}
	if err := op.Execute(cmd.Context()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !op.Result.Converged {
		fmt.Fprintf(out, "warning: not converged after %d iterations (residual %.3g)\n",
			op.Result.Iterations, op.Result.Residual)
	}
	printOperatingPoint(out, op.GetResults())
	return nil
}
