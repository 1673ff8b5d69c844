package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kaminglui/circuit-sim/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-solve the operating point every time the file is saved",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period after the last write")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	out := cmd.OutOrStdout()
	debounce, _ := cmd.Flags().GetDuration("debounce")

	w, err := watch.NewWatcher(path, debounce)
	if err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	defer w.Stop()

	solveAndReport(cmd, out, path)
	fmt.Fprintf(out, "watching %s (Ctrl-C to stop)\n", path)

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Changes:
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "\n%s changed\n", path)
			solveAndReport(cmd, out, path)
		}
	}
}

// solveAndReport runs the operating point and prints errors instead of
// returning them, so a broken save does not end the watch.
func solveAndReport(cmd *cobra.Command, out io.Writer, path string) {
	if err := runOP(cmd, []string{path}); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
	}
}
