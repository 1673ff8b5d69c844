package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes <file>",
	Short: "Print the compiled node table and device connections",
	Args:  cobra.ExactArgs(1),
	RunE:  runNodes,
}

func init() {
	rootCmd.AddCommand(nodesCmd)
}

func runNodes(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd, args[0])
	if err != nil {
		return err
	}
	nl := env.netlist
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Nodes (%d):\n", len(nl.Nodes))
	for _, n := range nl.Nodes {
		fmt.Fprintf(out, "  %3d  %s\n", n.ID, n.Name)
	}

	fmt.Fprintf(out, "Devices (%d):\n", len(nl.Devices))
	for _, d := range nl.Devices {
		names := make([]string, len(d.Nodes))
		for i, id := range d.Nodes {
			names[i] = nl.Nodes[id].Name
		}
		fmt.Fprintf(out, "  %-8s %-4s %s\n", d.Name, d.Kind, strings.Join(names, " "))
	}
	return nil
}
