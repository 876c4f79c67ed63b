package commands

import (
	"github.com/spf13/cobra"
)

// NewDepsCommand creates the deps command
func NewDepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deps <formula>",
		Short: "Print the properties, collections, and functions a formula references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			deps, err := eng.AnalyzeDependencies(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, deps)
		},
	}
}
