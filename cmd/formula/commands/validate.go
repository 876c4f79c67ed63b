package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <formula>",
		Short: "Statically check a formula and print the diagnostics as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			result := eng.Validate(args[0], collectionCode(cmd))
			if err := printJSON(cmd, result); err != nil {
				return err
			}
			if !result.Valid {
				return fmt.Errorf("formula is invalid: %d error(s)", len(result.Errors))
			}
			return nil
		},
	}
}
