package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ncobase/formula/types"
)

// NewEvalCommand creates the eval command
func NewEvalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <formula>",
		Short: "Evaluate a formula and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}

			ctx := types.NewContext()
			if path, _ := cmd.Flags().GetString("record"); path != "" {
				var record map[string]types.Value
				if err := readJSONFile(path, &record); err != nil {
					return fmt.Errorf("load record: %w", err)
				}
				ctx.Record = record
			}
			if path, _ := cmd.Flags().GetString("related"); path != "" {
				if err := readJSONFile(path, &ctx.RelatedRecords); err != nil {
					return fmt.Errorf("load related records: %w", err)
				}
			}
			if path, _ := cmd.Flags().GetString("user"); path != "" {
				var user types.CurrentUser
				if err := readJSONFile(path, &user); err != nil {
					return fmt.Errorf("load user: %w", err)
				}
				ctx.CurrentUser = &user
			}
			if tz, _ := cmd.Flags().GetString("timezone"); tz != "" {
				ctx.Timezone = tz
			}
			if at, _ := cmd.Flags().GetString("now"); at != "" {
				now, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("parse --now: %w", err)
				}
				ctx.Now = now
			}

			result := eng.EvaluateForCollection(args[0], collectionCode(cmd), ctx)
			if err := printJSON(cmd, result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("evaluation failed: %s", result.Error)
			}
			return nil
		},
	}

	cmd.Flags().String("record", "", "JSON file with the current record")
	cmd.Flags().String("related", "", "JSON file with related records keyed by collection and reference id")
	cmd.Flags().String("user", "", "JSON file with the current user")
	cmd.Flags().String("timezone", "", "IANA timezone for date functions")
	cmd.Flags().String("now", "", "evaluation timestamp, RFC 3339")
	return cmd
}
