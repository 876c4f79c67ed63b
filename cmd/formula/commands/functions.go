package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ncobase/formula/function"
)

// NewFunctionsCommand creates the functions command
func NewFunctionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "functions",
		Short: "List the available formula functions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}

			var descriptors []*function.Descriptor
			if query, _ := cmd.Flags().GetString("search"); query != "" {
				descriptors = eng.SearchFunctions(query)
			} else if cat, _ := cmd.Flags().GetString("category"); cat != "" {
				descriptors = eng.FunctionsByCategory(function.Category(cat))
			} else {
				descriptors = eng.Functions()
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return printJSON(cmd, descriptors)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, d := range descriptors {
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, d.Category, d.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("search", "", "filter by name or description substring")
	cmd.Flags().String("category", "", "filter by category (math, text, date, logic, aggregate, reference, utility)")
	cmd.Flags().Bool("json", false, "print full descriptors as JSON")
	return cmd
}
