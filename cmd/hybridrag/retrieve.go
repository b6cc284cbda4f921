package hybridrag

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var retrieveTopK int

var retrieveCmd = &cobra.Command{
	Use:   "retrieve <query>",
	Short: "Retrieve relationship triples for a query",
	Long: `Retrieve runs hybrid retrieval and prints the merged triples. When nothing
matches it prints "did you mean" suggestions from the node catalog instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withRuntime(func(ctx context.Context, rt *app) error {
			outcome := rt.client.Lookup(ctx, query, retrieveTopK)
			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, outcome)
			}

			if len(outcome.Results) > 0 {
				printTriples(out, outcome.Results)
				return nil
			}
			fmt.Fprintln(out, outcome.Message)
			if len(outcome.Suggestions) > 0 {
				fmt.Fprintln(out, "Did you mean:")
				printNames(out, outcome.Suggestions)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(retrieveCmd)
	retrieveCmd.Flags().IntVarP(&retrieveTopK, "top-k", "k", 0, "maximum number of triples (default from config)")
}
