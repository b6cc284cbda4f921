package hybridrag

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soundprediction/hybridrag/pkg/types"
)

var suggestLimit int

var suggestCmd = &cobra.Command{
	Use:   "suggest <query>",
	Short: "Suggest catalog names similar to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withRuntime(func(ctx context.Context, rt *app) error {
			suggestions, err := rt.client.Suggest(ctx, query, suggestLimit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, suggestions)
			}
			for _, s := range suggestions {
				fmt.Fprintf(out, "%.3f  %s\n", s.Ratio, s.Name)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", types.MaxSuggestions, "maximum number of suggestions")
}
