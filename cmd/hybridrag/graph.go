package hybridrag

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <node name>",
	Short: "Print the neighborhood of a node",
	Long:  `Graph prints the relationships within the configured hop limit of the node with the given name.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		return withRuntime(func(ctx context.Context, rt *app) error {
			edges, err := rt.client.Neighborhood(ctx, name)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), edges)
			}
			printTriples(cmd.OutOrStdout(), edges)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
