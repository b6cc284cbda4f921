package hybridrag

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Load the node catalog and print its names",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(func(ctx context.Context, rt *app) error {
			n, err := rt.client.RefreshCatalog(ctx)
			if err != nil {
				return err
			}
			names := rt.client.GetCatalog().Names()
			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, map[string]any{"size": n, "names": names})
			}
			fmt.Fprintf(out, "%d names\n", n)
			printNames(out, names)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
