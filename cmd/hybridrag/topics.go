package hybridrag

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics [topic]",
	Short: "List topics, or the procedures under a topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(func(ctx context.Context, rt *app) error {
			var names []string
			var err error
			if len(args) == 0 {
				names, err = rt.client.Topics(ctx)
			} else {
				names, err = rt.client.NodesByTopic(ctx, strings.Join(args, " "))
			}
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), names)
			}
			printNames(cmd.OutOrStdout(), names)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}
