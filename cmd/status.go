package cmd

import (
	"github.com/spf13/cobra"
	"github.com/vyomadl/vyoma-dl/core"
)

var statusCmd = &cobra.Command{
	Use:   "status <course-url|course-id>",
	Short: "Show how much of a course has been downloaded",
	Long: `Compare the course page with the local progress file and print per-type
completion. Nothing is downloaded and no subscription is made.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringP("format", "f", formatTable, "output format: table, json or yaml")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := login(cmd)
	if err != nil {
		return err
	}
	c, err := a.resolver.Resolve(ctx, args[0])
	if err != nil {
		return err
	}
	summary, err := core.NewExecutor(a.session.Client(), core.WithLogger(a.logger)).Status(ctx, c)
	if err != nil {
		return err
	}
	if ok, err := encode(cmd.OutOrStdout(), format, summary); ok {
		return err
	}
	renderStatus(cmd.OutOrStdout(), summary)
	return nil
}
