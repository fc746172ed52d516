package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/vyomadl/vyoma-dl/cmd/progress"
	"github.com/vyomadl/vyoma-dl/config"
	"github.com/vyomadl/vyoma-dl/core"
	"github.com/vyomadl/vyoma-dl/database"
	"golang.org/x/term"
)

func runSync(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
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

	opts := []core.Option{core.WithLogger(a.logger)}
	if showProgress(cmd) {
		opts = append(opts, core.WithProgress(progress.New(ctx, cmd.OutOrStdout())))
	}
	report, syncErr := core.NewExecutor(a.session.Client(), opts...).Sync(ctx, c, selection(cmd))
	if report == nil {
		return syncErr
	}

	if openHistory(ctx) {
		if err := database.SaveReport(ctx, report); err != nil {
			a.logger.Warn("Failed to record run", "error", err)
		}
		database.Close()
	}
	renderReport(cmd.OutOrStdout(), report)
	return syncErr
}

// selection maps the type flags; no flag selects everything.
func selection(cmd *cobra.Command) core.Selection {
	var sel core.Selection
	sel.Document, _ = cmd.Flags().GetBool("document")
	sel.Audio, _ = cmd.Flags().GetBool("audio")
	sel.Video, _ = cmd.Flags().GetBool("video")
	if !sel.Any() {
		return core.SelectAll()
	}
	return sel
}

func showProgress(cmd *cobra.Command) bool {
	if !config.ProgressEnabled(cmd) {
		return false
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
