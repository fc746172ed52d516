package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"github.com/vyomadl/vyoma-dl/config"
	"github.com/vyomadl/vyoma-dl/course"
	"github.com/vyomadl/vyoma-dl/database"
)

var historyCmd = &cobra.Command{
	Use:   "history <course-url|course-id>",
	Short: "List past runs recorded for a course",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringP("format", "f", formatTable, "output format: table, json or yaml")
	historyCmd.Flags().IntP("limit", "n", 10, "number of runs to show, 0 for all")
	historyCmd.Flags().String("run", "", "show the per-type counters of one run")
	historyCmd.Flags().Bool("clear", false, "delete the recorded runs of the course")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	clearRuns, _ := cmd.Flags().GetBool("clear")
	runID, _ := cmd.Flags().GetString("run")
	ctx := cmd.Context()

	site, err := url.Parse(config.C().Site.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid site url: %w", err)
	}
	id, err := course.ExtractID(args[0], site.Host)
	if err != nil {
		return err
	}
	if config.C().DB.Path == "" {
		return fmt.Errorf("run history is disabled, set db.path to enable it")
	}
	if err := database.Init(ctx, config.C().DB.Path); err != nil {
		return err
	}
	defer database.Close()

	if clearRuns {
		if err := database.DeleteRunsByCourse(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared run history of course %s\n", id)
		return nil
	}
	if runID != "" {
		run, err := database.GetRunByRunID(ctx, runID)
		if err != nil {
			return fmt.Errorf("run %s: %w", runID, err)
		}
		if ok, err := encode(cmd.OutOrStdout(), format, runDetail(run)); ok {
			return err
		}
		renderRun(cmd.OutOrStdout(), run)
		return nil
	}
	runs, err := database.GetRunsByCourse(ctx, id, limit)
	if err != nil {
		return err
	}
	if ok, err := encode(cmd.OutOrStdout(), format, historyEntries(runs)); ok {
		return err
	}
	renderHistory(cmd.OutOrStdout(), id, runs)
	return nil
}
