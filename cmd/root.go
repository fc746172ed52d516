package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/vyomadl/vyoma-dl/config"
	"github.com/vyomadl/vyoma-dl/logger"
)

var rootCmd = &cobra.Command{
	Use:   "vyoma-dl <course-url|course-id>",
	Short: "Download course material from sanskritfromhome.in",
	Long: `Download the documents and audio of a course you can access and list its videos.

Runs are resumable: files already downloaded are recorded in .progress.json
inside the course directory and are skipped next time.`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runSync,
}

var logCloser io.Closer

func init() {
	config.RegisterFlags(rootCmd)
	rootCmd.Flags().BoolP("document", "d", false, "download documents")
	rootCmd.Flags().BoolP("audio", "a", false, "download audio")
	rootCmd.Flags().BoolP("video", "v", false, "list video links")
}

// setup loads the configuration and installs the logger into the command
// context.
func setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := config.Init(ctx, config.GetConfigFile(cmd)); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	l, closer, err := logger.New(logger.Options{
		Level: config.C().Log.Level,
		File:  config.C().Log.File,
	})
	if err != nil {
		return err
	}
	logCloser = closer
	cmd.SetContext(log.WithContext(ctx, l))
	return nil
}

func Execute(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	if logCloser != nil {
		logCloser.Close()
	}
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Interrupted")
		os.Exit(130)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
