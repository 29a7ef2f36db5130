package cmd

import (
	"fmt"
	"os"

	"manifest-reconciler/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "manifest-reconciler",
	Short: "Audit, merge and update app manifests against a master manifest",
	Long: `Manifest Reconciler compares every header of a working manifest with a
master manifest. It reports the differences (audit), folds app-only content
into master (merge) or applies master's remove/update/override instructions
(update). Manifests are read from files, stdin or S3/MinIO.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with the development config gives readable
		// ISO8601 timestamps for a CLI.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
