// Package cli implements yatubectl, the operator command line.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/anonto42/yatube/pkg/config"
	"github.com/anonto42/yatube/pkg/logger"
)

var cfg *config.Config

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:           "yatubectl [command] [flags]",
	Short:         "Operator tasks for a yatube deployment",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		return logger.Init(cfg.Env, cfg.LogLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		color.New(color.Bold, color.FgHiRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// withDB opens the configured database for the duration of fn.
func withDB(fn func(db *config.DB) error) error {
	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	defer db.CloseDB()
	return fn(db)
}

func success(format string, a ...any) {
	color.New(color.Bold, color.FgHiGreen).Println(fmt.Sprintf(format, a...))
}
