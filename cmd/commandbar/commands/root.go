// Package commands provides the CLI commands for the commandbar engine.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/commandbar/internal/config"
	"github.com/opencode-ai/commandbar/internal/logging"
	"github.com/opencode-ai/commandbar/pkg/types"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	printLogs bool
	logLevel  string
	serverURL string
	workDir   string
)

var rootCmd = &cobra.Command{
	Use:   "commandbar",
	Short: "Commandbar - slash-command engine for chat sessions",
	Long: `Commandbar resolves, gates and executes slash commands against an
opencode-compatible server.

Run 'commandbar list' to inspect the resolved catalog for a session state,
'commandbar run' to execute a built-in command, or 'commandbar stub' to
start a local stub server for development.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var out io.Writer = io.Discard
		if printLogs {
			out = os.Stderr
		}
		logging.Init(logging.Config{
			Level:  logging.ParseLevel(logLevel),
			Output: out,
			Pretty: true,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&printLogs, "print-logs", false, "Print logs to stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Server base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&workDir, "directory", "", "Working directory")

	rootCmd.SetVersionTemplate(fmt.Sprintf("commandbar %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stubCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetWorkDir returns the working directory from flag or current directory.
func GetWorkDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return os.Getwd()
}

// loadConfig loads configuration for the effective working directory and
// applies flag overrides.
func loadConfig() (*types.Config, string, error) {
	dir, err := GetWorkDir(workDir)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, "", err
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}

	// A config-declared log level applies unless the flag was set explicitly.
	if cfg.LogLevel != "" && !rootCmd.PersistentFlags().Changed("log-level") {
		var out io.Writer = io.Discard
		if printLogs {
			out = os.Stderr
		}
		logging.Init(logging.Config{
			Level:  logging.ParseLevel(cfg.LogLevel),
			Output: out,
			Pretty: true,
		})
	}
	return cfg, dir, nil
}
