package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/commandbar/internal/client"
	"github.com/opencode-ai/commandbar/internal/dispatch"
	"github.com/opencode-ai/commandbar/internal/storage"
	"github.com/opencode-ai/commandbar/pkg/types"
)

var (
	runSession string
	runContent string
)

var runCmd = &cobra.Command{
	Use:   "run <command>",
	Short: "Execute a built-in command against a session",
	Long: `Execute one built-in command against the configured server and print
the recorded history entry.

Examples:
  commandbar run summarize --session ses_1
  commandbar run revert --session ses_1
  commandbar run edit --session ses_1 --content "corrected message"`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runSession, "session", "s", "", "Session ID (required)")
	runCmd.Flags().StringVar(&runContent, "content", "", "Replacement content for the edit command")
	runCmd.MarkFlagRequired("session")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.ServerURL == "" {
		return fmt.Errorf("no server configured: set serverURL in config or pass --server")
	}

	c := client.New(cfg.ServerURL)

	log := dispatch.NewLog()
	if cfg.HistoryDir != "" {
		store := storage.New(cfg.HistoryDir)
		log = dispatch.NewPersistentLog(store, "history/"+runSession)
	}

	d := dispatch.New(c, c, log)
	entry, execErr := d.Execute(context.Background(), dispatch.Request{
		Command:     types.Command{Name: args[0], Source: types.SourceBuiltin, BuiltIn: true},
		SessionID:   runSession,
		EditContent: runContent,
	})

	out, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	return execErr
}
