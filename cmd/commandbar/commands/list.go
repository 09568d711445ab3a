package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/commandbar/internal/catalog"
	"github.com/opencode-ai/commandbar/internal/client"
	"github.com/opencode-ai/commandbar/pkg/types"
)

var (
	listQuery         string
	listMessageCount  int
	listLastRole      string
	listPendingRevert bool
	listBusy          bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the resolved command catalog",
	Long: `Resolve the command catalog for a given session state and print the
visible commands in order.

The session state is described with flags; the dynamic catalog is read from
config, the .opencode/command directory and, when a server is configured,
the server's /command endpoint.

Examples:
  commandbar list
  commandbar list --query re --message-count 3
  commandbar list --busy --message-count 5`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Filter text")
	listCmd.Flags().IntVar(&listMessageCount, "message-count", 0, "Messages in the session")
	listCmd.Flags().StringVar(&listLastRole, "last-role", "", "Role of the last message (user|assistant)")
	listCmd.Flags().BoolVar(&listPendingRevert, "pending-revert", false, "Session has reverted messages")
	listCmd.Flags().BoolVar(&listBusy, "busy", false, "Session has a response in flight")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, dir, err := loadConfig()
	if err != nil {
		return err
	}

	snap := types.SessionSnapshot{
		MessageCount:     listMessageCount,
		LastMessageRole:  types.Role(listLastRole),
		HasPendingRevert: listPendingRevert,
		ActivityPhase:    types.PhaseIdle,
	}
	if listBusy {
		snap.ActivityPhase = types.PhaseBusy
	}

	sources := []catalog.Source{
		catalog.NewConfigSource(cfg),
		catalog.NewFileSource(dir),
	}
	if cfg.ServerURL != "" {
		sources = append(sources, client.New(cfg.ServerURL))
	}

	ctx := context.Background()
	var dynamic []types.Command
	for _, src := range sources {
		commands, err := src.List(ctx)
		if err != nil {
			// Broken dynamic sources degrade to built-ins.
			continue
		}
		dynamic = append(dynamic, commands...)
	}

	resolved := catalog.Resolve(catalog.Builtins(), dynamic, listQuery, snap)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSOURCE\tDESCRIPTION")
	for _, c := range resolved {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, c.Source, c.Description)
	}
	return w.Flush()
}
