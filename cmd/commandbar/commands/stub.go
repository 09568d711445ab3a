package commands

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/commandbar/internal/stubserver"
	"github.com/opencode-ai/commandbar/pkg/types"
)

var (
	stubPort     int
	stubMessages int
	stubSession  string
)

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Start a local stub server",
	Long: `Start an in-memory opencode-compatible server for development.

The stub serves a small demo command catalog and an optional pre-seeded
conversation.

Examples:
  commandbar stub
  commandbar stub --port 9000 --seed-messages 4 --session ses_dev`,
	RunE: runStub,
}

func init() {
	stubCmd.Flags().IntVarP(&stubPort, "port", "p", 8080, "Port to listen on")
	stubCmd.Flags().IntVar(&stubMessages, "seed-messages", 0, "Seed the session with N alternating messages")
	stubCmd.Flags().StringVar(&stubSession, "session", "ses_dev", "Session ID to seed")
}

func runStub(cmd *cobra.Command, args []string) error {
	serverConfig := stubserver.DefaultConfig()
	serverConfig.Port = stubPort

	srv := stubserver.New(serverConfig)
	srv.SeedCommands([]types.Command{
		{Name: "changelog", Description: "Draft a changelog entry", Template: "Draft a changelog entry for the latest changes."},
		{Name: "review", Description: "Review the current diff", Template: "Review the current diff and point out problems."},
	})
	if stubMessages > 0 {
		srv.SeedConversation(stubSession, stubMessages)
	}

	go func() {
		log.Printf("Stub server listening on http://127.0.0.1:%d", stubPort)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down stub server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
