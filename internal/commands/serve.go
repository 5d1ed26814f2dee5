package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diogo/whiskerion/internal/render"
	"github.com/diogo/whiskerion/internal/web"
)

var addrFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat widget over HTTP",
	Long: `Serve the chat as a single HTML page. The page is rendered on the server
and needs no JavaScript: the form posts to /submit and the page refreshes
while a reply is pending.

Endpoints:
  GET  /                 Chat page
  POST /submit           Form submission (field "message")
  GET  /api/state        Conversation state as JSON
  POST /api/messages     {"text": "..."}; waits for the reply
  GET  /transcript.md    Markdown export (.json also available)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address (default from config, 127.0.0.1:8080)")
}

func runServe(ctx context.Context) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	addr := addrFlag
	if addr == "" {
		addr = s.cfg.ListenAddr
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := web.NewServer(s.ctrl, addr,
		web.WithLogger(s.logger),
		web.WithTheme(render.CurrentTheme()),
	)

	fmt.Fprintf(deps.Stderr, "Serving %s on http://%s (Ctrl+C to stop)\n", s.ctrl.Persona().Title, addr)
	return server.Run(ctx)
}
