package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/whiskerion/internal/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with the persona.

The chat keeps conversation context across messages. Type 'exit', 'quit', or
press Esc/Ctrl+C to end the session. Ctrl+Y copies the last reply and
'/save [path]' exports the transcript.

When stdin or stdout is not a terminal, a line-oriented loop is used instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

func runChat(ctx context.Context) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	if deps.IsTerminal() {
		return deps.RunTUI(ctx, s.ctrl, s.renderOptions())
	}
	return runLineChat(ctx, s.ctrl, deps.Stdin, deps.Stdout)
}

// runLineChat drives the controller one line at a time. Every message added
// to the transcript is printed once, in order.
func runLineChat(ctx context.Context, ctrl *chat.Controller, in io.Reader, out io.Writer) error {
	// Startup failure is already in the transcript
	_ = ctrl.Start(ctx)

	title := ctrl.Persona().Title
	printed := 0
	flush := func() {
		snap := ctrl.Snapshot()
		for _, msg := range snap.Messages[printed:] {
			if msg.Sender == chat.SenderBot {
				fmt.Fprintf(out, "%s: %s\n", title, msg.Text)
			}
		}
		printed = len(snap.Messages)
	}
	flush()

	if !ctrl.Snapshot().Ready() {
		return nil
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			break
		}
		if ctrl.Submit(ctx, line) {
			flush()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return scanner.Err()
}
