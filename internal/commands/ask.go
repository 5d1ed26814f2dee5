package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/whiskerion/internal/render"
)

var (
	outputFlag string
	rawFlag    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question",
	Long: `Ask a single question and print the decorated reply.

The question is read from stdin when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return runAsk(cmd.Context(), args[0])
		}
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		return runAsk(cmd.Context(), string(data))
	},
}

func init() {
	askCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save response to file")
	askCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print the undecorated reply")
}

// Gradient colors for the spinner
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#e94560"),
	lipgloss.Color("#f9d56e"),
	lipgloss.Color("#53d8fb"),
	lipgloss.Color("#ff9ff3"),
	lipgloss.Color("#54a0ff"),
	lipgloss.Color("#5f27cd"),
}

// spinner handles the animated loading indicator on stderr
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

	theme := render.CurrentTheme()
	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[s.frame%len(chars)])

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(theme.TextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(theme.Text).Render(s.message)
	fmt.Fprintf(s.out, "\r\033[K%s %s %s", spinnerChar, msg, dots.String())
}

func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

func (s *spinner) wait() {
	s.stopOnce()
	<-s.done
}

// runAsk runs one round trip and prints the reply
func runAsk(ctx context.Context, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return fmt.Errorf("question cannot be empty")
	}

	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	persona := s.ctrl.Persona()

	var spin *spinner
	if !rawFlag {
		spin = newSpinner(deps.Stderr, persona.Pending)
		spin.start()
	}
	stopSpin := func() {
		if spin != nil {
			spin.wait()
		}
	}

	if err := s.ctrl.Start(ctx); err != nil {
		stopSpin()
		return err
	}

	text, _ := s.ctrl.Begin(question)
	start := time.Now()
	reply, err := s.ctrl.Send(ctx, text)
	s.ctrl.Complete(reply, err)
	stopSpin()

	if err != nil {
		return fmt.Errorf("no reply from %s: %w", s.ctrl.Model(), err)
	}
	s.logger.Debug("ask finished", zap.Duration("took", time.Since(start)))

	decorated, _ := s.ctrl.Snapshot().LastBotMessage()
	out := decorated.Text
	if rawFlag {
		out = reply
	}

	if s.cfg.CopyToClipboard {
		if err := deps.Clipboard(out); err != nil {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(render.CurrentTheme().Warning).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else if !rawFlag {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(render.CurrentTheme().Secondary).Render("✓ Copied to clipboard"))
		}
	}

	if outputFlag != "" {
		if err := os.WriteFile(outputFlag, []byte(out), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !rawFlag {
			fmt.Fprintf(deps.Stderr, "✓ Response saved to %s\n", outputFlag)
		}
		return nil
	}

	if rawFlag || !deps.IsTerminal() {
		fmt.Fprintln(deps.Stdout, out)
		return nil
	}

	fmt.Fprintln(deps.Stdout, formatReply(persona.Title, out, s.renderOptions(), terminalWidth()))
	return nil
}

// formatReply draws the reply as a labelled bubble like the chat TUI
func formatReply(title, text string, opts render.Options, termWidth int) string {
	bubbleWidth := termWidth - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}

	theme := render.CurrentTheme()
	label := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("✦ " + title)
	bubble := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Foreground(theme.Text).
		Padding(0, 1).
		Width(bubbleWidth).
		Render(render.Reply(text, opts.WithWidth(bubbleWidth-4)))

	return label + "\n" + bubble
}
