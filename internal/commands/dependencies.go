package commands

import (
	"context"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/diogo/whiskerion/internal/api"
	"github.com/diogo/whiskerion/internal/chat"
	"github.com/diogo/whiskerion/internal/render"
	"github.com/diogo/whiskerion/internal/tui"
)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewProvider builds the conversation API provider from the credential
	NewProvider func(apiKey string) api.Provider

	// RunTUI runs the interactive chat over a controller
	RunTUI func(ctx context.Context, ctrl *chat.Controller, opts render.Options) error

	// Clipboard copies text to the system clipboard
	Clipboard func(text string) error

	// IsTerminal reports whether stdin and stdout are both terminals
	IsTerminal func() bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewDependencies creates a Dependencies struct with production implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewProvider: func(apiKey string) api.Provider {
			return api.NewGenAIProvider(apiKey)
		},
		RunTUI:    tui.RunChat,
		Clipboard: clipboard.WriteAll,
		IsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// deps is swapped by tests
var deps = NewDependencies()

// terminalWidth returns the stdout width or a default value
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
