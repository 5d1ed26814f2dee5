package commands

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/diogo/whiskerion/internal/api"
	"github.com/diogo/whiskerion/internal/chat"
	"github.com/diogo/whiskerion/internal/config"
	"github.com/diogo/whiskerion/internal/render"
)

// testEnv swaps the package dependencies for in-memory ones
type testEnv struct {
	provider *api.MockProvider
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	copied   []string
	tuiRuns  []*chat.Controller
}

func setupTestEnv(t *testing.T, session *api.MockSession) *testEnv {
	t.Helper()
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvAPIKey, "test-key")

	env := &testEnv{
		provider: &api.MockProvider{Session: session},
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
	}

	old := deps
	deps = &Dependencies{
		NewProvider: func(string) api.Provider { return env.provider },
		RunTUI: func(_ context.Context, ctrl *chat.Controller, _ render.Options) error {
			env.tuiRuns = append(env.tuiRuns, ctrl)
			return nil
		},
		Clipboard: func(text string) error {
			env.copied = append(env.copied, text)
			return nil
		},
		IsTerminal: func() bool { return false },
		Stdin:      strings.NewReader(""),
		Stdout:     env.stdout,
		Stderr:     env.stderr,
	}

	resetFlags()
	t.Cleanup(func() {
		deps = old
		resetFlags()
		render.SetTheme("cosmic")
	})
	return env
}

func resetFlags() {
	modelFlag = ""
	personaFlag = ""
	verboseFlag = false
	outputFlag = ""
	rawFlag = false
	addrFlag = ""
	personaModelFlag = ""
	personaTitleFlag = ""
	personaGreetingFlag = ""
	personaPrefixFlag = nil
	personaSuffixFlag = nil
	_ = rootCmd.Flags().Set("version", "false")
}

func (e *testEnv) setStdin(r io.Reader) {
	deps.Stdin = r
}
