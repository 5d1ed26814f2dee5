package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diogo/whiskerion/internal/api"
	"github.com/diogo/whiskerion/internal/config"
	apierrors "github.com/diogo/whiskerion/internal/errors"
	"github.com/diogo/whiskerion/internal/render"
)

func hasOneOf(s string, set []string, prefix bool) bool {
	for _, v := range set {
		if prefix && strings.HasPrefix(s, v) || !prefix && strings.HasSuffix(s, v) {
			return true
		}
	}
	return false
}

func TestAskCommand(t *testing.T) {
	if askCmd.Use != "ask [question]" {
		t.Errorf("Expected use 'ask [question]', got %s", askCmd.Use)
	}
	for _, flag := range []string{"output", "raw"} {
		if askCmd.Flags().Lookup(flag) == nil {
			t.Errorf("flag --%s not registered", flag)
		}
	}
}

func TestRunAsk_Decorated(t *testing.T) {
	session := &api.MockSession{Reply: "The stars align."}
	env := setupTestEnv(t, session)

	if err := runAsk(context.Background(), "  Will it rain?  "); err != nil {
		t.Fatalf("runAsk() error = %v", err)
	}

	out := strings.TrimSuffix(env.stdout.String(), "\n")
	persona := config.DefaultPersonas()[0]
	if !strings.Contains(out, "The stars align.") {
		t.Errorf("stdout = %q", out)
	}
	if !hasOneOf(out, persona.Prefixes, true) || !hasOneOf(out, persona.Suffixes, false) {
		t.Errorf("reply should be decorated, got %q", out)
	}
	if got := session.Prompts(); len(got) != 1 || got[0] != "Will it rain?" {
		t.Errorf("prompts = %v", got)
	}
	if len(env.copied) != 0 {
		t.Error("clipboard is off by default")
	}
}

func TestRunAsk_Raw(t *testing.T) {
	env := setupTestEnv(t, &api.MockSession{Reply: "The stars align."})
	rawFlag = true

	if err := runAsk(context.Background(), "question"); err != nil {
		t.Fatalf("runAsk() error = %v", err)
	}
	if env.stdout.String() != "The stars align.\n" {
		t.Errorf("stdout = %q", env.stdout.String())
	}
	if env.stderr.Len() != 0 {
		t.Errorf("raw mode should keep stderr quiet, got %q", env.stderr.String())
	}
}

func TestRunAsk_OutputFile(t *testing.T) {
	env := setupTestEnv(t, &api.MockSession{Reply: "Saved wisdom."})
	personaFlag = "plain"
	outputFlag = filepath.Join(t.TempDir(), "reply.md")

	if err := runAsk(context.Background(), "question"); err != nil {
		t.Fatalf("runAsk() error = %v", err)
	}

	data, err := os.ReadFile(outputFlag)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if string(data) != "Saved wisdom." {
		t.Errorf("file content = %q", data)
	}
	if env.stdout.Len() != 0 {
		t.Errorf("stdout should be empty when writing to a file, got %q", env.stdout.String())
	}
}

func TestRunAsk_Clipboard(t *testing.T) {
	env := setupTestEnv(t, &api.MockSession{Reply: "Copy me."})
	personaFlag = "plain"

	cfg := config.DefaultConfig()
	cfg.CopyToClipboard = true
	if err := config.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	if err := runAsk(context.Background(), "question"); err != nil {
		t.Fatalf("runAsk() error = %v", err)
	}
	if len(env.copied) != 1 || env.copied[0] != "Copy me." {
		t.Errorf("copied = %v", env.copied)
	}
}

func TestRunAsk_Errors(t *testing.T) {
	t.Run("empty question", func(t *testing.T) {
		setupTestEnv(t, &api.MockSession{})
		if err := runAsk(context.Background(), "   "); err == nil {
			t.Error("expected error for empty question")
		}
	})

	t.Run("startup failure", func(t *testing.T) {
		env := setupTestEnv(t, &api.MockSession{})
		env.provider.CreateErr = apierrors.ErrNoAPIKey

		err := runAsk(context.Background(), "question")
		if !apierrors.IsSessionError(err) || !errors.Is(err, apierrors.ErrNoAPIKey) {
			t.Errorf("expected session error wrapping ErrNoAPIKey, got %v", err)
		}
	})

	t.Run("send failure", func(t *testing.T) {
		cause := apierrors.NewAPIError(429, api.EndpointSend, "quota")
		setupTestEnv(t, &api.MockSession{Err: cause})

		err := runAsk(context.Background(), "question")
		if !apierrors.IsRateLimitError(err) {
			t.Errorf("expected rate limit error, got %v", err)
		}
	})
}

func TestFormatReply(t *testing.T) {
	out := formatReply("Whiskerion the Cosmic", "**bold** claim", render.DefaultOptions(), 100)

	if !strings.Contains(out, "Whiskerion the Cosmic") {
		t.Error("reply should carry the persona title")
	}
	if !strings.Contains(out, "bold") {
		t.Error("reply text missing")
	}

	// Narrow terminals are clamped to a minimum bubble width
	if narrow := formatReply("T", "x", render.DefaultOptions(), 10); narrow == "" {
		t.Error("narrow terminal should still render")
	}
}

func TestSpinnerLifecycle(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Pondering")
	s.start()
	time.Sleep(250 * time.Millisecond)
	s.wait()
	// A second stop must not panic
	s.wait()

	if !strings.Contains(buf.String(), "Pondering") {
		t.Errorf("spinner output = %q", buf.String())
	}
}
