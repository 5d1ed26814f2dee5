package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/diogo/whiskerion/internal/api"
	"github.com/diogo/whiskerion/internal/config"
	apierrors "github.com/diogo/whiskerion/internal/errors"
)

func testPersona() config.Persona {
	return config.Persona{
		Name:         "tester",
		SystemPrompt: "You are a test cat.",
		Greeting:     "Greetings, mortal.",
		StartupError: "Could not connect to the cosmic realm.",
		SendError:    "The cosmic connection is frayed... Try again.",
		Prefixes:     testPrefixes,
		Suffixes:     testSuffixes,
	}
}

func newReadyController(t *testing.T, session *api.MockSession, opts ...Option) *Controller {
	t.Helper()
	provider := &api.MockProvider{Session: session}
	c := NewController(provider, testPersona(), opts...)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return c
}

func TestStart_Success(t *testing.T) {
	provider := &api.MockProvider{}
	c := NewController(provider, testPersona(), WithModel("gemini-2.5-pro"))

	if c.Snapshot().Phase != PhaseInitializing {
		t.Error("controller should start initializing")
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	snap := c.Snapshot()
	if len(snap.Messages) != 1 || snap.Messages[0] != (Message{Sender: SenderBot, Text: "Greetings, mortal."}) {
		t.Errorf("transcript should hold exactly the greeting, got %v", snap.Messages)
	}
	if !snap.Ready() || snap.InputDisabled() {
		t.Errorf("input should be enabled, got %+v", snap)
	}
	if provider.LastConfig.Model != "gemini-2.5-pro" {
		t.Errorf("model = %q", provider.LastConfig.Model)
	}
	if provider.LastConfig.SystemInstruction != "You are a test cat." {
		t.Errorf("system instruction = %q", provider.LastConfig.SystemInstruction)
	}
}

func TestStart_Failure(t *testing.T) {
	provider := &api.MockProvider{CreateErr: apierrors.ErrNoAPIKey}
	c := NewController(provider, testPersona())

	err := c.Start(context.Background())
	if !apierrors.IsSessionError(err) || !errors.Is(err, apierrors.ErrNoAPIKey) {
		t.Fatalf("Start() error = %v, want session error wrapping ErrNoAPIKey", err)
	}

	snap := c.Snapshot()
	if len(snap.Messages) != 1 || snap.Messages[0].Text != "Could not connect to the cosmic realm." {
		t.Errorf("transcript should hold exactly the startup error, got %v", snap.Messages)
	}
	if snap.Phase != PhaseDisabled || !snap.InputDisabled() {
		t.Errorf("input should be disabled, got %+v", snap)
	}

	if c.Submit(context.Background(), "hello") {
		t.Error("submission must be rejected after startup failure")
	}
	if got := len(c.Snapshot().Messages); got != 1 {
		t.Errorf("transcript grew to %d after rejected submission", got)
	}
}

func TestStart_Idempotent(t *testing.T) {
	provider := &api.MockProvider{}
	c := NewController(provider, testPersona())

	_ = c.Start(context.Background())
	_ = c.Start(context.Background())

	if provider.CreateCalled != 1 {
		t.Errorf("Create called %d times, want 1", provider.CreateCalled)
	}
}

func TestSubmit_Success(t *testing.T) {
	session := &api.MockSession{Reply: "The stars say yes."}
	c := newReadyController(t, session)

	if !c.Submit(context.Background(), "  hello  ") {
		t.Fatal("Submit() rejected a valid submission")
	}

	snap := c.Snapshot()
	if len(snap.Messages) != 3 {
		t.Fatalf("expected greeting + user + bot, got %v", snap.Messages)
	}
	if snap.Messages[1] != (Message{Sender: SenderUser, Text: "hello"}) {
		t.Errorf("user message = %+v, want trimmed text", snap.Messages[1])
	}
	bot := snap.Messages[2]
	if bot.Sender != SenderBot || !isDecorated(bot.Text, "The stars say yes.", testPrefixes, testSuffixes) {
		t.Errorf("bot message = %+v, want decorated reply", bot)
	}
	if snap.Awaiting {
		t.Error("awaiting should be cleared")
	}
	if got := session.Prompts(); len(got) != 1 || got[0] != "hello" {
		t.Errorf("session saw %v", got)
	}
}

func TestSubmit_AwaitingToggles(t *testing.T) {
	var (
		mu       sync.Mutex
		awaiting []bool
	)
	session := &api.MockSession{Reply: "ok"}
	c := newReadyController(t, session, WithOnChange(func(s Snapshot) {
		mu.Lock()
		awaiting = append(awaiting, s.Awaiting)
		mu.Unlock()
	}))

	c.Submit(context.Background(), "hello")

	mu.Lock()
	defer mu.Unlock()
	// Start, Begin, Complete
	want := []bool{false, true, false}
	if len(awaiting) != len(want) {
		t.Fatalf("got %d change notifications, want %d", len(awaiting), len(want))
	}
	for i := range want {
		if awaiting[i] != want[i] {
			t.Errorf("notification %d awaiting = %v, want %v", i, awaiting[i], want[i])
		}
	}
}

func TestSubmit_Failure(t *testing.T) {
	session := &api.MockSession{
		Script: []api.MockResponse{
			{Err: errors.New("connection reset")},
			{Text: "back again"},
		},
	}
	c := newReadyController(t, session)

	if !c.Submit(context.Background(), "first") {
		t.Fatal("first submission rejected")
	}
	snap := c.Snapshot()
	last := snap.Messages[len(snap.Messages)-1]
	if last.Text != "The cosmic connection is frayed... Try again." {
		t.Errorf("failure text = %q", last.Text)
	}
	if strings.Contains(last.Text, "connection reset") {
		t.Error("the underlying error must not reach the transcript")
	}

	if !c.Submit(context.Background(), "second") {
		t.Fatal("submission after a failure must still be accepted")
	}
	snap = c.Snapshot()
	if len(snap.Messages) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(snap.Messages))
	}
	if !isDecorated(snap.Messages[4].Text, "back again", testPrefixes, testSuffixes) {
		t.Errorf("second reply = %q", snap.Messages[4].Text)
	}
}

func TestSubmit_NoOps(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   \t\n "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &api.MockSession{Reply: "x"}
			c := newReadyController(t, session)

			if c.Submit(context.Background(), tt.input) {
				t.Error("Submit() accepted blank input")
			}
			if len(c.Snapshot().Messages) != 1 {
				t.Error("transcript changed on no-op")
			}
			if len(session.Prompts()) != 0 {
				t.Error("session should not be called")
			}
		})
	}
}

func TestSubmit_BeforeStart(t *testing.T) {
	session := &api.MockSession{Reply: "x"}
	c := NewController(&api.MockProvider{Session: session}, testPersona())

	if c.Submit(context.Background(), "hello") {
		t.Error("submission before the session exists must be a no-op")
	}
	if len(c.Snapshot().Messages) != 1 {
		t.Error("transcript changed before start")
	}
}

func TestSubmit_RejectedWhileAwaiting(t *testing.T) {
	gate := make(chan struct{})
	session := &api.MockSession{Reply: "slow reply", Gate: gate}
	c := newReadyController(t, session)

	done := make(chan bool)
	go func() {
		done <- c.Submit(context.Background(), "first")
	}()

	waitFor(t, func() bool { return c.Snapshot().Awaiting })

	before := c.Snapshot()
	if c.Submit(context.Background(), "second") {
		t.Error("second submission accepted while awaiting")
	}
	if _, ok := c.Begin("third"); ok {
		t.Error("Begin accepted while awaiting")
	}
	if after := c.Snapshot(); len(after.Messages) != len(before.Messages) {
		t.Error("transcript changed by rejected submissions")
	}

	close(gate)
	if !<-done {
		t.Error("first submission should have been accepted")
	}

	snap := c.Snapshot()
	if snap.Awaiting || len(snap.Messages) != 3 {
		t.Errorf("unexpected final state %+v", snap)
	}
	if got := session.Prompts(); len(got) != 1 {
		t.Errorf("session called %d times, want 1", len(got))
	}
}

func TestBeginComplete_Split(t *testing.T) {
	session := &api.MockSession{Reply: "split reply"}
	c := newReadyController(t, session)

	text, ok := c.Begin(" split ")
	if !ok || text != "split" {
		t.Fatalf("Begin() = %q, %v", text, ok)
	}
	if !c.Snapshot().Awaiting {
		t.Fatal("Begin should set awaiting")
	}

	reply, err := c.Send(context.Background(), text)
	c.Complete(reply, err)

	snap := c.Snapshot()
	if snap.Awaiting || len(snap.Messages) != 3 {
		t.Errorf("unexpected state after Complete: %+v", snap)
	}
}

func TestComplete_WithoutRoundTrip(t *testing.T) {
	c := newReadyController(t, &api.MockSession{})

	c.Complete("stray", nil)
	if len(c.Snapshot().Messages) != 1 {
		t.Error("Complete without Begin must not append")
	}
}

func TestSend_NoSession(t *testing.T) {
	c := NewController(&api.MockProvider{CreateErr: errors.New("down")}, testPersona())
	_ = c.Start(context.Background())

	if _, err := c.Send(context.Background(), "x"); !errors.Is(err, apierrors.ErrSessionUnavailable) {
		t.Errorf("Send() error = %v, want ErrSessionUnavailable", err)
	}
}

func TestNewController_Defaults(t *testing.T) {
	c := NewController(&api.MockProvider{}, config.Persona{Name: "bare"})

	if c.Model() != DefaultModel {
		t.Errorf("Model() = %q", c.Model())
	}
	if c.Persona().SendError == "" {
		t.Error("persona defaults should be applied")
	}
	if got := c.Snapshot().Messages[0].Text; got != c.Persona().Greeting {
		t.Errorf("greeting = %q", got)
	}

	withPersonaModel := NewController(&api.MockProvider{}, config.Persona{Name: "m", Model: "gemini-2.0-flash"})
	if withPersonaModel.Model() != "gemini-2.0-flash" {
		t.Errorf("persona model ignored: %q", withPersonaModel.Model())
	}
}

func TestWithDecorator(t *testing.T) {
	d := NewDecorator([]string{"<"}, []string{">"})
	c := newReadyController(t, &api.MockSession{Reply: "mid"}, WithDecorator(d))

	c.Submit(context.Background(), "q")
	if got := c.Snapshot().Messages[2].Text; got != "<mid>" {
		t.Errorf("custom decorator ignored: %q", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
