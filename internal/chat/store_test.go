package chat

import "testing"

func TestStore_AppendAndSnapshotCopy(t *testing.T) {
	var s Store
	s.AppendMessage(SenderBot, "greetings")
	s.AppendMessage(SenderUser, "<b>hi</b>")

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	msgs := s.Messages()
	msgs[0].Text = "mutated"
	if s.Messages()[0].Text != "greetings" {
		t.Error("Messages() must return a copy")
	}
	if s.Messages()[1].Text != "<b>hi</b>" {
		t.Error("content must be stored verbatim")
	}
}

func TestStore_Awaiting(t *testing.T) {
	var s Store
	if s.Awaiting() {
		t.Error("zero store should be idle")
	}
	s.SetAwaiting(true)
	if !s.Awaiting() {
		t.Error("SetAwaiting(true) not applied")
	}
	s.SetAwaiting(false)
	if s.Awaiting() {
		t.Error("SetAwaiting(false) not applied")
	}
}

func TestStore_Reset(t *testing.T) {
	var s Store
	s.AppendMessage(SenderBot, "a")
	s.AppendMessage(SenderUser, "b")

	s.Reset(Message{Sender: SenderBot, Text: "only"})
	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].Text != "only" {
		t.Errorf("Reset() left %v", msgs)
	}
}

func TestSnapshot_Flags(t *testing.T) {
	tests := []struct {
		name     string
		snap     Snapshot
		ready    bool
		disabled bool
	}{
		{"initializing", Snapshot{Phase: PhaseInitializing}, false, true},
		{"ready idle", Snapshot{Phase: PhaseReady}, true, false},
		{"ready awaiting", Snapshot{Phase: PhaseReady, Awaiting: true}, true, true},
		{"disabled", Snapshot{Phase: PhaseDisabled}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.Ready(); got != tt.ready {
				t.Errorf("Ready() = %v, want %v", got, tt.ready)
			}
			if got := tt.snap.InputDisabled(); got != tt.disabled {
				t.Errorf("InputDisabled() = %v, want %v", got, tt.disabled)
			}
		})
	}
}

func TestSnapshot_LastBotMessage(t *testing.T) {
	snap := Snapshot{Messages: []Message{
		{Sender: SenderBot, Text: "first"},
		{Sender: SenderBot, Text: "second"},
		{Sender: SenderUser, Text: "question"},
	}}

	msg, ok := snap.LastBotMessage()
	if !ok || msg.Text != "second" {
		t.Errorf("LastBotMessage() = %v, %v", msg, ok)
	}

	if _, ok := (Snapshot{}).LastBotMessage(); ok {
		t.Error("empty snapshot has no bot message")
	}
}

func TestPhase_String(t *testing.T) {
	for phase, want := range map[Phase]string{
		PhaseInitializing: "initializing",
		PhaseReady:        "ready",
		PhaseDisabled:     "disabled",
		Phase(42):         "unknown",
	} {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}
