// Package chat holds the conversation state and the controller that drives a
// single serialized round trip at a time against the conversation API.
package chat

// Sender identifies who wrote a message
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one transcript entry. It is never edited after creation.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// Phase is the session lifecycle: initializing, then ready or disabled for good
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseReady
	PhaseDisabled
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseReady:
		return "ready"
	case PhaseDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// MarshalText lets snapshots serialize the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Snapshot is an immutable copy of the conversation state.
// Renderers are pure functions of a Snapshot.
type Snapshot struct {
	Messages []Message `json:"messages"`
	Awaiting bool      `json:"awaiting"`
	Phase    Phase     `json:"phase"`
}

// Ready reports whether a session handle exists
func (s Snapshot) Ready() bool {
	return s.Phase == PhaseReady
}

// InputDisabled reports whether the input controls must be rendered disabled
func (s Snapshot) InputDisabled() bool {
	return s.Awaiting || !s.Ready()
}

// LastBotMessage returns the newest bot message, if any
func (s Snapshot) LastBotMessage() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Sender == SenderBot {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}
