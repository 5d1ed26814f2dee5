package chat

// Store is the ordered, append-only message sequence plus the awaiting flag.
// It carries no locking; the Controller owns it and serializes access.
type Store struct {
	messages []Message
	awaiting bool
}

// AppendMessage pushes a message to the end. Content is not validated.
func (s *Store) AppendMessage(sender Sender, text string) {
	s.messages = append(s.messages, Message{Sender: sender, Text: text})
}

// SetAwaiting toggles the in-flight guard
func (s *Store) SetAwaiting(awaiting bool) {
	s.awaiting = awaiting
}

// Awaiting reports whether a request is in flight
func (s *Store) Awaiting() bool {
	return s.awaiting
}

// Reset replaces the whole sequence. Only startup failure uses it.
func (s *Store) Reset(msgs ...Message) {
	s.messages = append([]Message(nil), msgs...)
}

// Len returns the number of messages
func (s *Store) Len() int {
	return len(s.messages)
}

// Messages returns a copy of the sequence
func (s *Store) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}
