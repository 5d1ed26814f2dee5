package api

import (
	"context"
	"sync"
)

// MockProvider is a Provider test double
type MockProvider struct {
	// Mock return values
	CreateErr error
	Session   *MockSession

	// Call recorders
	mu           sync.Mutex
	CreateCalled int
	LastConfig   SessionConfig
}

// Ensure the mocks implement the interfaces
var (
	_ Provider = (*MockProvider)(nil)
	_ Session  = (*MockSession)(nil)
)

func (m *MockProvider) Create(ctx context.Context, cfg SessionConfig) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalled++
	m.LastConfig = cfg
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.Session == nil {
		m.Session = &MockSession{}
	}
	return m.Session, nil
}

// MockResponse is one scripted reply
type MockResponse struct {
	Text string
	Err  error
}

// MockSession replays scripted responses in order, then falls back to
// Reply/Err. When Gate is set, Send blocks until the gate is closed or
// receives a value, which lets tests observe the awaiting state.
type MockSession struct {
	Script []MockResponse
	Reply  string
	Err    error
	Gate   chan struct{}

	mu      sync.Mutex
	prompts []string
}

func (s *MockSession) Send(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, text)
	gate := s.Gate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Script) > 0 {
		next := s.Script[0]
		s.Script = s.Script[1:]
		return next.Text, next.Err
	}
	return s.Reply, s.Err
}

// Prompts returns a copy of every text sent so far
func (s *MockSession) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	copy(out, s.prompts)
	return out
}
