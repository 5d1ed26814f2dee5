// Package api abstracts the hosted conversation API behind a minimal
// capability interface so the chat controller can run against a test double.
package api

import "context"

// SessionConfig is fixed at session creation
type SessionConfig struct {
	Model             string
	SystemInstruction string
}

// Session is an opaque handle to the API's stateful dialogue context
type Session interface {
	// Send delivers one user message and returns the model's text reply.
	Send(ctx context.Context, text string) (string, error)
}

// Provider creates conversation sessions
type Provider interface {
	Create(ctx context.Context, cfg SessionConfig) (Session, error)
}
