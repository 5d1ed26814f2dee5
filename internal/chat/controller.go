package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diogo/whiskerion/internal/api"
	"github.com/diogo/whiskerion/internal/config"
	apierrors "github.com/diogo/whiskerion/internal/errors"
)

// DefaultModel is used when neither an option nor the persona names one
const DefaultModel = "gemini-2.5-flash"

// Controller owns the conversation state and the session handle.
// At most one round trip is in flight; a submission while awaiting or
// before the session exists is a silent no-op.
type Controller struct {
	provider  api.Provider
	persona   config.Persona
	model     string
	decorator *Decorator
	logger    *zap.Logger
	onChange  func(Snapshot)

	mu      sync.Mutex
	store   Store
	phase   Phase
	started bool
	session api.Session
	round   string // id of the in-flight round trip, for logs
}

// Option configures a Controller
type Option func(*Controller)

// WithModel overrides the persona's model
func WithModel(model string) Option {
	return func(c *Controller) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger; the default discards everything
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDecorator replaces the decorator built from the persona
func WithDecorator(d *Decorator) Option {
	return func(c *Controller) {
		c.decorator = d
	}
}

// WithOnChange registers a callback invoked with a fresh snapshot after every
// state change. It runs outside the controller lock.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// NewController creates a controller. The store starts seeded with the
// persona greeting; Start creates the session.
func NewController(provider api.Provider, persona config.Persona, opts ...Option) *Controller {
	persona = persona.WithDefaults()

	c := &Controller{
		provider: provider,
		persona:  persona,
		model:    persona.Model,
		logger:   zap.NewNop(),
		phase:    PhaseInitializing,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.decorator == nil {
		c.decorator = NewDecorator(persona.Prefixes, persona.Suffixes)
	}

	c.store.AppendMessage(SenderBot, persona.Greeting)
	return c
}

// Start creates the conversation session. On failure the transcript is
// replaced by the persona's startup error and input stays disabled for the
// rest of the process. The error is returned for diagnostics only.
// Calls after the first are no-ops.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.mu.Unlock()

	session, err := c.provider.Create(ctx, api.SessionConfig{
		Model:             c.model,
		SystemInstruction: c.persona.SystemPrompt,
	})

	c.mu.Lock()
	if err != nil {
		err = apierrors.NewSessionError(c.model, err)
		c.logger.Error("session creation failed", zap.String("model", c.model), zap.Error(err))
		c.store.Reset(Message{Sender: SenderBot, Text: c.persona.StartupError})
		c.phase = PhaseDisabled
	} else {
		c.logger.Info("session ready", zap.String("model", c.model), zap.String("persona", c.persona.Name))
		c.session = session
		c.phase = PhaseReady
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return err
}

// Begin validates a submission and, if accepted, appends the trimmed text as
// a user message and marks the controller as awaiting. It returns the text to
// send and whether the submission was accepted.
func (c *Controller) Begin(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", false
	}

	c.mu.Lock()
	if c.store.Awaiting() || c.session == nil {
		c.mu.Unlock()
		return "", false
	}
	c.store.AppendMessage(SenderUser, text)
	c.store.SetAwaiting(true)
	c.round = uuid.NewString()
	c.logger.Debug("round trip started", zap.String("round", c.round), zap.Int("chars", len(text)))
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return text, true
}

// Send delivers text to the session. It holds no lock while waiting, and has
// no timeout beyond the caller's context.
func (c *Controller) Send(ctx context.Context, text string) (string, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil {
		return "", apierrors.ErrSessionUnavailable
	}
	return session.Send(ctx, text)
}

// Complete finishes the in-flight round trip. A reply is decorated and
// appended; an error is logged and replaced by the fixed send-failure text.
// Awaiting is cleared either way. Without a round trip in flight it does nothing.
func (c *Controller) Complete(reply string, err error) {
	c.mu.Lock()
	if !c.store.Awaiting() {
		c.mu.Unlock()
		return
	}

	if err != nil {
		c.logger.Error("round trip failed", zap.String("round", c.round), zap.Error(err))
		c.store.AppendMessage(SenderBot, c.persona.SendError)
	} else {
		c.logger.Debug("round trip finished", zap.String("round", c.round), zap.Int("chars", len(reply)))
		c.store.AppendMessage(SenderBot, c.decorator.Decorate(reply))
	}
	c.store.SetAwaiting(false)
	c.round = ""
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Submit runs a whole round trip synchronously and reports whether the
// submission was accepted.
func (c *Controller) Submit(ctx context.Context, raw string) bool {
	text, ok := c.Begin(raw)
	if !ok {
		return false
	}
	reply, err := c.Send(ctx, text)
	c.Complete(reply, err)
	return true
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Persona returns the persona with defaults applied
func (c *Controller) Persona() config.Persona {
	return c.persona
}

// Model returns the model the session is created with
func (c *Controller) Model() string {
	return c.model
}

// snapshotLocked MUST be called with c.mu held
func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Messages: c.store.Messages(),
		Awaiting: c.store.Awaiting(),
		Phase:    c.phase,
	}
}

func (c *Controller) notify(snap Snapshot) {
	if c.onChange != nil {
		c.onChange(snap)
	}
}
