// Package web serves the chat widget over HTTP. The page is rendered on the
// server from the controller snapshot; the browser only posts a form.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/diogo/whiskerion/internal/chat"
	"github.com/diogo/whiskerion/internal/render"
	"github.com/diogo/whiskerion/internal/transcript"
)

const (
	// DefaultShutdownTimeout bounds graceful shutdown and the wait for
	// in-flight round trips
	DefaultShutdownTimeout = 10 * time.Second

	maxBodyBytes = 64 << 10
)

// Server exposes one process-wide controller to browsers
type Server struct {
	ctrl            *chat.Controller
	logger          *zap.Logger
	theme           render.Theme
	addr            string
	shutdownTimeout time.Duration
	router          *mux.Router

	// Round trips started by form posts outlive their request
	rounds       sync.WaitGroup
	roundCtx     context.Context
	cancelRounds context.CancelFunc
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTheme sets the page theme
func WithTheme(theme render.Theme) Option {
	return func(s *Server) {
		s.theme = theme
	}
}

// WithShutdownTimeout overrides DefaultShutdownTimeout
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// NewServer creates a server listening on addr once Run is called
func NewServer(ctrl *chat.Controller, addr string, opts ...Option) *Server {
	s := &Server{
		ctrl:            ctrl,
		logger:          zap.NewNop(),
		theme:           render.CurrentTheme(),
		addr:            addr,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.roundCtx, s.cancelRounds = context.WithCancel(context.Background())

	router := mux.NewRouter()
	router.Use(s.logRequests)
	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	router.HandleFunc(render.SubmitPath, s.handleSubmit).Methods(http.MethodPost)
	router.HandleFunc("/api/state", s.handleState).Methods(http.MethodGet)
	router.HandleFunc("/api/messages", s.handleMessages).Methods(http.MethodPost)
	router.HandleFunc("/transcript.{ext:md|json}", s.handleTranscript).Methods(http.MethodGet)
	s.router = router

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address and serves until ctx is done
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve starts the session, serves on ln until ctx is done, then shuts down
// gracefully and waits for round trips still in flight.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Failure is rendered into the transcript; the page stays up
		_ = s.ctrl.Start(gctx)
		return nil
	})

	g.Go(func() error {
		s.logger.Info("serving chat widget", zap.String("addr", ln.Addr().String()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		err := httpServer.Shutdown(shutdownCtx)
		s.waitRounds(shutdownCtx)
		s.cancelRounds()
		s.logger.Info("chat widget stopped")
		return err
	})

	return g.Wait()
}

// waitRounds waits for in-flight round trips, cancelling them once ctx expires
func (s *Server) waitRounds(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.rounds.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("cancelling round trips still in flight")
		s.cancelRounds()
		<-done
	}
}

func (s *Server) view() render.WidgetView {
	return render.WidgetView{
		Snapshot: s.ctrl.Snapshot(),
		Persona:  s.ctrl.Persona(),
		Theme:    s.theme,
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprint(w, render.Page(s.view()))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	if text, ok := s.ctrl.Begin(r.PostFormValue("message")); ok {
		s.rounds.Add(1)
		go func() {
			defer s.rounds.Done()
			reply, err := s.ctrl.Send(s.roundCtx, text)
			s.ctrl.Complete(reply, err)
		}()
	}

	http.Redirect(w, r, "/#end", http.StatusSeeOther)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

type submitResponse struct {
	Accepted bool          `json:"accepted"`
	State    chat.Snapshot `json:"state"`
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "body too large"})
		return
	}
	if !gjson.ValidBytes(body) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	text := gjson.GetBytes(body, "text")
	if text.Type != gjson.String {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": `"text" must be a string`})
		return
	}
	accepted := s.ctrl.Submit(r.Context(), text.Str)

	writeJSON(w, http.StatusOK, submitResponse{
		Accepted: accepted,
		State:    s.ctrl.Snapshot(),
	})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	persona := s.ctrl.Persona()
	meta := transcript.Meta{
		Title:      persona.Title,
		Persona:    persona.Name,
		Model:      s.ctrl.Model(),
		ExportedAt: time.Now(),
	}
	snap := s.ctrl.Snapshot()

	if mux.Vars(r)["ext"] == "json" {
		data, err := transcript.ExportJSON(snap, meta)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	fmt.Fprint(w, transcript.ExportMarkdown(snap, meta))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
