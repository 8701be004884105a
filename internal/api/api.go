// Package api provides HTTP handlers and the main API server logic for
// CharacterChat.
//
// It exposes the chat endpoint and a health probe. Transport framing stays
// here; all branching logic lives in the flow package.
package api

import (
	"log/slog"
	"net/http"

	"github.com/StoryMesh/CharacterChat/internal/flow"
)

// DefaultAddr is the default listen address.
const DefaultAddr = ":8080"

// Opts holds configuration options for the API server.
type Opts struct {
	Addr string // listen address
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server wires the chat pipeline to HTTP.
type Server struct {
	chat *flow.ChatFlow
}

// NewServer creates an API server over the chat pipeline.
func NewServer(chat *flow.ChatFlow) *Server {
	return &Server{chat: chat}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", s.chatHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Run starts the API server and blocks until it exits.
func Run(chat *flow.ChatFlow, opts ...Option) error {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	srv := NewServer(chat)
	slog.Info("api.Run: CharacterChat API listening", "addr", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
