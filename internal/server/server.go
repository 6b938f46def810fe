// Package server exposes graphs over HTTP for chat-style interaction. Each
// session owns one graph; the engine itself is single-threaded, so every
// episode call is serialized behind the session's lock.
package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mnemon/internal/graph"
	"mnemon/internal/storage"
)

type Options struct {
	Store       storage.Store
	GraphConfig graph.Config
}

type Server struct {
	store   storage.Store
	cfg     graph.Config
	started time.Time

	mu       sync.Mutex
	sessions map[string]*session

	engine *gin.Engine
}

type session struct {
	id      string
	created time.Time

	mu       sync.Mutex
	graph    *graph.Graph
	episodes int
}

func New(opts Options) *Server {
	s := &Server{
		store:    opts.Store,
		cfg:      opts.GraphConfig,
		started:  time.Now(),
		sessions: make(map[string]*session),
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	api := engine.Group("/api")
	api.POST("/chat", s.handleChat)
	api.POST("/teach", s.handleTeach)
	api.GET("/status", s.handleStatus)
	api.POST("/snapshot", s.handleSnapshot)
	api.POST("/restore", s.handleRestore)

	s.engine = engine
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until the listener fails.
func (s *Server) Run(addr string) error { return s.engine.Run(addr) }

// getOrCreateSession returns the session for id, creating one with a fresh
// graph and generated id when id is empty or unknown.
func (s *Server) getOrCreateSession(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if sess, ok := s.sessions[id]; ok {
			return sess
		}
	} else {
		id = uuid.NewString()
	}
	sess := &session{
		id:      id,
		created: time.Now(),
		graph:   graph.New(s.cfg),
	}
	s.sessions[id] = sess
	return sess
}

func (s *Server) snapshotSessions() []sessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]sessionStatus, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sess.mu.Lock()
		out = append(out, sessionStatus{
			Session:  sess.id,
			Episodes: sess.episodes,
			Stats:    sess.graph.Stats(),
		})
		sess.mu.Unlock()
	}
	return out
}
