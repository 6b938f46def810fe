package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mnemon/internal/graph"
	"mnemon/internal/storage"
)

type chatRequest struct {
	Session string `json:"session"`
	Message string `json:"message"`
}

type chatResponse struct {
	Session   string  `json:"session"`
	Response  string  `json:"response"`
	ErrorRate float64 `json:"error_rate"`
}

type teachRequest struct {
	Session string `json:"session"`
	Input   string `json:"input"`
	Target  string `json:"target"`
	Repeat  int    `json:"repeat"`
}

type teachResponse struct {
	Session   string  `json:"session"`
	Response  string  `json:"response"`
	ErrorRate float64 `json:"error_rate"`
	Episodes  int     `json:"episodes"`
}

type sessionStatus struct {
	Session  string        `json:"session"`
	Episodes int           `json:"episodes"`
	Stats    graph.Summary `json:"stats"`
}

type statusResponse struct {
	UptimeSeconds float64         `json:"uptime_seconds"`
	Sessions      []sessionStatus `json:"sessions"`
}

type snapshotRequest struct {
	Session string `json:"session"`
	Brain   string `json:"brain"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	sess := s.getOrCreateSession(req.Session)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	out, err := sess.graph.RunEpisode([]byte(req.Message), nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	sess.episodes++
	c.JSON(http.StatusOK, chatResponse{
		Session:   sess.id,
		Response:  string(out),
		ErrorRate: sess.graph.Stats().ErrorRate,
	})
}

func (s *Server) handleTeach(c *gin.Context) {
	var req teachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Input == "" || req.Target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "input and target are required"})
		return
	}
	repeat := req.Repeat
	if repeat < 1 {
		repeat = 1
	}

	sess := s.getOrCreateSession(req.Session)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	var out []byte
	for i := 0; i < repeat; i++ {
		var err error
		out, err = sess.graph.RunEpisode([]byte(req.Input), []byte(req.Target))
		if err != nil {
			if errors.Is(err, graph.ErrCapacity) {
				c.JSON(http.StatusInsufficientStorage, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		sess.episodes++
	}
	c.JSON(http.StatusOK, teachResponse{
		Session:   sess.id,
		Response:  string(out),
		ErrorRate: sess.graph.Stats().ErrorRate,
		Episodes:  repeat,
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, statusResponse{
		UptimeSeconds: time.Since(s.started).Seconds(),
		Sessions:      s.snapshotSessions(),
	})
}

func (s *Server) handleSnapshot(c *gin.Context) {
	var req snapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Session == "" || req.Brain == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session and brain are required"})
		return
	}
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no store configured"})
		return
	}

	s.mu.Lock()
	sess, ok := s.sessions[req.Session]
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}

	sess.mu.Lock()
	snap := sess.graph.Snapshot()
	sess.mu.Unlock()
	snap.ID = req.Brain
	snap.SavedAt = time.Now().UTC()
	snap.SchemaVersion = storage.CurrentSchemaVersion
	snap.CodecVersion = storage.CurrentCodecVersion

	if err := s.store.SaveBrain(c.Request.Context(), snap); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": req.Session, "brain": req.Brain})
}

func (s *Server) handleRestore(c *gin.Context) {
	var req snapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Brain == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "brain is required"})
		return
	}
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no store configured"})
		return
	}

	snap, ok, err := s.store.GetBrain(c.Request.Context(), req.Brain)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown brain"})
		return
	}

	sess := s.getOrCreateSession(req.Session)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.graph.Restore(snap); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.id, "brain": req.Brain})
}
