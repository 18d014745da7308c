// Package server exposes the agent over HTTP.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AlbeMasera/ATAI/internal/core/model"
	"github.com/AlbeMasera/ATAI/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// Answerer is the part of core.Agent the server needs.
type Answerer interface {
	Answer(ctx context.Context, query string) model.Answer
}

type Server struct {
	Agent   Answerer
	Metrics http.Handler
}

func NewServer(agent Answerer, metricsHandler http.Handler) *Server {
	return &Server{Agent: agent, Metrics: metricsHandler}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog())

	r.POST("/ask", s.Ask)
	r.GET("/healthz", s.Healthz)
	if s.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.Metrics))
	}

	return r
}

type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

type AskResponse struct {
	Answer    string `json:"answer"`
	RequestID string `json:"request_id"`
}

func (s *Server) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	answer := s.Agent.Answer(ctx, req.Question)
	c.JSON(http.StatusOK, AskResponse{
		Answer:    answer.Text(),
		RequestID: logging.RequestIDFromContext(ctx),
	})
}

func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestID reuses the caller's X-Request-ID or mints one, and stores it in
// the request context for logging.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = logging.NewRequestID()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logging.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Ctx(c.Request.Context()).Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request served")
	}
}
