// File: internal/service/server.go
package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ehc-io/xmedia-downloader/internal/content"
	"github.com/ehc-io/xmedia-downloader/internal/credentials"
	"github.com/ehc-io/xmedia-downloader/internal/session"
)

// SessionInspector exposes the artifact operations the session endpoints
// need.
type SessionInspector interface {
	EnsureLocal(ctx context.Context) (bool, error)
	Path() string
	Invalidate() error
}

// SessionRefresher forces a session validation and refresh cycle.
type SessionRefresher interface {
	EnsureValidSession(ctx context.Context) error
}

// Server is the daemon HTTP surface.
type Server struct {
	queue     *JobQueue
	store     SessionInspector
	validator session.Validator
	refresher SessionRefresher
	creds     *credentials.Cache
	log       *zap.Logger

	httpServer *http.Server
}

// NewServer builds the HTTP server bound to addr.
func NewServer(
	addr string,
	queue *JobQueue,
	store SessionInspector,
	validator session.Validator,
	refresher SessionRefresher,
	creds *credentials.Cache,
	logger *zap.Logger,
) *Server {
	s := &Server{
		queue:     queue,
		store:     store,
		validator: validator,
		refresher: refresher,
		creds:     creds,
		log:       logger.Named("http"),
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes assembles the gin handler tree. Exposed separately so tests can
// exercise handlers without binding a socket.
func (s *Server) Routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthz", s.handleHealth)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/downloads", s.handleEnqueueDownload)
		v1.GET("/downloads/:id", s.handleJobStatus)
		v1.GET("/session", s.handleSessionStatus)
		v1.POST("/session/refresh", s.handleSessionRefresh)
	}
	return router
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.log.Info("HTTP server listening.", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("Request handled.",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type downloadRequest struct {
	URL string `json:"url" binding:"required"`
}

func (s *Server) handleEnqueueDownload(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must carry a 'url' field"})
		return
	}
	if !content.ValidPostURL(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not a recognizable post URL"})
		return
	}

	jobID, err := s.queue.Enqueue(req.URL)
	if err != nil {
		if errors.Is(err, ErrQueueFull) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "download queue is full, retry later"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

func (s *Server) handleJobStatus(c *gin.Context) {
	job, ok := s.queue.Lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job ID"})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) handleSessionStatus(c *gin.Context) {
	exists, err := s.store.EnsureLocal(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "session store unavailable"})
		return
	}

	valid := false
	if exists {
		valid = s.validator.IsValid(c.Request.Context(), s.store.Path())
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists, "valid": valid})
}

// handleSessionRefresh forces a full revalidation cycle: the local artifact
// copy and all cached credentials are dropped first so the cycle starts from
// the durable store's view of the world.
func (s *Server) handleSessionRefresh(c *gin.Context) {
	if err := s.store.Invalidate(); err != nil {
		s.log.Warn("Could not drop local session artifact before refresh.", zap.Error(err))
	}
	s.creds.Clear()

	if err := s.refresher.EnsureValidSession(c.Request.Context()); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, session.ErrRefreshPrecondition) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "valid"})
}
