package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"GoldSentinel/internal/model"
)

const (
	LivenessText        = "🚀 GoldSentinel is running!"
	WebhookAck          = "OK"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
)

// Runner executes an out-of-band evaluation cycle.
type Runner interface {
	RunNow(ctx context.Context) *model.CycleResult
}

// Server is the HTTP listener: a liveness root and a trigger webhook.
type Server struct {
	ctx            context.Context
	runner         Runner
	webhookRunsJob bool
	httpServer     *http.Server
}

// New creates the server. When webhookRunsJob is false the webhook only
// acknowledges; otherwise each POST starts one background cycle bound to ctx.
func New(ctx context.Context, addr string, runner Runner, webhookRunsJob bool) *Server {
	s := &Server{ctx: ctx, runner: runner, webhookRunsJob: webhookRunsJob}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware())
	router.Use(gin.Recovery())

	router.GET("/", s.home)
	router.POST("/webhook", s.webhook)
	return router
}

// ListenAndServe blocks until the server stops. A clean shutdown returns nil.
func (s *Server) ListenAndServe() error {
	log.Printf("[INFO] http listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and drains in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) home(c *gin.Context) {
	c.String(http.StatusOK, LivenessText)
}

// webhook accepts any body and ignores it.
func (s *Server) webhook(c *gin.Context) {
	if s.webhookRunsJob && s.runner != nil {
		requestID := c.GetString(RequestIDContextKey)
		go func() {
			res := s.runner.RunNow(s.ctx)
			log.Printf("[INFO] webhook %s: cycle %s ended at %s", requestID, res.ID, res.Stage)
		}()
	}
	c.String(http.StatusOK, WebhookAck)
}
