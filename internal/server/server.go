// Package server exposes read-only engine snapshots over HTTP and websockets
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/anggasct/crossing"
	"github.com/anggasct/crossing/pkg/observers"
	"github.com/anggasct/crossing/visualization"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Server serves snapshots of a running engine. No route mutates the engine.
type Server struct {
	engine   *crossing.Engine
	metrics  *observers.MetricsObserver
	log      *logrus.Entry
	router   *gin.Engine
	upgrader websocket.Upgrader
	interval time.Duration
}

// New creates a server for engine. metrics may be nil, in which case
// /api/metrics reports 503. Snapshots are pushed to websocket clients
// once per motion period.
func New(engine *crossing.Engine, metrics *observers.MetricsObserver, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Server{
		engine:   engine,
		metrics:  metrics,
		log:      logger.WithField("component", "server"),
		interval: engine.Config().MotionPeriod,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.Use(cors.Default())

	router.GET("/healthz", s.handleHealth)
	api := router.Group("/api")
	api.GET("/state", s.handleState)
	api.GET("/metrics", s.handleMetrics)
	api.GET("/plan", s.handlePlan)
	router.GET("/ws", s.handleWebsocket)
	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("request")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"running": s.engine.Running()})
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleMetrics(c *gin.Context) {
	if s.metrics == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics are not collected"})
		return
	}
	c.JSON(http.StatusOK, s.metrics.Metrics().WithWaiting(s.engine.Snapshot().Vehicles))
}

func (s *Server) handlePlan(c *gin.Context) {
	generator := visualization.NewDOTGenerator(s.engine.Plan())

	if c.Query("format") == "svg" {
		svg, err := generator.GenerateSVG()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "image/svg+xml", []byte(svg))
		return
	}

	dot, err := generator.Generate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.String(http.StatusOK, dot)
}

// handleWebsocket pushes a snapshot to the client every interval until the
// client goes away or the request context ends
func (s *Server) handleWebsocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Client messages are ignored; reading only detects the close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := conn.WriteJSON(s.engine.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case <-gone:
			return
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			if err := conn.WriteJSON(s.engine.Snapshot()); err != nil {
				s.log.WithError(err).Debug("websocket client dropped")
				return
			}
		}
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
