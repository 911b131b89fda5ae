// Package httpserver exposes the myclaw runtime's read-only observability
// surface: health, Prometheus metrics, and a per-session event websocket.
// It never accepts a mutating command; the only way to drive the agent
// is through the CLI's run/chat subcommands (SPEC_FULL §4.11).
//
// Grounded on the teacher's gin-gonic/gin-contrib/cors HTTP wiring
// (_teacher_ref's server setup), generalized from its chat-completion
// surface to this module's healthz/metrics/events triad.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sworddut/myclaw/internal/logging"
	"github.com/sworddut/myclaw/internal/subscribers"
)

// Server is the optional, off-by-default HTTP surface (spec.md Non-goals
// exclude a network API for driving the agent; this is observability
// only, never a mutation path).
type Server struct {
	httpServer *http.Server
	log        *logging.Logger
}

type Config struct {
	Addr string
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// New builds the gin engine wiring healthz, a promhttp handler fed by
// reg, and a /events websocket delegating to stream.
func New(cfg Config, reg *prometheus.Registry, stream *subscribers.EventStreamSubscriber, log *logging.Logger) *Server {
	if log == nil {
		log = logging.New("httpserver", nil, logging.Info)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	engine.GET("/metrics", gin.WrapH(handler))

	engine.GET("/events", func(c *gin.Context) {
		sessionID := c.Query("session")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session query parameter is required"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("upgrade /events websocket: %v", err)
			return
		}
		unregister := stream.Register(sessionID, conn)
		defer unregister()

		// Drain and discard client frames; this socket is read-only from
		// the client's point of view, but the connection must be read to
		// notice a close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	return &Server{
		httpServer: &http.Server{Addr: cfg.Addr, Handler: engine},
		log:        log,
	}
}

// Serve blocks until ctx is cancelled or the listener fails.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
