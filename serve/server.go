package serve

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/claudiup423/dominator"
	"github.com/claudiup423/dominator/eval"
	"github.com/claudiup423/dominator/ladder"
	"github.com/claudiup423/dominator/queue"
)

// Options configures the HTTP server.
type Options struct {
	// Addr is the listen address. Default: ":8080".
	Addr string

	// Engine runs evaluations. Required.
	Engine *eval.Engine

	// Store serves evaluation history and rating state. Required.
	Store eval.Store

	// Ladder is the opponent ladder exposed at /api/tiers. Required.
	Ladder *ladder.Ladder

	// Queue lists registered simulators. Optional; without it
	// /api/simulators returns an empty list.
	Queue queue.Client

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger

	// Events receives evaluation progress for the SSE stream. When
	// nil a new broadcaster is created; wire Events().Publish into the
	// engine's event sink either way.
	Events *Broadcaster
}

// Server is the evaluation HTTP API.
type Server struct {
	addr   string
	engine *eval.Engine
	store  eval.Store
	ladder *ladder.Ladder
	queue  queue.Client
	logger *slog.Logger
	events *Broadcaster
	router *gin.Engine
}

// New builds the server and its routes.
func New(opts Options) (*Server, error) {
	const op = "serve.New"
	if opts.Engine == nil {
		return nil, dominator.NewConfigurationError(op, errors.New("engine is required"))
	}
	if opts.Store == nil {
		return nil, dominator.NewConfigurationError(op, errors.New("store is required"))
	}
	if opts.Ladder == nil {
		return nil, dominator.NewConfigurationError(op, errors.New("ladder is required"))
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Events == nil {
		opts.Events = NewBroadcaster()
	}

	s := &Server{
		addr:   opts.Addr,
		engine: opts.Engine,
		store:  opts.Store,
		ladder: opts.Ladder,
		queue:  opts.Queue,
		logger: opts.Logger,
		events: opts.Events,
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.handleHealthz)

	api := router.Group("/api")
	{
		api.POST("/evals/run", s.handleRun)
		api.GET("/evals", s.handleEvals)
		api.GET("/evals/latest", s.handleLatest)
		api.GET("/compare", s.handleCompare)
		api.GET("/elo", s.handleElo)
		api.GET("/tiers", s.handleTiers)
		api.GET("/simulators", s.handleSimulators)
		api.GET("/stream/evals", s.handleStream)
	}

	s.router = router
	return s, nil
}

// Events returns the broadcaster backing the SSE stream. Wire its
// Publish method into the engine with eval.WithEventSink.
func (s *Server) Events() *Broadcaster {
	return s.events
}

// Handler returns the underlying HTTP handler, for tests and custom
// server setups.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return dominator.NewInternalError("Server.Run", err)
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	s.events.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return dominator.NewInternalError("Server.Run", err)
	}
	return nil
}
