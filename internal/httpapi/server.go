// Package httpapi is the HTTP surface: session intake, status, progress
// streaming, exports and question answering.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nguyentantai21042004/study-flow/internal/config"
	"github.com/nguyentantai21042004/study-flow/internal/export"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/media"
	"github.com/nguyentantai21042004/study-flow/internal/processor"
	"github.com/nguyentantai21042004/study-flow/internal/qa"
	"github.com/nguyentantai21042004/study-flow/internal/session"
)

// multipartSlack covers form fields and boundaries around the uploaded file.
const multipartSlack = 1 << 20

// Deps are the collaborators the server exposes.
type Deps struct {
	Processor      processor.Processor
	Store          session.Store
	Answerer       qa.Answerer
	Mode           media.Mode
	SummarizerKind string
	Logger         logger.Logger
}

type Server struct {
	cfg       *config.Config
	processor processor.Processor
	store     session.Store
	answerer  qa.Answerer
	hub       *Hub
	mode      media.Mode
	summary   string
	logger    logger.Logger
	engine    *gin.Engine
	render    func(io.Writer, export.Format, export.Document) error

	// background session runs outlive their request and stop on shutdown
	runCtx    context.Context
	cancelRun context.CancelFunc
	runs      sync.WaitGroup
}

func New(cfg *config.Config, deps Deps) *Server {
	gin.SetMode(cfg.Server.Mode)

	runCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:       cfg,
		processor: deps.Processor,
		store:     deps.Store,
		answerer:  deps.Answerer,
		hub:       NewHub(),
		mode:      deps.Mode,
		summary:   deps.SummarizerKind,
		logger:    deps.Logger,
		render:    export.Write,
		runCtx:    runCtx,
		cancelRun: cancel,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Recovery(s.logger), RequestLogger(s.logger))

	r.GET("/health", s.health)

	api := r.Group("/api")
	api.POST("/sessions",
		BodySizeLimit(s.cfg.Server.MaxUploadBytes()+multipartSlack, func(c *gin.Context) {
			s.respondError(c, FileTooLarge(s.cfg.Server.MaxUploadMB))
		}),
		s.createSession)
	api.GET("/sessions", s.listSessions)
	api.GET("/sessions/:id", s.getSession)
	api.GET("/sessions/:id/events", s.sessionEvents)
	api.GET("/sessions/:id/export/:format", s.exportSession)
	api.POST("/sessions/:id/questions", s.askQuestion)

	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down and cancels running sessions.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "HTTP server listening on %s", s.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			runErr = fmt.Errorf("listen: %w", err)
		}
	}

	s.logger.Info(ctx, "Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "Shutdown server: %v", err)
	}
	s.Close()
	return runErr
}

// Close cancels background session runs and waits for them to record their outcome.
func (s *Server) Close() {
	s.cancelRun()
	s.runs.Wait()
}
