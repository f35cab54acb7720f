// Package api exposes the comment triage workflow over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xaenox/comment-triage/internal/classifier"
	"github.com/xaenox/comment-triage/internal/metrics"
	"github.com/xaenox/comment-triage/internal/models"
	"github.com/xaenox/comment-triage/internal/notify"
	"github.com/xaenox/comment-triage/internal/storage"
)

// Gateway is the LLM capability used by the handlers.
type Gateway interface {
	Analyze(ctx context.Context, comments []models.CommentInput) (map[string]models.AnalysisResult, error)
	Translate(ctx context.Context, text, targetLanguage string) (*classifier.Translation, error)
	DraftResponse(ctx context.Context, comment *models.CommentView, responseType models.ResponseType, language string) (*classifier.DraftedResponse, error)
}

type Config struct {
	Address        string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type Server struct {
	echo     *echo.Echo
	config   Config
	store    storage.Storage
	gateway  Gateway
	notifier notify.Notifier
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewServer wires routes and middleware. notifier and m may be nil.
func NewServer(cfg Config, store storage.Storage, gateway Gateway, notifier notify.Notifier, logger *zap.Logger, m *metrics.Metrics) *Server {
	if notifier == nil {
		notifier = notify.Nop{}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		config:   cfg,
		store:    store,
		gateway:  gateway,
		notifier: notifier,
		logger:   logger,
		metrics:  m,
	}

	e.HTTPErrorHandler = s.handleError
	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.handleHealth)
	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	g := s.echo.Group("/api")
	g.GET("/comments", s.handleListComments)
	g.POST("/analyze", s.handleAnalyze)
	g.POST("/reset", s.handleReset)
	g.POST("/generate-response", s.handleGenerateResponse)
	g.POST("/submit-action", s.handleSubmitAction)
	g.POST("/translate", s.handleTranslate)
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.echo.Server.ReadTimeout = s.config.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.WriteTimeout

	s.logger.Info("Starting HTTP server", zap.String("address", s.config.Address))
	if err := s.echo.Start(s.config.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}
