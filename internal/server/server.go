package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/libertyplace/rentapp/internal"
	"github.com/libertyplace/rentapp/internal/clients"
	"github.com/libertyplace/rentapp/internal/encryption"
	"github.com/libertyplace/rentapp/internal/exports"
	"github.com/libertyplace/rentapp/internal/metrics"
	"github.com/libertyplace/rentapp/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ApplicationStore persists rental applications.
type ApplicationStore interface {
	Create(ctx context.Context, data json.RawMessage) (*storage.Application, error)
	Get(ctx context.Context, id int64) (*storage.Application, error)
	List(ctx context.Context) ([]*storage.Application, error)
	Update(ctx context.Context, id int64, patch json.RawMessage) (*storage.Application, error)
	Submit(ctx context.Context, id int64) (*storage.Application, error)
	AttachEncryptedData(ctx context.Context, id int64, payload json.RawMessage) error
}

// Board reads units and document checklists from the project board.
type Board interface {
	FetchVacantUnits(ctx context.Context) ([]clients.Unit, error)
	FetchMissingSubitems(ctx context.Context, applicantID string) ([]clients.MissingSubitem, error)
}

// Notifier forwards files and submissions to the intake webhooks.
type Notifier interface {
	SendFiles(ctx context.Context, uploads []clients.FileUpload) []clients.DeliveryResult
	SendFormData(ctx context.Context, referenceID, applicationID string, formData any, uploaded map[string][]clients.UploadedFileMeta) clients.DeliveryResult
	SendPDF(ctx context.Context, referenceID, applicationID, fileName string, pdf []byte) clients.DeliveryResult
}

// FileSealer encrypts uploaded documents.
type FileSealer interface {
	EncryptFile(filename, mimeType string, data []byte) (*encryption.EncryptedFile, error)
}

// Deps are the collaborators behind the routes. Any of Store, Board,
// Webhook or Sealer may be nil; their routes then answer 503.
type Deps struct {
	Store    ApplicationStore
	Board    Board
	Webhook  Notifier
	Sealer   FileSealer
	Exporter exports.DocumentExporter
	Log      *internal.Logger
}

type Options struct {
	Address         string
	ShutdownTimeout time.Duration
	MaxBodyMB       int
	MaxFileSizeMB   int
	MetricsEnabled  bool
	MetricsPath     string
}

type Server struct {
	deps   Deps
	opts   Options
	log    *internal.Logger
	router *gin.Engine
}

func New(deps Deps, opts Options) *Server {
	if deps.Exporter == nil {
		deps.Exporter = exports.NewDocumentExporter(exports.WithLogger(deps.Log))
	}
	if opts.MaxBodyMB <= 0 {
		opts.MaxBodyMB = 50
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}

	router := gin.New()
	s := &Server{
		deps:   deps,
		opts:   opts,
		log:    internal.OrDefault(deps.Log),
		router: router,
	}

	router.Use(gin.Recovery(), s.requestLogger(), s.limitBody())

	router.GET("/healthz", s.handleHealth)
	if opts.MetricsEnabled {
		router.GET(opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api")
	{
		api.GET("/applications", s.handleListApplications)
		api.POST("/applications", s.handleCreateApplication)
		api.GET("/applications/:id", s.handleGetApplication)
		api.PATCH("/applications/:id", s.handleUpdateApplication)
		api.POST("/applications/:id/submit", s.handleSubmitApplication)

		api.POST("/pdf", s.handleComposePDF)
		api.POST("/upload-files", s.handleUploadFiles)

		api.GET("/monday/units", s.handleUnits)
		api.GET("/monday/missing-subitems/:applicantId", s.handleMissingSubitems)
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Listening on %s", s.opts.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("Shutting down server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		s.log.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
	}
}

func (s *Server) limitBody() gin.HandlerFunc {
	limit := int64(s.opts.MaxBodyMB) * 1024 * 1024
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
