// Package httpapi is the REST transport of gophdrive. It authenticates
// requests, turns multipart uploads into blobs and maps core errors onto
// HTTP statuses.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/blobstore"
	"github.com/dmitrijs2005/gophdrive/internal/server/config"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators the transport dispatches to.
type Deps struct {
	Files     FileCatalog
	Folders   FolderCatalog
	Quota     QuotaReporter
	Shares    ShareLinks
	Accounts  AccountPurger
	Validator TokenValidator

	// Store receives upload payloads before the catalog records them.
	Store blobstore.Store
	Clock clock.Clock
}

type HTTPServer struct {
	address       string
	publicBaseURL string
	maxUploadSize int64
	deps          Deps
	logger        logging.Logger
	registry      *prometheus.Registry
	metrics       *httpMetrics
	handler       http.Handler
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, deps Deps) *HTTPServer {
	if deps.Clock == nil {
		deps.Clock = clock.WallClock
	}
	reg := prometheus.NewRegistry()
	s := &HTTPServer{
		address:       cfg.EndpointAddrHTTP,
		publicBaseURL: cfg.PublicBaseURL,
		maxUploadSize: cfg.MaxUploadSize,
		deps:          deps,
		logger:        l.With("module", "http_server"),
		registry:      reg,
		metrics:       newHTTPMetrics(reg),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the fully wired router.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
