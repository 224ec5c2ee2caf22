// Package server exposes the estimation pipeline over a small JSON HTTP
// API: well and unit discovery, neighbor lookup, and on-demand daily
// estimates for a (target, reference) pair.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/hydrosense/wellspring/internal/source"
	"github.com/hydrosense/wellspring/internal/tsd"
	"github.com/hydrosense/wellspring/pkg/neighbors"
)

// Controller serves the estimation API over one data source.
type Controller struct {
	src       source.Source
	estimator *tsd.Estimator
	selector  *neighbors.Selector
	server    http.Server
	logger    *zap.SugaredLogger
	handlers  *Handlers
}

// NewController builds the API controller. Neighbor endpoints are only
// registered when the source carries coordinate metadata.
func NewController(listenAddr string, src source.Source, logger *zap.SugaredLogger) (*Controller, error) {
	ctrl := &Controller{
		src:       src,
		estimator: tsd.NewEstimator(src, logger),
		logger:    logger,
	}

	if cs, ok := src.(source.CoordinateSource); ok {
		locs, err := cs.WellCoordinates()
		if err != nil {
			logger.Warnf("coordinate metadata unavailable, neighbor endpoints disabled: %v", err)
		} else if len(locs) > 0 {
			ctrl.selector = neighbors.NewSelector(locs)
		}
	}

	ctrl.handlers = NewHandlers(ctrl)
	router := ctrl.setupRouter()

	ctrl.server = http.Server{
		Addr:         listenAddr,
		Handler:      handlers.CompressHandler(handlers.CombinedLoggingHandler(&zapWriter{logger}, router)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return ctrl, nil
}

func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/wells", c.handlers.GetWells).Methods(http.MethodGet)
	api.HandleFunc("/units", c.handlers.GetUnits).Methods(http.MethodGet)
	api.HandleFunc("/range", c.handlers.GetDateRange).Methods(http.MethodGet)
	api.HandleFunc("/estimate", c.handlers.GetEstimate).Methods(http.MethodGet)
	if c.selector != nil {
		api.HandleFunc("/neighbors/{well}", c.handlers.GetNeighbors).Methods(http.MethodGet)
	}
	api.HandleFunc("/health", c.handlers.GetHealth).Methods(http.MethodGet)

	return router
}

// Handler returns the fully assembled HTTP handler, for tests and embedding.
func (c *Controller) Handler() http.Handler {
	return c.server.Handler
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (c *Controller) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		c.logger.Infof("HTTP API listening on %s", c.server.Addr)
		errCh <- c.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return c.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// zapWriter adapts the sugared logger to the io.Writer the gorilla access
// logger wants.
type zapWriter struct {
	logger *zap.SugaredLogger
}

func (w *zapWriter) Write(p []byte) (int, error) {
	w.logger.Info(string(p))
	return len(p), nil
}
