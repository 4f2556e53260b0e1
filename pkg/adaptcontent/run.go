package adaptcontent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run starts the HTTP server and blocks until ctx is cancelled or the
// listener fails. Shutdown is graceful with a five second drain window.
//
// Routes:
//
//	POST   /api/content                  - insert a document
//	GET    /api/content                  - query documents (type, courseId, parentId filters)
//	GET    /api/content/schema           - composed schema for a document or schema name
//	POST   /api/content/clone            - deep-copy a subtree
//	POST   /api/content/insertrecursive  - scaffold a content tree
//	GET    /api/content/{id}             - fetch a document
//	PATCH  /api/content/{id}             - update a document
//	DELETE /api/content/{id}             - delete a document and its subtree
//	GET    /health                       - liveness probe
//	GET    /metrics                      - Prometheus metrics
func (a *App) Run(ctx context.Context, cmd *RunCommand) error {
	router := a.Router()

	addr := fmt.Sprintf(":%s", a.config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	a.log.Info().Str("addr", addr).Msg("starting content API server")

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}
}

// Router builds the full route table. Split out from Run so tests can drive
// the API in-process.
func (a *App) Router() *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()

	// fixed paths must be registered before the {id} routes
	api.HandleFunc("/content/schema", a.handleServeSchema).Methods("GET")
	api.HandleFunc("/content/clone", a.handleClone).Methods("POST")
	api.HandleFunc("/content/insertrecursive", a.handleInsertRecursive).Methods("POST")

	api.HandleFunc("/content", a.handleInsert).Methods("POST")
	api.HandleFunc("/content", a.handleQuery).Methods("GET")
	api.HandleFunc("/content/{id}", a.handleGet).Methods("GET")
	api.HandleFunc("/content/{id}", a.handleUpdate).Methods("PATCH", "PUT")
	api.HandleFunc("/content/{id}", a.handleDelete).Methods("DELETE")

	router.HandleFunc("/health", a.handleHealth).Methods("GET")
	router.Handle("/metrics", promhttp.HandlerFor(a.prometheus, promhttp.HandlerOpts{})).Methods("GET")
	return router
}
