package routers

import (
	"fmt"
	"net/http"
	"oppdrag-service/internal/app/config"
	"oppdrag-service/internal/app/delivery/http/middlewares"
	"oppdrag-service/internal/app/services/reconciliation"
	"oppdrag-service/internal/pkg/constvars"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// SetupRoutes wires the ops surface. The service is queue-driven; HTTP only
// exists for liveness checks and reconciliation run inspection.
func SetupRoutes(
	router *chi.Mux,
	internalConfig *config.InternalConfig,
	middlewares *middlewares.Middlewares,
	avstemmingController *reconciliation.AvstemmingController,
) {
	rateLimiter := httprate.LimitByIP(internalConfig.App.MaxRequests, time.Second)
	router.Use(rateLimiter)

	router.Use(middlewares.RequestIDMiddleware)
	router.Use(middlewares.Logging(middlewares.Log))
	router.Use(middlewares.ErrorHandler)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
		w.WriteHeader(constvars.StatusOK)
		w.Write([]byte(`{"success":true}`))
	})

	versionPrefix := fmt.Sprintf("/%s", internalConfig.App.Version)
	router.Route(versionPrefix, func(r chi.Router) {
		r.Route("/avstemming", func(r chi.Router) {
			r.Get("/runs", avstemmingController.HandleListRuns)
		})
	})
}
