package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/calebmorton/tradedocs-backend/api/controllers"
	"github.com/calebmorton/tradedocs-backend/api/middleware"
	"github.com/calebmorton/tradedocs-backend/internal/documents"
	"github.com/calebmorton/tradedocs-backend/pkg/config"
	"github.com/calebmorton/tradedocs-backend/pkg/db"
	"github.com/calebmorton/tradedocs-backend/pkg/logger"
	"github.com/calebmorton/tradedocs-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	documentsService documents.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.BusinessContext(logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Post("/documents", controllers.CreateDocument(documentsService, logg))
		r.Get("/documents", controllers.ListDocuments(documentsService, logg))
		r.Get("/documents/{documentId}", controllers.DocumentDetail(documentsService, logg))
		r.Patch("/documents/{documentId}/status", controllers.UpdateDocumentStatus(documentsService, logg))
		r.Get("/documents/{documentId}/render", controllers.RenderDocument(documentsService, logg))
		r.Post("/documents/{documentId}/reissue", controllers.ReissueCertificate(documentsService, logg))
	})

	return r
}
