package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shohaib1996/better-edible-backend/api/controllers"
	"github.com/shohaib1996/better-edible-backend/api/middleware"
	"github.com/shohaib1996/better-edible-backend/internal/clientorders"
	"github.com/shohaib1996/better-edible-backend/internal/clients"
	"github.com/shohaib1996/better-edible-backend/internal/labels"
	"github.com/shohaib1996/better-edible-backend/internal/products"
	"github.com/shohaib1996/better-edible-backend/pkg/config"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
	pkgredis "github.com/shohaib1996/better-edible-backend/pkg/redis"
)

// Dependencies are the services and probes the API serves.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	Idempotency pkgredis.IdempotencyStore
	Gatherer    prometheus.Gatherer
	Ready       map[string]controllers.Pinger

	Products     products.Service
	Clients      clients.Service
	Labels       labels.Service
	ClientOrders clientorders.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)
	idempotent := middleware.Idempotency(deps.Idempotency, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, deps.Ready))
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/private-label", func(r chi.Router) {
			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ListProducts(deps.Products, logg))
				r.Post("/", controllers.CreateProduct(deps.Products, logg))
				r.Patch("/{id}", controllers.UpdateProduct(deps.Products, logg))
			})

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", controllers.ListClients(deps.Clients, logg))
				r.Post("/", controllers.CreateClient(deps.Clients, logg))
				r.Get("/{id}", controllers.GetClient(deps.Clients, logg))
				r.Patch("/{id}", controllers.UpdateClient(deps.Clients, logg))
				r.Delete("/{id}", controllers.DeleteClient(deps.Clients, logg))
				r.Patch("/{id}/labels/stage", controllers.BulkUpdateLabelStage(deps.Labels, logg))
			})

			r.Route("/labels", func(r chi.Router) {
				r.Get("/", controllers.ListLabels(deps.Labels, logg))
				r.Post("/", controllers.CreateLabel(deps.Labels, logg))
				r.Get("/{id}", controllers.GetLabel(deps.Labels, logg))
				r.Patch("/{id}", controllers.UpdateLabel(deps.Labels, logg))
				r.Delete("/{id}", controllers.DeleteLabel(deps.Labels, logg))
				r.Patch("/{id}/stage", controllers.UpdateLabelStage(deps.Labels, logg))
				r.With(idempotent).Post("/{id}/images", controllers.UploadLabelImage(deps.Labels, cfg.Media.MaxUploadBytes(), logg))
				r.Delete("/{id}/images/*", controllers.DeleteLabelImage(deps.Labels, logg))
			})
		})

		r.Route("/client-orders", func(r chi.Router) {
			r.Get("/", controllers.ListClientOrders(deps.ClientOrders, logg))
			r.With(idempotent).Post("/", controllers.CreateClientOrder(deps.ClientOrders, logg))
			r.Get("/export", controllers.ExportClientOrders(deps.ClientOrders, logg))
			r.Get("/{id}", controllers.GetClientOrder(deps.ClientOrders, logg))
			r.Patch("/{id}", controllers.UpdateClientOrder(deps.ClientOrders, logg))
			r.Delete("/{id}", controllers.DeleteClientOrder(deps.ClientOrders, logg))
			r.Patch("/{id}/status", controllers.UpdateClientOrderStatus(deps.ClientOrders, logg))
			r.Patch("/{id}/delivery-date", controllers.UpdateClientOrderDeliveryDate(deps.ClientOrders, logg))
			r.Patch("/{id}/ship-asap", controllers.ToggleClientOrderShipASAP(deps.ClientOrders, logg))
			r.With(idempotent).Post("/{id}/push-to-production", controllers.PushClientOrderToProduction(deps.ClientOrders, logg))
		})
	})

	return r
}
