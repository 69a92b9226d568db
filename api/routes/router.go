package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/justgold/justgold-backend/api/controllers"
	"github.com/justgold/justgold-backend/api/middleware"
	authsvc "github.com/justgold/justgold-backend/internal/auth"
	category "github.com/justgold/justgold-backend/internal/categories"
	"github.com/justgold/justgold-backend/internal/orders"
	product "github.com/justgold/justgold-backend/internal/products"
	"github.com/justgold/justgold-backend/pkg/cache"
	"github.com/justgold/justgold-backend/pkg/config"
	"github.com/justgold/justgold-backend/pkg/db"
	"github.com/justgold/justgold-backend/pkg/db/models"
	"github.com/justgold/justgold-backend/pkg/logger"
	"github.com/justgold/justgold-backend/pkg/metrics"
	"github.com/justgold/justgold-backend/pkg/storage/cloudinary"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Cache           cache.Pinger
	Uploader        cloudinary.Uploader
	HTTPMetrics     *metrics.HTTPMetrics
	MetricsHandler  http.Handler
	AuthService     authsvc.Service
	ProductService  product.Service
	CategoryService category.Service
	OrderService    orders.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	requireAuth := middleware.Auth(cfg.JWT, logg)
	requireAdmin := middleware.RequireRole(models.RoleAdmin, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Cache))
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.Post("/login", controllers.AuthLogin(deps.AuthService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(deps.ProductService, logg))
		r.Get("/product/{idSlug}", controllers.ProductDetail(deps.ProductService, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)
			r.Post("/", controllers.CreateProduct(deps.ProductService, deps.Uploader, cfg.Media, logg))
			r.Put("/{id}", controllers.UpdateProduct(deps.ProductService, deps.Uploader, cfg.Media, logg))
			r.Delete("/{id}", controllers.DeleteProduct(deps.ProductService, logg))
		})
	})

	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", controllers.ListCategories(deps.CategoryService, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)
			r.Post("/", controllers.CreateCategory(deps.CategoryService, logg))
		})
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", controllers.CreateOrder(deps.OrderService, logg))
		r.Get("/", controllers.ListMyOrders(deps.OrderService, logg))
	})

	return r
}
