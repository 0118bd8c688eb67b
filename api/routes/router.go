package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smoralesc/verdeo-backend/api/controllers"
	webhookcontrollers "github.com/smoralesc/verdeo-backend/api/controllers/webhooks"
	"github.com/smoralesc/verdeo-backend/api/middleware"
	checkoutsvc "github.com/smoralesc/verdeo-backend/internal/checkout"
	"github.com/smoralesc/verdeo-backend/internal/coupons"
	"github.com/smoralesc/verdeo-backend/internal/orders"
	"github.com/smoralesc/verdeo-backend/internal/products"
	"github.com/smoralesc/verdeo-backend/pkg/config"
	"github.com/smoralesc/verdeo-backend/pkg/logger"
	pkgredis "github.com/smoralesc/verdeo-backend/pkg/redis"
)

// WebhookService is the reconciliation surface the router needs: webhook
// processing plus the client-side confirmation fallback.
type WebhookService interface {
	webhookcontrollers.NotificationProcessor
	controllers.PaymentReconciler
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	cacheP controllers.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	userRoles middleware.RoleLoader,
	productsSvc products.Service,
	couponsSvc coupons.Service,
	checkoutSvc checkoutsvc.Service,
	ordersSvc orders.Service,
	webhookSvc WebhookService,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.MercadoPago.SiteBaseURL),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cacheP, logg))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Get("/api/public/ping", controllers.Ping())

	// Provider notifications authenticate by signature, not bearer token.
	r.Post("/api/webhooks/mercadopago", webhookcontrollers.MercadoPago(webhookSvc, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(productsSvc, logg))
			r.Get("/{productId}", controllers.GetProduct(productsSvc, logg))
		})
		r.Post("/coupons/apply", controllers.ApplyCoupon(couponsSvc, logg))
		r.Post("/checkout", controllers.Checkout(checkoutSvc, logg))
		r.Route("/orders", func(r chi.Router) {
			r.Get("/{orderId}", controllers.GetOrder(ordersSvc, logg))
			r.Post("/{orderId}/confirm", controllers.ConfirmOrder(webhookSvc, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireAdmin(userRoles, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(ordersSvc, logg))
			r.Patch("/{orderId}/status", controllers.AdminSetOrderStatus(ordersSvc, logg))
		})
	})

	return r
}
