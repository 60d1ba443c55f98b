package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keranjangku/keranjangku-backend/api/controllers"
	"github.com/keranjangku/keranjangku-backend/api/middleware"
	"github.com/keranjangku/keranjangku-backend/internal/attachments"
	"github.com/keranjangku/keranjangku-backend/internal/auth"
	"github.com/keranjangku/keranjangku-backend/internal/baskets"
	"github.com/keranjangku/keranjangku-backend/internal/circles"
	"github.com/keranjangku/keranjangku-backend/internal/notifications"
	"github.com/keranjangku/keranjangku-backend/internal/orders"
	"github.com/keranjangku/keranjangku-backend/internal/products"
	"github.com/keranjangku/keranjangku-backend/internal/purchases"
	"github.com/keranjangku/keranjangku-backend/internal/shares"
	"github.com/keranjangku/keranjangku-backend/internal/stuff"
	"github.com/keranjangku/keranjangku-backend/internal/verifycode"
	"github.com/keranjangku/keranjangku-backend/internal/ws"
	"github.com/keranjangku/keranjangku-backend/pkg/auth/session"
	"github.com/keranjangku/keranjangku-backend/pkg/config"
	"github.com/keranjangku/keranjangku-backend/pkg/db"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
	"github.com/keranjangku/keranjangku-backend/pkg/pubsub"
	"github.com/keranjangku/keranjangku-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Redis    *redis.Client
	PubSub   *pubsub.Client
	Sessions session.AccessSessionChecker

	Auth          auth.Service
	VerifyCodes   verifycode.Service
	Baskets       baskets.Service
	Circles       circles.Service
	Shares        shares.Service
	Stuff         stuff.Service
	Purchases     purchases.Service
	Orders        orders.Service
	Products      products.Service
	Notifications notifications.Service
	Attachments   attachments.Service
	Hub           *ws.Hub
}

// NewRouter assembles the full HTTP surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(logg, controllers.ReadinessDeps(deps.DB, deps.Redis, deps.PubSub)))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/verifycodes", func(r chi.Router) {
			r.Post("/", controllers.CreateVerifyCode(deps.VerifyCodes, logg))
			r.Post("/validate", controllers.ValidateVerifyCode(deps.VerifyCodes, logg))
		})

		r.Route("/baskets", func(r chi.Router) {
			r.Get("/", controllers.ListBaskets(deps.Baskets, logg))
			r.Post("/", controllers.CreateBasket(deps.Baskets, logg))
			r.Post("/sort", controllers.SortBaskets(deps.Baskets, logg))
			r.Route("/{basketId}", func(r chi.Router) {
				r.Get("/", controllers.GetBasket(deps.Baskets, logg))
				r.Patch("/", controllers.UpdateBasket(deps.Baskets, logg))
				r.Delete("/", controllers.DeleteBasket(deps.Baskets, logg))

				r.Get("/shares", controllers.ListShares(deps.Shares, logg))
				r.Post("/shares", controllers.AddShare(deps.Shares, logg))

				r.Get("/stuff", controllers.ListStuff(deps.Stuff, logg))
				r.Post("/stuff", controllers.AddStuff(deps.Stuff, logg))

				r.Get("/purchases", controllers.ListPurchases(deps.Purchases, logg))
				r.Post("/purchases", controllers.StartPurchase(deps.Purchases, logg))

				r.Get("/attachments", controllers.ListAttachments(deps.Attachments, logg))
				r.Post("/attachments", controllers.CreateAttachment(deps.Attachments, logg))
			})
		})

		r.Route("/circles", func(r chi.Router) {
			r.Get("/", controllers.ListCircles(deps.Circles, logg))
			r.Post("/", controllers.CreateCircle(deps.Circles, logg))
			r.Route("/{circleId}", func(r chi.Router) {
				r.Get("/", controllers.GetCircle(deps.Circles, logg))
				r.Patch("/", controllers.RenameCircle(deps.Circles, logg))
				r.Delete("/", controllers.DeleteCircle(deps.Circles, logg))
				r.Post("/members", controllers.AddCircleMember(deps.Circles, logg))
				r.Delete("/members/{userId}", controllers.RemoveCircleMember(deps.Circles, logg))
			})
		})

		r.Route("/shares/{shareId}", func(r chi.Router) {
			r.Patch("/", controllers.UpdateShare(deps.Shares, logg))
			r.Delete("/", controllers.DeleteShare(deps.Shares, logg))
		})

		r.Route("/stuff/{stuffId}", func(r chi.Router) {
			r.Patch("/", controllers.UpdateStuff(deps.Stuff, logg))
			r.Delete("/", controllers.DeleteStuff(deps.Stuff, logg))
		})

		r.Route("/purchases/{purchasedId}", func(r chi.Router) {
			r.Delete("/", controllers.DeletePurchase(deps.Purchases, logg))
			r.Post("/items", controllers.AddPurchaseItem(deps.Purchases, logg))
		})

		r.Route("/purchase-items/{purchasedStuffId}", func(r chi.Router) {
			r.Patch("/", controllers.UpdatePurchaseItem(deps.Purchases, logg))
			r.Delete("/", controllers.DeletePurchaseItem(deps.Purchases, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.Post("/", controllers.CreateOrder(deps.Orders, logg))
			r.Get("/{orderId}", controllers.GetOrder(deps.Orders, logg))
			r.Delete("/{orderId}", controllers.DeleteOrder(deps.Orders, logg))
			r.Patch("/{orderId}/schedule", controllers.ScheduleOrder(deps.Orders, logg))
			r.Delete("/{orderId}/schedule", controllers.UnscheduleOrder(deps.Orders, logg))
		})

		r.Route("/assigns", func(r chi.Router) {
			r.With(middleware.RequireRole(logg, enums.UserRoleStaff)).Post("/", controllers.CreateAssign(deps.Orders, logg))
			r.With(middleware.RequireRole(logg, enums.UserRoleAssistant, enums.UserRoleStaff)).Get("/", controllers.ListAssigns(deps.Orders, logg))
			r.With(middleware.RequireRole(logg, enums.UserRoleAssistant, enums.UserRoleStaff)).Patch("/{assignId}", controllers.UpdateAssign(deps.Orders, logg))
		})

		r.With(middleware.RequireRole(logg, enums.UserRoleAssistant, enums.UserRoleStaff)).
			Patch("/order-lines/{orderLineId}", controllers.UpdateOrderLine(deps.Orders, logg))

		r.Get("/products/rates", controllers.ProductRates(deps.Products, logg))

		r.Delete("/attachments/{attachmentId}", controllers.DeleteAttachment(deps.Attachments, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/read", controllers.MarkNotificationsRead(deps.Notifications, logg))
		})
	})

	r.Route("/ws", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Get("/baskets/{basketId}", controllers.BasketSocket(deps.Hub, deps.Baskets, logg))
	})

	return r
}
