package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/pkg/middleware"
)

// Handlers groups every HTTP handler of the API
type Handlers struct {
	Health      *HealthHandler
	Auth        *AuthHandler
	Catalog     *CatalogHandler
	Event       *EventHandler
	Cart        *CartHandler
	Order       *OrderHandler
	Payment     *PaymentHandler
	Ticket      *TicketHandler
	Application *ApplicationHandler
	Favorite    *FavoriteHandler
	Contact     *ContactHandler
	Dashboard   *DashboardHandler
}

// RouterConfig holds the middleware shared by the routes
type RouterConfig struct {
	Tokens middleware.TokenValidator
	// Idempotency guards checkout and payment start; nil disables it
	Idempotency gin.HandlerFunc
	// WebhookAccounts enables Basic auth on the payment webhook
	WebhookAccounts gin.Accounts
}

// RegisterRoutes mounts the API on r
func RegisterRoutes(r *gin.Engine, h *Handlers, cfg *RouterConfig) {
	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)

	auth := middleware.Auth(cfg.Tokens)
	staff := middleware.RequireRole(string(domain.RoleModerator), string(domain.RoleAdmin))
	admin := middleware.RequireRole(string(domain.RoleAdmin))
	organizer := middleware.RequireRole(string(domain.RoleOrganizer), string(domain.RoleModerator), string(domain.RoleAdmin))
	idempotent := cfg.Idempotency
	if idempotent == nil {
		idempotent = func(c *gin.Context) { c.Next() }
	}

	v1 := r.Group("/api/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.GET("/me", auth, h.Auth.Me)
		authGroup.PUT("/me", auth, h.Auth.UpdateProfile)
	}

	v1.GET("/categories", h.Catalog.ListCategories)
	v1.POST("/categories", auth, admin, h.Catalog.CreateCategory)
	v1.GET("/tariffs", h.Catalog.ListTariffs)
	v1.POST("/tariffs", auth, admin, h.Catalog.CreateTariff)

	v1.GET("/events", h.Event.List)
	v1.GET("/events/:slug", middleware.OptionalAuth(cfg.Tokens), h.Event.GetBySlug)

	v1.POST("/contact", h.Contact.Submit)

	webhook := []gin.HandlerFunc{}
	if len(cfg.WebhookAccounts) > 0 {
		webhook = append(webhook, gin.BasicAuth(cfg.WebhookAccounts))
	}
	v1.POST("/payments/webhook", append(webhook, h.Payment.Webhook)...)

	user := v1.Group("", auth)
	{
		user.GET("/cart", h.Cart.Get)
		user.DELETE("/cart", h.Cart.Clear)
		user.POST("/cart/items", h.Cart.AddItem)
		user.PATCH("/cart/items/:id", h.Cart.UpdateItem)
		user.DELETE("/cart/items/:id", h.Cart.RemoveItem)

		user.POST("/orders", idempotent, h.Order.Checkout)
		user.GET("/orders", h.Order.List)
		user.GET("/orders/:id", h.Order.Get)
		user.POST("/orders/:id/cancel", h.Order.Cancel)
		user.POST("/orders/:id/payment", idempotent, h.Payment.Start)
		user.POST("/orders/:id/payment/return", h.Payment.Return)

		user.GET("/tickets", h.Ticket.ListMine)
		user.POST("/tickets/scan", h.Ticket.Scan)
		user.GET("/tickets/:id", h.Ticket.Get)
		user.GET("/tickets/:id/qr", h.Ticket.QRCode)
		user.GET("/tickets/:id/pdf", h.Ticket.PDF)
		user.PUT("/tickets/:id/used", h.Ticket.SetUsed)
		user.POST("/tickets/:id/toggle-used", h.Ticket.ToggleUsed)

		user.GET("/favorites", h.Favorite.List)
		user.PUT("/favorites/:event_id", h.Favorite.Add)
		user.DELETE("/favorites/:event_id", h.Favorite.Remove)

		user.POST("/organizer-applications", h.Application.Submit)
		user.GET("/organizer-applications", h.Application.ListMine)

		user.GET("/dashboard", h.Dashboard.Get)
	}

	org := v1.Group("/organizer", auth, organizer)
	{
		org.GET("/events", h.Event.ListMine)
		org.POST("/events", h.Event.Create)
		org.GET("/events/:id", h.Event.Get)
		org.PUT("/events/:id", h.Event.Update)
		org.DELETE("/events/:id", h.Event.Delete)
		org.POST("/events/:id/submit", h.Event.Submit)
		org.POST("/events/:id/tariffs", h.Event.AddTariff)
		org.GET("/events/:id/tickets", h.Ticket.ListForEvent)
		org.PATCH("/event-tariffs/:id", h.Event.UpdateTariff)
		org.DELETE("/event-tariffs/:id", h.Event.RemoveTariff)
	}

	mod := v1.Group("/moderation", auth, staff)
	{
		mod.GET("/events", h.Event.ListForModeration)
		mod.POST("/events/:id/publish", h.Event.Publish)
		mod.POST("/events/:id/reject", h.Event.Reject)
		mod.POST("/events/:id/draft", h.Event.MarkDraft)
		mod.POST("/events/:id/pending", h.Event.MarkPending)

		mod.GET("/organizer-applications", h.Application.List)
		mod.POST("/organizer-applications/:id/review", h.Application.MarkInReview)
		mod.POST("/organizer-applications/:id/approve", h.Application.Approve)
		mod.POST("/organizer-applications/:id/reject", h.Application.Reject)

		mod.GET("/contact-messages", h.Contact.List)
		mod.PATCH("/contact-messages/:id", h.Contact.UpdateStatus)
	}
}
