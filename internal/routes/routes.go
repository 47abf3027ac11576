package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/reservaestilo/booking-api/internal/config"
	"github.com/reservaestilo/booking-api/internal/handlers"
	infraRepo "github.com/reservaestilo/booking-api/internal/infra/repository"
	"github.com/reservaestilo/booking-api/internal/middleware"
	"github.com/reservaestilo/booking-api/internal/session"
	ucbooking "github.com/reservaestilo/booking-api/internal/usecase/booking"
)

type Deps struct {
	DB           *gorm.DB
	Catalog      ucbooking.Catalog
	Availability *ucbooking.GetAvailability
	Sessions     *session.Registry
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// HANDLERS
	// ======================================================
	publicHandler := handlers.NewPublicHandler(
		deps.Catalog,
		deps.Availability,
		deps.Sessions,
		cfg.WhatsAppLink,
	)

	authHandler := handlers.NewAuthHandler(deps.DB, cfg)
	alertsHandler := handlers.NewAlertsHandler(deps.DB)
	bookingsHandler := handlers.NewBookingsHandler(
		infraRepo.NewBookingGormRepository(deps.DB),
		cfg.Timezone,
	)

	// ======================================================
	// RUTAS PÚBLICAS (flujo de reserva)
	// ======================================================
	public := r.Group("/api/public")
	{
		public.GET("/services", publicHandler.ListServices)
		public.GET("/availability", publicHandler.Availability)
		public.GET("/whatsapp-link", publicHandler.WhatsAppLink)

		public.POST("/sessions", publicHandler.StartSession)
		public.POST("/sessions/:id/select", publicHandler.SelectService)
		public.POST("/sessions/:id/book", publicHandler.Book)
		public.GET("/sessions/:id/state", publicHandler.SessionState)
		public.POST("/sessions/:id/cancel", publicHandler.CancelSession)

		public.GET("/payment/return", publicHandler.PaymentReturn)
	}

	// ======================================================
	// AUTH
	// ======================================================
	r.POST("/api/auth/login", authHandler.Login)

	// ======================================================
	// RUTAS DE OPERADOR (JWT)
	// ======================================================
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	{
		admin.GET("/alerts", alertsHandler.List)
		admin.POST("/alerts/:id/resolve", alertsHandler.Resolve)
		admin.GET("/bookings", bookingsHandler.ListByDate)
	}
}
