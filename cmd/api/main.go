package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/reservaestilo/booking-api/internal/alerts"
	"github.com/reservaestilo/booking-api/internal/catalog"
	"github.com/reservaestilo/booking-api/internal/clock"
	"github.com/reservaestilo/booking-api/internal/config"
	dbpkg "github.com/reservaestilo/booking-api/internal/db"
	domain "github.com/reservaestilo/booking-api/internal/domain/booking"
	"github.com/reservaestilo/booking-api/internal/gateway/googlecalendar"
	mpgateway "github.com/reservaestilo/booking-api/internal/gateway/mercadopago"
	infraRepo "github.com/reservaestilo/booking-api/internal/infra/repository"
	"github.com/reservaestilo/booking-api/internal/notify"
	"github.com/reservaestilo/booking-api/internal/routes"
	"github.com/reservaestilo/booking-api/internal/session"
	"github.com/reservaestilo/booking-api/internal/timezone"
	ucbooking "github.com/reservaestilo/booking-api/internal/usecase/booking"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)
	clk := clock.NewSystem()
	loc := timezone.Location(cfg.Timezone)

	window, err := businessWindow(cfg)
	if err != nil {
		log.Fatalf("config: jornada inválida: %v", err)
	}

	// ------------------------------------------------------
	// Colaboradores externos
	// ------------------------------------------------------
	calendarGW, err := googlecalendar.New(ctx, cfg.CredentialsFile, cfg.CalendarID, loc)
	if err != nil {
		log.Fatalf("calendar gateway: %v", err)
	}

	paymentGW, err := mpgateway.New(cfg.MPAccessToken, cfg.ReturnURL())
	if err != nil {
		log.Fatalf("payment gateway: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	catalogCache := catalog.NewCache(
		catalog.NewFetcher(cfg.CatalogURL),
		rdb,
		clk,
		60*time.Second,
	)

	// ------------------------------------------------------
	// Núcleo de reservas
	// ------------------------------------------------------
	availability := ucbooking.NewGetAvailability(
		calendarGW, catalogCache, clk, loc, window, cfg.HorizonDays,
	)
	holds := ucbooking.NewHoldManager(calendarGW, clk, cfg.HoldTTL, loc)

	alertDispatcher := alerts.NewDispatcher(alerts.New(db))

	var notifier notify.Notifier = notify.Noop{}
	if cfg.SMTPHost != "" {
		notifier = notify.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPPassword)
	}

	sessions := session.NewRegistry(session.Deps{
		Holds:        holds,
		Payments:     paymentGW,
		Bookings:     infraRepo.NewBookingGormRepository(db),
		Alerts:       alertDispatcher,
		Notifier:     notifier,
		Clock:        clk,
		Loc:          loc,
		PollInterval: cfg.PollInterval,
	})
	defer sessions.Close()
	go sessions.Run(ctx)

	// ------------------------------------------------------
	// HTTP
	// ------------------------------------------------------
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, cfg, routes.Deps{
		DB:           db,
		Catalog:      catalogCache,
		Availability: availability,
		Sessions:     sessions,
	})

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	go func() {
		log.Printf("Server running on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// businessWindow traduce la jornada HH:MM de la config a minutos desde
// medianoche.
func businessWindow(cfg *config.Config) (domain.Window, error) {
	open, err := minutesOfDay(cfg.OpenTime)
	if err != nil {
		return domain.Window{}, err
	}
	closing, err := minutesOfDay(cfg.CloseTime)
	if err != nil {
		return domain.Window{}, err
	}
	if closing <= open {
		return domain.Window{}, errors.New("el cierre debe ser posterior a la apertura")
	}

	return domain.Window{
		OpenMin:  open,
		CloseMin: closing,
		StepMin:  cfg.SlotStepMin,
		LeadMin:  cfg.LeadTimeMin,
	}, nil
}

func minutesOfDay(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
