package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4" // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/iliyamo/gourmet-table/internal/config"
	"github.com/iliyamo/gourmet-table/internal/database"
	"github.com/iliyamo/gourmet-table/internal/floorplan"
	"github.com/iliyamo/gourmet-table/internal/handler"
	"github.com/iliyamo/gourmet-table/internal/logging"
	"github.com/iliyamo/gourmet-table/internal/metrics"
	"github.com/iliyamo/gourmet-table/internal/middleware"
	"github.com/iliyamo/gourmet-table/internal/queue"
	"github.com/iliyamo/gourmet-table/internal/repository"
	"github.com/iliyamo/gourmet-table/internal/router"
	"github.com/iliyamo/gourmet-table/internal/service"
	"github.com/iliyamo/gourmet-table/internal/validation"
)

func main() {
	cfg := config.Load() // Load environment config

	logger, closer, err := logging.New(config.LoadLoggingConfig(), cfg)
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("init logger")
	}
	if closer != nil {
		defer closer.Close()
	}
	log := *logger

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("open database")
	}
	defer db.Close()

	plan, err := floorplan.Load(cfg.FloorPlanFile) // empty path keeps the built-in layout
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.FloorPlanFile).Msg("load floor plan")
	}
	log.Info().Strs("tables", plan.Tables).Int("seats_per_table", plan.SeatsPerTable).Msg("floor plan loaded")

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable: local rate limiting, idempotency replay off")
	} else {
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	qcfg := config.LoadQueueConfig()
	var events queue.Publisher = queue.NoopPublisher{}
	if qcfg.Enabled {
		events = queue.NewAMQPPublisher(qcfg, log)
		if qcfg.ConsumerEnabled {
			go func() {
				if err := queue.NewAuditConsumer(qcfg, log).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error().Err(err).Msg("audit consumer stopped")
				}
			}()
		}
	}

	metrics.Register()

	bookings := service.NewBookingService(repository.NewBookingRepo(db), plan, events, log)
	carts := service.NewCartService(repository.NewCartRepo(db), repository.NewMenuRepo(db), log)
	bh := handler.NewBookingHandler(bookings)
	ch := handler.NewCartHandler(carts)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.EchoValidator{}
	e.HTTPErrorHandler = middleware.ErrorHandler(log)
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.Metrics())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))

	router.RegisterRoutes(e, db, cfg.MetricsPath)
	router.RegisterPublic(e, bh, ch)
	router.RegisterCustomer(e, bh, ch, cfg.JWTSecret, middleware.NewIdempotency(config.LoadIdempotencyConfig(), rdb, log))
	router.RegisterAdmin(e, bh, cfg.JWTSecret)

	addr := ":" + cfg.Port // Address string with port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
