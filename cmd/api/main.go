package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nightfury12901/restaurant-temp/internal/app"
	"github.com/nightfury12901/restaurant-temp/internal/config"
	"github.com/nightfury12901/restaurant-temp/internal/events"
	"github.com/nightfury12901/restaurant-temp/internal/jobs"
	"github.com/nightfury12901/restaurant-temp/internal/middleware"
	"github.com/nightfury12901/restaurant-temp/internal/modules/reservation"
	"github.com/nightfury12901/restaurant-temp/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := app.NewLogger(cfg.AppEnv)
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeKV, err := app.OpenKV(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeKV()

	store := repository.NewReservationStore(kv, logger, repository.WithKey(cfg.StoreKey))

	hub := events.NewHub(middleware.Origins(cfg.AllowedOrigins), logger)
	publisher, amqpPub := app.NewPublisher(cfg, hub, logger)
	if amqpPub != nil {
		defer amqpPub.Close()
	}
	notifier := app.NewNotifier(cfg, logger)

	svc := reservation.NewService(store, notifier, publisher, logger, reservation.WithLocation(cfg.Location))
	handler := reservation.NewHandler(svc)

	if cfg.DigestSchedule != "" {
		scheduler, err := jobs.Schedule(cfg.DigestSchedule, cfg.Location, jobs.NewDigest(svc, logger))
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
		logger.Info("digest job scheduled", zap.String("schedule", cfg.DigestSchedule))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(logger),
		middleware.RequestLogger(logger),
		middleware.CORS(cfg.AllowedOrigins),
	)

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	v1 := r.Group("/api/v1")
	{
		handler.RegisterRoutes(v1)
		handler.RegisterAdminRoutes(v1, hub)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
