package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/safari-backoffice/internal/config"
	"github.com/iliyamo/safari-backoffice/internal/database"
	"github.com/iliyamo/safari-backoffice/internal/document"
	"github.com/iliyamo/safari-backoffice/internal/handler"
	"github.com/iliyamo/safari-backoffice/internal/logger"
	"github.com/iliyamo/safari-backoffice/internal/middleware"
	"github.com/iliyamo/safari-backoffice/internal/queue"
	"github.com/iliyamo/safari-backoffice/internal/repository"
	"github.com/iliyamo/safari-backoffice/internal/router"
	"github.com/iliyamo/safari-backoffice/internal/service"
	"github.com/iliyamo/safari-backoffice/internal/utils"
	"github.com/iliyamo/safari-backoffice/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("schema applied")
	}

	rdb := config.NewRedisClient(ctx)
	if rdb != nil {
		defer rdb.Close()
	} else {
		log.Warn("redis unavailable, rate limiting disabled")
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)

	var events service.EventPublisher = queue.NopPublisher{}
	if cfg.Events.Enabled {
		events = queue.NewPublisher(cfg.Events.URL, log)
		consumer := queue.NewConsumer(cfg.Events.URL, cfg.Events.AuditLogDir, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit consumer stopped", zap.Error(err))
			}
		}()
	}

	numbers := utils.NewRefGenerator()
	validate := validation.New()
	renderer := document.NewRenderer(document.Issuer{
		Name:     cfg.Issuer.Name,
		Address:  cfg.Issuer.Address,
		LogoPath: cfg.Issuer.LogoPath,
	}, log)

	bookingRepo := repository.NewBookingRepo(db)
	bookings := service.NewBookingService(db, numbers, events, validate, log)
	payments := service.NewPaymentService(db, numbers, events, validate, log)
	directory := service.NewDirectoryService(repository.NewClientRepo(db), repository.NewHotelRepo(db), validate)
	documents := service.NewDocumentService(bookingRepo, repository.NewVoucherRepo(db), renderer, numbers)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	router.RegisterRoutes(e, router.Handlers{
		Health:    handler.Health(db),
		Auth:      handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)),
		Bookings:  handler.NewBookingHandler(bookings),
		Payments:  handler.NewPaymentHandler(payments),
		Directory: handler.NewDirectoryHandler(directory),
		Documents: handler.NewDocumentHandler(documents),
	}, cfg.JWTSecret, limiter)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
