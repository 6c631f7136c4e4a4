package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkravchenko/blog-backend/internal/config"
	"github.com/mkravchenko/blog-backend/internal/db"
	"github.com/mkravchenko/blog-backend/internal/events"
	"github.com/mkravchenko/blog-backend/internal/handlers"
	"github.com/mkravchenko/blog-backend/internal/httpserver"
	"github.com/mkravchenko/blog-backend/internal/logging"
	"github.com/mkravchenko/blog-backend/internal/middleware"
	"github.com/mkravchenko/blog-backend/internal/repo"
	"github.com/mkravchenko/blog-backend/internal/service"
	"github.com/mkravchenko/blog-backend/internal/tokens"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, "user_events")
		defer kp.Close()
		publisher = kp
	}

	authRepo := repo.New(gdb)
	issuer := tokens.NewIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authSvc := service.NewAuthService(authRepo, issuer, publisher, service.AllowlistGate(cfg.AdminEmails))

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Validator = handlers.NewRequestValidator()
	e.HTTPErrorHandler = httpserver.ErrorHandler(logger)
	e.Use(middleware.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: handlers.NewAuthHandler(authSvc, cfg.IsProduction()),
		AuthMW:      middleware.NewAuthMiddleware(issuer, authRepo),
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
