package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"

	"expedientes/docs"
	"expedientes/internal/app"
	"expedientes/internal/config"
	handlers "expedientes/internal/http/handler"
	"expedientes/internal/http/middleware"
	"expedientes/internal/logging"
	"expedientes/internal/otel"
)

// @title Expedientes API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := cfg.Location()
	logger := logging.Setup(loc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		fatal(logger, "tracing_init_failed", err)
	}
	defer shutdownTracing(context.Background())

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		fatal(logger, "app_init_failed", err)
	}
	defer a.Close()

	prom, err := middleware.NewPrometheusMiddleware(a.Registry)
	if err != nil {
		fatal(logger, "metrics_init_failed", err)
	}

	srv := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	// RequestID adds/propagates X-Request-ID and stores it in context
	srv.Use(middleware.RequestID())
	srv.Use(otelfiber.Middleware())
	srv.Use(middleware.Logger(loc))
	srv.Use(prom.Handler())

	handlers.RegisterRoutes(srv, handlers.Deps{
		Cases:    a.Cases,
		Health:   a.Repo,
		Gate:     a.Gate,
		Tokens:   a.Tokens,
		Gatherer: a.Registry,
	})

	// Swagger UI with dynamic host and scheme
	srv.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		if err := srv.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("server_shutdown_failed", "error", err)
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("server_listening", "addr", addr, "timezone", loc.String())
	if err := srv.Listen(addr); err != nil {
		fatal(logger, "server_listen_failed", err)
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
