package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Abraxas-365/staffhub/pkg/asyncx"
	"github.com/Abraxas-365/staffhub/pkg/config"
	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
	"github.com/Abraxas-365/staffhub/pkg/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/segmentio/ksuid"
)

const (
	requestIDHeader = "X-Request-ID"
	healthTimeout   = 2 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	// 1. Configuration (logx configures itself from LOG_* on init)
	cfg, err := config.Load()
	if err != nil {
		logx.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Server.Debug {
		logx.SetLevel(logx.LevelDebug)
	}

	logx.Info("🚀 Starting Staffhub API Server...")

	// 2. Dependency container
	container := NewContainer(cfg)
	defer container.Cleanup()

	// 3. Fiber app
	app := fiber.New(fiber.Config{
		AppName:               "Staffhub API",
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
		BodyLimit:             1 * 1024 * 1024,
		IdleTimeout:           120 * time.Second,
	})

	// 4. Global middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.Server.Debug,
	}))

	app.Use(requestid.New(requestid.Config{
		Header: requestIDHeader,
		Generator: func() string {
			return ksuid.New().String()
		},
	}))

	app.Use(requestMeta)

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Refresh-Authorization, Sub-Id, X-Request-ID",
		AllowMethods:  "GET, POST, PUT, DELETE, HEAD, OPTIONS",
		ExposeHeaders: requestIDHeader,
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${reqHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	// 5. Health and info
	app.Get("/health", healthCheckHandler(container))
	app.Get("/", infoHandler(cfg))

	if container.UploadRoot != "" {
		app.Static(localAssetsPrefix, container.UploadRoot)
	}

	// 6. Routes
	mw := container.IAM.AuthMiddleware

	// /auth/login, /auth/refresh_token, /auth/logout, /auth/password/*
	container.IAM.AuthHandlers.RegisterRoutes(app, mw)
	logx.Info("✓ Auth routes registered")

	// /auth/register, /profile, /users/*, /user/*
	container.Directory.UserHandlers.RegisterRoutes(app, mw)
	logx.Info("✓ User routes registered")

	// /organizations, /branches, /areas, /roles
	container.OrgChart.Handlers.RegisterRoutes(app, mw)
	logx.Info("✓ Org chart routes registered")

	// 7. 404
	app.Use(notFoundHandler)

	// 8. Serve until signalled
	startServer(app, cfg.Server.Port)
}

// ============================================================================
// Middleware
// ============================================================================

// requestMeta copies caller details into the request context for audit records.
func requestMeta(c *fiber.Ctx) error {
	rid, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
	if rid == "" {
		rid = c.Get(requestIDHeader)
	}
	c.SetUserContext(kernel.WithRequestMeta(c.UserContext(), kernel.RequestMeta{
		RequestID: rid,
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}))
	return c.Next()
}

// ============================================================================
// Handlers
// ============================================================================

// healthCheckHandler pings the database and Redis concurrently.
func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		outcomes := asyncx.Settle(c.UserContext(), healthTimeout,
			asyncx.Check{Name: "db", Run: container.DB.PingContext},
			asyncx.Check{Name: "redis", Run: func(ctx context.Context) error {
				return container.Redis.Ping(ctx).Err()
			}},
		)

		health := fiber.Map{
			"status":  "healthy",
			"service": "staffhub-api",
			"version": container.Config.Server.Version,
		}
		status := fiber.StatusOK
		for _, o := range outcomes {
			if o.OK() {
				health[o.Name] = "healthy"
				continue
			}
			logx.WithError(o.Err).WithField("check", o.Name).Warn("health check failed")
			health[o.Name] = "unhealthy"
			health["status"] = "degraded"
			status = fiber.StatusServiceUnavailable
		}

		return c.Status(status).JSON(health)
	}
}

func infoHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "Staffhub API",
			"version": cfg.Server.Version,
			"endpoints": fiber.Map{
				"health": "/health",
				"auth":   "/auth/*",
				"users":  "/users, /user/:id, /profile",
				"org":    "/organizations, /branches, /areas, /roles",
			},
		})
	}
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(errx.Response{
		Error:     "Route not found",
		Code:      "NOT_FOUND",
		Type:      string(errx.TypeNotFound),
		RequestID: c.GetRespHeader(requestIDHeader),
	})
}

// ============================================================================
// Error Handler
// ============================================================================

// globalErrorHandler renders every error as errx.Response. Internal causes are
// logged, never returned.
func globalErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		wrapped := errx.Wrap(fe, fe.Message, fiberErrorType(fe.Code))
		wrapped.HTTPStatus = fe.Code
		err = wrapped
	}

	e := errx.From(err)
	status := errx.Status(e)
	rid := c.GetRespHeader(requestIDHeader)

	entry := logx.WithFields(logx.Fields{
		"path":       c.Path(),
		"method":     c.Method(),
		"status":     status,
		"code":       e.Code,
		"request_id": rid,
	})
	if status >= fiber.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.Debugf("request rejected: %s", e.Message)
	}

	return c.Status(status).JSON(e.ToResponse(rid))
}

func fiberErrorType(code int) errx.Type {
	switch {
	case code == fiber.StatusNotFound:
		return errx.TypeNotFound
	case code == fiber.StatusUnauthorized:
		return errx.TypeAuthentication
	case code == fiber.StatusForbidden:
		return errx.TypeAuthorization
	case code >= 400 && code < 500:
		return errx.TypeValidation
	}
	return errx.TypeInternal
}

// ============================================================================
// Server lifecycle
// ============================================================================

func startServer(app *fiber.App, port string) {
	go func() {
		logx.Info(strings.Repeat("=", 60))
		logx.Infof("🚀 Server listening on port %s", port)
		logx.Infof("💚 Health Check: http://localhost:%s/health", port)
		logx.Info(strings.Repeat("=", 60))

		if err := app.Listen(":" + port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	gracefulShutdown(app)
}

func gracefulShutdown(app *fiber.App) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logx.Infof("🛑 Received signal: %v", sig)
	logx.Info("Shutting down gracefully...")

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	logx.Info("✅ Server exited successfully")
}
