package internal

import (
	"context"
	"dashgate/internal/controllers"
	"dashgate/internal/providers"
	"dashgate/internal/session"
	"dashgate/internal/structures"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type App struct {
	WebServer *http.Server
}

// NewHandler assembles the HTTP surface: infrastructure endpoints plus the
// instrumented API behind CORS.
func NewHandler(conf *structures.Config, router providers.RouterProviderInterface, healthController *controllers.HealthController, metrics providers.MetricsProviderInterface, logger providers.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", healthController.Health)
	if conf.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Group(func(api chi.Router) {
		api.Use(providers.MetricsMiddleware(metrics, logger))
		for _, route := range router.GetRoutes() {
			api.Method(route.Method, route.Url, route.Handler)
		}
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   conf.WebServer.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", controllers.TabHeader},
		ExposedHeaders:   []string{controllers.TabHeader},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// runTabCleanup drops idle tabs until ctx is done.
func runTabCleanup(ctx context.Context, tabs *session.Registry, maxAge time.Duration) {
	every := max(maxAge/4, time.Minute)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tabs.Cleanup(maxAge)
		}
	}
}

func NewApp(conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, healthController *controllers.HealthController, tabs *session.Registry, metrics providers.MetricsProviderInterface) (*App, error) {
	logger.Infof(providers.TypeApp, "Starting %s", conf.AppName)

	app := &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      NewHandler(conf, router, healthController, metrics, logger),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: conf.Gateway.Timeout + 10*time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	if conf.Storage.TabTTL > 0 {
		go runTabCleanup(cleanupCtx, tabs, conf.Storage.TabTTL)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof(providers.TypeApp, "Listening HTTP clients on %s:%d", conf.WebServer.Host, conf.WebServer.Port)
		if err := app.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		return nil, fmt.Errorf("server error: %w", err)
	}

	stopCleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.WebServer.Shutdown(ctx); err != nil {
		return nil, err
	}
	logger.Infof(providers.TypeApp, "gracefully stopped")
	return app, nil
}
