// Package server assembles the echo instance and runs it until its context
// is cancelled.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ahmedSabbahMohamed/police-app-v2/internal/config"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/controllers"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/metrics"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/repository"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/services"
)

// Deps carries what the HTTP layer needs. Repo and Service are nil when the
// database was skipped.
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Repo    repository.Repository
	Service services.CrimeService
}

// New builds the echo instance with middleware and every route registered.
func New(d Deps) *echo.Echo {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(log.Named("http")))
	e.Use(d.Metrics.Middleware())

	opts := controllers.Options{Debug: d.Config.AppDebug, Logger: log.Named("api")}

	controllers.NewHealthController(d.Repo, d.Config, opts).Register(e)
	e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))

	api := e.Group("/api")
	if d.Config.AppRequestTimeout > 0 {
		api.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Timeout: d.Config.AppRequestTimeout,
		}))
	}
	if d.Service == nil {
		api.Use(controllers.StoreUnavailable)
	}
	controllers.NewCrimeController(d.Service, opts).Register(api)
	controllers.NewCriminalController(d.Service, opts).Register(api)

	return e
}

func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				log.Error("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	})
}

// Run serves e on addr until ctx is done, then shuts down within grace.
func Run(ctx context.Context, e *echo.Echo, addr string, grace time.Duration, log *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		log.Info("shutting down http server")
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
