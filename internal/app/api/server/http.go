package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/steamwatch/docs"
	"github.com/fatflowers/steamwatch/internal/app/api/handlers"
	mw "github.com/fatflowers/steamwatch/internal/app/api/middleware"
	"github.com/fatflowers/steamwatch/internal/app/service/catalog"
	"github.com/fatflowers/steamwatch/internal/app/service/pricealert"
	"github.com/fatflowers/steamwatch/internal/app/service/pricesync"
	"github.com/fatflowers/steamwatch/internal/app/service/statistics"
	"github.com/fatflowers/steamwatch/internal/app/service/watchlist"
	cfgpkg "github.com/fatflowers/steamwatch/pkg/config"
	metrics "github.com/fatflowers/steamwatch/pkg/metrics"
)

// Services groups everything the routes need.
type Services struct {
	fx.In

	DB         *gorm.DB
	Catalog    *catalog.Service
	Statistics *statistics.Service
	Watchlist  *watchlist.Service
	PriceSync  *pricesync.Service
	PriceAlert *pricealert.Service
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

func registerRoutes(r *gin.Engine, log *zap.SugaredLogger, cfg *cfgpkg.Config, svc Services) error {
	if cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{Logger: log})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	sqlDB, err := svc.DB.DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	handlers.RegisterHealthRoutes(pub, sqlDB)
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterGameRoutes(apiV1, svc.Catalog, svc.Statistics)
	handlers.RegisterWatchlistRoutes(apiV1, svc.Watchlist)
	handlers.RegisterRegionRoutes(apiV1)
	handlers.RegisterAdminRoutes(apiV1.Group("/admin"), cfg.Jobs.CronSecret, svc.Watchlist, svc.Statistics)

	cron := r.Group("/api/cron")
	cron.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	if cfg.Jobs.CronSecret == "" {
		log.Warnw("cron secret not set, job triggers are unauthenticated")
	}
	handlers.RegisterCronRoutes(cron, cfg.Jobs.CronSecret, svc.PriceSync, svc.PriceAlert)
	return nil
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			// sync-prices can run for minutes; let an in-flight trigger finish
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
