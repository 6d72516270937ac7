package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "orbitwatch/docs"
	"orbitwatch/internal/cache"
	"orbitwatch/internal/client/celestrak"
	"orbitwatch/internal/client/spacetrack"
	"orbitwatch/internal/config"
	cronrunner "orbitwatch/internal/cron"
	"orbitwatch/internal/db"
	"orbitwatch/internal/detector"
	"orbitwatch/internal/handler"
	"orbitwatch/internal/logger"
	"orbitwatch/internal/metrics"
	"orbitwatch/internal/repository"
	gormrepository "orbitwatch/internal/repository/gorm"
	"orbitwatch/internal/repository/memory"
	"orbitwatch/internal/service"
	signalemitter "orbitwatch/internal/signal"
	"orbitwatch/internal/source"
)

func main() {
	cfgPath := os.Getenv("ORBIT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("ORBIT_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var (
		store  repository.Repository
		dbConn *db.DB
	)
	if cfg.App.DryRun {
		logger.Info("dry run, writes stay in memory")
		store = memory.New()
	} else {
		dbConn, err = db.Open(cfg.DB)
		if err != nil {
			logger.Fatal("db open failed", zap.Error(err))
		}
		defer db.Close(dbConn)
		if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
			logger.Warn("failed to set timezone", zap.Error(err))
		}
		if err := db.AutoMigrate(dbConn); err != nil {
			logger.Fatal("auto-migrate failed", zap.Error(err))
		}
		store = gormrepository.New(dbConn.Gorm)
	}

	sessionCache := cache.New(cfg.SessionCache)
	if closer, ok := sessionCache.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	recorder := metrics.New()
	thresholds := detector.FromConfig(cfg.Thresholds)

	celestrakSource := &source.CelestrakSource{
		Client: celestrak.NewClient(&http.Client{Timeout: cfg.Celestrak.Timeout}, cfg.Celestrak.BaseURL),
		Group:  cfg.Celestrak.Group,
		Logger: logger.Named("celestrak"),
	}
	spaceTrackSource := &source.SpaceTrackSource{
		Client: spacetrack.NewClient(
			&http.Client{Timeout: cfg.SpaceTrack.Timeout},
			cfg.SpaceTrack.BaseURL,
			cfg.SpaceTrack.Identity,
			cfg.SpaceTrack.Password,
			cfg.SpaceTrack.SessionTTL,
		),
		Credentials: &spacetrack.CredentialHolder{Cache: sessionCache},
		Logger:      logger.Named("spacetrack"),
	}

	names := cfg.WatchlistNames()
	watchlist := make([]string, 0, len(names))
	for id := range names {
		watchlist = append(watchlist, id)
	}
	if len(watchlist) == 0 {
		logger.Fatal("watchlist is empty")
	}

	runService := &service.TelemetryRunService{
		Repo:      store,
		Primary:   celestrakSource,
		Secondary: spaceTrackSource,
		Health:    detector.NewHealthDetector(thresholds),
		Maneuver:  detector.NewManeuverDetector(thresholds),
		Emitter:   signalemitter.NewEmitter(store, names, logger.Named("signal"), recorder),
		Watchlist: watchlist,
		Options: service.RunOptions{
			Budget:         cfg.Run.Budget,
			FetchTimeout:   cfg.Run.FetchTimeout,
			DetectGrace:    cfg.Run.DetectGrace,
			HealthWindow:   cfg.History.HealthWindow,
			ManeuverWindow: cfg.History.ManeuverWindow,
			TrailingCap:    cfg.History.TrailingRowCap,
		},
		Metrics: recorder,
		Logger:  logger.Named("run"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !strings.EqualFold(cfg.App.Mode, "serve") {
		report, err := runService.RunOnce(ctx)
		if err != nil {
			logger.Error("telemetry run failed", zap.Error(err))
			stop()
			logger.Sync()
			os.Exit(1)
		}
		logger.Info("telemetry run finished",
			zap.String("run_id", report.ID),
			zap.Int("signals", report.SignalsCreated),
			zap.Bool("degraded", report.Degraded),
		)
		return
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(handler.RequireBearer(cfg.Server.APIToken))
	engine.Use(handler.WriteAudit(logger.Named("http")))

	healthHandler := &handler.HealthHandler{DryRun: cfg.App.DryRun}
	if dbConn != nil {
		healthHandler.DB = dbConn.SQL
	}
	healthHandler.Register(engine)
	runHandler := &handler.RunHandler{
		Runner:  runService,
		Repo:    store,
		Metrics: recorder,
		Logger:  logger,
	}
	runHandler.Register(engine)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Schedule.Enabled {
		_, err = cronRunner.Add("telemetry_run", cfg.Schedule.Ingest, func(ctx context.Context) {
			if _, err := runService.RunOnce(ctx); err != nil {
				logger.Warn("cron telemetry run failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Fatal("cron schedule invalid", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	if cfg.Schedule.RunOnBoot {
		go func() {
			if _, err := runService.RunOnce(ctx); err != nil {
				logger.Warn("boot telemetry run failed", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
