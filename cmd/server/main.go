package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/cegyard/dock-scheduler/internal/config"
	"github.com/cegyard/dock-scheduler/internal/database"
	"github.com/cegyard/dock-scheduler/internal/handler"
	"github.com/cegyard/dock-scheduler/internal/kvstore"
	"github.com/cegyard/dock-scheduler/internal/middleware"
	"github.com/cegyard/dock-scheduler/internal/queue"
	"github.com/cegyard/dock-scheduler/internal/repository"
	"github.com/cegyard/dock-scheduler/internal/router"
	"github.com/cegyard/dock-scheduler/internal/service"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if os.Getenv("LOG_LEVEL") == "debug" {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	// Repositories
	cargas := repository.NewCargaRepo(db)
	frotas := repository.NewFrotaRepo(db)
	yardRepo := repository.NewYardRepo(db)
	alteracoes := repository.NewAlteracaoRepo(db)
	agendamentos := repository.NewAgendamentoRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Redis backs the rate limiter, the response cache, the fleet queue
	// and shift preferences. When unreachable the limiter and cache
	// switch off and the key-value store falls back to process memory.
	rdb := config.NewRedisClient()
	var kv kvstore.Store
	if rdb != nil {
		kv = kvstore.NewRedisStore(rdb, "dock")
	} else {
		log.Warn("redis unavailable, fleet queue and preferences held in memory only")
		kv = kvstore.NewMemoryStore()
	}

	publish := func(ctx context.Context, ev queue.CargaChangedEvent) {
		// Broker outages must not fail mutations.
		go func() { _ = service.PublishCargaChanged(context.Background(), log, ev) }()
	}

	occupationLimit := time.Duration(cfg.OccupationLimitHrs) * time.Hour
	h := router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Cargas:       handler.NewCargaHandler(cargas, alteracoes, log, publish, occupationLimit),
		Frotas:       handler.NewFrotaHandler(frotas, yardRepo, log),
		Alteracoes:   handler.NewAlteracaoHandler(alteracoes),
		Agendamentos: handler.NewAgendamentoHandler(agendamentos),
		Fila:         handler.NewFilaHandler(kvstore.NewFleetQueue(kv), cargas),
		Preferencias: handler.NewPreferenciaHandler(kv),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, h.Auth, cfg.JWTSecret)
	router.RegisterAPI(e, h, cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	)

	// Background workers: board sync, occupation scan, change consumer.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncer := service.NewSyncer(cargas, log, time.Duration(cfg.SyncIntervalMin)*time.Minute)
	go syncer.Run(ctx)
	scanner := service.NewOccupationScanner(syncer, log,
		time.Duration(cfg.OccupationScanMin)*time.Minute, occupationLimit)
	go scanner.Run(ctx)
	go queue.StartChangeConsumer(log)

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("server starting")
		if err := e.Start(addr); err != nil {
			log.WithError(err).Info("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
