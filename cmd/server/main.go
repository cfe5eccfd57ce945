package main // Entry point package

import (
	"context"   // root context cancelled on shutdown signals
	"errors"    // distinguishing a clean server close
	"net/http"  // http.ErrServerClosed
	"os"        // exit codes
	"os/signal" // SIGINT/SIGTERM handling
	"syscall"   // SIGTERM
	"time"      // shutdown grace period

	"github.com/joho/godotenv"                       // optional .env loading for local runs
	"github.com/labstack/echo/v4"                    // Echo web framework
	"github.com/prometheus/client_golang/prometheus" // default metrics registry

	"github.com/altera-oes/backend/internal/config"     // env configuration
	"github.com/altera-oes/backend/internal/database"   // MySQL pool and migrations
	"github.com/altera-oes/backend/internal/handler"    // HTTP handlers
	"github.com/altera-oes/backend/internal/logging"    // structured logging
	"github.com/altera-oes/backend/internal/metrics"    // Prometheus collectors
	"github.com/altera-oes/backend/internal/middleware" // cache middleware and purger
	"github.com/altera-oes/backend/internal/queue"      // RabbitMQ publisher and consumers
	"github.com/altera-oes/backend/internal/repository" // MySQL repositories
	"github.com/altera-oes/backend/internal/router"     // route registration
	"github.com/altera-oes/backend/internal/service"    // auth flow
	"github.com/altera-oes/backend/internal/utils"      // token service
)

func main() {
	_ = godotenv.Load() // a missing .env is fine; real deployments use the environment

	cfg, err := config.Load()
	if err != nil {
		logging.New(true).Error(context.Background(), "invalid configuration", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.IsDev())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		log.Error(ctx, "database unavailable", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Error(ctx, "migrations failed", "err", err)
		os.Exit(1)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	tokens := utils.NewTokenService(cfg.JWTSecret, cfg.AccessTTL)
	auth := service.NewAuthService(repository.NewUserRepo(db), tokens, cfg.BcryptCost, log, m)

	// Redis is optional: without it listings are served uncached.
	rdb := config.NewRedisClient(ctx)
	if rdb != nil {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()

	events := queue.NewPublisher(cfg.RabbitMQURL, log)
	if events.Enabled() {
		workers := map[string]func(context.Context) error{
			"publisher":        events.Run,
			"contact consumer": (&queue.ContactConsumer{URL: cfg.RabbitMQURL, Dir: "logs", Log: log}).Run,
			"comment consumer": (&queue.CommentConsumer{URL: cfg.RabbitMQURL, Dir: "logs", Log: log}).Run,
		}
		for name, run := range workers {
			name, run := name, run
			go func() {
				if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error(ctx, name+" stopped", "err", err)
				}
			}()
		}
	} else {
		log.Info(ctx, "RABBITMQ_URL not set; events disabled")
	}

	e := echo.New()
	e.HidePort = true
	router.Setup(e, log, m, cfg.CORSOrigins)
	router.RegisterRoutes(e, db, prometheus.DefaultGatherer)
	router.RegisterAuth(e, handler.NewAuthHandler(auth, log))
	router.RegisterContact(e, &handler.ContactHandler{
		Contacts: repository.NewContactRepo(db),
		Events:   events,
		Log:      log,
	})
	router.RegisterComments(e, &handler.CommentHandler{
		Comments: repository.NewCommentRepo(db),
		Events:   events,
		Cache:    middleware.NewCachePurger(cacheCfg, rdb),
		Log:      log,
	}, tokens, middleware.NewRedisCache(cacheCfg, rdb))

	addr := ":" + cfg.Port
	go func() {
		log.Info(ctx, "listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "shutdown failed", "err", err)
	}
	log.Info(shutdownCtx, "server stopped")
}
