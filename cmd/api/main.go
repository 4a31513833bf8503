package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"schooldash/internal/audit"
	"schooldash/internal/config"
	"schooldash/internal/httpapi"
	"schooldash/internal/httpmiddleware"
	"schooldash/internal/queue"
	"schooldash/internal/roster"
	"schooldash/internal/school"
	"schooldash/internal/store"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	stores, db, err := store.Open(ctx, store.Options{
		Backend:     cfg.StoreBackend,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
		Remote: store.RemoteConfig{
			BaseURL:   cfg.RemoteBaseURL,
			ProjectID: cfg.RemoteProjectID,
			PublicKey: cfg.RemotePublicKey,
			Timeout:   cfg.RemoteTimeout,
		},
	}, store.NewMetrics(reg))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if cfg.SeedFixtures {
		n, err := store.Seed(ctx, stores)
		if err != nil {
			log.Printf("warning: seeding failed after %d records: %v", n, err)
		} else if n > 0 {
			log.Printf("seeded %d fixture records", n)
		}
	}

	health := map[string]httpapi.HealthCheck{}
	if db != nil {
		health["db"] = db.Healthy
	}

	var (
		events queue.Publisher
		audits audit.Sink
	)
	switch cfg.QueueBackend {
	case "redis":
		redisClient := store.NewRedis(cfg.RedisAddr)
		defer func() { _ = redisClient.Client.Close() }()
		events = queue.NewRedisQueue(redisClient.Client, cfg.QueueKey)
		audits = audit.RedisSink{Redis: redisClient}
		health["redis"] = redisClient.Healthy
	default:
		q := queue.NewInMemory(64)
		events = q
		audits = &audit.MemorySink{}
	}

	svc := school.New(stores, events).WithDroppedCounter(roster.NewDroppedCounter(reg))

	// Without a shared queue there is no separate worker, so writes are
	// audited in process.
	if q, ok := events.(*queue.InMemory); ok {
		watchCtx, stopWatch := context.WithCancel(ctx)
		defer stopWatch()
		msgs, err := q.Consume(watchCtx)
		if err != nil {
			return err
		}
		runner := audit.Runner{Scan: svc.Audit, Sink: audits}
		if _, err := runner.Run(watchCtx); err != nil {
			log.Printf("warning: initial audit failed: %v", err)
		}
		go runner.Watch(watchCtx, msgs)
	}

	r := httpapi.NewRouter(httpapi.Deps{
		Service: svc,
		Audits:  audits,
		Health:  health,
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Middleware: []gin.HandlerFunc{
			cors.New(cors.Config{
				AllowOrigins:  cfg.CORSOrigins,
				AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowHeaders:  []string{"Origin", "Content-Type", "Accept", httpmiddleware.RequestIDHeader},
				ExposeHeaders: []string{httpmiddleware.RequestIDHeader},
				MaxAge:        24 * time.Hour,
			}),
			httpmiddleware.SecurityHeaders(),
			httpmiddleware.RequestID(),
			httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware(),
		},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("starting server on :%s (store=%s, queue=%s)", cfg.HTTPPort, cfg.StoreBackend, cfg.QueueBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced shutdown: %v", err)
	}

	log.Println("server exited")
	return nil
}
