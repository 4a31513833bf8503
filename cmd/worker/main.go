package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"schooldash/internal/audit"
	"schooldash/internal/config"
	"schooldash/internal/queue"
	"schooldash/internal/school"
	"schooldash/internal/store"
)

// Worker consumes mutation events and keeps the orphan audit current: once
// on start, after every write and on a fixed schedule.
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.QueueBackend != "redis" {
		log.Fatalf("worker needs QUEUE_BACKEND=redis, got %q", cfg.QueueBackend)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

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
	}, nil)
	if err != nil {
		log.Fatalf("store open failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer func() { _ = redisClient.Client.Close() }()
	if !redisClient.Healthy(ctx) {
		log.Printf("WARNING: redis at %s not reachable, consumer will keep retrying", cfg.RedisAddr)
	}

	// The worker only reads, so no events are published.
	svc := school.New(stores, nil)
	runner := audit.Runner{Scan: svc.Audit, Sink: audit.RedisSink{Redis: redisClient}}

	if _, err := runner.Run(ctx); err != nil {
		log.Printf("initial audit failed: %v", err)
	}

	sched := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := sched.AddFunc(cfg.AuditSchedule, func() {
		if _, err := runner.Run(ctx); err != nil {
			log.Printf("scheduled audit failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("invalid AUDIT_SCHEDULE %q: %v", cfg.AuditSchedule, err)
	}
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	messages, err := queue.NewRedisQueue(redisClient.Client, cfg.QueueKey).Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Printf("worker started on %s, audit schedule %q", cfg.QueueKey, cfg.AuditSchedule)
	runner.Watch(ctx, messages)
	log.Println("worker stopped")
}
