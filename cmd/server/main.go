// Command server runs the producer onboarding API.
//
// Backing stores degrade gracefully for development: without Redis the
// session store is in-memory, without Postgres the verification queue
// is in-memory, without Kafka the audit trail stays in-process.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	onboardinghandler "onboard/internal/onboarding/handler"
	"onboard/internal/onboarding/registry"
	"onboard/internal/onboarding/risk"
	onboardingservice "onboard/internal/onboarding/service"
	sessionstore "onboard/internal/onboarding/store/session"
	"onboard/internal/platform/config"
	"onboard/internal/platform/httpserver"
	"onboard/internal/platform/logger"
	"onboard/internal/platform/metrics"
	platformpostgres "onboard/internal/platform/postgres"
	platformredis "onboard/internal/platform/redis"
	"onboard/internal/prompt"
	verificationhandler "onboard/internal/verification/handler"
	"onboard/internal/verification/queue"
	verificationservice "onboard/internal/verification/service"
	"onboard/pkg/platform/audit"
	auditkafka "onboard/pkg/platform/audit/kafka"
	auditmemory "onboard/pkg/platform/audit/store/memory"
	"onboard/pkg/platform/audit/publisher"
	"onboard/pkg/platform/middleware/auth"
	"onboard/pkg/platform/middleware/metadata"
	"onboard/pkg/platform/middleware/requesttime"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	m := metrics.New(prometheus.DefaultRegisterer)

	// Session store: Redis when configured, in-memory otherwise.
	var sessions sessionstore.Store = sessionstore.New()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		sessions = sessionstore.NewRedis(redisClient.Client, sessionstore.WithTTL(cfg.Redis.SessionTTL))
		defer redisClient.Close()
		log.Info("using redis session store")
	}

	// Verification queue: Postgres when configured.
	var verificationQueue queue.Queue = queue.NewMemory()
	pool, err := platformpostgres.Connect(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres unavailable", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		pgQueue := queue.NewPostgres(pool)
		if err := pgQueue.EnsureSchema(ctx); err != nil {
			log.Error("verification queue schema", "error", err)
			os.Exit(1)
		}
		verificationQueue = pgQueue
		defer pool.Close()
		log.Info("using postgres verification queue")
	}

	// Audit trail: Kafka when configured.
	var auditStore audit.Store = auditmemory.NewInMemoryStore()
	var kafkaStore *auditkafka.Store
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaStore, err = auditkafka.New(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			log.Error("kafka unavailable", "error", err)
			os.Exit(1)
		}
		auditStore = kafkaStore
		defer kafkaStore.Close()
		log.Info("using kafka audit trail", "topic", cfg.Kafka.AuditTopic)
	}
	auditPub := publisher.NewPublisher(auditStore, publisher.WithAsyncBuffer(1024))
	defer auditPub.Close()

	reg := registry.Default()
	scheduler := verificationservice.New(verificationQueue, auditPub, m, log)
	engine := onboardingservice.New(
		sessions,
		reg,
		risk.NewScorer(reg),
		prompt.NewTemplatePrompter(),
		scheduler,
		auditPub,
		m,
		log,
		onboardingservice.Config{
			ReviewThreshold: cfg.ReviewThreshold,
			MaxAttempts:     cfg.MaxAttempts,
		},
	)

	onboardingH := onboardinghandler.New(engine, log)
	verificationH := verificationhandler.New(scheduler, log)

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(metadata.Middleware)
	router.Use(requesttime.Middleware)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(auth.RequireBearer(cfg.JWTSigningKey, log))
		onboardingH.Register(r)
		verificationH.Register(r)
	})
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAdminToken(cfg.AdminToken, log))
		onboardingH.RegisterAdmin(r)
		verificationH.RegisterAdmin(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		log.Info("starting onboarding server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
