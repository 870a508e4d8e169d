package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	authhandler "familydir/internal/auth/handler"
	authservice "familydir/internal/auth/service"
	authstore "familydir/internal/auth/store"
	"familydir/internal/directory/authority"
	directoryhandler "familydir/internal/directory/handler"
	"familydir/internal/directory/kinship"
	directorymetrics "familydir/internal/directory/metrics"
	directoryservice "familydir/internal/directory/service"
	householdstore "familydir/internal/directory/store/household"
	maritalstore "familydir/internal/directory/store/marital"
	personstore "familydir/internal/directory/store/person"
	relationshipstore "familydir/internal/directory/store/relationship"
	jwttoken "familydir/internal/jwt_token"
	"familydir/internal/platform/config"
	"familydir/internal/platform/httpserver"
	"familydir/internal/platform/kafka"
	"familydir/internal/platform/logger"
	"familydir/internal/platform/metrics"
	"familydir/internal/platform/postgres"
	"familydir/internal/platform/redis"
	ratelimitmetrics "familydir/internal/ratelimit/metrics"
	ratelimitmw "familydir/internal/ratelimit/middleware"
	"familydir/internal/ratelimit/store/bucket"
	settingshandler "familydir/internal/settings/handler"
	settingsservice "familydir/internal/settings/service"
	settingsstore "familydir/internal/settings/store"
	"familydir/pkg/platform/audit/publishers/compliance"
	auditpostgres "familydir/pkg/platform/audit/store/postgres"
	"familydir/pkg/platform/audit/worker"
	"familydir/pkg/platform/httputil"
	authmw "familydir/pkg/platform/middleware/auth"
	"familydir/pkg/platform/middleware/metadata"
	"familydir/pkg/platform/middleware/request"
	"familydir/pkg/platform/middleware/requesttime"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.New(registry)
	dirMetrics := directorymetrics.New(registry)

	txRunner := postgres.NewTxRunner(db, cfg.Database.TxTimeout)
	auditStore := auditpostgres.New(db)
	auditPublisher := compliance.New(auditStore,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics(registry)),
	)

	people := personstore.NewPostgres(db)
	households := householdstore.NewPostgres(db)
	marriages := maritalstore.NewPostgres(db)
	relationships := relationshipstore.NewPostgres(db)
	stores := directoryservice.Stores{
		People:        people,
		Households:    households,
		Marriages:     marriages,
		Relationships: relationships,
	}

	evaluator := authority.New(people, households, relationships, marriages, authority.WithMetrics(dirMetrics))
	labeler := kinship.New(people, kinship.WithMetrics(dirMetrics))
	serviceOpts := []directoryservice.Option{
		directoryservice.WithLogger(log),
		directoryservice.WithAuditPublisher(auditPublisher),
		directoryservice.WithTx(txRunner),
		directoryservice.WithMetrics(dirMetrics),
	}
	personService := directoryservice.NewPersonService(stores, labeler, evaluator, serviceOpts...)
	householdService := directoryservice.NewHouseholdService(stores, evaluator, serviceOpts...)

	settingsService := settingsservice.New(settingsstore.NewPostgres(db),
		settingsservice.WithLogger(log),
		settingsservice.WithAuditPublisher(auditPublisher),
	)

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.SessionTTL)
	var links authservice.LinkStore = authstore.NewInMemoryStore()
	var buckets ratelimitmw.BucketStore = bucket.NewInMemoryBucketStore()
	if redisClient != nil {
		links = authstore.NewRedis(redisClient.Client)
		buckets = bucket.NewRedis(redisClient.Client)
	} else {
		log.Warn("REDIS_URL not set; login links and rate limits are kept in process memory")
	}
	authService := authservice.New(people, links, jwtService, authservice.NewLogMailer(log),
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(auditPublisher),
		authservice.WithLinkTTL(cfg.Auth.MagicLinkTTL),
		authservice.WithBaseURL(cfg.Auth.MagicLinkBase),
	)

	limiter := ratelimitmw.New(buckets, cfg.Limits.AuthLimit, cfg.Limits.AuthWindow, log,
		ratelimitmw.WithDisabled(cfg.Limits.Disabled),
		ratelimitmw.WithMetrics(ratelimitmetrics.New(registry)),
	)

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close()
		if err := producer.EnsureTopic(ctx, 1, 1); err != nil {
			log.Warn("failed to ensure audit topic", "error", err)
		}
		relay := worker.NewRelay(auditStore, producer, txRunner.RunInTx,
			worker.WithLogger(log),
			worker.WithInterval(cfg.Kafka.PollInterval),
			worker.WithBatchSize(cfg.Kafka.BatchSize),
		)
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit relay stopped", "error", err)
			}
		}()
	} else {
		log.Info("KAFKA_BROKERS not set; audit events stay in the outbox")
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recover(log))
	r.Use(request.Logger(log))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(httpMetrics.Middleware)

	r.Handle("/metrics", httpMetrics.Handler())
	r.Get("/healthz", healthHandler(db, redisClient))

	settings := settingshandler.New(settingsService, log)
	r.Route("/api", func(api chi.Router) {
		api.Use(request.Timeout(cfg.Server.RequestTimeout))
		api.Group(func(public chi.Router) {
			public.Use(limiter.LimitByIP("auth"))
			authhandler.New(authService, cfg.Server.FrontendURL, log).Register(public)
		})
		settings.RegisterPublic(api)

		api.Group(func(protected chi.Router) {
			protected.Use(authmw.RequireAuth(jwttoken.NewJWTServiceAdapter(jwtService), people, log))
			directoryhandler.New(personService, householdService, log).Register(protected)
			settings.Register(protected)
		})
	})

	srv := httpserver.New(cfg.Server, r)
	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting familydir", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
}

func healthHandler(db *sql.DB, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Database: "ok"}
		status := http.StatusOK
		if err := db.PingContext(ctx); err != nil {
			resp.Status, resp.Database = "degraded", "unreachable"
			status = http.StatusServiceUnavailable
		}
		if redisClient != nil {
			resp.Redis = "ok"
			if err := redisClient.Health(ctx); err != nil {
				resp.Status, resp.Redis = "degraded", "unreachable"
				status = http.StatusServiceUnavailable
			}
		}
		httputil.WriteJSON(w, status, resp)
	}
}
