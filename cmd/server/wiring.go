package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"migratio/internal/assessment/bootstrap"
	"migratio/internal/assessment/enrichment"
	assessmenthandler "migratio/internal/assessment/handler"
	assessmentmetrics "migratio/internal/assessment/metrics"
	"migratio/internal/assessment/ports"
	"migratio/internal/assessment/service"
	jwttoken "migratio/internal/jwt_token"
	"migratio/internal/platform/config"
		"migratio/internal/platform/kafka"
	"migratio/internal/platform/metrics"
	"migratio/internal/platform/middleware"
	"migratio/internal/platform/postgres"
	"migratio/internal/platform/ratelimit"
	"migratio/internal/platform/redis"
	"migratio/pkg/platform/httputil"
)

const topicPartitions = 6

type emitter interface {
	ports.EventEmitter
	Close(ctx context.Context) error
}

var _ emitter = (*enrichment.Dispatcher)(nil)

type app struct {
	router http.Handler
	closers []func(context.Context) error
}

func (a *app) close(ctx context.Context) []error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errs
}

func buildApp(ctx context.Context, cfg config.Server, log *slog.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.close(context.Background())
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	if db != nil {
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
		if err := postgres.Migrate(ctx, db); err != nil {
			return nil, err
		}
	}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	var redisClient *goredis.Client
	if rdb != nil {
		a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
		redisClient = rdb.Client
	}

	questions, err := bootstrap.NewCatalog(cfg.Catalog, db, log)
	if err != nil {
		return nil, err
	}
	sessions, err := bootstrap.NewSessionStore(cfg, db, redisClient)
	if err != nil {
		return nil, err
	}
	collab := bootstrap.NewCollaborators(cfg.Services, log)

	events, err := newEmitter(ctx, cfg, collab, log, reg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, events.Close)

	svc := service.New(questions, sessions, collab.Profiles, collab.Recommendation, events,
		service.WithLogger(log),
		service.WithMetrics(assessmentmetrics.New(reg)),
		service.WithCompletionHook(collab.Completion),
		service.WithInitialQuestions(cfg.Engine.InitialQuestions),
		service.WithQuizVersion(cfg.Engine.QuizVersion),
		service.WithTxTimeout(cfg.Engine.TxTimeout),
	)

	a.router = newRouter(cfg, log, reg, svc, db, rdb)
	return a, nil
}

// newEmitter publishes enrichment events to Kafka when brokers are
// configured; otherwise a worker pool handles them in-process.
func newEmitter(
	ctx context.Context,
	cfg config.Server,
	collab bootstrap.Collaborators,
	log *slog.Logger,
	reg prometheus.Registerer,
) (emitter, error) {
	m := enrichment.NewMetrics(reg)
	if len(cfg.Kafka.Brokers) > 0 {
		client, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		if err := kafka.EnsureTopic(ctx, client, cfg.Kafka.Topic, topicPartitions); err != nil {
			client.Close()
			return nil, err
		}
		publisher := enrichment.NewKafkaPublisher(client, cfg.Kafka.Topic,
			enrichment.WithPublisherLogger(log),
			enrichment.WithPublisherMetrics(m),
		)
		return &kafkaEmitter{KafkaPublisher: publisher, close: client.Close}, nil
	}

	handler := enrichment.NewHandler(collab.Profiles, collab.Nlp, cfg.Enrichment.Timeout)
	return enrichment.NewDispatcher(handler,
		enrichment.WithLogger(log),
		enrichment.WithMetrics(m),
		enrichment.WithWorkers(cfg.Enrichment.Workers),
		enrichment.WithBuffer(cfg.Enrichment.Buffer),
	), nil
}

type kafkaEmitter struct {
	*enrichment.KafkaPublisher
	close func()
}

func (e *kafkaEmitter) Close(ctx context.Context) error {
	defer e.close()
	return e.KafkaPublisher.Close(ctx)
}

func newRouter(
	cfg config.Server,
	log *slog.Logger,
	reg *prometheus.Registry,
	svc *service.Service,
	db *sql.DB,
	rdb *redis.Client,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(metrics.New(reg).Instrument)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if db != nil {
			if err := db.PingContext(req.Context()); err != nil {
				log.WarnContext(req.Context(), "health check failed", "dependency", "postgres", "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		if rdb != nil {
			if err := rdb.Health(req.Context()); err != nil {
				log.WarnContext(req.Context(), "health check failed", "dependency", "redis", "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	validator := jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer))
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, log))
		r.Use(newLimiter(cfg.RateLimit, rdb, log).PerUser)
		assessmenthandler.New(svc, log).Register(r)
	})
	return r
}

func newLimiter(cfg config.RateLimitConfig, rdb *redis.Client, log *slog.Logger) *ratelimit.Limiter {
	var store ratelimit.Store = ratelimit.NewMemoryStore()
	if rdb != nil {
		store = ratelimit.NewRedisStore(rdb.Client)
	}
	return ratelimit.New(store, cfg.PerUser, cfg.Window, log)
}
