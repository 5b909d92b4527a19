// Package bootstrap assembles the assessment components from configuration.
// The binaries under cmd/ share it so the server and the worker agree on
// which collaborator and store implementations are in play.
package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"migratio/internal/assessment/adapters/httpapi"
	"migratio/internal/assessment/adapters/local"
	"migratio/internal/assessment/catalog"
	"migratio/internal/assessment/ports"
	sessionstore "migratio/internal/assessment/store/session"
	"migratio/internal/platform/config"
)

// Collaborators are the external services the engine and the enrichment
// handler call.
type Collaborators struct {
	Profiles       ports.ProfileService
	Recommendation ports.RecommendationService
	Completion     ports.CompletionHook
	Nlp            ports.NlpService
}

// NewCollaborators picks an HTTP client for every configured service URL and
// the in-process adapter otherwise.
func NewCollaborators(cfg config.ServicesConfig, logger *slog.Logger) Collaborators {
	opts := []httpapi.Option{
		httpapi.WithTimeout(cfg.HTTPTimeout),
		httpapi.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
	}

	var c Collaborators
	if cfg.ProfileURL != "" {
		c.Profiles = httpapi.NewProfileClient(cfg.ProfileURL, opts...)
	} else {
		logger.Warn("no profile service configured, using in-process profile store")
		c.Profiles = local.NewProfileStore()
	}

	if cfg.RecommendationURL != "" {
		client := httpapi.NewRecommendationClient(cfg.RecommendationURL, opts...)
		c.Recommendation, c.Completion = client, client
	} else {
		heuristic := local.NewHeuristicRecommender()
		c.Recommendation, c.Completion = heuristic, heuristic
	}

	if cfg.NlpURL != "" {
		c.Nlp = httpapi.NewNlpClient(cfg.NlpURL, opts...)
	} else {
		c.Nlp = local.NewKeywordAnalyzer()
	}
	return c
}

// NewCatalog serves questions from Postgres when a database is configured,
// and otherwise from memory, seeded from cfg.SeedFile or the bundled set.
func NewCatalog(cfg config.CatalogConfig, db *sql.DB, logger *slog.Logger) (*catalog.Catalog, error) {
	opts := []catalog.Option{catalog.WithCountTTL(cfg.CountTTL)}
	if db != nil {
		return catalog.New(catalog.NewPostgres(db), opts...), nil
	}

	var (
		spec   catalog.Spec
		issues []catalog.Issue
		err    error
	)
	if cfg.SeedFile != "" {
		spec, issues, err = catalog.LoadFile(cfg.SeedFile)
	} else {
		spec, issues, err = catalog.DefaultSpec()
	}
	if err != nil {
		return nil, fmt.Errorf("load question set: %w", err)
	}
	for _, issue := range issues {
		logger.Warn("question set warning",
			"warning", "catalog_reference",
			"field", issue.Field,
			"message", issue.Message,
		)
	}
	logger.Info("serving in-memory question catalog",
		"questions", len(spec.Questions),
		"quiz_version", spec.QuizVersion,
	)
	return catalog.New(catalog.NewMemory(spec.Questions...), opts...), nil
}

// NewSessionStore returns the backend named by cfg.SessionStore.
func NewSessionStore(cfg config.Server, db *sql.DB, rdb *redis.Client) (ports.SessionRepository, error) {
	switch cfg.Engine.SessionStore {
	case config.StoreMemory:
		return sessionstore.New(), nil
	case config.StoreRedis:
		if rdb == nil {
			return nil, fmt.Errorf("session store %q needs a redis client", config.StoreRedis)
		}
		return sessionstore.NewRedis(rdb, cfg.Redis.SessionTTL), nil
	case config.StorePostgres:
		if db == nil {
			return nil, fmt.Errorf("session store %q needs a database", config.StorePostgres)
		}
		return sessionstore.NewPostgres(db), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Engine.SessionStore)
	}
}
