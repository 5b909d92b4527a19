// Command seed validates a question set and loads it into the Postgres
// catalog. Without -file it loads the bundled questions.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"migratio/internal/assessment/catalog"
	"migratio/internal/platform/config"
	"migratio/internal/platform/logger"
	"migratio/internal/platform/postgres"
	id "migratio/pkg/domain"
)

func main() {
	file := flag.String("file", "", "question set to load (YAML or JSON); defaults to the bundled set")
	prune := flag.Bool("prune", false, "deactivate stored questions missing from the set")
	dryRun := flag.Bool("dry-run", false, "validate only")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *file, *prune, *dryRun); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger, file string, prune, dryRun bool) error {
	spec, issues, err := load(file)
	if err != nil {
		return err
	}
	for _, issue := range issues {
		log.Warn("question set warning", "field", issue.Field, "message", issue.Message)
	}
	log.Info("question set valid",
		"questions", len(spec.Questions),
		"quiz_version", spec.QuizVersion,
		"warnings", len(issues),
	)
	if dryRun {
		return nil
	}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	if db == nil {
		return errors.New("seed requires MIGRATIO_DATABASE_URL")
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	store := catalog.NewPostgres(db)
	if err := store.Upsert(ctx, spec.Questions); err != nil {
		return fmt.Errorf("upsert questions: %w", err)
	}
	log.Info("questions upserted", "count", len(spec.Questions))

	if prune {
		keep := make([]id.QuestionID, 0, len(spec.Questions))
		for _, q := range spec.Questions {
			keep = append(keep, q.ID)
		}
		n, err := store.DeactivateExcept(ctx, keep)
		if err != nil {
			return fmt.Errorf("prune questions: %w", err)
		}
		log.Info("questions deactivated", "count", n)
	}
	return nil
}

func load(file string) (catalog.Spec, []catalog.Issue, error) {
	if file == "" {
		return catalog.DefaultSpec()
	}
	return catalog.LoadFile(file)
}
