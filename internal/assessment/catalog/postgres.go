package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"migratio/internal/assessment/models"
	id "migratio/pkg/domain"
	"migratio/pkg/platform/sentinel"
)

// PostgresStore persists questions in the questions table. Rules, options
// and relevance factors are stored as JSONB.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const questionColumns = `id, text, type, section, sort_order, options, validation, rules,
	base_relevance, relevance_factors, requires_nlp, is_active`

func (s *PostgresStore) GetQuestion(ctx context.Context, qid id.QuestionID) (*models.Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1 AND is_active`, string(qid))
	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find question %s: %w", qid, err)
	}
	return q, nil
}

func (s *PostgresStore) InitialQuestionIDs(ctx context.Context, limit int) ([]id.QuestionID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM questions WHERE is_active ORDER BY sort_order, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list initial questions: %w", err)
	}
	defer rows.Close()

	ids := []id.QuestionID{}
	for rows.Next() {
		var qid string
		if err := rows.Scan(&qid); err != nil {
			return nil, fmt.Errorf("scan question id: %w", err)
		}
		ids = append(ids, id.QuestionID(qid))
	}
	return ids, rows.Err()
}

func (s *PostgresStore) CountActive(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM questions WHERE is_active`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active questions: %w", err)
	}
	return n, nil
}

// Upsert inserts or replaces questions by id in one transaction.
func (s *PostgresStore) Upsert(ctx context.Context, questions []models.Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO questions (`+questionColumns+`, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			type = EXCLUDED.type,
			section = EXCLUDED.section,
			sort_order = EXCLUDED.sort_order,
			options = EXCLUDED.options,
			validation = EXCLUDED.validation,
			rules = EXCLUDED.rules,
			base_relevance = EXCLUDED.base_relevance,
			relevance_factors = EXCLUDED.relevance_factors,
			requires_nlp = EXCLUDED.requires_nlp,
			is_active = EXCLUDED.is_active,
			updated_at = now()
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, q := range questions {
		args, err := questionArgs(q)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("upsert question %s: %w", q.ID, err)
		}
	}
	return tx.Commit()
}

// DeactivateExcept marks every question whose id is not in keep inactive and
// returns how many rows changed.
func (s *PostgresStore) DeactivateExcept(ctx context.Context, keep []id.QuestionID) (int64, error) {
	ids := make([]string, len(keep))
	for i, qid := range keep {
		ids[i] = string(qid)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE questions SET is_active = false, updated_at = now() WHERE is_active AND NOT (id = ANY($1))`,
		pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("deactivate questions: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (*models.Question, error) {
	var (
		q                                   models.Question
		qid, qtype                          string
		options, validation, rules, factors []byte
		baseRelevance                       float64
	)
	if err := row.Scan(&qid, &q.Text, &qtype, &q.Section, &q.Order, &options, &validation, &rules,
		&baseRelevance, &factors, &q.RequiresNlp, &q.IsActive); err != nil {
		return nil, err
	}
	q.ID = id.QuestionID(qid)
	q.Type = models.QuestionType(qtype)
	q.BaseRelevance = &baseRelevance

	for _, col := range []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"options", options, &q.Options},
		{"validation", validation, &q.Validation},
		{"rules", rules, &q.Rules},
		{"relevance_factors", factors, &q.RelevanceFactors},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return nil, fmt.Errorf("decode %s of question %s: %w", col.name, qid, err)
		}
	}
	return &q, nil
}

func questionArgs(q models.Question) ([]any, error) {
	encode := func(name string, v any) ([]byte, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s of question %s: %w", name, q.ID, err)
		}
		return b, nil
	}
	options, err := encode("options", nonNil(q.Options))
	if err != nil {
		return nil, err
	}
	validation, err := encode("validation", q.Validation)
	if err != nil {
		return nil, err
	}
	rules, err := encode("rules", nonNil(q.Rules))
	if err != nil {
		return nil, err
	}
	factors, err := encode("relevance_factors", nonNil(q.RelevanceFactors))
	if err != nil {
		return nil, err
	}
	return []any{
		string(q.ID), q.Text, string(q.Type), q.Section, q.Order,
		options, validation, rules, q.Relevance(), factors, q.RequiresNlp, q.IsActive,
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
