package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"migratio/internal/assessment/models"
	"migratio/internal/platform/postgres"
	id "migratio/pkg/domain"
	"migratio/pkg/platform/sentinel"
)

// PostgresStore persists sessions in assessment_sessions. A partial unique
// index on user_id backs the one-in-progress-session rule.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const sessionColumns = `id, user_id, status, responses, remaining_question_ids, skipped_question_ids,
	last_question_id, current_question_id, completion_percentage, quiz_version, version,
	started_at, updated_at, completed_at`

func (s *PostgresStore) Create(ctx context.Context, session *models.Session) error {
	responses, err := json.Marshal(session.Responses)
	if err != nil {
		return fmt.Errorf("encode responses: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessment_sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, $11, $12, $13)
	`,
		uuid.UUID(session.ID), uuid.UUID(session.UserID), string(session.Status), responses,
		pq.Array(questionIDStrings(session.RemainingQuestionIDs)),
		pq.Array(questionIDStrings(session.SkippedQuestionIDs)),
		string(session.LastQuestionID), string(session.CurrentQuestionID),
		session.CompletionPercentage, session.QuizVersion,
		session.StartedAt, session.UpdatedAt, session.CompletedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert session: %w", err)
	}
	session.Version = 1
	return nil
}

func (s *PostgresStore) FindActiveByUser(ctx context.Context, userID id.UserID) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM assessment_sessions WHERE user_id = $1 AND status = 'in_progress'`,
		uuid.UUID(userID))
	return scanSession(row)
}

func (s *PostgresStore) FindByIDForUser(ctx context.Context, sessionID id.SessionID, userID id.UserID) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM assessment_sessions
		 WHERE id = $1 AND user_id = $2 AND status = 'in_progress'`,
		uuid.UUID(sessionID), uuid.UUID(userID))
	return scanSession(row)
}

// Save writes the session if the stored version still matches and bumps it.
func (s *PostgresStore) Save(ctx context.Context, session *models.Session) error {
	responses, err := json.Marshal(session.Responses)
	if err != nil {
		return fmt.Errorf("encode responses: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE assessment_sessions SET
			status = $3,
			responses = $4,
			remaining_question_ids = $5,
			skipped_question_ids = $6,
			last_question_id = $7,
			current_question_id = $8,
			completion_percentage = $9,
			quiz_version = $10,
			updated_at = $11,
			completed_at = $12,
			version = version + 1
		WHERE id = $1 AND version = $2
	`,
		uuid.UUID(session.ID), session.Version, string(session.Status), responses,
		pq.Array(questionIDStrings(session.RemainingQuestionIDs)),
		pq.Array(questionIDStrings(session.SkippedQuestionIDs)),
		string(session.LastQuestionID), string(session.CurrentQuestionID),
		session.CompletionPercentage, session.QuizVersion,
		session.UpdatedAt, session.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM assessment_sessions WHERE id = $1)`,
			uuid.UUID(session.ID)).Scan(&exists); err != nil {
			return fmt.Errorf("check session: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrConflict
	}
	session.Version++
	return nil
}

func scanSession(row *sql.Row) (*models.Session, error) {
	var (
		session            models.Session
		sessionID, userID  uuid.UUID
		status             string
		responses          []byte
		remaining, skipped pq.StringArray
		lastID, currentID  string
		completedAt        sql.NullTime
	)
	err := row.Scan(&sessionID, &userID, &status, &responses, &remaining, &skipped,
		&lastID, &currentID, &session.CompletionPercentage, &session.QuizVersion, &session.Version,
		&session.StartedAt, &session.UpdatedAt, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	session.ID = id.SessionID(sessionID)
	session.UserID = id.UserID(userID)
	session.Status = models.SessionStatus(status)
	session.LastQuestionID = id.QuestionID(lastID)
	session.CurrentQuestionID = id.QuestionID(currentID)
	session.RemainingQuestionIDs = toQuestionIDs(remaining)
	session.SkippedQuestionIDs = toQuestionIDs(skipped)
	if completedAt.Valid {
		t := completedAt.Time
		session.CompletedAt = &t
	}
	if err := json.Unmarshal(responses, &session.Responses); err != nil {
		return nil, fmt.Errorf("decode responses: %w", err)
	}
	if session.Responses == nil {
		session.Responses = []models.Response{}
	}
	return &session, nil
}

func questionIDStrings(ids []id.QuestionID) []string {
	out := make([]string, len(ids))
	for i, qid := range ids {
		out[i] = string(qid)
	}
	return out
}

func toQuestionIDs(values []string) []id.QuestionID {
	out := make([]id.QuestionID, len(values))
	for i, v := range values {
		out[i] = id.QuestionID(v)
	}
	return out
}
