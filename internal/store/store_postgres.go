package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studysync/studysync/internal/path"
)

const dbTimeout = 5 * time.Second

// Schema creates the tables the store needs. Paths are stored as JSONB
// documents; submissions get their own relational table for history queries.
const Schema = `
CREATE TABLE IF NOT EXISTS learning_paths (
    id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    topic       TEXT NOT NULL,
    status      TEXT NOT NULL DEFAULT 'active',
    data        JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS quiz_submissions (
    id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    path_id         UUID NOT NULL REFERENCES learning_paths(id) ON DELETE CASCADE,
    module_id       TEXT NOT NULL,
    score           DOUBLE PRECISION NOT NULL,
    correct_count   INT NOT NULL,
    total_questions INT NOT NULL,
    passed          BOOLEAN NOT NULL,
    submitted_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_quiz_submissions_path ON quiz_submissions(path_id);
`

// PostgresStore is a PostgreSQL-backed PathStore implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed store and ensures the schema
// exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) CreatePath(lp path.LearningPath) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if lp.Topic == "" {
		return "", fmt.Errorf("topic is required")
	}
	if lp.Status == "" {
		lp.Status = "active"
	}

	data, err := json.Marshal(lp)
	if err != nil {
		return "", fmt.Errorf("marshal path: %w", err)
	}

	var id string
	err = s.pool.QueryRow(ctx,
		`INSERT INTO learning_paths (topic, status, data)
		 VALUES ($1, $2, $3)
		 RETURNING id::text`,
		lp.Topic, lp.Status, data,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create learning path: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) GetPath(id string) (*path.LearningPath, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	return s.getPath(ctx, id)
}

func (s *PostgresStore) getPath(ctx context.Context, id string) (*path.LearningPath, error) {
	var data []byte
	var status string
	err := s.pool.QueryRow(ctx,
		`SELECT data, status FROM learning_paths WHERE id = $1::uuid`,
		id,
	).Scan(&data, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("learning path not found: %s", id)
		}
		return nil, fmt.Errorf("get learning path: %w", err)
	}

	var lp path.LearningPath
	if err := json.Unmarshal(data, &lp); err != nil {
		return nil, fmt.Errorf("unmarshal path: %w", err)
	}
	lp.ID = id
	lp.Status = status
	return &lp, nil
}

func (s *PostgresStore) ListPaths() ([]path.LearningPath, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, data, status
		 FROM learning_paths
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list learning paths: %w", err)
	}
	defer rows.Close()

	var paths []path.LearningPath
	for rows.Next() {
		var id, status string
		var data []byte
		if err := rows.Scan(&id, &data, &status); err != nil {
			return nil, fmt.Errorf("scan learning path: %w", err)
		}
		var lp path.LearningPath
		if err := json.Unmarshal(data, &lp); err != nil {
			return nil, fmt.Errorf("unmarshal path %s: %w", id, err)
		}
		lp.ID = id
		lp.Status = status
		paths = append(paths, lp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate learning paths: %w", err)
	}
	return paths, nil
}

func (s *PostgresStore) CompleteSession(pathID, sessionID string) (*path.LearningPath, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	lp, err := s.getPath(ctx, pathID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range lp.Schedule {
		if lp.Schedule[i].SessionID == sessionID {
			lp.Schedule[i].Completed = true
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}

	recomputeProgress(lp)

	data, err := json.Marshal(lp)
	if err != nil {
		return nil, fmt.Errorf("marshal path: %w", err)
	}
	cmd, err := s.pool.Exec(ctx,
		`UPDATE learning_paths
		 SET data = $2, status = $3, updated_at = NOW()
		 WHERE id = $1::uuid`,
		pathID, data, lp.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("update learning path: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, fmt.Errorf("learning path not found: %s", pathID)
	}
	return lp, nil
}

func (s *PostgresStore) RecordSubmission(sub Submission) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	submittedAt := sub.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}

	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO quiz_submissions (path_id, module_id, score, correct_count, total_questions, passed, submitted_at)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
		 RETURNING id::text`,
		sub.PathID, sub.ModuleID, sub.Score, sub.CorrectCount,
		sub.TotalQuestions, sub.Passed, submittedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("record submission: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) ListSubmissions(pathID string) ([]Submission, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, path_id::text, module_id, score, correct_count, total_questions, passed, submitted_at
		 FROM quiz_submissions
		 WHERE path_id = $1::uuid
		 ORDER BY submitted_at ASC`,
		pathID,
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(
			&sub.ID, &sub.PathID, &sub.ModuleID, &sub.Score,
			&sub.CorrectCount, &sub.TotalQuestions, &sub.Passed, &sub.SubmittedAt,
		); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}
