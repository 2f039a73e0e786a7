package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sankalp69/Visa-prediction/internal/domain"
)

const createModelPushesTable = `
	CREATE TABLE IF NOT EXISTS model_pushes (
		id               BIGSERIAL PRIMARY KEY,
		bucket           TEXT        NOT NULL,
		model_key        TEXT        NOT NULL,
		preprocessor_key TEXT        NOT NULL,
		pushed_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

const defaultPushListLimit = 50

type pushRepository struct {
	db *DB
}

func NewPushRepository(db *DB) *pushRepository {
	return &pushRepository{db: db}
}

// EnsureSchema creates the model_pushes table when missing.
func (r *pushRepository) EnsureSchema(ctx context.Context) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, createModelPushesTable); err != nil {
			return fmt.Errorf("failed to create model_pushes table: %w", err)
		}
		return nil
	})
}

func (r *pushRepository) RecordPush(ctx context.Context, push *domain.ModelPush) error {
	if push.PushedAt.IsZero() {
		push.PushedAt = time.Now().UTC()
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO model_pushes (bucket, model_key, preprocessor_key, pushed_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`
		err := tx.QueryRowContext(ctx, query,
			push.Bucket, push.ModelKey, push.PreprocessorKey, push.PushedAt,
		).Scan(&push.ID)
		if err != nil {
			return fmt.Errorf("failed to record model push: %w", err)
		}
		return nil
	})
}

func (r *pushRepository) ListPushes(ctx context.Context, limit int) ([]*domain.ModelPush, error) {
	if limit <= 0 {
		limit = defaultPushListLimit
	}

	query := `
		SELECT id, bucket, model_key, preprocessor_key, pushed_at
		FROM model_pushes
		ORDER BY pushed_at DESC, id DESC
		LIMIT $1
	`
	pushes := make([]*domain.ModelPush, 0)
	if err := r.db.SelectContext(ctx, &pushes, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list model pushes: %w", err)
	}
	return pushes, nil
}
