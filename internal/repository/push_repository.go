package repository

import (
	"context"

	"github.com/sankalp69/Visa-prediction/internal/domain"
)

// PushRepository keeps the history of successful model pushes.
type PushRepository interface {
	RecordPush(ctx context.Context, push *domain.ModelPush) error
	ListPushes(ctx context.Context, limit int) ([]*domain.ModelPush, error)
}

type noopPushRepository struct{}

// NewNoopPushRepository returns a repository that stores nothing, for runs
// without a database.
func NewNoopPushRepository() PushRepository {
	return noopPushRepository{}
}

func (noopPushRepository) RecordPush(context.Context, *domain.ModelPush) error { return nil }

func (noopPushRepository) ListPushes(context.Context, int) ([]*domain.ModelPush, error) {
	return []*domain.ModelPush{}, nil
}
