package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sankalp69/Visa-prediction/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pushColumns = []string{"id", "bucket", "model_key", "preprocessor_key", "pushed_at"}

func TestPushRepository_EnsureSchema(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS model_pushes")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, NewPushRepository(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPushRepository_RecordPushSetsID(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO model_pushes (bucket, model_key, preprocessor_key, pushed_at)")).
		WithArgs("models", "registry/model.pkl", "registry/preprocessor.pkl", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectCommit()

	push := &domain.ModelPush{
		Bucket:          "models",
		ModelKey:        "registry/model.pkl",
		PreprocessorKey: "registry/preprocessor.pkl",
	}
	require.NoError(t, NewPushRepository(db).RecordPush(context.Background(), push))

	assert.Equal(t, int64(7), push.ID)
	assert.False(t, push.PushedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPushRepository_RecordPushKeepsGivenTime(t *testing.T) {
	db, mock := newMockDB(t)
	pushedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO model_pushes")).
		WithArgs("models", "m", "p", pushedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectCommit()

	push := &domain.ModelPush{Bucket: "models", ModelKey: "m", PreprocessorKey: "p", PushedAt: pushedAt}
	require.NoError(t, NewPushRepository(db).RecordPush(context.Background(), push))
	assert.Equal(t, pushedAt, push.PushedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPushRepository_RecordPushRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	insertErr := errors.New("unique violation")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO model_pushes")).WillReturnError(insertErr)
	mock.ExpectRollback()

	push := &domain.ModelPush{Bucket: "models", ModelKey: "m", PreprocessorKey: "p"}
	err := NewPushRepository(db).RecordPush(context.Background(), push)
	require.Error(t, err)
	assert.ErrorIs(t, err, insertErr)
	assert.Zero(t, push.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPushRepository_ListPushes(t *testing.T) {
	db, mock := newMockDB(t)
	newer := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-24 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY pushed_at DESC, id DESC")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(pushColumns).
			AddRow(int64(2), "models", "r/model.pkl", "r/preprocessor.pkl", newer).
			AddRow(int64(1), "models", "r/model.pkl", "r/preprocessor.pkl", older))

	pushes, err := NewPushRepository(db).ListPushes(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, pushes, 2)
	assert.Equal(t, int64(2), pushes[0].ID)
	assert.Equal(t, newer, pushes[0].PushedAt)
	assert.Equal(t, "r/preprocessor.pkl", pushes[1].PreprocessorKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPushRepository_ListPushesDefaultLimit(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM model_pushes")).
		WithArgs(defaultPushListLimit).
		WillReturnRows(sqlmock.NewRows(pushColumns))

	pushes, err := NewPushRepository(db).ListPushes(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, pushes)
	assert.Empty(t, pushes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPushRepository_ListPushesError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM model_pushes")).WillReturnError(errors.New("relation does not exist"))

	_, err := NewPushRepository(db).ListPushes(context.Background(), 5)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
