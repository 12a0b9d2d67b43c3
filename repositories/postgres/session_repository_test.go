package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jwtpizza/pizza-service/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	hash := "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"

	t.Run("insert upserts expiry", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSessionRepository(db, zap.NewNop())

		mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (token_hash) DO UPDATE")).
			WithArgs(hash, 5, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Insert(ctx, &models.Session{TokenHash: hash, UserID: 5, ExpiresAt: now.Add(time.Hour), CreatedAt: now})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exists", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSessionRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WithArgs(hash, now).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		ok, err := repo.Exists(ctx, hash, now)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exists query failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSessionRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WillReturnError(errors.New("connection reset"))

		ok, err := repo.Exists(ctx, hash, now)
		assert.Error(t, err)
		assert.False(t, ok)
	})

	t.Run("delete", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSessionRepository(db, zap.NewNop())

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE token_hash = $1")).
			WithArgs(hash).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.Delete(ctx, hash))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete expired", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSessionRepository(db, zap.NewNop())

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE expires_at <= $1")).
			WithArgs(now).
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := repo.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
