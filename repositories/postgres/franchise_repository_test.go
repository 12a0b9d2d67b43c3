package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jwtpizza/pizza-service/models"
	"github.com/jwtpizza/pizza-service/repositories"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFranchiseRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("returns generated id", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewFranchiseRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO franchises")).
			WithArgs("pizzaPocket", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))

		f := &models.Franchise{Name: "pizzaPocket"}
		require.NoError(t, repo.Create(ctx, f))
		assert.Equal(t, int64(2), f.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate name", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewFranchiseRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO franchises")).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, &models.Franchise{Name: "pizzaPocket"})
		assert.ErrorIs(t, err, repositories.ErrDuplicate)
	})
}

func TestFranchiseRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFranchiseRepository(db, zap.NewNop())
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM franchises")).
		WithArgs("pizza%", 3, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).
			AddRow(3, "pizzaA", now).
			AddRow(4, "pizzaB", now).
			AddRow(5, "pizzaC", now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM stores")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "SLC"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM stores")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	franchises, more, err := repo.List(context.Background(), models.FranchiseFilter{Page: 1, Limit: 2, Name: "pizza*"})
	require.NoError(t, err)
	assert.True(t, more)
	require.Len(t, franchises, 2)
	assert.Equal(t, "pizzaA", franchises[0].Name)
	assert.Equal(t, []models.Store{{ID: 1, FranchiseID: 3, Name: "SLC"}}, franchises[0].Stores)
	assert.Empty(t, franchises[1].Stores)
	assert.Nil(t, franchises[0].Admins)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFranchiseRepository_List_PageOutOfRange(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFranchiseRepository(db, zap.NewNop())

	franchises, more, err := repo.List(context.Background(), models.FranchiseFilter{Page: 922337203685477581, Limit: 10})
	require.NoError(t, err)
	assert.False(t, more)
	assert.Empty(t, franchises)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFranchiseRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFranchiseRepository(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, created_at FROM franchises WHERE id = $1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).AddRow(7, "pizzaPocket", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("JOIN users u ON u.id = ur.user_id")).
		WithArgs("franchisee", 7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(3, "pizza franchisee", "f@jwt.com"))
	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(SUM(oi.price), 0)")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "total"}).AddRow(1, "SLC", 0.05))

	franchise, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []models.FranchiseAdminRef{{ID: 3, Name: "pizza franchisee", Email: "f@jwt.com"}}, franchise.Admins)
	assert.Equal(t, []models.Store{{ID: 1, FranchiseID: 7, Name: "SLC", TotalRevenue: 0.05}}, franchise.Stores)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFranchiseRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFranchiseRepository(db, zap.NewNop())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM stores WHERE franchise_id = $1")).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_roles")).
		WithArgs("franchisee", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM franchises WHERE id = $1")).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFranchiseRepository_CreateStore_UnknownFranchise(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFranchiseRepository(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO stores")).
		WithArgs(99, "SLC").
		WillReturnError(&pq.Error{Code: "23503"})

	err := repo.CreateStore(context.Background(), &models.Store{FranchiseID: 99, Name: "SLC"})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestNamePattern(t *testing.T) {
	tests := []struct {
		filter string
		want   string
	}{
		{"", "%"},
		{"*", "%"},
		{"pizza*", "pizza%"},
		{"*Pocket*", "%Pocket%"},
		{"50%_off", `50\%\_off`},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			assert.Equal(t, tt.want, namePattern(tt.filter))
		})
	}
}
