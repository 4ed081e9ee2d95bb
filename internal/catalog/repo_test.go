package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func productRows() *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "name", "description", "price", "category", "stock", "status", "image",
		"created_at", "updated_at",
	}).AddRow("p1", "Tomat", "Tomat segar", int64(5000), "Sayur", 10, "ready",
		"img/tomat.jpg", now, now)
}

func TestListDefaultOrdersByCreatedDesc(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}

	mock.ExpectQuery(`SELECT .+ FROM products ORDER BY created_at DESC LIMIT \$1`).
		WithArgs(50).
		WillReturnRows(productRows())

	got, err := repo.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Tomat", got[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAppliesFilters(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}

	mock.ExpectQuery(`SELECT .+ FROM products WHERE name ILIKE \$1 AND category = \$2 AND status = 'ready' AND stock > 0 ORDER BY price ASC LIMIT \$3`).
		WithArgs("%tomat%", "Sayur", 20).
		WillReturnRows(productRows())

	got, err := repo.List(context.Background(), Filter{
		Search: "tomat", Category: "Sayur", ReadyOnly: true, Sort: "price", Limit: 20,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMissingProduct(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}

	mock.ExpectQuery(`SELECT .+ FROM products WHERE id=\$1`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "description", "price", "category", "stock", "status", "image",
			"created_at", "updated_at",
		}))

	_, err := repo.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAssignsID(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}

	mock.ExpectExec(`INSERT INTO products`).
		WithArgs(pgxmock.AnyArg(), "Tomat", "Tomat segar", int64(5000), "Sayur", 10, "ready", "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	p, err := repo.Create(context.Background(), Product{
		Name: "Tomat", Description: "Tomat segar", Price: 5000,
		Category: "Sayur", Stock: 10, Status: "ready",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMissingProduct(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}

	mock.ExpectExec(`UPDATE products`).
		WithArgs("ghost", "X", "", int64(1), "Sayur", 1, "ready", "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), Product{
		ID: "ghost", Name: "X", Price: 1, Category: "Sayur", Stock: 1, Status: "ready",
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	mock := newMock(t)
	repo := &Repo{DB: mock}

	mock.ExpectExec(`DELETE FROM products`).
		WithArgs("p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, repo.Delete(context.Background(), "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
