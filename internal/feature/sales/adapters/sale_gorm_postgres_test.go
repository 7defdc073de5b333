package adapters

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockPostgres wires GORM's postgres dialect to sqlmock so the generated SQL can be asserted.
func setupMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return gdb, mock
}

func TestSaleGorm_Postgres_Aggregates(t *testing.T) {
	ctx := context.Background()
	gdb, mock := setupMockPostgres(t)
	repo := NewSaleRepository(gdb)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT SUM(amount) AS value FROM "sales" WHERE user_id = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("1234.50"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT AVG(amount) AS value FROM "sales" WHERE user_id = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("411.5000000000000000"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT AVG(amount) AS value FROM "sales" WHERE user_id = $1`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(nil))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "sales" WHERE user_id = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	sum, err := repo.SumAmountByUser(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, sum.Valid)
	assert.Equal(t, "1234.50", sum.Decimal.StringFixed(2))

	avg, err := repo.AverageAmountByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "411.5", avg.Decimal.String())

	none, err := repo.AverageAmountByUser(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, none.Valid)

	n, err := repo.CountByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleGorm_Postgres_FindAllByUserOrdersNewestFirst(t *testing.T) {
	gdb, mock := setupMockPostgres(t)
	repo := NewSaleRepository(gdb)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sales" WHERE user_id = $1 ORDER BY sale_date DESC`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "sale_date", "amount"}).
			AddRow(2, "u1", day(2024, 1, 2), "20.00").
			AddRow(1, "u1", day(2024, 1, 1), "10.00"))

	got, err := repo.FindAllByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint(2), got[0].ID)
	assert.Equal(t, "20.00", got[0].Amount.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}
