package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"sales_backend/internal/feature/sales/adapters"
	"sales_backend/internal/feature/sales/usecase"
	"sales_backend/internal/platform/db"
)

// newSQLiteUsecase wires SalesUsecase to the GORM store and the transactor on in-memory SQLite.
func newSQLiteUsecase(t *testing.T) (*usecase.SalesUsecase, *gorm.DB) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), db.GormConfig())
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb, &adapters.SaleModel{}))

	uc := usecase.NewSalesUsecase(adapters.NewSaleRepository(gdb), db.NewTransactor(gdb), zaptest.NewLogger(t))
	return uc, gdb
}

func TestSalesUsecase_SQLite_CreateSameDayOverwrites(t *testing.T) {
	ctx := context.Background()
	uc, gdb := newSQLiteUsecase(t)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := uc.CreateSale(ctx, usecase.SaleInput{
		UserID: "u1", SaleDate: day, Amount: decimal.RequireFromString("100.00"), StoreName: "A", BusinessType: "Cafe",
	})
	require.NoError(t, err)

	second, err := uc.CreateSale(ctx, usecase.SaleInput{
		UserID: "u1", SaleDate: day, Amount: decimal.RequireFromString("150.00"), StoreName: "B",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	var rows []adapters.SaleModel
	require.NoError(t, gdb.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, first.ID, rows[0].ID)
	assert.Equal(t, "u1", rows[0].UserID)
	assert.True(t, rows[0].Amount.Equal(decimal.RequireFromString("150")), "amount=%s", rows[0].Amount)
	assert.Equal(t, "B", rows[0].StoreName)
	assert.Empty(t, rows[0].BusinessType)

	got, found, err := uc.GetSaleByUserIDAndDate(ctx, "u1", day)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "150.00", got.Amount.StringFixed(2))
	assert.Equal(t, day, got.SaleDate.UTC())

	count, err := uc.GetSalesCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSalesUsecase_SQLite_AbsentDate(t *testing.T) {
	ctx := context.Background()
	uc, _ := newSQLiteUsecase(t)

	_, err := uc.CreateSale(ctx, usecase.SaleInput{
		UserID: "u1", SaleDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("100"),
	})
	require.NoError(t, err)

	sale, found, err := uc.GetSaleByUserIDAndDate(ctx, "u1", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, sale)
}

func TestSalesUsecase_SQLite_EmptyUserStatistics(t *testing.T) {
	uc, _ := newSQLiteUsecase(t)

	st, err := uc.GetStatistics(context.Background(), "nobody")
	require.NoError(t, err)
	assert.True(t, st.Total.IsZero())
	assert.True(t, st.Average.IsZero())
	assert.Zero(t, st.Count)
}
