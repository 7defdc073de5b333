package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type note struct {
	ID   uint
	Body string
}

func setupTxDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(Config{Driver: DriverSQLite})
	require.NoError(t, err)
	require.NoError(t, Migrate(db, &note{}))
	return db
}

func countNotes(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&note{}).Count(&n).Error)
	return n
}

func TestTransactor_CommitRunsAfterCommitHooks(t *testing.T) {
	db := setupTxDB(t)
	tr := NewTransactor(db)

	hooked := false
	err := tr.WithinTx(context.Background(), func(ctx context.Context) error {
		if err := Conn(ctx, db).Create(&note{Body: "a"}).Error; err != nil {
			return err
		}
		AfterCommit(ctx, func() { hooked = true })
		assert.False(t, hooked, "hook must wait for commit")
		return nil
	})

	require.NoError(t, err)
	assert.True(t, hooked)
	assert.Equal(t, int64(1), countNotes(t, db))
}

func TestTransactor_RollbackSkipsHooks(t *testing.T) {
	db := setupTxDB(t)
	tr := NewTransactor(db)
	boom := errors.New("boom")

	hooked := false
	err := tr.WithinTx(context.Background(), func(ctx context.Context) error {
		require.NoError(t, Conn(ctx, db).Create(&note{Body: "a"}).Error)
		AfterCommit(ctx, func() { hooked = true })
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.False(t, hooked)
	assert.Zero(t, countNotes(t, db))
}

func TestTransactor_NestedCallJoinsOuterTx(t *testing.T) {
	db := setupTxDB(t)
	tr := NewTransactor(db)
	boom := errors.New("boom")

	err := tr.WithinTx(context.Background(), func(ctx context.Context) error {
		inner := tr.WithinTx(ctx, func(ctx context.Context) error {
			return Conn(ctx, db).Create(&note{Body: "inner"}).Error
		})
		require.NoError(t, inner)
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Zero(t, countNotes(t, db), "inner write must roll back with the outer tx")
}

func TestTransactor_ReadOnly(t *testing.T) {
	db := setupTxDB(t)
	require.NoError(t, db.Create(&note{Body: "x"}).Error)
	tr := NewTransactor(db)

	var got []note
	err := tr.WithinReadOnlyTx(context.Background(), func(ctx context.Context) error {
		return Conn(ctx, db).Find(&got).Error
	})

	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestAfterCommit_OutsideTxRunsImmediately(t *testing.T) {
	ran := false
	AfterCommit(context.Background(), func() { ran = true })
	assert.True(t, ran)
}
