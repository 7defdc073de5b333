package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"sales_backend/internal/feature/users/domain/entity"
	"sales_backend/internal/feature/users/usecase"
	"sales_backend/internal/platform/db"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), db.GormConfig())
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = gdb.AutoMigrate(&entity.User{})
	require.NoError(t, err, "failed to migrate table")

	return gdb
}

func TestNewUserRepository(t *testing.T) {
	gdb := setupTestDB(t)

	repo := NewUserRepository(gdb)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestUserGorm_Create(t *testing.T) {
	t.Run("successful user creation", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		repo.now = func() time.Time { return now }

		user := &entity.User{Email: "test@example.com", Name: "Test", StoreName: "Shop"}

		err := repo.Create(context.Background(), user)

		assert.NoError(t, err, "failed to create user")
		assert.NotZero(t, user.ID, "ID is not set")
		assert.Equal(t, now, user.CreatedAt)
		assert.Equal(t, now, user.UpdatedAt)

		got, err := repo.FindByEmail(context.Background(), "test@example.com")
		require.NoError(t, err)
		assert.True(t, got.CreatedAt.Equal(now), "stored CreatedAt = %s", got.CreatedAt)
		assert.True(t, got.UpdatedAt.Equal(now), "stored UpdatedAt = %s", got.UpdatedAt)
	})

	t.Run("duplicate email error", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		require.NoError(t, repo.Create(context.Background(), &entity.User{Email: "dup@example.com"}))
		err := repo.Create(context.Background(), &entity.User{Email: "dup@example.com"})

		assert.ErrorIs(t, err, usecase.ErrEmailAlreadyExists)
	})
}

func TestUserGorm_FindByEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	require.NoError(t, repo.Create(context.Background(), &entity.User{Email: "a@example.com", Name: "A"}))

	got, err := repo.FindByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)

	_, err = repo.FindByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
}

func TestUserGorm_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(setupTestDB(t))

	createdAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	updatedAt := createdAt.Add(time.Hour)
	repo.now = func() time.Time { return createdAt }

	user := &entity.User{Email: "a@example.com", Name: "A", StoreName: "S", BusinessType: "B", Address: "Addr"}
	require.NoError(t, repo.Create(ctx, user))

	repo.now = func() time.Time { return updatedAt }
	user.Name = "A2"
	user.StoreName = "S2"
	user.BusinessType = "B2"
	user.Address = ""
	require.NoError(t, repo.UpdateProfile(ctx, user))

	got, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "A2", got.Name)
	assert.Equal(t, "S2", got.StoreName)
	assert.Equal(t, "B2", got.BusinessType)
	assert.Empty(t, got.Address, "empty values must be written too")
	assert.True(t, got.CreatedAt.Equal(createdAt), "CreatedAt must be kept")
	assert.True(t, got.UpdatedAt.Equal(updatedAt), "UpdatedAt must be refreshed")
}
