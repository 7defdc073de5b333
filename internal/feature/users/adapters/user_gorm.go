// Package adapters はusersフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"sales_backend/internal/feature/users/domain/entity"
	"sales_backend/internal/feature/users/usecase"
	"sales_backend/internal/platform/db"
)

// userGorm はUserRepositoryインターフェースのGORM実装です。
type userGorm struct {
	db  *gorm.DB
	now func() time.Time
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserRepository は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserRepository(gdb *gorm.DB) *userGorm {
	return &userGorm{db: gdb, now: func() time.Time { return time.Now().UTC() }}
}

// Create はユーザーをデータベースに追加します。
// 作成日時・更新日時はここで設定します。
// 同じメールアドレスのユーザーが既に存在する場合、usecase.ErrEmailAlreadyExistsを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	now := r.now()
	u.CreatedAt = now
	u.UpdatedAt = now
	if err := db.Conn(ctx, r.db).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := db.Conn(ctx, r.db).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateProfile は空文字列も含めてプロフィール4項目を書き込みます。
func (r *userGorm) UpdateProfile(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = r.now()
	return db.Conn(ctx, r.db).Model(u).
		Select("Name", "StoreName", "BusinessType", "Address", "UpdatedAt").
		Updates(u).Error
}
