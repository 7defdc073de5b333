package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"sales_backend/internal/feature/users/domain/entity"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーを保存します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExists を返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFound を返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// UpdateProfile は氏名・店舗名・業種・住所を上書きし、更新日時を更新します。
	UpdateProfile(ctx context.Context, user *entity.User) error
}

// TxManager はユースケース単位のトランザクション境界を提供します。
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	WithinReadOnlyTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Profile はユーザーが更新できるプロフィール項目です。
type Profile struct {
	Name         string
	StoreName    string
	BusinessType string
	Address      string
}

// UserUsecase はユーザープロフィールのビジネスロジックを実装します。
type UserUsecase struct {
	users UserRepository
	tx    TxManager
	log   *zap.Logger
}

// NewUserUsecase はUserUsecaseの新しいインスタンスを生成します。
func NewUserUsecase(users UserRepository, tx TxManager, log *zap.Logger) *UserUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserUsecase{users: users, tx: tx, log: log}
}

// GetUserByEmail はメールアドレスでユーザーを取得します。存在しない場合は found=false を返します。
func (u *UserUsecase) GetUserByEmail(ctx context.Context, email string) (*entity.User, bool, error) {
	var user *entity.User
	err := u.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = u.users.FindByEmail(ctx, email)
		return err
	})
	if errors.Is(err, ErrUserNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// UpdateUser はプロフィール4項目を無条件に上書きします。
// ユーザーが存在しない場合は found=false を返し、何も書き込みません。
func (u *UserUsecase) UpdateUser(ctx context.Context, email string, p Profile) (*entity.User, bool, error) {
	var user *entity.User
	err := u.tx.WithinTx(ctx, func(ctx context.Context) error {
		found, err := u.users.FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		found.Name = p.Name
		found.StoreName = p.StoreName
		found.BusinessType = p.BusinessType
		found.Address = p.Address
		if err := u.users.UpdateProfile(ctx, found); err != nil {
			return err
		}
		user = found
		return nil
	})
	if errors.Is(err, ErrUserNotFound) {
		u.log.Info("update for unknown user", zap.String("email", email))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("update user: %w", err)
	}
	u.log.Info("user profile updated", zap.Uint("user_id", user.ID))
	return user, true, nil
}

// CreateUser は新規ユーザーを登録します。
func (u *UserUsecase) CreateUser(ctx context.Context, email string, p Profile) (*entity.User, error) {
	user := &entity.User{
		Email:        email,
		Name:         p.Name,
		StoreName:    p.StoreName,
		BusinessType: p.BusinessType,
		Address:      p.Address,
	}
	err := u.tx.WithinTx(ctx, func(ctx context.Context) error {
		return u.users.Create(ctx, user)
	})
	if errors.Is(err, ErrEmailAlreadyExists) {
		u.log.Warn("user create rejected: duplicate email", zap.String("email", email))
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	u.log.Info("user created", zap.Uint("user_id", user.ID))
	return user, nil
}
