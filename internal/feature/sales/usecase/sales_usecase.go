package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sales_backend/internal/feature/sales/domain/entity"
)

// amountScale は金額の小数部桁数（ストレージの decimal(15,2) に一致）です。
const amountScale = 2

// SaleRepository は売上データの永続化層を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SaleRepository interface {
	// Create は新しい売上を保存します。(userId, saleDate) が競合した場合は既存行を上書きします。
	Create(ctx context.Context, s *entity.Sale) error
	// Update は既存の売上の可変項目をすべて書き換えます。
	Update(ctx context.Context, s *entity.Sale) error
	// Delete は指定された売上をIDで削除します。
	Delete(ctx context.Context, s *entity.Sale) error

	FindByID(ctx context.Context, id uint) (*entity.Sale, error)
	FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*entity.Sale, error)
	// FindAllByUser は日付の降順で返します。
	FindAllByUser(ctx context.Context, userID string) ([]entity.Sale, error)
	// FindByUserAndDateRange は両端を含む期間を日付の昇順で返します。
	FindByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]entity.Sale, error)
	// FindByUserAndMonth は指定年月の売上を日付の昇順で返します。
	FindByUserAndMonth(ctx context.Context, userID string, year int, month time.Month) ([]entity.Sale, error)

	// SumAmountByUser と AverageAmountByUser は対象行が0件のとき Valid=false を返します。
	SumAmountByUser(ctx context.Context, userID string) (decimal.NullDecimal, error)
	AverageAmountByUser(ctx context.Context, userID string) (decimal.NullDecimal, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// TxManager はユースケース単位のトランザクション境界を提供します。
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	WithinReadOnlyTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SaleInput は売上の登録・更新リクエストの内容です。バリデーション済みであることを前提とします。
type SaleInput struct {
	UserID       string
	SaleDate     time.Time
	Amount       decimal.Decimal
	StoreName    string
	BusinessType string
}

// SalesUsecase は売上に関するビジネスロジックを提供します。
type SalesUsecase struct {
	sales SaleRepository
	tx    TxManager
	log   *zap.Logger
}

// NewSalesUsecase はSalesUsecaseの新しいインスタンスを生成します。
func NewSalesUsecase(sales SaleRepository, tx TxManager, log *zap.Logger) *SalesUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &SalesUsecase{sales: sales, tx: tx, log: log}
}

// CreateSale は同じユーザー・同じ日付の売上があれば金額・店舗名・業種を上書きし、
// なければ新規に登録します（日付単位のupsert）。
func (u *SalesUsecase) CreateSale(ctx context.Context, in SaleInput) (*entity.Sale, error) {
	date := entity.NormalizeDate(in.SaleDate)
	u.log.Info("creating sale",
		zap.String("user_id", in.UserID),
		zap.Time("sale_date", date),
		zap.Stringer("amount", in.Amount))

	var saved *entity.Sale
	err := u.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := u.sales.FindByUserAndDate(ctx, in.UserID, date)
		switch {
		case err == nil:
			existing.Amount = in.Amount
			existing.StoreName = in.StoreName
			existing.BusinessType = in.BusinessType
			if err := u.sales.Update(ctx, existing); err != nil {
				return err
			}
			u.log.Info("overwrote existing sale", zap.Uint("sale_id", existing.ID))
			saved = existing
			return nil
		case errors.Is(err, ErrSaleNotFound):
			s := &entity.Sale{
				UserID:       in.UserID,
				SaleDate:     date,
				Amount:       in.Amount,
				StoreName:    in.StoreName,
				BusinessType: in.BusinessType,
			}
			if err := u.sales.Create(ctx, s); err != nil {
				return err
			}
			saved = s
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}
	u.log.Info("sale saved", zap.Uint("sale_id", saved.ID))
	return saved, nil
}

// GetSalesByUserID はユーザーの全売上を日付の新しい順に返します。
func (u *SalesUsecase) GetSalesByUserID(ctx context.Context, userID string) ([]entity.Sale, error) {
	var out []entity.Sale
	err := u.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = u.sales.FindAllByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	u.log.Debug("listed sales", zap.String("user_id", userID), zap.Int("count", len(out)))
	return out, nil
}

// GetSalesByUserIDAndDateRange は start〜end（両端含む）の売上を日付の古い順に返します。
// start が end より後の場合はストアを参照せず空のリストを返します。
func (u *SalesUsecase) GetSalesByUserIDAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]entity.Sale, error) {
	start, end = entity.NormalizeDate(start), entity.NormalizeDate(end)
	if start.After(end) {
		return []entity.Sale{}, nil
	}

	var out []entity.Sale
	err := u.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = u.sales.FindByUserAndDateRange(ctx, userID, start, end)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetSaleByUserIDAndDate は指定日の売上を返します。該当がない場合は found=false で、エラーにはなりません。
func (u *SalesUsecase) GetSaleByUserIDAndDate(ctx context.Context, userID string, date time.Time) (*entity.Sale, bool, error) {
	var out *entity.Sale
	err := u.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = u.sales.FindByUserAndDate(ctx, userID, entity.NormalizeDate(date))
		return err
	})
	if errors.Is(err, ErrSaleNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// GetSalesByUserIDAndMonth は指定年月の売上を日付の古い順に返します。
func (u *SalesUsecase) GetSalesByUserIDAndMonth(ctx context.Context, userID string, year, month int) ([]entity.Sale, error) {
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}

	var out []entity.Sale
	err := u.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = u.sales.FindByUserAndMonth(ctx, userID, year, time.Month(month))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetTotalSales はユーザーの売上合計を返します。売上がない場合は0です。
func (u *SalesUsecase) GetTotalSales(ctx context.Context, userID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := u.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		var err error
		total, err = u.total(ctx, userID)
		return err
	})
	return total, err
}

// GetAverageSales はユーザーの売上平均を返します。売上がない場合は0です。
func (u *SalesUsecase) GetAverageSales(ctx context.Context, userID string) (decimal.Decimal, error) {
	var avg decimal.Decimal
	err := u.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		var err error
		avg, err = u.average(ctx, userID)
		return err
	})
	return avg, err
}

// GetSalesCount はユーザーの売上件数を返します。
func (u *SalesUsecase) GetSalesCount(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := u.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		var err error
		n, err = u.sales.CountByUser(ctx, userID)
		return err
	})
	return n, err
}

// GetStatistics は合計・平均・件数を1つの読み取りトランザクションで取得します。
func (u *SalesUsecase) GetStatistics(ctx context.Context, userID string) (entity.Statistics, error) {
	var st entity.Statistics
	err := u.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		var err error
		if st.Total, err = u.total(ctx, userID); err != nil {
			return err
		}
		if st.Average, err = u.average(ctx, userID); err != nil {
			return err
		}
		st.Count, err = u.sales.CountByUser(ctx, userID)
		return err
	})
	if err != nil {
		return entity.Statistics{}, fmt.Errorf("sales statistics: %w", err)
	}
	return st, nil
}

// DeleteSale は所有者が一致する場合に限り売上を削除します。
func (u *SalesUsecase) DeleteSale(ctx context.Context, saleID uint, userID string) error {
	u.log.Info("deleting sale", zap.Uint("sale_id", saleID), zap.String("user_id", userID))

	err := u.tx.WithinTx(ctx, func(ctx context.Context) error {
		s, err := u.owned(ctx, saleID, userID)
		if err != nil {
			return err
		}
		return u.sales.Delete(ctx, s)
	})
	if err != nil {
		if errors.Is(err, ErrOwnershipViolation) {
			u.log.Warn("sale delete rejected", zap.Uint("sale_id", saleID), zap.String("user_id", userID), zap.Error(err))
		}
		return err
	}
	u.log.Info("sale deleted", zap.Uint("sale_id", saleID))
	return nil
}

// UpdateSale は所有者が一致する場合に限り、金額・店舗名・業種・日付を上書きします。
// CreateSale と異なり、ここでは日付も変更できます。
func (u *SalesUsecase) UpdateSale(ctx context.Context, saleID uint, userID string, in SaleInput) (*entity.Sale, error) {
	u.log.Info("updating sale", zap.Uint("sale_id", saleID), zap.String("user_id", userID))

	var updated *entity.Sale
	err := u.tx.WithinTx(ctx, func(ctx context.Context) error {
		s, err := u.owned(ctx, saleID, userID)
		if err != nil {
			return err
		}
		s.Amount = in.Amount
		s.StoreName = in.StoreName
		s.BusinessType = in.BusinessType
		s.SaleDate = entity.NormalizeDate(in.SaleDate)
		err = u.sales.Update(ctx, s)
		if errors.Is(err, ErrSaleNotFound) {
			return fmt.Errorf("%w: sale %d no longer exists", ErrOwnershipViolation, saleID)
		}
		if err != nil {
			return err
		}
		updated = s
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrOwnershipViolation) {
			u.log.Warn("sale update rejected", zap.Uint("sale_id", saleID), zap.String("user_id", userID), zap.Error(err))
		}
		return nil, err
	}
	u.log.Info("sale updated", zap.Uint("sale_id", saleID))
	return updated, nil
}

// owned は売上を取得し、所有者を確認します。存在しない場合も所有権違反として扱います。
func (u *SalesUsecase) owned(ctx context.Context, saleID uint, userID string) (*entity.Sale, error) {
	s, err := u.sales.FindByID(ctx, saleID)
	if errors.Is(err, ErrSaleNotFound) {
		return nil, fmt.Errorf("%w: sale %d does not exist", ErrOwnershipViolation, saleID)
	}
	if err != nil {
		return nil, err
	}
	if s.UserID != userID {
		return nil, ErrOwnershipViolation
	}
	return s, nil
}

func (u *SalesUsecase) total(ctx context.Context, userID string) (decimal.Decimal, error) {
	sum, err := u.sales.SumAmountByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal.Round(amountScale), nil
}

func (u *SalesUsecase) average(ctx context.Context, userID string) (decimal.Decimal, error) {
	avg, err := u.sales.AverageAmountByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if !avg.Valid {
		return decimal.Zero, nil
	}
	return avg.Decimal.Round(amountScale), nil
}
