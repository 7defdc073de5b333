// Package adapters はsalesフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sales_backend/internal/feature/sales/domain/entity"
	"sales_backend/internal/feature/sales/usecase"
	"sales_backend/internal/platform/db"
)

type saleGorm struct {
	db  *gorm.DB
	now func() time.Time
}

var _ usecase.SaleRepository = (*saleGorm)(nil)

// NewSaleRepository はGORMベースのSaleRepositoryを生成します。
// context にトランザクションがあればそれを使用します。
func NewSaleRepository(gdb *gorm.DB) *saleGorm {
	return &saleGorm{db: gdb, now: func() time.Time { return time.Now().UTC() }}
}

// SaleModel は sales テーブルの行です。
type SaleModel struct {
	ID           uint            `gorm:"primaryKey"`
	UserID       string          `gorm:"size:255;not null;uniqueIndex:idx_sales_user_date,priority:1"`
	SaleDate     time.Time       `gorm:"type:date;not null;uniqueIndex:idx_sales_user_date,priority:2"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	StoreName    string          `gorm:"size:255"`
	BusinessType string          `gorm:"size:255"`
	CreatedAt    time.Time       `gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime:false"`
}

func (SaleModel) TableName() string {
	return "sales"
}

func toModel(e *entity.Sale) SaleModel {
	return SaleModel{
		ID:           e.ID,
		UserID:       e.UserID,
		SaleDate:     entity.NormalizeDate(e.SaleDate),
		Amount:       e.Amount,
		StoreName:    e.StoreName,
		BusinessType: e.BusinessType,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func toEntity(m SaleModel) entity.Sale {
	return entity.Sale{
		ID:           m.ID,
		UserID:       m.UserID,
		SaleDate:     entity.NormalizeDate(m.SaleDate),
		Amount:       m.Amount,
		StoreName:    m.StoreName,
		BusinessType: m.BusinessType,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func toEntities(rows []SaleModel) []entity.Sale {
	out := make([]entity.Sale, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out
}

func (r *saleGorm) conn(ctx context.Context) *gorm.DB {
	return db.Conn(ctx, r.db)
}

// Create は売上を挿入します。同じ (user_id, sale_date) の行が同時に作成された場合は
// 金額・店舗名・業種・更新日時を上書きし、1行に収束させます。
func (r *saleGorm) Create(ctx context.Context, s *entity.Sale) error {
	now := r.now()
	m := toModel(s)
	m.ID = 0
	m.CreatedAt = now
	m.UpdatedAt = now

	err := r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "sale_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "store_name", "business_type", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	*s = toEntity(m)
	return nil
}

// Update は可変項目をすべて書き換え、更新日時を更新します。
// 日付の変更で同じユーザーの別の行と衝突した場合は usecase.ErrSaleDateConflict、
// 行が存在しない場合は usecase.ErrSaleNotFound を返します。
func (r *saleGorm) Update(ctx context.Context, s *entity.Sale) error {
	now := r.now()
	date := entity.NormalizeDate(s.SaleDate)

	res := r.conn(ctx).Model(&SaleModel{}).Where("id = ?", s.ID).Updates(map[string]any{
		"sale_date":     date,
		"amount":        s.Amount,
		"store_name":    s.StoreName,
		"business_type": s.BusinessType,
		"updated_at":    now,
	})
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return usecase.ErrSaleDateConflict
	}
	if res.Error != nil {
		return fmt.Errorf("update sale %d: %w", s.ID, res.Error)
	}
	// 読み取り後に削除された行
	if res.RowsAffected == 0 {
		return usecase.ErrSaleNotFound
	}

	s.SaleDate = date
	s.UpdatedAt = now
	return nil
}

func (r *saleGorm) Delete(ctx context.Context, s *entity.Sale) error {
	if err := r.conn(ctx).Delete(&SaleModel{}, s.ID).Error; err != nil {
		return fmt.Errorf("delete sale %d: %w", s.ID, err)
	}
	return nil
}

func (r *saleGorm) FindByID(ctx context.Context, id uint) (*entity.Sale, error) {
	var m SaleModel
	if err := r.conn(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrSaleNotFound
		}
		return nil, err
	}
	s := toEntity(m)
	return &s, nil
}

func (r *saleGorm) FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*entity.Sale, error) {
	var m SaleModel
	err := r.conn(ctx).
		Where("user_id = ? AND sale_date = ?", userID, entity.NormalizeDate(date)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrSaleNotFound
		}
		return nil, err
	}
	s := toEntity(m)
	return &s, nil
}

func (r *saleGorm) FindAllByUser(ctx context.Context, userID string) ([]entity.Sale, error) {
	var rows []SaleModel
	if err := r.conn(ctx).Where("user_id = ?", userID).Order("sale_date DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

func (r *saleGorm) FindByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]entity.Sale, error) {
	var rows []SaleModel
	err := r.conn(ctx).
		Where("user_id = ? AND sale_date BETWEEN ? AND ?", userID, entity.NormalizeDate(start), entity.NormalizeDate(end)).
		Order("sale_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

func (r *saleGorm) FindByUserAndMonth(ctx context.Context, userID string, year int, month time.Month) ([]entity.Sale, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	var rows []SaleModel
	err := r.conn(ctx).
		Where("user_id = ? AND sale_date >= ? AND sale_date < ?", userID, first, next).
		Order("sale_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

// aggregateRow は集計クエリの単一値を受け取ります。0件のときは NULL になります。
type aggregateRow struct {
	Value decimal.NullDecimal
}

func (r *saleGorm) aggregate(ctx context.Context, expr, userID string) (decimal.NullDecimal, error) {
	var row aggregateRow
	err := r.conn(ctx).Model(&SaleModel{}).
		Select(expr+" AS value").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return row.Value, nil
}

func (r *saleGorm) SumAmountByUser(ctx context.Context, userID string) (decimal.NullDecimal, error) {
	return r.aggregate(ctx, "SUM(amount)", userID)
}

func (r *saleGorm) AverageAmountByUser(ctx context.Context, userID string) (decimal.NullDecimal, error) {
	return r.aggregate(ctx, "AVG(amount)", userID)
}

func (r *saleGorm) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	if err := r.conn(ctx).Model(&SaleModel{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
