// Package handler はsalesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	"github.com/oapi-codegen/runtime/types"
	"go.uber.org/zap"

	"sales_backend/internal/feature/sales/domain/entity"
	"sales_backend/internal/feature/sales/transport/http/dto"
	"sales_backend/internal/feature/sales/usecase"
	"sales_backend/internal/platform/http/response"
	"sales_backend/internal/platform/validation"
)

// SalesUsecase は売上操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type SalesUsecase interface {
	CreateSale(ctx context.Context, in usecase.SaleInput) (*entity.Sale, error)
	GetSalesByUserID(ctx context.Context, userID string) ([]entity.Sale, error)
	GetSalesByUserIDAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]entity.Sale, error)
	GetSaleByUserIDAndDate(ctx context.Context, userID string, date time.Time) (*entity.Sale, bool, error)
	GetSalesByUserIDAndMonth(ctx context.Context, userID string, year, month int) ([]entity.Sale, error)
	GetStatistics(ctx context.Context, userID string) (entity.Statistics, error)
	DeleteSale(ctx context.Context, saleID uint, userID string) error
	UpdateSale(ctx context.Context, saleID uint, userID string, in usecase.SaleInput) (*entity.Sale, error)
}

var _ SalesUsecase = (*usecase.SalesUsecase)(nil)

const noSaleForDateMessage = "no sales data for this date"

// SalesHandler は売上データのHTTPリクエストを処理します。
type SalesHandler struct {
	uc  SalesUsecase
	log *zap.Logger
}

// NewSalesHandler は指定されたusecaseでSalesHandlerの新しいインスタンスを生成します。
func NewSalesHandler(uc SalesUsecase, log *zap.Logger) *SalesHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SalesHandler{uc: uc, log: log.Named("sales")}
}

// CreateSale は売上を登録します。同じ日付の売上が既にあれば上書きします。
//
// POST /sales
func (h *SalesHandler) CreateSale(c *gin.Context) {
	var req dto.SaleRequest
	if errs := validation.BindJSON(c, &req); errs != nil {
		h.log.Warn("create sale validation failed", zap.Any("errors", errs), zap.String("remote_addr", c.ClientIP()))
		response.ValidationFailed(c, errs)
		return
	}

	sale, err := h.uc.CreateSale(c.Request.Context(), req.ToInput())
	if err != nil {
		h.fail(c, "failed to create sale", err)
		return
	}
	response.OK(c, dto.NewSaleResponse(*sale))
}

// GetSalesByUser はユーザーの全売上を日付の新しい順に返します。
//
// GET /sales/user/:userId
func (h *SalesHandler) GetSalesByUser(c *gin.Context) {
	sales, err := h.uc.GetSalesByUserID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, "failed to fetch sales", err)
		return
	}
	response.OK(c, dto.NewSaleResponses(sales))
}

// GetSalesByDateRange は期間内（両端含む）の売上を日付の古い順に返します。
//
// GET /sales/user/:userId/range?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD
func (h *SalesHandler) GetSalesByDateRange(c *gin.Context) {
	var start, end types.Date
	if err := runtime.BindQueryParameter("form", true, true, "startDate", c.Request.URL.Query(), &start); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid startDate: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "endDate", c.Request.URL.Query(), &end); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid endDate: "+err.Error())
		return
	}

	sales, err := h.uc.GetSalesByUserIDAndDateRange(c.Request.Context(), c.Param("userId"), start.Time, end.Time)
	if err != nil {
		h.fail(c, "failed to fetch sales by date range", err)
		return
	}
	response.OK(c, dto.NewSaleResponses(sales))
}

// GetSaleByDate は指定日の売上を返します。該当がない場合も200で data を null にします。
//
// GET /sales/user/:userId/date/:date
func (h *SalesHandler) GetSaleByDate(c *gin.Context) {
	var date types.Date
	err := runtime.BindStyledParameterWithOptions("simple", "date", c.Param("date"), &date, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid date: "+err.Error())
		return
	}

	sale, found, err := h.uc.GetSaleByUserIDAndDate(c.Request.Context(), c.Param("userId"), date.Time)
	if err != nil {
		h.fail(c, "failed to fetch sale", err)
		return
	}
	if !found {
		response.NoData(c, noSaleForDateMessage)
		return
	}
	response.OK(c, dto.NewSaleResponse(*sale))
}

// GetSalesByMonth は指定年月の売上を日付の古い順に返します。
//
// GET /sales/user/:userId/month?year=2024&month=1
func (h *SalesHandler) GetSalesByMonth(c *gin.Context) {
	var year, month int
	if err := runtime.BindQueryParameter("form", true, true, "year", c.Request.URL.Query(), &year); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid year: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "month", c.Request.URL.Query(), &month); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid month: "+err.Error())
		return
	}

	sales, err := h.uc.GetSalesByUserIDAndMonth(c.Request.Context(), c.Param("userId"), year, month)
	if err != nil {
		h.fail(c, "failed to fetch sales by month", err)
		return
	}
	response.OK(c, dto.NewSaleResponses(sales))
}

// GetStatistics は合計・平均・件数を返します。
//
// GET /sales/user/:userId/statistics
func (h *SalesHandler) GetStatistics(c *gin.Context) {
	st, err := h.uc.GetStatistics(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, "failed to fetch sales statistics", err)
		return
	}
	response.OK(c, dto.NewStatisticsResponse(st))
}

// DeleteSale は所有者本人の売上を削除します。
//
// DELETE /sales/:saleId/user/:userId
func (h *SalesHandler) DeleteSale(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}

	if err := h.uc.DeleteSale(c.Request.Context(), saleID, c.Param("userId")); err != nil {
		h.fail(c, "failed to delete sale", err)
		return
	}
	response.Message(c, "sale deleted")
}

// UpdateSale は所有者本人の売上を上書きします。日付の変更も可能です。
//
// PUT /sales/:saleId/user/:userId
func (h *SalesHandler) UpdateSale(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}
	var req dto.SaleRequest
	if errs := validation.BindJSON(c, &req); errs != nil {
		h.log.Warn("update sale validation failed", zap.Any("errors", errs), zap.Uint("sale_id", saleID))
		response.ValidationFailed(c, errs)
		return
	}

	sale, err := h.uc.UpdateSale(c.Request.Context(), saleID, c.Param("userId"), req.ToInput())
	if err != nil {
		h.fail(c, "failed to update sale", err)
		return
	}
	response.OK(c, dto.NewSaleResponse(*sale))
}

func parseSaleID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("saleId"), 10, 0)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, "invalid saleId")
		return 0, false
	}
	return uint(id), true
}

// fail はユースケースのエラーをHTTPステータスに対応付けて返します。
func (h *SalesHandler) fail(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, usecase.ErrOwnershipViolation):
		// 存在しない売上と他人の売上を区別しない
		h.log.Warn(msg, zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		response.Error(c, http.StatusForbidden, usecase.ErrOwnershipViolation.Error())
	case errors.Is(err, usecase.ErrSaleDateConflict):
		h.log.Warn(msg, zap.Error(err))
		response.Error(c, http.StatusConflict, usecase.ErrSaleDateConflict.Error())
	case errors.Is(err, usecase.ErrInvalidMonth):
		response.Error(c, http.StatusBadRequest, usecase.ErrInvalidMonth.Error())
	default:
		h.log.Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
		response.Error(c, http.StatusInternalServerError, msg+": "+err.Error())
	}
}
