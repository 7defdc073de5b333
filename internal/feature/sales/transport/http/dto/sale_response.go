package dto

import (
	"encoding/json"
	"time"

	"github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"sales_backend/internal/feature/sales/domain/entity"
)

// SaleResponse is the JSON form of a sale. amount is a number with exactly two decimals.
type SaleResponse struct {
	ID           uint        `json:"id"`
	UserID       string      `json:"userId"`
	SaleDate     types.Date  `json:"saleDate"`
	Amount       json.Number `json:"amount"`
	StoreName    string      `json:"storeName"`
	BusinessType string      `json:"businessType"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// StatisticsResponse is the body of GET /sales/user/:userId/statistics.
type StatisticsResponse struct {
	TotalSales   json.Number `json:"totalSales"`
	AverageSales json.Number `json:"averageSales"`
	SalesCount   int64       `json:"salesCount"`
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(amountScale))
}

func NewSaleResponse(s entity.Sale) SaleResponse {
	return SaleResponse{
		ID:           s.ID,
		UserID:       s.UserID,
		SaleDate:     types.Date{Time: s.SaleDate},
		Amount:       money(s.Amount),
		StoreName:    s.StoreName,
		BusinessType: s.BusinessType,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// NewSaleResponses keeps the order of sales and never returns nil.
func NewSaleResponses(sales []entity.Sale) []SaleResponse {
	out := make([]SaleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, NewSaleResponse(s))
	}
	return out
}

func NewStatisticsResponse(st entity.Statistics) StatisticsResponse {
	return StatisticsResponse{
		TotalSales:   money(st.Total),
		AverageSales: money(st.Average),
		SalesCount:   st.Count,
	}
}
