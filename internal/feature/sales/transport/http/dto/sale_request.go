// Package dto defines data transfer objects for the sales feature's HTTP transport layer.
package dto

import (
	"github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"sales_backend/internal/feature/sales/usecase"
	"sales_backend/internal/platform/validation"
)

const (
	amountScale     = 2
	maxAmountDigits = 13 // integer digits allowed by decimal(15,2)
)

// maxAmount is the first value that no longer fits decimal(15,2).
var maxAmount = decimal.New(1, 13)

// SaleRequest is the body of POST /sales and PUT /sales/:saleId/user/:userId.
// amount accepts a JSON number or a numeric string.
type SaleRequest struct {
	UserID       string           `json:"userId" binding:"required,max=255"`
	SaleDate     *types.Date      `json:"saleDate" binding:"required"`
	Amount       *decimal.Decimal `json:"amount" binding:"required"`
	StoreName    string           `json:"storeName" binding:"max=255"`
	BusinessType string           `json:"businessType" binding:"max=255"`
}

// Validate checks the rules the binding tags cannot express.
func (r SaleRequest) Validate() []validation.FieldError {
	var errs []validation.FieldError
	if validation.Blank(r.UserID) {
		errs = append(errs, validation.FieldError{Field: "userId", Message: "is required"})
	}
	if r.SaleDate == nil {
		errs = append(errs, validation.FieldError{Field: "saleDate", Message: "is required"})
	}
	switch {
	case r.Amount == nil:
		errs = append(errs, validation.FieldError{Field: "amount", Message: "is required"})
	case !r.Amount.IsPositive():
		errs = append(errs, validation.FieldError{Field: "amount", Message: "must be greater than 0"})
	// Round and comparisons rescale the coefficient by 10^|exponent|, so the
	// exponent is bounded first using only the coefficient's digit count.
	case int64(r.Amount.NumDigits())+int64(r.Amount.Exponent()) > maxAmountDigits:
		errs = append(errs, validation.FieldError{Field: "amount", Message: "must be less than 10000000000000"})
	case -int64(r.Amount.Exponent())-amountScale >= int64(r.Amount.NumDigits()):
		errs = append(errs, validation.FieldError{Field: "amount", Message: "must have at most 2 decimal places"})
	case !r.Amount.Equal(r.Amount.Round(amountScale)):
		errs = append(errs, validation.FieldError{Field: "amount", Message: "must have at most 2 decimal places"})
	case r.Amount.GreaterThanOrEqual(maxAmount):
		errs = append(errs, validation.FieldError{Field: "amount", Message: "must be less than 10000000000000"})
	}
	return errs
}

// ToInput converts a validated request into the use-case input.
func (r SaleRequest) ToInput() usecase.SaleInput {
	return usecase.SaleInput{
		UserID:       r.UserID,
		SaleDate:     r.SaleDate.Time,
		Amount:       *r.Amount,
		StoreName:    r.StoreName,
		BusinessType: r.BusinessType,
	}
}
