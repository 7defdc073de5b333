// Package usecase implements the business logic for the sales feature.
package usecase

import "errors"

var (
	// ErrSaleNotFound is returned by the store when no sale matches the query.
	ErrSaleNotFound = errors.New("sale not found")

	// ErrOwnershipViolation is returned when the caller's userId does not own the targeted sale.
	// A missing sale is reported with the same error so callers cannot tell foreign ids from missing ones.
	ErrOwnershipViolation = errors.New("sale does not belong to user")

	// ErrSaleDateConflict is returned when a write would create a second sale for the same user and date.
	ErrSaleDateConflict = errors.New("a sale already exists for this user and date")

	// ErrInvalidMonth is returned when a month outside 1..12 is requested.
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
)
