// Package entity defines the domain models for the sales feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is one day's sales figure recorded by a user.
// At most one Sale exists per (UserID, SaleDate).
type Sale struct {
	ID           uint            // Surrogate key assigned by the store
	UserID       string          // Owner identifier (free text, not a foreign key)
	SaleDate     time.Time       // Calendar date, always 00:00 UTC
	Amount       decimal.Decimal // Fixed-point amount, scale 2
	StoreName    string          // Optional
	BusinessType string          // Optional
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Statistics aggregates a user's sales.
type Statistics struct {
	Total   decimal.Decimal
	Average decimal.Decimal
	Count   int64
}

// NormalizeDate drops the clock part of t and returns the same calendar day at 00:00 UTC.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
