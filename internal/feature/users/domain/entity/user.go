// Package entity defines the domain entities for the users feature.
package entity

import "time"

// User is a storefront owner's profile.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Email identifies the user in the API. It must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	Name         string `gorm:"size:255"`
	StoreName    string `gorm:"size:255"`
	BusinessType string `gorm:"size:255"`
	Address      string `gorm:"type:text"`

	// CreatedAt is set by the store on insert.
	CreatedAt time.Time `gorm:"autoCreateTime:false"`

	// UpdatedAt is set by the store on insert and on every profile update.
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}
