package dto

import (
	"time"

	"sales_backend/internal/feature/users/domain/entity"
)

// UserResponse is the JSON form of a user profile.
type UserResponse struct {
	ID           uint      `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	StoreName    string    `json:"storeName"`
	BusinessType string    `json:"businessType"`
	Address      string    `json:"address"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func NewUserResponse(u entity.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		StoreName:    u.StoreName,
		BusinessType: u.BusinessType,
		Address:      u.Address,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
