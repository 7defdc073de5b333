// Package dto defines data transfer objects for the users feature's HTTP transport layer.
package dto

import (
	"sales_backend/internal/feature/users/usecase"
	"sales_backend/internal/platform/validation"
)

// UserUpdateRequest is the body of PUT /users/:email. All four fields are overwritten.
type UserUpdateRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	StoreName    string `json:"storeName" binding:"required,max=255"`
	BusinessType string `json:"businessType" binding:"required,max=255"`
	Address      string `json:"address" binding:"required"`
}

// Validate rejects values made only of white space.
func (r UserUpdateRequest) Validate() []validation.FieldError {
	var errs []validation.FieldError
	for _, f := range []struct{ name, value string }{
		{"name", r.Name},
		{"storeName", r.StoreName},
		{"businessType", r.BusinessType},
		{"address", r.Address},
	} {
		if validation.Blank(f.value) {
			errs = append(errs, validation.FieldError{Field: f.name, Message: "is required"})
		}
	}
	return errs
}

func (r UserUpdateRequest) ToProfile() usecase.Profile {
	return usecase.Profile{
		Name:         r.Name,
		StoreName:    r.StoreName,
		BusinessType: r.BusinessType,
		Address:      r.Address,
	}
}

// UserCreateRequest is the body of POST /users.
type UserCreateRequest struct {
	Email        string `json:"email" binding:"required,email,max=255"`
	Name         string `json:"name" binding:"required,max=255"`
	StoreName    string `json:"storeName" binding:"required,max=255"`
	BusinessType string `json:"businessType" binding:"max=255"`
	Address      string `json:"address"`
}

func (r UserCreateRequest) Validate() []validation.FieldError {
	var errs []validation.FieldError
	if validation.Blank(r.Name) {
		errs = append(errs, validation.FieldError{Field: "name", Message: "is required"})
	}
	if validation.Blank(r.StoreName) {
		errs = append(errs, validation.FieldError{Field: "storeName", Message: "is required"})
	}
	return errs
}

func (r UserCreateRequest) ToProfile() usecase.Profile {
	return usecase.Profile{
		Name:         r.Name,
		StoreName:    r.StoreName,
		BusinessType: r.BusinessType,
		Address:      r.Address,
	}
}
