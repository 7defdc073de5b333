package di

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sales_backend/internal/feature/users/adapters"
	"sales_backend/internal/feature/users/transport/handler"
	"sales_backend/internal/feature/users/usecase"
	"sales_backend/internal/platform/db"
)

// NewUserHandler wires the users feature from the store up to the HTTP handler.
func NewUserHandler(gdb *gorm.DB, log *zap.Logger) *handler.UserHandler {
	uc := usecase.NewUserUsecase(adapters.NewUserRepository(gdb), db.NewTransactor(gdb), log)
	return handler.NewUserHandler(uc, log)
}
