// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sales_backend/internal/feature/sales/adapters"
	"sales_backend/internal/feature/sales/transport/handler"
	"sales_backend/internal/feature/sales/usecase"
	"sales_backend/internal/platform/cache"
	"sales_backend/internal/platform/db"
)

// redeleteAfter is the delay of the second cache invalidation after a write.
const redeleteAfter = 2 * time.Second

// NewSaleRepository creates a SaleRepository implementation.
// If Redis is available, the GORM repository is wrapped with the Redis cache.
// Otherwise, the GORM repository is used directly.
func NewSaleRepository(gdb *gorm.DB, rdb *redis.Client, ttl time.Duration, namespace string) usecase.SaleRepository {
	repo := adapters.NewSaleRepository(gdb)
	if rdb == nil {
		return repo
	}
	return cache.NewCachingSaleRepository(rdb, ttl, repo, namespace).WithDelayedInvalidation(redeleteAfter)
}

// NewSalesHandler wires the sales feature from the store up to the HTTP handler.
func NewSalesHandler(gdb *gorm.DB, rdb *redis.Client, ttl time.Duration, namespace string, log *zap.Logger) *handler.SalesHandler {
	repo := NewSaleRepository(gdb, rdb, ttl, namespace)
	uc := usecase.NewSalesUsecase(repo, db.NewTransactor(gdb), log)
	return handler.NewSalesHandler(uc, log)
}
