package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	saleshandler "sales_backend/internal/feature/sales/transport/handler"
	usershandler "sales_backend/internal/feature/users/transport/handler"
	platformhandler "sales_backend/internal/platform/http/handler"
	"sales_backend/internal/platform/http/middleware"
	"sales_backend/internal/platform/http/response"
	"sales_backend/internal/shared/ratelimiter"
)

// Deps はルーター構築に必要な依存関係です。
type Deps struct {
	Sales *saleshandler.SalesHandler
	Users *usershandler.UserHandler
	// Ready は /readyz のハンドラーです。nilの場合は登録しません。
	Ready gin.HandlerFunc
	// Limiter がnilの場合はレート制限を行いません。
	Limiter *ratelimiter.RateLimiter
	// AllowedOrigins が空の場合はCORSヘッダーを付与しません。
	AllowedOrigins []string
	Log            *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.AccessLog(log), gin.CustomRecovery(func(c *gin.Context, err any) {
		log.Error("panic recovered", zap.Any("error", err), zap.String("path", c.Request.URL.Path))
		response.Error(c, http.StatusInternalServerError, "internal server error")
	}))
	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "not found")
	})

	// 導通確認用
	r.Match([]string{http.MethodGet, http.MethodHead, http.MethodOptions}, "/healthz", platformhandler.Health)
	if d.Ready != nil {
		r.GET("/readyz", d.Ready)
	}

	api := r.Group("/")
	if d.Limiter != nil {
		api.Use(d.Limiter.Middleware(log.Named("ratelimit")))
	}

	// 売上
	sales := api.Group("/sales")
	{
		sales.POST("", d.Sales.CreateSale)
		sales.GET("/user/:userId", d.Sales.GetSalesByUser)
		sales.GET("/user/:userId/range", d.Sales.GetSalesByDateRange)
		sales.GET("/user/:userId/date/:date", d.Sales.GetSaleByDate)
		sales.GET("/user/:userId/month", d.Sales.GetSalesByMonth)
		sales.GET("/user/:userId/statistics", d.Sales.GetStatistics)
		sales.DELETE("/:saleId/user/:userId", d.Sales.DeleteSale)
		sales.PUT("/:saleId/user/:userId", d.Sales.UpdateSale)
	}

	// ユーザープロフィール
	users := api.Group("/users")
	{
		users.POST("", d.Users.CreateUser)
		users.GET("/:email", d.Users.GetUser)
		users.PUT("/:email", d.Users.UpdateUser)
	}

	return r
}
