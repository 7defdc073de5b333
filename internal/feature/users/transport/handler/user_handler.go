// Package handler はusersフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sales_backend/internal/feature/users/domain/entity"
	"sales_backend/internal/feature/users/transport/http/dto"
	"sales_backend/internal/feature/users/usecase"
	"sales_backend/internal/platform/http/response"
	"sales_backend/internal/platform/validation"
)

// UserUsecase はユーザープロフィール操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type UserUsecase interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, bool, error)
	UpdateUser(ctx context.Context, email string, p usecase.Profile) (*entity.User, bool, error)
	CreateUser(ctx context.Context, email string, p usecase.Profile) (*entity.User, error)
}

var _ UserUsecase = (*usecase.UserUsecase)(nil)

// UserHandler はユーザープロフィールのHTTPリクエストを処理します。
type UserHandler struct {
	uc  UserUsecase
	log *zap.Logger
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(uc UserUsecase, log *zap.Logger) *UserHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserHandler{uc: uc, log: log.Named("users")}
}

// GetUser はメールアドレスでユーザーを返します。
// - 存在しない場合は404を返却
//
// GET /users/:email
func (h *UserHandler) GetUser(c *gin.Context) {
	email := c.Param("email")
	user, found, err := h.uc.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		h.log.Error("failed to fetch user", zap.Error(err), zap.String("email", email))
		response.Error(c, http.StatusInternalServerError, "failed to fetch user: "+err.Error())
		return
	}
	if !found {
		response.Error(c, http.StatusNotFound, "user not found")
		return
	}
	response.OK(c, dto.NewUserResponse(*user))
}

// UpdateUser はプロフィール4項目を上書きします。
// - バリデーションエラー時は400を返却
// - 存在しない場合は404を返却
//
// PUT /users/:email
func (h *UserHandler) UpdateUser(c *gin.Context) {
	email := c.Param("email")
	var req dto.UserUpdateRequest
	if errs := validation.BindJSON(c, &req); errs != nil {
		h.log.Warn("update user validation failed", zap.Any("errors", errs), zap.String("email", email))
		response.ValidationFailed(c, errs)
		return
	}

	user, found, err := h.uc.UpdateUser(c.Request.Context(), email, req.ToProfile())
	if err != nil {
		h.log.Error("failed to update user", zap.Error(err), zap.String("email", email))
		response.Error(c, http.StatusInternalServerError, "failed to update user: "+err.Error())
		return
	}
	if !found {
		response.Error(c, http.StatusNotFound, "user to update not found")
		return
	}
	response.OK(c, dto.NewUserResponse(*user))
}

// CreateUser は新規ユーザーを登録します。
// - メールアドレス重複時は409を返却
// - 成功時は201を返却
//
// POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.UserCreateRequest
	if errs := validation.BindJSON(c, &req); errs != nil {
		h.log.Warn("create user validation failed", zap.Any("errors", errs), zap.String("remote_addr", c.ClientIP()))
		response.ValidationFailed(c, errs)
		return
	}

	user, err := h.uc.CreateUser(c.Request.Context(), req.Email, req.ToProfile())
	if errors.Is(err, usecase.ErrEmailAlreadyExists) {
		response.Error(c, http.StatusConflict, usecase.ErrEmailAlreadyExists.Error())
		return
	}
	if err != nil {
		h.log.Error("failed to create user", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to create user: "+err.Error())
		return
	}
	response.Created(c, dto.NewUserResponse(*user))
}
