// Package response はAPI共通のJSONエンベロープを提供します。
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sales_backend/internal/platform/validation"
)

// Envelope はすべてのAPIレスポンスの共通形式です。
type Envelope struct {
	Success bool                    `json:"success"`
	Data    any                     `json:"data,omitempty"`
	Error   string                  `json:"error,omitempty"`
	Message string                  `json:"message,omitempty"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

// OK は200とデータを返します。
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created は201とデータを返します。
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Message はデータを伴わない成功メッセージを返します。
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: msg})
}

// NoData は該当データがないことを "data": null を明示して返します。エラーではありません。
func NoData(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": nil, "message": msg})
}

// Error はエラーメッセージを指定ステータスで返します。
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, Envelope{Success: false, Error: msg})
}

// ValidationFailed は項目単位のエラー一覧を400で返します。
func ValidationFailed(c *gin.Context, errs []validation.FieldError) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Error: "validation failed", Errors: errs})
}
