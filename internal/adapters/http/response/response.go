package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError はエラーレスポンスの本体です。
type APIError struct {
	Code              string            `json:"code"`
	Message           string            `json:"message"`
	Fields            map[string]string `json:"fields,omitempty"`
	RemainingAttempts *int              `json:"remaining_attempts,omitempty"`
}

// ErrorEnvelope は {"error": {...}} 形式のエラーレスポンスです。
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Abort はエラーを書き込み、以降のハンドラーを実行しません。
func Abort(c *gin.Context, status int, apiErr APIError) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: apiErr})
}

// OK は 200 で payload を返します。
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Created は 201 で payload を返します。
func Created(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// NoContent は 204 を返します。
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
