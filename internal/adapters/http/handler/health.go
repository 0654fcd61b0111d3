package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/recruitment-api/internal/adapters/http/response"
)

// Health はプロセスの生存確認に応答します。
func Health(c *gin.Context) {
	response.OK(c, gin.H{"status": "ok"})
}
