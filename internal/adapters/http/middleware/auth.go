package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/recruitment-api/internal/adapters/http/response"
	"github.com/ogurasousui/recruitment-api/internal/core/identity"
	"github.com/ogurasousui/recruitment-api/internal/platform/logger"
)

const (
	// AccessCookieName と RefreshCookieName はトークンを保持するクッキー名です。
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"

	currentUserKey = "current_user"
)

// Authenticator はアクセストークンからユーザーを解決します。
type Authenticator interface {
	Authenticate(ctx context.Context, rawAccess string) (*identity.User, error)
}

// AuthMiddleware はリクエスト毎の認証と役割チェックを行います。
type AuthMiddleware struct {
	auth Authenticator
	log  *logger.Logger
}

// NewAuthMiddleware は AuthMiddleware を生成します。
func NewAuthMiddleware(auth Authenticator, log *logger.Logger) *AuthMiddleware {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthMiddleware{auth: auth, log: log.With("middleware", "auth")}
}

// RequireAuth は有効なアクセストークンを要求します。
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw == "" {
			response.Error(c, m.log, response.ErrUnauthorized)
			return
		}
		if !m.authenticate(c, raw) {
			return
		}
		c.Next()
	}
}

// OptionalAuth はトークンがあれば認証し、なければ匿名として続行します。
// 提示されたトークンが無効な場合は 401 を返します。
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw != "" && !m.authenticate(c, raw) {
			return
		}
		c.Next()
	}
}

// RequireRole は認証済みユーザーが指定した役割のいずれかを持つことを要求します。RequireAuth の後に置きます。
func (m *AuthMiddleware) RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			response.Error(c, m.log, response.ErrUnauthorized)
			return
		}
		for _, role := range roles {
			if u.Role == role {
				c.Next()
				return
			}
		}
		response.Error(c, m.log, response.ErrForbidden)
	}
}

// RequireSuperuser はスーパーユーザーのみを通します。
func (m *AuthMiddleware) RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			response.Error(c, m.log, response.ErrUnauthorized)
			return
		}
		if !u.IsSuperuser {
			response.Error(c, m.log, response.ErrForbidden)
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, raw string) bool {
	u, err := m.auth.Authenticate(c.Request.Context(), raw)
	if err != nil {
		m.log.Debug("authentication failed", "error", err)
		response.Error(c, m.log, err)
		return false
	}
	c.Set(currentUserKey, u)
	return true
}

// CurrentUser は認証済みユーザーを返します。
func CurrentUser(c *gin.Context) (*identity.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*identity.User)
	return u, ok && u != nil
}

// CurrentActor は認証済みユーザーの操作主体を返します。匿名の場合は nil です。
func CurrentActor(c *gin.Context) *identity.Actor {
	u, ok := CurrentUser(c)
	if !ok {
		return nil
	}
	actor := u.Actor()
	return &actor
}

// extractToken は Authorization ヘッダー、access_token クッキーの順にトークンを探します。
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if cookie, err := c.Cookie(AccessCookieName); err == nil {
		return cookie
	}
	return ""
}
