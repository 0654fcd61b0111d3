package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/recruitment-api/internal/adapters/http/middleware"
	"github.com/ogurasousui/recruitment-api/internal/adapters/http/response"
	"github.com/ogurasousui/recruitment-api/internal/core/auth"
	"github.com/ogurasousui/recruitment-api/internal/platform/logger"
)

// CookieConfig はトークンクッキーの属性です。
type CookieConfig struct {
	Secure   bool
	Domain   string
	SameSite http.SameSite
}

// ParseSameSite は設定値を http.SameSite へ変換します。
func ParseSameSite(raw string) http.SameSite {
	switch raw {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// AuthHandler はログイン、ログアウト、トークン更新の HTTP ハンドラーです。
type AuthHandler struct {
	auth    auth.UseCase
	cookies CookieConfig
	log     *logger.Logger
}

// NewAuthHandler は AuthHandler を生成します。
func NewAuthHandler(uc auth.UseCase, cookies CookieConfig, log *logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthHandler{auth: uc, cookies: cookies, log: log.With("handler", "auth")}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Detail string       `json:"detail"`
	User   userResponse `json:"user"`
	Access string       `json:"access"`
}

// Login は認証に成功するとトークンをクッキーと本文で返します。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, h.log, invalidBody(err))
		return
	}

	res, err := h.auth.Login(c.Request.Context(), auth.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		h.log.Info("login failed", "email", req.Email, "error", err)
		response.Error(c, h.log, err)
		return
	}

	h.setTokenCookies(c, res.Tokens)
	response.OK(c, loginResponse{
		Detail: "Login successful",
		User:   toUserResponse(res.User),
		Access: res.Tokens.AccessToken,
	})
}

// Logout は両方のトークンクッキーを削除します。
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearTokenCookies(c)
	response.NoContent(c)
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Refresh は refresh_token クッキー (なければ本文の refresh) からトークンを再発行します。
func (h *AuthHandler) Refresh(c *gin.Context) {
	raw, err := c.Cookie(middleware.RefreshCookieName)
	if err != nil || raw == "" {
		var req refreshRequest
		if c.Request.ContentLength > 0 {
			if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
				h.log.Debug("ignored malformed refresh body", "error", bindErr)
			}
		}
		raw = req.Refresh
	}
	if raw == "" {
		response.Unauthorized(c, h.log, response.ErrUnauthorized)
		return
	}

	res, err := h.auth.Refresh(c.Request.Context(), raw)
	if err != nil {
		h.clearTokenCookies(c)
		response.Unauthorized(c, h.log, err)
		return
	}

	h.setTokenCookies(c, res.Tokens)
	response.OK(c, gin.H{"detail": "Token refreshed", "access": res.Tokens.AccessToken})
}

// Me は現在のユーザーを返します。
func (h *AuthHandler) Me(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, h.log, response.ErrUnauthorized)
		return
	}
	response.OK(c, toUserResponse(u))
}

func (h *AuthHandler) setTokenCookies(c *gin.Context, tokens *auth.TokenPair) {
	h.setCookie(c, middleware.AccessCookieName, tokens.AccessToken, tokens.AccessTTL)
	h.setCookie(c, middleware.RefreshCookieName, tokens.RefreshToken, tokens.RefreshTTL)
}

func (h *AuthHandler) clearTokenCookies(c *gin.Context) {
	h.setCookie(c, middleware.AccessCookieName, "", -time.Second)
	h.setCookie(c, middleware.RefreshCookieName, "", -time.Second)
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(h.cookies.SameSite)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", h.cookies.Domain, h.cookies.Secure, true)
}
