package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ogurasousui/recruitment-api/internal/core/identity"
)

// TokenType はアクセストークンとリフレッシュトークンを区別します。
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims は発行するトークンのクレームです。アクセストークンには発行時点の役割・部署・事業部を埋め込みます。
type Claims struct {
	jwt.RegisteredClaims
	TokenType    TokenType `json:"typ"`
	Role         string    `json:"role,omitempty"`
	Department   string    `json:"department"`
	BusinessUnit string    `json:"business_unit"`
}

// TokenPair は発行されたトークンと各有効期限です。
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
}

// IssuerConfig は JWTIssuer の設定です。
type IssuerConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// JWTIssuer は HS256 署名の JWT を発行・検証します。
type JWTIssuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      Clock
}

// NewJWTIssuer は JWTIssuer を生成します。
func NewJWTIssuer(cfg IssuerConfig, clock Clock) *JWTIssuer {
	if clock == nil {
		clock = realClock{}
	}
	return &JWTIssuer{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		clock:      clock,
	}
}

// Issue はユーザーに対してアクセストークンとリフレッシュトークンを発行します。
func (i *JWTIssuer) Issue(u *identity.User) (*TokenPair, error) {
	if u == nil || u.ID == "" {
		return nil, fmt.Errorf("auth: issue token: user is required")
	}

	now := i.clock.Now()
	accessExp := now.Add(i.accessTTL)
	refreshExp := now.Add(i.refreshTTL)

	access := Claims{
		RegisteredClaims: i.registered(u.ID, now, accessExp),
		TokenType:        TokenTypeAccess,
		Role:             string(u.Role),
		Department:       u.Department,
		BusinessUnit:     u.BusinessUnit,
	}
	refresh := Claims{
		RegisteredClaims: i.registered(u.ID, now, refreshExp),
		TokenType:        TokenTypeRefresh,
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, access).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign access token: %w", err)
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refresh).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
		AccessTTL:        i.accessTTL,
		RefreshTTL:       i.refreshTTL,
	}, nil
}

// Parse は署名・有効期限・種別を検証してクレームを返します。
func (i *JWTIssuer) Parse(raw string, want TokenType) (*Claims, error) {
	if raw == "" {
		return nil, ErrMissingCredentials
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.TokenType != want || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (i *JWTIssuer) registered(subject string, now, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    i.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
}
