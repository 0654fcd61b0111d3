package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/recruitment-api/internal/core/identity"
)

// DefaultMaxLoginAttempts はアカウントをロックするまでのパスワード誤り回数の既定値です。
const DefaultMaxLoginAttempts = 5

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TokenIssuer はトークンの発行と検証を担います。
type TokenIssuer interface {
	Issue(u *identity.User) (*TokenPair, error)
	Parse(raw string, want TokenType) (*Claims, error)
}

// UseCase は認証ユースケースのインターフェースです。
type UseCase interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Refresh(ctx context.Context, rawRefresh string) (*LoginResult, error)
	Authenticate(ctx context.Context, rawAccess string) (*identity.User, error)
}

// Service はログイン、トークン更新、リクエスト毎の認証を提供します。
type Service struct {
	users       identity.Repository
	hasher      identity.PasswordHasher
	issuer      TokenIssuer
	maxAttempts int
}

// NewService は Service を生成します。maxAttempts が 0 以下の場合は既定値を利用します。
func NewService(users identity.Repository, hasher identity.PasswordHasher, issuer TokenIssuer, maxAttempts int) *Service {
	if hasher == nil {
		hasher = identity.BcryptHasher{}
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxLoginAttempts
	}
	return &Service{
		users:       users,
		hasher:      hasher,
		issuer:      issuer,
		maxAttempts: maxAttempts,
	}
}

// LoginInput はログイン時の入力値です。
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult は認証済みユーザーと発行したトークンです。
type LoginResult struct {
	User   *identity.User
	Tokens *TokenPair
}

// Login はメールアドレスとパスワードで認証し、トークンを発行します。
// ロック判定、無効判定、パスワード照合の順に評価します。
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.IsLocked(s.maxAttempts) {
		return nil, ErrAccountLocked
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if !s.hasher.Compare(user.PasswordHash, in.Password) {
		attempts, err := s.users.IncrementAttempt(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("auth: record failed attempt: %w", err)
		}
		remaining := s.maxAttempts - attempts
		if remaining <= 0 {
			return nil, &AttemptError{Remaining: 0, Err: ErrAccountLocked}
		}
		return nil, &AttemptError{Remaining: remaining, Err: ErrInvalidCredentials}
	}

	if user.Attempt > 0 {
		if err := s.users.ResetAttempt(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("auth: reset attempts: %w", err)
		}
		user.Attempt = 0
	}

	tokens, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Tokens: tokens}, nil
}

// Refresh はリフレッシュトークンを検証し、ユーザー状態を再確認した上でトークンを再発行します。
func (s *Service) Refresh(ctx context.Context, rawRefresh string) (*LoginResult, error) {
	claims, err := s.issuer.Parse(rawRefresh, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.loadActiveUser(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Tokens: tokens}, nil
}

// Authenticate はアクセストークンを検証し、現在のユーザー情報とクレームを突き合わせます。
func (s *Service) Authenticate(ctx context.Context, rawAccess string) (*identity.User, error) {
	claims, err := s.issuer.Parse(rawAccess, TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	user, err := s.loadActiveUser(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	switch {
	case claims.Role != string(user.Role):
		return nil, ErrRoleMismatch
	case claims.Department != user.Department:
		return nil, ErrDepartmentMismatch
	case claims.BusinessUnit != user.BusinessUnit:
		return nil, ErrBusinessUnitMismatch
	}
	return user, nil
}

func (s *Service) loadActiveUser(ctx context.Context, id string) (*identity.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, ErrUserNotFound)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	if user.IsLocked(s.maxAttempts) {
		return nil, ErrAccountLocked
	}
	return user, nil
}
