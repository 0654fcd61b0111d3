package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// PasswordHasher はパスワードのハッシュ化と照合を行います。
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// BcryptHasher は bcrypt による PasswordHasher の実装です。
type BcryptHasher struct {
	Cost int
}

// Hash はパスワードをハッシュ化します。
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("identity: hash password: %w", err)
	}
	return string(b), nil
}

// Compare はハッシュとパスワードが一致するかを返します。
func (h BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
	minPasswordLength   = 8
)

// Service はユーザーに関するユースケースをまとめます。
type Service struct {
	repo   Repository
	clock  Clock
	hasher PasswordHasher
	newID  func() string
}

// UseCase はユーザーユースケースの公開インターフェースです。
type UseCase interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*User, error)
	UpdateUser(ctx context.Context, in UpdateUserInput) (*User, error)
	GetUser(ctx context.Context, in GetUserInput) (*User, error)
	ListUsers(ctx context.Context, in ListUsersInput) (*ListUsersResult, error)
	UnlockUser(ctx context.Context, in GetUserInput) (*User, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, hasher PasswordHasher) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &Service{repo: repo, clock: clock, hasher: hasher, newID: uuid.NewString}
}

// CreateUserInput はユーザー作成時の入力です。
type CreateUserInput struct {
	Email        string
	Password     string
	FirstName    string
	MiddleName   string
	LastName     string
	BusinessUnit string
	Department   string
	Role         Role
	IsStaff      bool
}

// UpdateUserInput はユーザー更新時の入力です。nil のフィールドは変更しません。
type UpdateUserInput struct {
	ID           string
	FirstName    *string
	MiddleName   *string
	LastName     *string
	BusinessUnit *string
	Department   *string
	Role         *Role
	IsActive     *bool
	Password     *string
}

// GetUserInput はユーザー取得時の入力です。
type GetUserInput struct {
	ID string
}

// ListUsersInput は一覧取得時の入力です。
type ListUsersInput struct {
	BusinessUnit string
	PageSize     int
	PageToken    string
}

// ListUsersResult は一覧取得結果を表します。
type ListUsersResult struct {
	Users         []*User
	NextPageToken string
}

// CreateUser は新しいユーザーを作成します。役割が未指定の場合は manager になります。
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	if firstName == "" || lastName == "" {
		return nil, ErrInvalidName
	}

	role := in.Role
	if role == "" {
		role = RoleManager
	}
	if !IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	if len(in.Password) < minPasswordLength {
		return nil, ErrInvalidPassword
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	if err := s.ensureEmailNotExists(ctx, email); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	u := &User{
		ID:           s.newID(),
		Email:        email,
		FirstName:    firstName,
		MiddleName:   strings.TrimSpace(in.MiddleName),
		LastName:     lastName,
		PasswordHash: hash,
		BusinessUnit: strings.TrimSpace(in.BusinessUnit),
		Department:   strings.TrimSpace(in.Department),
		Role:         role,
		IsStaff:      in.IsStaff,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return s.repo.Create(ctx, u)
}

// UpdateUser はユーザー情報を更新します。役割・部署・事業部の変更は発行済みトークンを無効にします。
func (s *Service) UpdateUser(ctx context.Context, in UpdateUserInput) (*User, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	existing, err := s.repo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		v := strings.TrimSpace(*in.FirstName)
		if v == "" {
			return nil, ErrInvalidName
		}
		existing.FirstName = v
	}
	if in.LastName != nil {
		v := strings.TrimSpace(*in.LastName)
		if v == "" {
			return nil, ErrInvalidName
		}
		existing.LastName = v
	}
	if in.MiddleName != nil {
		existing.MiddleName = strings.TrimSpace(*in.MiddleName)
	}
	if in.BusinessUnit != nil {
		existing.BusinessUnit = strings.TrimSpace(*in.BusinessUnit)
	}
	if in.Department != nil {
		existing.Department = strings.TrimSpace(*in.Department)
	}
	if in.Role != nil {
		if !IsValidRole(*in.Role) {
			return nil, ErrInvalidRole
		}
		existing.Role = *in.Role
	}
	if in.IsActive != nil {
		existing.IsActive = *in.IsActive
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLength {
			return nil, ErrInvalidPassword
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		existing.PasswordHash = hash
	}

	existing.UpdatedAt = s.clock.Now()

	return s.repo.Update(ctx, existing)
}

// UnlockUser はログイン失敗回数をリセットしてロックを解除します。
func (s *Service) UnlockUser(ctx context.Context, in GetUserInput) (*User, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	if err := s.repo.ResetAttempt(ctx, in.ID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, in.ID)
}

// GetUser は ID でユーザーを取得します。
func (s *Service) GetUser(ctx context.Context, in GetUserInput) (*User, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.FindByID(ctx, in.ID)
}

// ListUsers は有効なユーザーの一覧を取得します。
func (s *Service) ListUsers(ctx context.Context, in ListUsersInput) (*ListUsersResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	users, nextToken, err := s.repo.List(ctx, ListUsersFilter{
		BusinessUnit: strings.TrimSpace(in.BusinessUnit),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, err
	}

	return &ListUsersResult{Users: users, NextPageToken: nextToken}, nil
}

func (s *Service) ensureEmailNotExists(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}
	if user != nil {
		return ErrEmailAlreadyExists
	}
	return nil
}

// NormalizeEmail はメールアドレスを検証し小文字化します。
func NormalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(addr.Address), nil
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
