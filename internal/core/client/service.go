package client

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/recruitment-api/internal/core/identity"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

var contactNumberPattern = regexp.MustCompile(`^[0-9]{11}$`)

// Service は取引先に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
	newID func() string
}

// UseCase は取引先ユースケースの公開インターフェースです。
type UseCase interface {
	CreateClient(ctx context.Context, actor identity.Actor, in CreateClientInput) (*Client, error)
	GetClient(ctx context.Context, in GetClientInput) (*Client, error)
	ListClients(ctx context.Context, in ListClientsInput) (*ListClientsResult, error)
	UpdateClient(ctx context.Context, in UpdateClientInput) (*Client, error)
	DeleteClient(ctx context.Context, in DeleteClientInput) error
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx, newID: uuid.NewString}
}

// CreateClientInput は取引先作成時の入力です。
type CreateClientInput struct {
	Name          string
	Email         string
	ContactNumber string
}

// UpdateClientInput は取引先更新時の入力です。nil のフィールドは変更しません。
type UpdateClientInput struct {
	ID            string
	Name          *string
	Email         *string
	ContactNumber *string
	Active        *bool
}

// DeleteClientInput は取引先削除時の入力です。
type DeleteClientInput struct {
	ID string
}

// GetClientInput は取引先取得時の入力です。
type GetClientInput struct {
	ID string
}

// ListClientsInput は一覧取得時の入力です。
type ListClientsInput struct {
	PageSize  int
	PageToken string
}

// ListClientsResult は一覧取得結果を表します。
type ListClientsResult struct {
	Clients       []*Client
	NextPageToken string
}

// CreateClient は新しい取引先を登録します。登録者は actor になります。
func (s *Service) CreateClient(ctx context.Context, actor identity.Actor, in CreateClientInput) (*Client, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	contact, err := normalizeContactNumber(in.ContactNumber)
	if err != nil {
		return nil, err
	}

	var created *Client
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureNameNotExists(txCtx, name, ""); err != nil {
			return err
		}

		now := s.clock.Now()
		var postedBy *string
		if actor.UserID != "" {
			id := actor.UserID
			postedBy = &id
		}
		result, err := s.repo.Create(txCtx, &Client{
			ID:            s.newID(),
			Name:          name,
			Email:         email,
			ContactNumber: contact,
			Active:        true,
			PostedBy:      postedBy,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateClient は取引先情報を更新します。
func (s *Service) UpdateClient(ctx context.Context, in UpdateClientInput) (*Client, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Client
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name, err := normalizeName(*in.Name)
			if err != nil {
				return err
			}
			if name != existing.Name {
				if err := s.ensureNameNotExists(txCtx, name, existing.ID); err != nil {
					return err
				}
				existing.Name = name
			}
		}

		if in.Email != nil {
			email, err := normalizeEmail(*in.Email)
			if err != nil {
				return err
			}
			existing.Email = email
		}

		if in.ContactNumber != nil {
			contact, err := normalizeContactNumber(*in.ContactNumber)
			if err != nil {
				return err
			}
			existing.ContactNumber = contact
		}

		if in.Active != nil {
			existing.Active = *in.Active
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteClient は取引先を論理削除します。既に無効な取引先に対しても成功します。
func (s *Service) DeleteClient(ctx context.Context, in DeleteClientInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		if !existing.Active {
			return nil
		}
		existing.Active = false
		existing.UpdatedAt = s.clock.Now()
		_, err = s.repo.Update(txCtx, existing)
		return err
	})
}

// GetClient は ID で取引先を取得します。
func (s *Service) GetClient(ctx context.Context, in GetClientInput) (*Client, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var found *Client
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		found = result
		return nil
	}); err != nil {
		return nil, err
	}

	return found, nil
}

// ListClients は有効な取引先を一覧で取得します。
func (s *Service) ListClients(ctx context.Context, in ListClientsInput) (*ListClientsResult, error) {
	pageSize, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var (
		clients   []*Client
		nextToken string
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListClientsFilter{
			Limit:      pageSize,
			Offset:     offset,
			ActiveOnly: true,
		})
		if err != nil {
			return err
		}
		clients = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListClientsResult{
		Clients:       clients,
		NextPageToken: nextToken,
	}, nil
}

func (s *Service) ensureNameNotExists(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil && !errors.Is(err, ErrClientNotFound) {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return ErrNameAlreadyExists
	}
	return nil
}

func normalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || len(trimmed) > 255 {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", ErrInvalidEmail
	}
	return trimmed, nil
}

func normalizeContactNumber(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if !contactNumberPattern.MatchString(trimmed) {
		return "", ErrInvalidContactNumber
	}
	return trimmed, nil
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
