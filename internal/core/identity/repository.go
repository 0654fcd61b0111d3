package identity

import "context"

// Repository はユーザーエンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, user *User) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter ListUsersFilter) ([]*User, string, error)
	// IncrementAttempt はログイン失敗回数を原子的に 1 増やし、更新後の値を返します。
	IncrementAttempt(ctx context.Context, id string) (int, error)
	// ResetAttempt はログイン失敗回数を 0 に戻します。
	ResetAttempt(ctx context.Context, id string) error
}

// ListUsersFilter は一覧取得用フィルタです。有効なユーザーのみが対象です。
type ListUsersFilter struct {
	BusinessUnit string
	Limit        int
	Offset       int
}
