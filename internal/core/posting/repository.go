package posting

import (
	"context"
	"time"
)

// Repository は求人集約の永続化を行うインターフェースです。
// 書き込みはサービス側のトランザクション内で呼び出されます。
type Repository interface {
	CreatePosting(ctx context.Context, p *Posting) error
	UpdatePosting(ctx context.Context, p *Posting) error
	FindPosting(ctx context.Context, id string) (*Posting, error)
	// DeactivatePostings は ownerID が登録した求人のうち ids に含まれるものを無効化し、対象となった ID を返します。
	DeactivatePostings(ctx context.Context, ownerID string, ids []string, at time.Time) ([]string, error)
	ListPostings(ctx context.Context, filter ListFilter) ([]*Posting, error)

	CreateRequisition(ctx context.Context, postingID string, r *Requisition) error
	UpdateRequisition(ctx context.Context, postingID string, r *Requisition) error
	FindRequisition(ctx context.Context, postingID string) (*Requisition, error)
	ReplaceHiringManagers(ctx context.Context, postingID string, userIDs []string) error
	InsertTags(ctx context.Context, postingID string, tags []Tag) error
	// RenameTags は postingID に属するタグの名前のみを更新します。
	RenameTags(ctx context.Context, postingID string, tags []Tag) error

	CreateClientPosition(ctx context.Context, postingID string, c *ClientPosition) error
	UpdateClientPosition(ctx context.Context, postingID string, c *ClientPosition) error
	FindClientPosition(ctx context.Context, postingID string) (*ClientPosition, error)
	SaveApplicationForm(ctx context.Context, postingID string, form ApplicationForm) error
	DeleteSteps(ctx context.Context, postingID string, ids []string) error
	UpdateSteps(ctx context.Context, postingID string, steps []PipelineStep) error
	InsertSteps(ctx context.Context, postingID string, steps []PipelineStep) error
}

// ListFilter は種別ごとの一覧取得条件です。nil の条件は適用しません。
type ListFilter struct {
	Kind          Kind
	OwnerID       string
	Active        *bool
	Published     *bool
	Status        *Status
	ExcludeStatus *Status
	Limit         int
}
