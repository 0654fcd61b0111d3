package posting

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/ogurasousui/recruitment-api/internal/core/identity"
)

// ListInput は求人一覧の検索条件です。
// Mine は認証済みの閲覧者が自身の求人を参照する場合にのみ有効です。
type ListInput struct {
	Mine                bool
	Kind                *Kind
	Status              *Status
	Active              *bool
	Published           *bool
	ExcludeActiveStatus bool
	PageSize            int
	PageToken           string
}

// ListResult は一覧取得結果です。各要素は Kind で種別を判別できます。
type ListResult struct {
	Postings      []*Posting
	NextPageToken string
}

// List は種別ごとに取得した求人を作成日時の降順で統合して返します。
// 匿名または Mine を指定しない閲覧者には公開中かつ有効な求人のみを返します。
func (s *Service) List(ctx context.Context, viewer *identity.Actor, in ListInput) (*ListResult, error) {
	pageSize, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}
	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	kinds := []Kind{KindRequisition, KindClientPosition}
	if in.Kind != nil {
		if *in.Kind != KindRequisition && *in.Kind != KindClientPosition {
			return nil, ErrInvalidKind
		}
		kinds = []Kind{*in.Kind}
	}
	if in.Status != nil && !IsValidStatus(*in.Status) {
		return nil, ErrInvalidStatus
	}

	base := buildListFilter(viewer, in)
	base.Limit = offset + pageSize + 1

	var merged []*Posting
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		for _, kind := range kinds {
			filter := base
			filter.Kind = kind
			rows, err := s.repo.ListPostings(txCtx, filter)
			if err != nil {
				return err
			}
			merged = append(merged, rows...)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		}
		return merged[i].ID > merged[j].ID
	})

	if offset >= len(merged) {
		return &ListResult{Postings: []*Posting{}}, nil
	}
	end := offset + pageSize
	var nextToken string
	if end < len(merged) {
		nextToken = strconv.Itoa(end)
	} else {
		end = len(merged)
	}

	return &ListResult{
		Postings:      merged[offset:end],
		NextPageToken: nextToken,
	}, nil
}

func buildListFilter(viewer *identity.Actor, in ListInput) ListFilter {
	filter := ListFilter{Status: in.Status}

	if in.Mine && viewer != nil && viewer.UserID != "" {
		filter.OwnerID = viewer.UserID
		active := true
		if in.Active != nil {
			active = *in.Active
		}
		filter.Active = &active
		filter.Published = in.Published
		if in.ExcludeActiveStatus {
			excluded := StatusActive
			filter.ExcludeStatus = &excluded
		}
		return filter
	}

	active, published := true, true
	filter.Active = &active
	filter.Published = &published
	return filter
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
