package handler

import (
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/recruitment-api/internal/adapters/http/middleware"
	"github.com/ogurasousui/recruitment-api/internal/adapters/http/response"
	"github.com/ogurasousui/recruitment-api/internal/core/identity"
	"github.com/ogurasousui/recruitment-api/internal/core/posting"
	"github.com/ogurasousui/recruitment-api/internal/platform/logger"
)

// PostingHandler は求人 (要求・取引先求人) の HTTP ハンドラーです。
type PostingHandler struct {
	postings posting.UseCase
	log      *logger.Logger
}

// NewPostingHandler は PostingHandler を生成します。
func NewPostingHandler(postings posting.UseCase, log *logger.Logger) *PostingHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &PostingHandler{postings: postings, log: log.With("handler", "posting")}
}

// List は求人一覧を返します。kind が nil の場合は両種別を統合して返します。
func (h *PostingHandler) List(kind *posting.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, err := parseListQuery(c)
		if err != nil {
			response.Error(c, h.log, err)
			return
		}
		if kind != nil {
			in.Kind = kind
		}

		res, err := h.postings.List(c.Request.Context(), middleware.CurrentActor(c), in)
		if err != nil {
			response.Error(c, h.log, err)
			return
		}

		results := make([]postingResponse, 0, len(res.Postings))
		for _, p := range res.Postings {
			results = append(results, toPostingResponse(p))
		}
		response.OK(c, listPostingsResponse{Results: results, NextPageToken: res.NextPageToken})
	}
}

// Get は求人を取得します。種別がルートと一致しない場合は見つからない扱いです。
func (h *PostingHandler) Get(kind posting.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		agg, err := h.postings.Get(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
		if err != nil {
			response.Error(c, h.log, err)
			return
		}
		if agg.Posting.Kind != kind {
			response.Error(c, h.log, posting.ErrPostingNotFound)
			return
		}
		response.OK(c, toAggregateResponse(agg))
	}
}

// CreateRequisition は要求を下書きとして作成します。
func (h *PostingHandler) CreateRequisition(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	var req requisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, h.log, invalidBody(err))
		return
	}
	in, err := req.toCreateInput()
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	agg, err := h.postings.CreateRequisition(c.Request.Context(), actor, in)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Created(c, toAggregateResponse(agg))
}

// CreateClientPosition は取引先求人を公開状態で作成します。
func (h *PostingHandler) CreateClientPosition(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	var req clientPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, h.log, invalidBody(err))
		return
	}
	in, err := req.toCreateInput()
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	agg, err := h.postings.CreateClientPosition(c.Request.Context(), actor, in)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Created(c, toAggregateResponse(agg))
}

// UpdateRequisition は要求を部分更新します。
func (h *PostingHandler) UpdateRequisition(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	var req requisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, h.log, invalidBody(err))
		return
	}
	in, err := req.toUpdateInput(c.Param("id"))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	h.update(c, actor, in)
}

// UpdateClientPosition は取引先求人を部分更新します。pipeline はステップ単位の差分として扱います。
func (h *PostingHandler) UpdateClientPosition(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	var req clientPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, h.log, invalidBody(err))
		return
	}
	in, err := req.toUpdateInput(c.Param("id"))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	h.update(c, actor, in)
}

func (h *PostingHandler) update(c *gin.Context, actor identity.Actor, in posting.UpdateInput) {
	agg, err := h.postings.Update(c.Request.Context(), actor, in)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, toAggregateResponse(agg))
}

// Delete は求人を論理削除します。
func (h *PostingHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	if err := h.postings.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.NoContent(c)
}

// BulkDelete は {"ids": [...]} のうち自身の求人のみを論理削除し、対象となった ID を返します。
func (h *PostingHandler) BulkDelete(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}

	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, h.log, invalidBody(err))
		return
	}
	var ids []string
	raw, present := body["ids"]
	if !present || json.Unmarshal(raw, &ids) != nil || ids == nil {
		response.Error(c, h.log, &response.BadRequest{Field: "ids", Message: "must be a list of posting ids"})
		return
	}

	deleted, err := h.postings.BulkDelete(c.Request.Context(), actor, ids)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	if deleted == nil {
		deleted = []string{}
	}
	response.OK(c, gin.H{"deleted": deleted})
}

func parseListQuery(c *gin.Context) (posting.ListInput, error) {
	var in posting.ListInput

	mine, err := queryBool(c, "mine")
	if err != nil {
		return in, err
	}
	in.Mine = mine != nil && *mine

	if v := c.Query("kind"); v != "" {
		kind := posting.Kind(v)
		in.Kind = &kind
	}
	if v := c.Query("status"); v != "" {
		status := posting.Status(v)
		in.Status = &status
	}
	if in.Active, err = queryBool(c, "is_active"); err != nil {
		return in, err
	}
	if in.Published, err = queryBool(c, "published"); err != nil {
		return in, err
	}
	noActive, err := queryBool(c, "no_active")
	if err != nil {
		return in, err
	}
	in.ExcludeActiveStatus = noActive != nil && *noActive

	if v := c.Query("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return in, &response.BadRequest{Field: "page_size", Message: "must be an integer"}
		}
		in.PageSize = size
	}
	in.PageToken = c.Query("page_token")
	return in, nil
}

func queryBool(c *gin.Context, key string) (*bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &response.BadRequest{Field: key, Message: "must be a boolean"}
	}
	return &v, nil
}

func requireActor(c *gin.Context, log *logger.Logger) (identity.Actor, bool) {
	actor := middleware.CurrentActor(c)
	if actor == nil {
		response.Error(c, log, response.ErrUnauthorized)
		return identity.Actor{}, false
	}
	return *actor, true
}

func invalidBody(err error) error {
	return &response.BadRequest{Message: "invalid request body: " + err.Error()}
}
