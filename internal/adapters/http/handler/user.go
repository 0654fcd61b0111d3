package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/recruitment-api/internal/adapters/http/response"
	"github.com/ogurasousui/recruitment-api/internal/core/identity"
	"github.com/ogurasousui/recruitment-api/internal/platform/logger"
)

type userResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	MiddleName   string    `json:"middle_name"`
	LastName     string    `json:"last_name"`
	FullName     string    `json:"full_name"`
	BusinessUnit string    `json:"business_unit"`
	Department   string    `json:"department"`
	Role         string    `json:"role"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	IsActive     bool      `json:"is_active"`
	Attempt      int       `json:"attempt"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toUserResponse(u *identity.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		MiddleName:   u.MiddleName,
		LastName:     u.LastName,
		FullName:     u.FullName(),
		BusinessUnit: u.BusinessUnit,
		Department:   u.Department,
		Role:         string(u.Role),
		IsStaff:      u.IsStaff,
		IsSuperuser:  u.IsSuperuser,
		IsActive:     u.IsActive,
		Attempt:      u.Attempt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// UserHandler はユーザー管理の HTTP ハンドラーです。
type UserHandler struct {
	users identity.UseCase
	log   *logger.Logger
}

// NewUserHandler は UserHandler を生成します。
func NewUserHandler(users identity.UseCase, log *logger.Logger) *UserHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &UserHandler{users: users, log: log.With("handler", "user")}
}

type createUserRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"first_name"`
	MiddleName   string `json:"middle_name"`
	LastName     string `json:"last_name"`
	BusinessUnit string `json:"business_unit"`
	Department   string `json:"department"`
	Role         string `json:"role"`
	IsStaff      bool   `json:"is_staff"`
}

type updateUserRequest struct {
	FirstName    *string `json:"first_name"`
	MiddleName   *string `json:"middle_name"`
	LastName     *string `json:"last_name"`
	BusinessUnit *string `json:"business_unit"`
	Department   *string `json:"department"`
	Role         *string `json:"role"`
	IsActive     *bool   `json:"is_active"`
	Password     *string `json:"password"`
}

// List は有効なユーザーを返します。business_unit で絞り込めます。
func (h *UserHandler) List(c *gin.Context) {
	size, err := pageSizeQuery(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	res, err := h.users.ListUsers(c.Request.Context(), identity.ListUsersInput{
		BusinessUnit: c.Query("business_unit"),
		PageSize:     size,
		PageToken:    c.Query("page_token"),
	})
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	results := make([]userResponse, 0, len(res.Users))
	for _, u := range res.Users {
		results = append(results, toUserResponse(u))
	}
	response.OK(c, gin.H{"results": results, "next_page_token": res.NextPageToken})
}

// Get はユーザーを取得します。
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.users.GetUser(c.Request.Context(), identity.GetUserInput{ID: c.Param("id")})
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, toUserResponse(u))
}

// Create はユーザーを作成します。
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, h.log, invalidBody(err))
		return
	}
	u, err := h.users.CreateUser(c.Request.Context(), identity.CreateUserInput{
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		MiddleName:   req.MiddleName,
		LastName:     req.LastName,
		BusinessUnit: req.BusinessUnit,
		Department:   req.Department,
		Role:         identity.Role(req.Role),
		IsStaff:      req.IsStaff,
	})
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Created(c, toUserResponse(u))
}

// Update はユーザーを部分更新します。
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, h.log, invalidBody(err))
		return
	}
	in := identity.UpdateUserInput{
		ID:           c.Param("id"),
		FirstName:    req.FirstName,
		MiddleName:   req.MiddleName,
		LastName:     req.LastName,
		BusinessUnit: req.BusinessUnit,
		Department:   req.Department,
		IsActive:     req.IsActive,
		Password:     req.Password,
	}
	if req.Role != nil {
		role := identity.Role(*req.Role)
		in.Role = &role
	}

	u, err := h.users.UpdateUser(c.Request.Context(), in)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, toUserResponse(u))
}

// Unlock はログイン失敗回数をリセットしてロックを解除します。
func (h *UserHandler) Unlock(c *gin.Context) {
	u, err := h.users.UnlockUser(c.Request.Context(), identity.GetUserInput{ID: c.Param("id")})
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	h.log.Info("user unlocked", "user_id", u.ID)
	response.OK(c, toUserResponse(u))
}
