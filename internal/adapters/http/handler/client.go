package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/recruitment-api/internal/adapters/http/response"
	"github.com/ogurasousui/recruitment-api/internal/core/client"
	"github.com/ogurasousui/recruitment-api/internal/platform/logger"
)

type clientResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	ContactNumber string    `json:"contact_number"`
	Active        bool      `json:"active"`
	PostedBy      *string   `json:"posted_by"`
	PostedByName  string    `json:"posted_by_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toClientResponse(cl *client.Client) clientResponse {
	return clientResponse{
		ID:            cl.ID,
		Name:          cl.Name,
		Email:         cl.Email,
		ContactNumber: cl.ContactNumber,
		Active:        cl.Active,
		PostedBy:      cl.PostedBy,
		PostedByName:  cl.PostedByName,
		CreatedAt:     cl.CreatedAt,
		UpdatedAt:     cl.UpdatedAt,
	}
}

// ClientHandler は取引先の HTTP ハンドラーです。
type ClientHandler struct {
	clients client.UseCase
	log     *logger.Logger
}

// NewClientHandler は ClientHandler を生成します。
func NewClientHandler(clients client.UseCase, log *logger.Logger) *ClientHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ClientHandler{clients: clients, log: log.With("handler", "client")}
}

type createClientRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
}

type updateClientRequest struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	ContactNumber *string `json:"contact_number"`
	Active        *bool   `json:"active"`
}

// List は有効な取引先を返します。
func (h *ClientHandler) List(c *gin.Context) {
	size, err := pageSizeQuery(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	res, err := h.clients.ListClients(c.Request.Context(), client.ListClientsInput{PageSize: size, PageToken: c.Query("page_token")})
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	results := make([]clientResponse, 0, len(res.Clients))
	for _, cl := range res.Clients {
		results = append(results, toClientResponse(cl))
	}
	response.OK(c, gin.H{"results": results, "next_page_token": res.NextPageToken})
}

// Get は取引先を取得します。
func (h *ClientHandler) Get(c *gin.Context) {
	cl, err := h.clients.GetClient(c.Request.Context(), client.GetClientInput{ID: c.Param("id")})
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, toClientResponse(cl))
}

// Create は取引先を登録します。
func (h *ClientHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, h.log, invalidBody(err))
		return
	}
	cl, err := h.clients.CreateClient(c.Request.Context(), actor, client.CreateClientInput{
		Name:          req.Name,
		Email:         req.Email,
		ContactNumber: req.ContactNumber,
	})
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Created(c, toClientResponse(cl))
}

// Update は取引先を部分更新します。
func (h *ClientHandler) Update(c *gin.Context) {
	var req updateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, h.log, invalidBody(err))
		return
	}
	cl, err := h.clients.UpdateClient(c.Request.Context(), client.UpdateClientInput{
		ID:            c.Param("id"),
		Name:          req.Name,
		Email:         req.Email,
		ContactNumber: req.ContactNumber,
		Active:        req.Active,
	})
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, toClientResponse(cl))
}

// Delete は取引先を論理削除します。
func (h *ClientHandler) Delete(c *gin.Context) {
	if err := h.clients.DeleteClient(c.Request.Context(), client.DeleteClientInput{ID: c.Param("id")}); err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.NoContent(c)
}

func pageSizeQuery(c *gin.Context) (int, error) {
	raw := c.Query("page_size")
	if raw == "" {
		return 0, nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &response.BadRequest{Field: "page_size", Message: "must be an integer"}
	}
	return size, nil
}
