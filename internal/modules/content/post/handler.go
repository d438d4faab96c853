package post

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/inkpress/core/internal/middleware"
	"github.com/inkpress/core/internal/pkg/pagination"
	"github.com/inkpress/core/internal/pkg/response"
)

// Handler exposes the post endpoints over Gin.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	posts := rg.Group("/posts")
	posts.GET("", h.list)
	posts.POST("", h.create)
	posts.PUT("", h.update)
	posts.DELETE("", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	pq := pagination.FromContext(c)
	res, err := h.svc.List(c.Request.Context(), pq.Page, pq.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, res)
}

func (h *Handler) create(c *gin.Context) {
	in, err := createInputFromForm(c)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if err := h.svc.Create(c.Request.Context(), middleware.CurrentUserID(c), in); err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, "Post created successfully")
}

func (h *Handler) update(c *gin.Context) {
	in, err := updateInputFromForm(c)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if err := h.svc.Update(c.Request.Context(), middleware.CurrentUserID(c), in); err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, "Post updated successfully")
}

func (h *Handler) remove(c *gin.Context) {
	var body struct {
		ID string `json:"id"`
	}
	_ = c.ShouldBindJSON(&body)
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentUserID(c), body.ID); err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, "Post deleted successfully")
}

func writeError(c *gin.Context, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		response.BadRequest(c, ve.Message)
	case errors.Is(err, ErrUnauthorized):
		response.Unauthorized(c)
	case errors.Is(err, ErrUserNotFound):
		response.NotFoundMsg(c, "user not found")
	case errors.Is(err, ErrNotFound):
		response.NotFoundMsg(c, "post not found")
	default:
		response.InternalError(c, err)
	}
}
