package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/staffhub/internal/auth"
	"github.com/lalith-99/staffhub/internal/middleware"
	"github.com/lalith-99/staffhub/internal/models"
	"github.com/lalith-99/staffhub/internal/service"
	"go.uber.org/zap"
)

// CommentService is what the comment endpoints need from the service layer.
type CommentService interface {
	AddComment(ctx context.Context, caller auth.Identity, blogID uuid.UUID, content string) (*models.CommentView, error)
	ListComments(ctx context.Context, caller auth.Identity, blogID uuid.UUID) ([]models.CommentView, error)
	UpdateComment(ctx context.Context, caller auth.Identity, commentID uuid.UUID, content string) (*models.CommentView, error)
	DeleteComment(ctx context.Context, caller auth.Identity, commentID uuid.UUID) error
	AddReply(ctx context.Context, caller auth.Identity, commentID uuid.UUID, in service.ReplyInput) (*models.ReplyNode, error)
	DeleteReply(ctx context.Context, caller auth.Identity, commentID, replyID uuid.UUID) error
}

// CommentHandler serves blog comments and their reply threads.
type CommentHandler struct {
	svc    CommentService
	logger *zap.Logger
}

func NewCommentHandler(svc CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{svc: svc, logger: logger}
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

type replyRequest struct {
	Content       string     `json:"content" binding:"required"`
	ParentReplyID *uuid.UUID `json:"parentReplyId"`
}

// Create handles POST /v1/comments/:id where :id is the blog.
func (h *CommentHandler) Create(c *gin.Context) {
	blogID, ok := pathUUID(c, h.logger, "id")
	if !ok {
		return
	}
	var req commentRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	comment, err := h.svc.AddComment(c.Request.Context(), middleware.GetIdentity(c), blogID, req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// List handles GET /v1/comments/:id where :id is the blog. Newest comment
// first, replies nested.
func (h *CommentHandler) List(c *gin.Context) {
	blogID, ok := pathUUID(c, h.logger, "id")
	if !ok {
		return
	}

	comments, err := h.svc.ListComments(c.Request.Context(), middleware.GetIdentity(c), blogID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

// Update handles PUT /v1/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	commentID, ok := pathUUID(c, h.logger, "id")
	if !ok {
		return
	}
	var req commentRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	comment, err := h.svc.UpdateComment(c.Request.Context(), middleware.GetIdentity(c), commentID, req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// Delete handles DELETE /v1/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := pathUUID(c, h.logger, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteComment(c.Request.Context(), middleware.GetIdentity(c), commentID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddReply handles POST /v1/comments/:id/replies
func (h *CommentHandler) AddReply(c *gin.Context) {
	commentID, ok := pathUUID(c, h.logger, "id")
	if !ok {
		return
	}
	var req replyRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	reply, err := h.svc.AddReply(c.Request.Context(), middleware.GetIdentity(c), commentID, service.ReplyInput{
		Content:       req.Content,
		ParentReplyID: req.ParentReplyID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, reply)
}

// DeleteReply handles DELETE /v1/comments/:id/replies/:replyId
func (h *CommentHandler) DeleteReply(c *gin.Context) {
	commentID, ok := pathUUID(c, h.logger, "id")
	if !ok {
		return
	}
	replyID, ok := pathUUID(c, h.logger, "replyId")
	if !ok {
		return
	}

	if err := h.svc.DeleteReply(c.Request.Context(), middleware.GetIdentity(c), commentID, replyID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
