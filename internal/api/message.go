package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/staffhub/internal/apperr"
	"github.com/lalith-99/staffhub/internal/auth"
	"github.com/lalith-99/staffhub/internal/middleware"
	"github.com/lalith-99/staffhub/internal/models"
	"github.com/lalith-99/staffhub/internal/service"
	"go.uber.org/zap"
)

// MessageService is what the message endpoints need from the service layer.
type MessageService interface {
	Send(ctx context.Context, caller auth.Identity, in service.SendInput) (*models.MessageView, error)
	ListRoomHistory(ctx context.Context, caller auth.Identity, roomID uuid.UUID) ([]models.MessageView, error)
	ListDirectHistory(ctx context.Context, caller auth.Identity, a, b uuid.UUID) ([]models.MessageView, error)
	GetMessage(ctx context.Context, caller auth.Identity, messageID int64) (*models.MessageView, error)
	MarkRead(ctx context.Context, caller auth.Identity, messageID int64, userID uuid.UUID) (*models.MessageView, error)
}

// Notifier pushes a stored message to connected clients.
type Notifier interface {
	MessageSent(ctx context.Context, tenantID uuid.UUID, view *models.MessageView) error
}

type MessageHandler struct {
	svc      MessageService
	notifier Notifier
	logger   *zap.Logger
}

// NewMessageHandler wires the handler. notifier may be nil, in which case
// REST sends are stored but not pushed.
func NewMessageHandler(svc MessageService, notifier Notifier, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{svc: svc, notifier: notifier, logger: logger}
}

// sendMessageRequest is the JSON body for POST /v1/messages. Exactly one
// of room and recipient must be present; the service enforces it.
type sendMessageRequest struct {
	Content   string     `json:"content" binding:"required"`
	Sender    uuid.UUID  `json:"sender"`
	Room      *uuid.UUID `json:"room"`
	Recipient *uuid.UUID `json:"recipient"`
	Timestamp *time.Time `json:"timestamp"`
}

// Create handles POST /v1/messages
func (h *MessageHandler) Create(c *gin.Context) {
	var req sendMessageRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	caller := middleware.GetIdentity(c)
	msg, err := h.svc.Send(c.Request.Context(), caller, service.SendInput{
		Content:   req.Content,
		Sender:    req.Sender,
		Room:      req.Room,
		Recipient: req.Recipient,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	// Delivery is best effort; the message is already stored.
	if h.notifier != nil {
		if err := h.notifier.MessageSent(c.Request.Context(), caller.TenantID, msg); err != nil {
			h.logger.Warn("failed to push message", zap.Int64("message_id", msg.ID), zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, msg)
}

// ListRoom handles GET /v1/messages/room/:roomId
func (h *MessageHandler) ListRoom(c *gin.Context) {
	roomID, ok := pathUUID(c, h.logger, "roomId")
	if !ok {
		return
	}

	messages, err := h.svc.ListRoomHistory(c.Request.Context(), middleware.GetIdentity(c), roomID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// ListDirect handles GET /v1/messages/direct?user1=&user2=
//
// The pair is unordered: user1=A&user2=B and user1=B&user2=A return the
// same conversation.
func (h *MessageHandler) ListDirect(c *gin.Context) {
	details := make(map[string]string)
	a, errA := uuid.Parse(c.Query("user1"))
	if errA != nil {
		details["user1"] = "must be a uuid"
	}
	b, errB := uuid.Parse(c.Query("user2"))
	if errB != nil {
		details["user2"] = "must be a uuid"
	}
	if len(details) > 0 {
		respondError(c, h.logger, apperr.Validation("invalid conversation", details))
		return
	}

	messages, err := h.svc.ListDirectHistory(c.Request.Context(), middleware.GetIdentity(c), a, b)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// GetByID handles GET /v1/messages/:id
func (h *MessageHandler) GetByID(c *gin.Context) {
	id, ok := pathInt64(c, h.logger, "id")
	if !ok {
		return
	}

	msg, err := h.svc.GetMessage(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}

type markReadRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
}

// MarkRead handles PUT /v1/messages/:id/read
//
// Marking an already-read message returns 200 with the same read_by.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, ok := pathInt64(c, h.logger, "id")
	if !ok {
		return
	}
	var req markReadRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	msg, err := h.svc.MarkRead(c.Request.Context(), middleware.GetIdentity(c), id, req.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}
