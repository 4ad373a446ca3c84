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

// RoomService is what the room endpoints need from the service layer.
type RoomService interface {
	CreateRoom(ctx context.Context, caller auth.Identity, in service.CreateRoomInput) (*models.RoomView, error)
	ListRoomsForUser(ctx context.Context, caller auth.Identity, userID uuid.UUID) ([]models.RoomView, error)
	GetRoom(ctx context.Context, caller auth.Identity, roomID uuid.UUID) (*models.RoomView, error)
}

type RoomHandler struct {
	svc    RoomService
	logger *zap.Logger
}

func NewRoomHandler(svc RoomService, logger *zap.Logger) *RoomHandler {
	return &RoomHandler{svc: svc, logger: logger}
}

// createRoomRequest is the expected JSON body for POST /v1/rooms.
//
// The creator comes from the token, never from the body.
type createRoomRequest struct {
	Name          string      `json:"name" binding:"required"`
	Kind          string      `json:"kind" binding:"required,oneof=private project group"`
	Members       []uuid.UUID `json:"members" binding:"required,min=1"`
	LinkedProject *uuid.UUID  `json:"linkedProject"`
}

// Create handles POST /v1/rooms
func (h *RoomHandler) Create(c *gin.Context) {
	var req createRoomRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	room, err := h.svc.CreateRoom(c.Request.Context(), middleware.GetIdentity(c), service.CreateRoomInput{
		Name:          req.Name,
		Kind:          models.RoomKind(req.Kind),
		Members:       req.Members,
		LinkedProject: req.LinkedProject,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, room)
}

// ListForUser handles GET /v1/rooms/user/:userId
//
// A user in no room gets 200 with [], not a 404.
func (h *RoomHandler) ListForUser(c *gin.Context) {
	userID, ok := pathUUID(c, h.logger, "userId")
	if !ok {
		return
	}

	rooms, err := h.svc.ListRoomsForUser(c.Request.Context(), middleware.GetIdentity(c), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, rooms)
}

// GetByID handles GET /v1/rooms/:id
func (h *RoomHandler) GetByID(c *gin.Context) {
	roomID, ok := pathUUID(c, h.logger, "id")
	if !ok {
		return
	}

	room, err := h.svc.GetRoom(c.Request.Context(), middleware.GetIdentity(c), roomID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, room)
}
