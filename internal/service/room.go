package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/staffhub/internal/apperr"
	"github.com/lalith-99/staffhub/internal/auth"
	"github.com/lalith-99/staffhub/internal/models"
	"github.com/lalith-99/staffhub/internal/repository"
)

// RoomService creates rooms and answers membership questions.
type RoomService struct {
	rooms     repository.RoomRepository
	employees repository.EmployeeRepository
}

func NewRoomService(rooms repository.RoomRepository, employees repository.EmployeeRepository) *RoomService {
	return &RoomService{rooms: rooms, employees: employees}
}

// CreateRoomInput describes room creation payload.
type CreateRoomInput struct {
	Name          string
	Kind          models.RoomKind
	Members       []uuid.UUID
	LinkedProject *uuid.UUID
}

func (in CreateRoomInput) validate() error {
	details := make(map[string]string)
	if strings.TrimSpace(in.Name) == "" {
		details["name"] = "is required"
	}
	if len(in.Members) == 0 {
		details["members"] = "must not be empty"
	}
	for _, m := range in.Members {
		if m == uuid.Nil {
			details["members"] = "must not contain an empty id"
			break
		}
	}
	switch {
	case !in.Kind.Valid():
		details["kind"] = "must be one of private, project, group"
	case in.Kind == models.RoomKindProject && in.LinkedProject == nil:
		details["linkedProject"] = "is required for project rooms"
	case in.Kind != models.RoomKindProject && in.LinkedProject != nil:
		details["linkedProject"] = "is only allowed for project rooms"
	}
	if len(details) > 0 {
		return apperr.Validation("invalid room", details)
	}
	return nil
}

// CreateRoom persists a room created by caller. Duplicate members are
// collapsed and the creator is added when the list leaves them out.
func (s *RoomService) CreateRoom(ctx context.Context, caller auth.Identity, in CreateRoomInput) (*models.RoomView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	members := make([]uuid.UUID, 0, len(in.Members)+1)
	seen := make(map[uuid.UUID]bool, len(in.Members)+1)
	add := func(m uuid.UUID) {
		if !seen[m] {
			seen[m] = true
			members = append(members, m)
		}
	}
	for _, m := range in.Members {
		add(m)
	}
	add(caller.UserID)

	found, err := s.employees.GetMany(ctx, caller.TenantID, members)
	if err != nil {
		return nil, apperr.Persistence("resolve members", err)
	}
	for _, m := range members {
		if _, ok := found[m]; !ok && m != caller.UserID {
			return nil, apperr.Validation("invalid room", map[string]string{
				"members": "unknown employee " + m.String(),
			})
		}
	}

	room := &models.Room{
		TenantID:      caller.TenantID,
		Name:          strings.TrimSpace(in.Name),
		CreatedBy:     caller.UserID,
		Members:       members,
		Kind:          in.Kind,
		LinkedProject: in.LinkedProject,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, apperr.Persistence("create room", err)
	}

	views, err := s.views(ctx, caller.TenantID, []models.Room{*room})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListRoomsForUser returns the rooms userID belongs to, oldest first. A
// user in no room gets an empty list. Callers may list their own rooms;
// admins may list anyone's.
func (s *RoomService) ListRoomsForUser(ctx context.Context, caller auth.Identity, userID uuid.UUID) ([]models.RoomView, error) {
	if userID != caller.UserID && !isAdmin(caller) {
		return nil, apperr.Forbidden("cannot list another employee's rooms")
	}

	rooms, err := s.rooms.ListByMember(ctx, caller.TenantID, userID)
	if err != nil {
		return nil, apperr.Persistence("list rooms", err)
	}
	return s.views(ctx, caller.TenantID, rooms)
}

// GetRoom returns one room. Only members and admins can see it.
func (s *RoomService) GetRoom(ctx context.Context, caller auth.Identity, roomID uuid.UUID) (*models.RoomView, error) {
	room, err := s.rooms.GetByID(ctx, caller.TenantID, roomID)
	if err != nil {
		return nil, apperr.Persistence("get room", err)
	}
	if room == nil {
		return nil, apperr.NotFound("room")
	}
	if !room.HasMember(caller.UserID) && !isAdmin(caller) {
		return nil, apperr.Forbidden("not a member of this room")
	}

	views, err := s.views(ctx, caller.TenantID, []models.Room{*room})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// IsMember reports whether userID belongs to roomID. An unknown room is a
// NotFound error so callers can tell it apart from a refusal.
func (s *RoomService) IsMember(ctx context.Context, tenantID, roomID, userID uuid.UUID) (bool, error) {
	room, err := s.rooms.GetByID(ctx, tenantID, roomID)
	if err != nil {
		return false, apperr.Persistence("get room", err)
	}
	if room == nil {
		return false, apperr.NotFound("room")
	}
	return room.HasMember(userID), nil
}

func (s *RoomService) views(ctx context.Context, tenantID uuid.UUID, rooms []models.Room) ([]models.RoomView, error) {
	ids := make([]uuid.UUID, 0)
	for _, r := range rooms {
		ids = append(ids, r.Members...)
	}
	refs, err := resolveRefs(ctx, s.employees, tenantID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.RoomView, 0, len(rooms))
	for _, r := range rooms {
		members := make([]models.EmployeeRef, 0, len(r.Members))
		for _, m := range r.Members {
			members = append(members, refs[m])
		}
		out = append(out, models.RoomView{
			ID:            r.ID,
			Name:          r.Name,
			CreatedBy:     r.CreatedBy,
			Members:       members,
			Kind:          r.Kind,
			LinkedProject: r.LinkedProject,
			CreatedAt:     r.CreatedAt,
		})
	}
	return out, nil
}
