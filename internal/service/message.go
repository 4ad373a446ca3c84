package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/staffhub/internal/apperr"
	"github.com/lalith-99/staffhub/internal/auth"
	"github.com/lalith-99/staffhub/internal/models"
	"github.com/lalith-99/staffhub/internal/observ"
	"github.com/lalith-99/staffhub/internal/repository"
)

// MessageService stores messages and reads history back.
type MessageService struct {
	messages  repository.MessageRepository
	rooms     repository.RoomRepository
	employees repository.EmployeeRepository
	metrics   *observ.Metrics
}

// MessageDependencies bundles repositories for the message service.
type MessageDependencies struct {
	MessageRepo  repository.MessageRepository
	RoomRepo     repository.RoomRepository
	EmployeeRepo repository.EmployeeRepository
	Metrics      *observ.Metrics
}

func NewMessageService(deps MessageDependencies) *MessageService {
	return &MessageService{
		messages:  deps.MessageRepo,
		rooms:     deps.RoomRepo,
		employees: deps.EmployeeRepo,
		metrics:   deps.Metrics,
	}
}

// SendInput is a message as it arrives from a client. Exactly one of Room
// and Recipient must be set; Timestamp defaults to the server clock.
type SendInput struct {
	Content   string
	Sender    uuid.UUID
	Room      *uuid.UUID
	Recipient *uuid.UUID
	Timestamp *time.Time
}

// Address validates the input and folds Room/Recipient into an Address.
func (in SendInput) Address() (models.Address, error) {
	details := make(map[string]string)
	if strings.TrimSpace(in.Content) == "" {
		details["content"] = "is required"
	}
	if in.Sender == uuid.Nil {
		details["sender"] = "is required"
	}

	var addr models.Address
	switch {
	case in.Room != nil && in.Recipient != nil:
		details["room"] = "exactly one of room or recipient is required"
	case in.Room != nil && *in.Room != uuid.Nil:
		addr = models.ToRoom(*in.Room)
	case in.Recipient != nil && *in.Recipient != uuid.Nil:
		addr = models.ToEmployee(*in.Recipient)
	default:
		details["room"] = "exactly one of room or recipient is required"
	}

	if len(details) > 0 {
		return models.Address{}, apperr.Validation("invalid message", details)
	}
	return addr, nil
}

// Send validates and persists a message from caller and returns it
// resolved for display. Nothing is stored when any check fails.
func (s *MessageService) Send(ctx context.Context, caller auth.Identity, in SendInput) (*models.MessageView, error) {
	addr, err := in.Address()
	if err != nil {
		return nil, err
	}
	if in.Sender != caller.UserID {
		return nil, apperr.Forbidden("sender must be the authenticated employee")
	}

	if roomID, ok := addr.Room(); ok {
		member, err := s.isMember(ctx, caller.TenantID, roomID, in.Sender)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, apperr.Forbidden("sender is not a member of the room")
		}
	}
	if to, ok := addr.Recipient(); ok {
		recipient, err := s.employees.GetByID(ctx, caller.TenantID, to)
		if err != nil {
			return nil, apperr.Persistence("get recipient", err)
		}
		if recipient == nil {
			return nil, apperr.NotFound("recipient")
		}
	}

	msg := &models.Message{
		TenantID: caller.TenantID,
		Content:  in.Content,
		Sender:   in.Sender,
		Address:  addr,
	}
	if in.Timestamp != nil {
		msg.Timestamp = *in.Timestamp
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperr.Persistence("create message", err)
	}
	s.metrics.MessagePersisted(string(addr.Kind()))

	return s.view(ctx, caller.TenantID, *msg)
}

// ListRoomHistory returns a room's messages oldest first. Only members and
// admins may read it.
func (s *MessageService) ListRoomHistory(ctx context.Context, caller auth.Identity, roomID uuid.UUID) ([]models.MessageView, error) {
	member, err := s.isMember(ctx, caller.TenantID, roomID, caller.UserID)
	if err != nil {
		return nil, err
	}
	if !member && !isAdmin(caller) {
		return nil, apperr.Forbidden("not a member of this room")
	}

	msgs, err := s.messages.ListByRoom(ctx, caller.TenantID, roomID)
	if err != nil {
		return nil, apperr.Persistence("list room messages", err)
	}
	return s.views(ctx, caller.TenantID, msgs)
}

// ListDirectHistory returns the conversation between a and b oldest first,
// whichever order they are given in. The caller must be one of the pair.
func (s *MessageService) ListDirectHistory(ctx context.Context, caller auth.Identity, a, b uuid.UUID) ([]models.MessageView, error) {
	details := make(map[string]string)
	if a == uuid.Nil {
		details["user1"] = "is required"
	}
	if b == uuid.Nil {
		details["user2"] = "is required"
	}
	if len(details) > 0 {
		return nil, apperr.Validation("invalid conversation", details)
	}
	if caller.UserID != a && caller.UserID != b && !isAdmin(caller) {
		return nil, apperr.Forbidden("not a participant in this conversation")
	}

	msgs, err := s.messages.ListDirect(ctx, caller.TenantID, a, b)
	if err != nil {
		return nil, apperr.Persistence("list direct messages", err)
	}
	return s.views(ctx, caller.TenantID, msgs)
}

// GetMessage returns one message the caller can see.
func (s *MessageService) GetMessage(ctx context.Context, caller auth.Identity, messageID int64) (*models.MessageView, error) {
	msg, err := s.visible(ctx, caller, messageID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, caller.TenantID, *msg)
}

// MarkRead records that userID has read the message. Marking twice is a
// no-op. Employees can only mark messages read for themselves.
func (s *MessageService) MarkRead(ctx context.Context, caller auth.Identity, messageID int64, userID uuid.UUID) (*models.MessageView, error) {
	if userID == uuid.Nil {
		return nil, apperr.Field("userId", "is required")
	}
	if userID != caller.UserID {
		return nil, apperr.Forbidden("cannot mark messages read for another employee")
	}
	if _, err := s.visible(ctx, caller, messageID); err != nil {
		return nil, err
	}

	msg, err := s.messages.MarkRead(ctx, caller.TenantID, messageID, userID)
	if err != nil {
		return nil, apperr.Persistence("mark message read", err)
	}
	if msg == nil {
		return nil, apperr.NotFound("message")
	}
	return s.view(ctx, caller.TenantID, *msg)
}

// visible loads a message and checks the caller may read it: a member of
// its room, a party to the direct conversation, or an admin.
func (s *MessageService) visible(ctx context.Context, caller auth.Identity, messageID int64) (*models.Message, error) {
	msg, err := s.messages.GetByID(ctx, caller.TenantID, messageID)
	if err != nil {
		return nil, apperr.Persistence("get message", err)
	}
	if msg == nil {
		return nil, apperr.NotFound("message")
	}
	if isAdmin(caller) {
		return msg, nil
	}

	if roomID, ok := msg.Address.Room(); ok {
		member, err := s.rooms.IsMember(ctx, caller.TenantID, roomID, caller.UserID)
		if err != nil {
			return nil, apperr.Persistence("check membership", err)
		}
		if !member {
			return nil, apperr.Forbidden("not a member of this room")
		}
		return msg, nil
	}

	to, _ := msg.Address.Recipient()
	if caller.UserID != msg.Sender && caller.UserID != to {
		return nil, apperr.Forbidden("not a participant in this conversation")
	}
	return msg, nil
}

func (s *MessageService) isMember(ctx context.Context, tenantID, roomID, userID uuid.UUID) (bool, error) {
	room, err := s.rooms.GetByID(ctx, tenantID, roomID)
	if err != nil {
		return false, apperr.Persistence("get room", err)
	}
	if room == nil {
		return false, apperr.NotFound("room")
	}
	return room.HasMember(userID), nil
}

func (s *MessageService) view(ctx context.Context, tenantID uuid.UUID, msg models.Message) (*models.MessageView, error) {
	views, err := s.views(ctx, tenantID, []models.Message{msg})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *MessageService) views(ctx context.Context, tenantID uuid.UUID, msgs []models.Message) ([]models.MessageView, error) {
	ids := make([]uuid.UUID, 0, len(msgs)*2)
	for _, m := range msgs {
		ids = append(ids, m.Sender)
		if to, ok := m.Address.Recipient(); ok {
			ids = append(ids, to)
		}
	}
	refs, err := resolveRefs(ctx, s.employees, tenantID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		v := models.MessageView{
			ID:        m.ID,
			Content:   m.Content,
			Sender:    refs[m.Sender],
			Timestamp: m.Timestamp,
			ReadBy:    m.ReadBy,
		}
		if v.ReadBy == nil {
			v.ReadBy = make([]uuid.UUID, 0)
		}
		if roomID, ok := m.Address.Room(); ok {
			v.Room = &roomID
		}
		if to, ok := m.Address.Recipient(); ok {
			ref := refs[to]
			v.Recipient = &ref
		}
		out = append(out, v)
	}
	return out, nil
}
