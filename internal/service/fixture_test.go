package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lalith-99/staffhub/internal/auth"
	"github.com/lalith-99/staffhub/internal/models"
	"github.com/lalith-99/staffhub/internal/repository/memory"
)

type fixture struct {
	store    *memory.Store
	tenant   uuid.UUID
	ana      auth.Identity
	ben      auth.Identity
	cara     auth.Identity
	admin    auth.Identity
	rooms    *RoomService
	messages *MessageService
	comments *CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	tenant := uuid.New()

	person := func(name, role string) auth.Identity {
		e := store.PutEmployee(models.Employee{
			TenantID: tenant,
			Name:     name,
			Email:    name + "@example.com",
			Role:     role,
		})
		return auth.Identity{UserID: e.ID, TenantID: tenant, Email: e.Email, Role: e.Role}
	}

	f := &fixture{
		store:  store,
		tenant: tenant,
		ana:    person("ana", "employee"),
		ben:    person("ben", "employee"),
		cara:   person("cara", "employee"),
		admin:  person("root", models.RoleAdmin),
	}
	f.rooms = NewRoomService(store.Rooms(), store.Employees())
	f.messages = NewMessageService(MessageDependencies{
		MessageRepo:  store.Messages(),
		RoomRepo:     store.Rooms(),
		EmployeeRepo: store.Employees(),
	})
	f.comments = NewCommentService(store.Comments(), store.Employees())
	return f
}

func ptr[T any](v T) *T { return &v }
