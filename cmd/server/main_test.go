package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/lalith-99/staffhub/internal/apperr"
	"github.com/lalith-99/staffhub/internal/auth"
	"github.com/lalith-99/staffhub/internal/models"
	"github.com/lalith-99/staffhub/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestOpenMemorySeededDirectory(t *testing.T) {
	tenant, anaID, benID := uuid.New(), uuid.New(), uuid.New()
	seed := filepath.Join(t.TempDir(), "employees.yaml")
	require.NoError(t, os.WriteFile(seed, []byte(`
employees:
  - {id: `+anaID.String()+`, tenant_id: `+tenant.String()+`, name: Ana, email: ana@example.com}
  - {id: `+benID.String()+`, tenant_id: `+tenant.String()+`, name: Ben, email: ben@example.com}
`), 0o600))

	r, err := openMemory(seed, zap.NewNop())
	require.NoError(t, err)

	rooms := service.NewRoomService(r.rooms, r.employees)
	messages := service.NewMessageService(service.MessageDependencies{
		MessageRepo:  r.messages,
		RoomRepo:     r.rooms,
		EmployeeRepo: r.employees,
	})

	ctx := context.Background()
	ana := auth.Identity{UserID: anaID, TenantID: tenant}
	ben := auth.Identity{UserID: benID, TenantID: tenant}

	room, err := rooms.CreateRoom(ctx, ana, service.CreateRoomInput{
		Name:    "Eng",
		Kind:    models.RoomKindGroup,
		Members: []uuid.UUID{anaID, benID},
	})
	require.NoError(t, err)
	assert.Len(t, room.Members, 2)

	sent, err := messages.Send(ctx, ana, service.SendInput{Content: "hello", Sender: anaID, Recipient: &benID})
	require.NoError(t, err)
	require.NotNil(t, sent.Recipient)
	assert.Equal(t, "Ben", sent.Recipient.Name)

	history, err := messages.ListDirectHistory(ctx, ben, benID, anaID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hello", history[0].Content)
}

func TestOpenMemoryWithoutSeedWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	r, err := openMemory("", zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("MEMORY_SEED not set, employee directory is empty").Len())

	tenant, ana := uuid.New(), uuid.New()
	rooms := service.NewRoomService(r.rooms, r.employees)
	_, err = rooms.CreateRoom(context.Background(), auth.Identity{UserID: ana, TenantID: tenant}, service.CreateRoomInput{
		Name:    "Eng",
		Kind:    models.RoomKindGroup,
		Members: []uuid.UUID{uuid.New()},
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "unknown members are rejected: %v", err)
}

func TestOpenMemoryBadSeed(t *testing.T) {
	_, err := openMemory(filepath.Join(t.TempDir(), "absent.yaml"), zap.NewNop())
	assert.Error(t, err)
}
