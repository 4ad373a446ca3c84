package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lalith-99/staffhub/internal/apperr"
	"github.com/lalith-99/staffhub/internal/auth"
	"github.com/lalith-99/staffhub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoomValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    CreateRoomInput
		field string
	}{
		{"empty name", CreateRoomInput{Name: " ", Kind: models.RoomKindGroup, Members: []uuid.UUID{f.ben.UserID}}, "name"},
		{"no members", CreateRoomInput{Name: "Eng", Kind: models.RoomKindGroup}, "members"},
		{"bad kind", CreateRoomInput{Name: "Eng", Kind: "chatroom", Members: []uuid.UUID{f.ben.UserID}}, "kind"},
		{"project without link", CreateRoomInput{Name: "P", Kind: models.RoomKindProject, Members: []uuid.UUID{f.ben.UserID}}, "linkedProject"},
		{"link on group", CreateRoomInput{Name: "G", Kind: models.RoomKindGroup, Members: []uuid.UUID{f.ben.UserID}, LinkedProject: ptr(uuid.New())}, "linkedProject"},
		{"unknown member", CreateRoomInput{Name: "G", Kind: models.RoomKindGroup, Members: []uuid.UUID{uuid.New()}}, "members"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.rooms.CreateRoom(ctx, f.ana, tt.in)
			require.Error(t, err)
			appErr := apperr.From(err)
			assert.Equal(t, apperr.KindValidation, appErr.Kind)
			assert.Contains(t, appErr.Details, tt.field)
		})
	}

	rooms, err := f.rooms.ListRoomsForUser(ctx, f.ana, f.ana.UserID)
	require.NoError(t, err)
	assert.Empty(t, rooms, "failed creations must not persist anything")
}

func TestCreateRoomAddsCreator(t *testing.T) {
	f := newFixture(t)

	room, err := f.rooms.CreateRoom(context.Background(), f.ana, CreateRoomInput{
		Name:    "Eng",
		Kind:    models.RoomKindGroup,
		Members: []uuid.UUID{f.ben.UserID, f.ben.UserID},
	})
	require.NoError(t, err)

	assert.Equal(t, f.ana.UserID, room.CreatedBy)
	require.Len(t, room.Members, 2)
	assert.Equal(t, "ben", room.Members[0].Name)
	assert.Equal(t, "ana", room.Members[1].Name)
}

func TestCreateProjectRoom(t *testing.T) {
	f := newFixture(t)
	project := uuid.New()

	room, err := f.rooms.CreateRoom(context.Background(), f.ana, CreateRoomInput{
		Name:          "Launch",
		Kind:          models.RoomKindProject,
		Members:       []uuid.UUID{f.ana.UserID},
		LinkedProject: &project,
	})
	require.NoError(t, err)
	require.NotNil(t, room.LinkedProject)
	assert.Equal(t, project, *room.LinkedProject)
}

func TestListRoomsForUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.rooms.CreateRoom(ctx, f.ana, CreateRoomInput{Name: "one", Kind: models.RoomKindGroup, Members: []uuid.UUID{f.ben.UserID}})
	require.NoError(t, err)
	second, err := f.rooms.CreateRoom(ctx, f.ben, CreateRoomInput{Name: "two", Kind: models.RoomKindPrivate, Members: []uuid.UUID{f.ana.UserID}})
	require.NoError(t, err)
	_, err = f.rooms.CreateRoom(ctx, f.cara, CreateRoomInput{Name: "three", Kind: models.RoomKindGroup, Members: []uuid.UUID{f.cara.UserID}})
	require.NoError(t, err)

	rooms, err := f.rooms.ListRoomsForUser(ctx, f.ana, f.ana.UserID)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, first.ID, rooms[0].ID)
	assert.Equal(t, second.ID, rooms[1].ID)

	_, err = f.rooms.ListRoomsForUser(ctx, f.ana, f.cara.UserID)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))

	rooms, err = f.rooms.ListRoomsForUser(ctx, f.admin, f.cara.UserID)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)

	rooms, err = f.rooms.ListRoomsForUser(ctx, f.admin, f.admin.UserID)
	require.NoError(t, err)
	assert.NotNil(t, rooms)
	assert.Empty(t, rooms)
}

func TestGetRoomAndIsMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room, err := f.rooms.CreateRoom(ctx, f.ana, CreateRoomInput{Name: "Eng", Kind: models.RoomKindGroup, Members: []uuid.UUID{f.ben.UserID}})
	require.NoError(t, err)

	got, err := f.rooms.GetRoom(ctx, f.ben, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Eng", got.Name)

	_, err = f.rooms.GetRoom(ctx, f.cara, room.ID)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))

	_, err = f.rooms.GetRoom(ctx, f.ana, uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	ok, err := f.rooms.IsMember(ctx, f.tenant, room.ID, f.ben.UserID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.rooms.IsMember(ctx, f.tenant, room.ID, f.cara.UserID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRoomsAreTenantScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room, err := f.rooms.CreateRoom(ctx, f.ana, CreateRoomInput{Name: "Eng", Kind: models.RoomKindGroup, Members: []uuid.UUID{f.ben.UserID}})
	require.NoError(t, err)

	outsider := auth.Identity{UserID: f.ana.UserID, TenantID: uuid.New(), Role: models.RoleAdmin}
	_, err = f.rooms.GetRoom(ctx, outsider, room.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
