package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/staffhub/internal/models"
)

type RoomStore struct {
	pool *pgxpool.Pool
}

func NewRoomStore(pool *pgxpool.Pool) *RoomStore {
	return &RoomStore{pool: pool}
}

const roomColumns = `id, tenant_id, name, created_by, members, kind, linked_project, created_at`

func scanRoom(row pgx.Row, r *models.Room) error {
	return row.Scan(
		&r.ID,
		&r.TenantID,
		&r.Name,
		&r.CreatedBy,
		&r.Members,
		&r.Kind,
		&r.LinkedProject,
		&r.CreatedAt,
	)
}

func (s *RoomStore) Create(ctx context.Context, room *models.Room) error {
	query := `
		INSERT INTO rooms (tenant_id, name, created_by, members, kind, linked_project)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query,
		room.TenantID,
		room.Name,
		room.CreatedBy,
		room.Members,
		string(room.Kind),
		room.LinkedProject,
	).Scan(&room.ID, &room.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}

func (s *RoomStore) GetByID(ctx context.Context, tenantID, roomID uuid.UUID) (*models.Room, error) {
	query := `
		SELECT ` + roomColumns + `
		FROM rooms
		WHERE id = $1 AND tenant_id = $2`

	var r models.Room
	if err := scanRoom(s.pool.QueryRow(ctx, query, roomID, tenantID), &r); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	return &r, nil
}

func (s *RoomStore) ListByMember(ctx context.Context, tenantID, userID uuid.UUID) ([]models.Room, error) {
	// members @> ARRAY[$2] uses the GIN index on members.
	query := `
		SELECT ` + roomColumns + `
		FROM rooms
		WHERE tenant_id = $1 AND members @> ARRAY[$2::uuid]
		ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	rooms := make([]models.Room, 0)
	for rows.Next() {
		var r models.Room
		if err := scanRoom(rows, &r); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}
	return rooms, nil
}

func (s *RoomStore) IsMember(ctx context.Context, tenantID, roomID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM rooms
			WHERE id = $1 AND tenant_id = $2 AND $3::uuid = ANY(members)
		)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, roomID, tenantID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}
