package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/staffhub/internal/models"
)

type MessageStore struct {
	pool *pgxpool.Pool
}

func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

const messageColumns = `id, tenant_id, content, sender, room_id, recipient_id, sent_at, read_by`

// scanMessage reads a row and folds the two nullable target columns back
// into an Address. The table CHECK guarantees exactly one is set.
func scanMessage(row pgx.Row, msg *models.Message) error {
	var roomID, recipientID *uuid.UUID
	if err := row.Scan(
		&msg.ID,
		&msg.TenantID,
		&msg.Content,
		&msg.Sender,
		&roomID,
		&recipientID,
		&msg.Timestamp,
		&msg.ReadBy,
	); err != nil {
		return err
	}
	switch {
	case roomID != nil:
		msg.Address = models.ToRoom(*roomID)
	case recipientID != nil:
		msg.Address = models.ToEmployee(*recipientID)
	default:
		return fmt.Errorf("message %d has no target", msg.ID)
	}
	if msg.ReadBy == nil {
		msg.ReadBy = make([]uuid.UUID, 0)
	}
	return nil
}

func (s *MessageStore) Create(ctx context.Context, msg *models.Message) error {
	var roomID, recipientID *uuid.UUID
	if id, ok := msg.Address.Room(); ok {
		roomID = &id
	} else if id, ok := msg.Address.Recipient(); ok {
		recipientID = &id
	} else {
		return fmt.Errorf("insert message: missing target")
	}

	// A nil timestamp lets the column default (now()) apply.
	var sentAt *time.Time
	if !msg.Timestamp.IsZero() {
		sentAt = &msg.Timestamp
	}

	query := `
		INSERT INTO messages (tenant_id, content, sender, room_id, recipient_id, sent_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
		RETURNING id, sent_at, read_by`

	err := s.pool.QueryRow(ctx, query,
		msg.TenantID,
		msg.Content,
		msg.Sender,
		roomID,
		recipientID,
		sentAt,
	).Scan(&msg.ID, &msg.Timestamp, &msg.ReadBy)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	if msg.ReadBy == nil {
		msg.ReadBy = make([]uuid.UUID, 0)
	}
	return nil
}

func (s *MessageStore) GetByID(ctx context.Context, tenantID uuid.UUID, messageID int64) (*models.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE id = $1 AND tenant_id = $2`

	var msg models.Message
	if err := scanMessage(s.pool.QueryRow(ctx, query, messageID, tenantID), &msg); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	return &msg, nil
}

func (s *MessageStore) ListByRoom(ctx context.Context, tenantID, roomID uuid.UUID) ([]models.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE tenant_id = $1 AND room_id = $2
		ORDER BY sent_at ASC, id ASC`

	return s.list(ctx, query, tenantID, roomID)
}

func (s *MessageStore) ListDirect(ctx context.Context, tenantID, a, b uuid.UUID) ([]models.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE tenant_id = $1
		  AND recipient_id IS NOT NULL
		  AND ((sender = $2 AND recipient_id = $3) OR (sender = $3 AND recipient_id = $2))
		ORDER BY sent_at ASC, id ASC`

	return s.list(ctx, query, tenantID, a, b)
}

func (s *MessageStore) list(ctx context.Context, query string, args ...any) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		if err := scanMessage(rows, &msg); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

func (s *MessageStore) MarkRead(ctx context.Context, tenantID uuid.UUID, messageID int64, userID uuid.UUID) (*models.Message, error) {
	// Set semantics in one statement: append only when absent, so two
	// concurrent marks by the same user cannot produce a duplicate.
	query := `
		UPDATE messages
		SET read_by = CASE
			WHEN $3::uuid = ANY(read_by) THEN read_by
			ELSE array_append(read_by, $3::uuid)
		END
		WHERE id = $1 AND tenant_id = $2
		RETURNING ` + messageColumns

	var msg models.Message
	if err := scanMessage(s.pool.QueryRow(ctx, query, messageID, tenantID, userID), &msg); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("mark read: %w", err)
	}
	return &msg, nil
}
