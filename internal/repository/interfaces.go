package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/staffhub/internal/models"
)

// Every method takes ctx first: it carries the request deadline down to
// the driver. Every method that reads tenant data takes tenantID and
// filters by it; the caller's tenant comes from the verified token.
//
// Lookups by id return nil, nil when nothing matches. Listings return an
// empty slice, never nil, so JSON encodes [] rather than null.

// EmployeeRepository reads the employee directory.
type EmployeeRepository interface {
	GetByID(ctx context.Context, tenantID, employeeID uuid.UUID) (*models.Employee, error)

	// GetMany resolves a set of ids in one round trip. Unknown ids are
	// left out of the result.
	GetMany(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.Employee, error)

	// ListByTenant returns all employees ordered by name.
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Employee, error)
}

// RoomRepository stores chat rooms and answers membership questions.
type RoomRepository interface {
	// Create inserts room and fills in ID and CreatedAt.
	Create(ctx context.Context, room *models.Room) error

	GetByID(ctx context.Context, tenantID, roomID uuid.UUID) (*models.Room, error)

	// ListByMember returns every room whose members contain userID,
	// oldest first.
	ListByMember(ctx context.Context, tenantID, userID uuid.UUID) ([]models.Room, error)

	// IsMember is the hot-path check before a room post or channel join.
	IsMember(ctx context.Context, tenantID, roomID, userID uuid.UUID) (bool, error)
}

// MessageRepository persists chat messages. Listings are ordered by
// timestamp ascending with ID as the tie-break.
type MessageRepository interface {
	// Create inserts msg and fills in ID. A zero Timestamp is replaced by
	// the current time; ReadBy starts empty.
	Create(ctx context.Context, msg *models.Message) error

	GetByID(ctx context.Context, tenantID uuid.UUID, messageID int64) (*models.Message, error)

	ListByRoom(ctx context.Context, tenantID, roomID uuid.UUID) ([]models.Message, error)

	// ListDirect returns messages exchanged between a and b in either
	// direction.
	ListDirect(ctx context.Context, tenantID, a, b uuid.UUID) ([]models.Message, error)

	// MarkRead adds userID to ReadBy if absent and returns the updated
	// message, or nil, nil if the message does not exist.
	MarkRead(ctx context.Context, tenantID uuid.UUID, messageID int64, userID uuid.UUID) (*models.Message, error)
}

// CommentRepository stores comments with their embedded replies.
type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) error

	GetByID(ctx context.Context, tenantID, commentID uuid.UUID) (*models.Comment, error)

	// ListByBlog returns a blog's comments, newest first.
	ListByBlog(ctx context.Context, tenantID, blogID uuid.UUID) ([]models.Comment, error)

	// UpdateContent returns false when the comment does not exist.
	UpdateContent(ctx context.Context, tenantID, commentID uuid.UUID, content string, at time.Time) (bool, error)

	Delete(ctx context.Context, tenantID, commentID uuid.UUID) (bool, error)

	// AppendReply adds r to the end of the comment's replies. Returns
	// false when the comment does not exist.
	AppendReply(ctx context.Context, tenantID, commentID uuid.UUID, r models.Reply) (bool, error)

	// RemoveReply deletes one reply, keeping the order of the rest.
	// Returns false when the comment or reply does not exist.
	RemoveReply(ctx context.Context, tenantID, commentID, replyID uuid.UUID) (bool, error)
}
