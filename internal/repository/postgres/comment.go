package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/staffhub/internal/models"
)

// CommentStore keeps each comment as one row with its replies embedded as
// an ordered JSONB array, the way a document store would nest them.
type CommentStore struct {
	pool *pgxpool.Pool
}

func NewCommentStore(pool *pgxpool.Pool) *CommentStore {
	return &CommentStore{pool: pool}
}

const commentColumns = `id, tenant_id, blog_id, author, content, replies, created_at, updated_at`

func scanComment(row pgx.Row, c *models.Comment) error {
	if err := row.Scan(
		&c.ID,
		&c.TenantID,
		&c.BlogID,
		&c.Author,
		&c.Content,
		&c.Replies,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return err
	}
	if c.Replies == nil {
		c.Replies = make([]models.Reply, 0)
	}
	return nil
}

func (s *CommentStore) Create(ctx context.Context, c *models.Comment) error {
	query := `
		INSERT INTO comments (tenant_id, blog_id, author, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := s.pool.QueryRow(ctx, query, c.TenantID, c.BlogID, c.Author, c.Content).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	c.Replies = make([]models.Reply, 0)
	return nil
}

func (s *CommentStore) GetByID(ctx context.Context, tenantID, commentID uuid.UUID) (*models.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE id = $1 AND tenant_id = $2`

	var c models.Comment
	if err := scanComment(s.pool.QueryRow(ctx, query, commentID, tenantID), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &c, nil
}

func (s *CommentStore) ListByBlog(ctx context.Context, tenantID, blogID uuid.UUID) ([]models.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE tenant_id = $1 AND blog_id = $2
		ORDER BY created_at DESC, id`

	rows, err := s.pool.Query(ctx, query, tenantID, blogID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		if err := scanComment(rows, &c); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}

func (s *CommentStore) UpdateContent(ctx context.Context, tenantID, commentID uuid.UUID, content string, at time.Time) (bool, error) {
	query := `
		UPDATE comments
		SET content = $3, updated_at = $4
		WHERE id = $1 AND tenant_id = $2`

	tag, err := s.pool.Exec(ctx, query, commentID, tenantID, content, at)
	if err != nil {
		return false, fmt.Errorf("update comment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *CommentStore) Delete(ctx context.Context, tenantID, commentID uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1 AND tenant_id = $2`, commentID, tenantID)
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *CommentStore) AppendReply(ctx context.Context, tenantID, commentID uuid.UUID, r models.Reply) (bool, error) {
	doc, err := json.Marshal(r)
	if err != nil {
		return false, fmt.Errorf("encode reply: %w", err)
	}

	// || on a jsonb array appends in place; array order is insertion order.
	query := `
		UPDATE comments
		SET replies = replies || jsonb_build_array($3::jsonb), updated_at = now()
		WHERE id = $1 AND tenant_id = $2`

	tag, err := s.pool.Exec(ctx, query, commentID, tenantID, json.RawMessage(doc))
	if err != nil {
		return false, fmt.Errorf("append reply: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *CommentStore) RemoveReply(ctx context.Context, tenantID, commentID, replyID uuid.UUID) (bool, error) {
	// Rebuild the array without the reply, preserving the order of the
	// rest. The @> guard makes a missing reply report zero rows.
	query := `
		UPDATE comments
		SET replies = COALESCE((
				SELECT jsonb_agg(elem ORDER BY ord)
				FROM jsonb_array_elements(replies) WITH ORDINALITY AS t(elem, ord)
				WHERE elem->>'id' <> $3::text
			), '[]'::jsonb),
			updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		  AND replies @> jsonb_build_array(jsonb_build_object('id', $3::text))`

	tag, err := s.pool.Exec(ctx, query, commentID, tenantID, replyID.String())
	if err != nil {
		return false, fmt.Errorf("remove reply: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
