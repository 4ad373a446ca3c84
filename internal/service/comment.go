package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/staffhub/internal/apperr"
	"github.com/lalith-99/staffhub/internal/auth"
	"github.com/lalith-99/staffhub/internal/models"
	"github.com/lalith-99/staffhub/internal/repository"
	"github.com/lalith-99/staffhub/internal/thread"
)

// CommentService manages blog comments and their reply threads.
type CommentService struct {
	comments  repository.CommentRepository
	employees repository.EmployeeRepository
	now       func() time.Time
}

func NewCommentService(comments repository.CommentRepository, employees repository.EmployeeRepository) *CommentService {
	return &CommentService{comments: comments, employees: employees, now: time.Now}
}

// ReplyInput describes a new reply. A nil ParentReplyID answers the
// comment itself.
type ReplyInput struct {
	Content       string
	ParentReplyID *uuid.UUID
}

func requireContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return apperr.Field("content", "is required")
	}
	return nil
}

func (s *CommentService) AddComment(ctx context.Context, caller auth.Identity, blogID uuid.UUID, content string) (*models.CommentView, error) {
	if blogID == uuid.Nil {
		return nil, apperr.Field("blogId", "is required")
	}
	if err := requireContent(content); err != nil {
		return nil, err
	}

	c := &models.Comment{
		TenantID: caller.TenantID,
		BlogID:   blogID,
		Author:   caller.UserID,
		Content:  content,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, apperr.Persistence("create comment", err)
	}
	return s.view(ctx, caller.TenantID, *c)
}

// ListComments returns a blog's comments newest first, each with its
// replies nested into a tree.
func (s *CommentService) ListComments(ctx context.Context, caller auth.Identity, blogID uuid.UUID) ([]models.CommentView, error) {
	comments, err := s.comments.ListByBlog(ctx, caller.TenantID, blogID)
	if err != nil {
		return nil, apperr.Persistence("list comments", err)
	}
	return s.views(ctx, caller.TenantID, comments)
}

func (s *CommentService) UpdateComment(ctx context.Context, caller auth.Identity, commentID uuid.UUID, content string) (*models.CommentView, error) {
	if err := requireContent(content); err != nil {
		return nil, err
	}
	c, err := s.modifiable(ctx, caller, commentID)
	if err != nil {
		return nil, err
	}

	at := s.now()
	ok, err := s.comments.UpdateContent(ctx, caller.TenantID, commentID, content, at)
	if err != nil {
		return nil, apperr.Persistence("update comment", err)
	}
	if !ok {
		return nil, apperr.NotFound("comment")
	}
	c.Content = content
	c.UpdatedAt = at
	return s.view(ctx, caller.TenantID, *c)
}

// DeleteComment removes a comment together with all of its replies.
func (s *CommentService) DeleteComment(ctx context.Context, caller auth.Identity, commentID uuid.UUID) error {
	if _, err := s.modifiable(ctx, caller, commentID); err != nil {
		return err
	}
	ok, err := s.comments.Delete(ctx, caller.TenantID, commentID)
	if err != nil {
		return apperr.Persistence("delete comment", err)
	}
	if !ok {
		return apperr.NotFound("comment")
	}
	return nil
}

// AddReply appends a reply to a comment. Any employee of the tenant may
// reply. A parent, when given, must be a reply of the same comment.
func (s *CommentService) AddReply(ctx context.Context, caller auth.Identity, commentID uuid.UUID, in ReplyInput) (*models.ReplyNode, error) {
	if err := requireContent(in.Content); err != nil {
		return nil, err
	}
	c, err := s.get(ctx, caller.TenantID, commentID)
	if err != nil {
		return nil, err
	}
	if in.ParentReplyID != nil && c.FindReply(*in.ParentReplyID) == nil {
		return nil, apperr.Field("parentReplyId", "must reference a reply of the same comment")
	}

	r := models.Reply{
		ID:            uuid.New(),
		Author:        caller.UserID,
		Content:       in.Content,
		ParentReplyID: in.ParentReplyID,
		CreatedAt:     s.now(),
	}
	ok, err := s.comments.AppendReply(ctx, caller.TenantID, commentID, r)
	if err != nil {
		return nil, apperr.Persistence("append reply", err)
	}
	if !ok {
		return nil, apperr.NotFound("comment")
	}

	refs, err := resolveRefs(ctx, s.employees, caller.TenantID, []uuid.UUID{r.Author})
	if err != nil {
		return nil, err
	}
	ref := refs[r.Author]
	return &models.ReplyNode{Reply: r, AuthorInfo: &ref, Children: make([]*models.ReplyNode, 0)}, nil
}

// DeleteReply removes one reply. Replies that answered it stay and are
// shown at the root of the thread.
func (s *CommentService) DeleteReply(ctx context.Context, caller auth.Identity, commentID, replyID uuid.UUID) error {
	c, err := s.get(ctx, caller.TenantID, commentID)
	if err != nil {
		return err
	}
	r := c.FindReply(replyID)
	if r == nil {
		return apperr.NotFound("reply")
	}
	if !CanModify(caller, r.Author) {
		return apperr.Forbidden("not authorized to delete this reply")
	}

	ok, err := s.comments.RemoveReply(ctx, caller.TenantID, commentID, replyID)
	if err != nil {
		return apperr.Persistence("remove reply", err)
	}
	if !ok {
		return apperr.NotFound("reply")
	}
	return nil
}

func (s *CommentService) get(ctx context.Context, tenantID, commentID uuid.UUID) (*models.Comment, error) {
	c, err := s.comments.GetByID(ctx, tenantID, commentID)
	if err != nil {
		return nil, apperr.Persistence("get comment", err)
	}
	if c == nil {
		return nil, apperr.NotFound("comment")
	}
	return c, nil
}

func (s *CommentService) modifiable(ctx context.Context, caller auth.Identity, commentID uuid.UUID) (*models.Comment, error) {
	c, err := s.get(ctx, caller.TenantID, commentID)
	if err != nil {
		return nil, err
	}
	if !CanModify(caller, c.Author) {
		return nil, apperr.Forbidden("not authorized to modify this comment")
	}
	return c, nil
}

func (s *CommentService) view(ctx context.Context, tenantID uuid.UUID, c models.Comment) (*models.CommentView, error) {
	views, err := s.views(ctx, tenantID, []models.Comment{c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *CommentService) views(ctx context.Context, tenantID uuid.UUID, comments []models.Comment) ([]models.CommentView, error) {
	ids := make([]uuid.UUID, 0)
	for _, c := range comments {
		ids = append(ids, c.Author)
		for _, r := range c.Replies {
			ids = append(ids, r.Author)
		}
	}
	refs, err := resolveRefs(ctx, s.employees, tenantID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		roots := thread.BuildTree(c.Replies)
		thread.Walk(roots, func(n *models.ReplyNode) {
			ref := refs[n.Author]
			n.AuthorInfo = &ref
		})
		out = append(out, models.CommentView{
			ID:        c.ID,
			BlogID:    c.BlogID,
			Author:    refs[c.Author],
			Content:   c.Content,
			Replies:   roots,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return out, nil
}
