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

func TestCanModify(t *testing.T) {
	author := uuid.New()

	assert.True(t, CanModify(auth.Identity{UserID: author}, author))
	assert.False(t, CanModify(auth.Identity{UserID: uuid.New()}, author))
	assert.True(t, CanModify(auth.Identity{UserID: uuid.New(), Role: models.RoleAdmin}, author))
}

func TestCommentThread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	blog := uuid.New()

	c, err := f.comments.AddComment(ctx, f.ana, blog, "great post")
	require.NoError(t, err)
	assert.Equal(t, "ana", c.Author.Name)
	assert.Empty(t, c.Replies)

	r1, err := f.comments.AddReply(ctx, f.ben, c.ID, ReplyInput{Content: "agreed"})
	require.NoError(t, err)
	r2, err := f.comments.AddReply(ctx, f.ana, c.ID, ReplyInput{Content: "thanks", ParentReplyID: &r1.ID})
	require.NoError(t, err)
	r3, err := f.comments.AddReply(ctx, f.cara, c.ID, ReplyInput{Content: "me too"})
	require.NoError(t, err)

	_, err = f.comments.AddReply(ctx, f.cara, c.ID, ReplyInput{Content: "x", ParentReplyID: ptr(uuid.New())})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	list, err := f.comments.ListComments(ctx, f.cara, blog)
	require.NoError(t, err)
	require.Len(t, list, 1)

	roots := list[0].Replies
	require.Len(t, roots, 2)
	assert.Equal(t, r1.ID, roots[0].ID)
	assert.Equal(t, r3.ID, roots[1].ID)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, r2.ID, roots[0].Children[0].ID)
	require.NotNil(t, roots[0].Children[0].AuthorInfo)
	assert.Equal(t, "ana", roots[0].Children[0].AuthorInfo.Name)
}

func TestDeletedReplyPromotesChildren(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	blog := uuid.New()

	c, err := f.comments.AddComment(ctx, f.ana, blog, "post")
	require.NoError(t, err)
	parent, err := f.comments.AddReply(ctx, f.ben, c.ID, ReplyInput{Content: "parent"})
	require.NoError(t, err)
	child, err := f.comments.AddReply(ctx, f.cara, c.ID, ReplyInput{Content: "child", ParentReplyID: &parent.ID})
	require.NoError(t, err)

	err = f.comments.DeleteReply(ctx, f.cara, c.ID, parent.ID)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))

	require.NoError(t, f.comments.DeleteReply(ctx, f.ben, c.ID, parent.ID))

	err = f.comments.DeleteReply(ctx, f.ben, c.ID, parent.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	list, err := f.comments.ListComments(ctx, f.ana, blog)
	require.NoError(t, err)
	require.Len(t, list[0].Replies, 1)
	assert.Equal(t, child.ID, list[0].Replies[0].ID)
}

func TestUpdateAndDeleteComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	blog := uuid.New()

	c, err := f.comments.AddComment(ctx, f.ana, blog, "draft")
	require.NoError(t, err)

	_, err = f.comments.UpdateComment(ctx, f.ben, c.ID, "hijack")
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))

	_, err = f.comments.UpdateComment(ctx, f.ana, c.ID, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	updated, err := f.comments.UpdateComment(ctx, f.ana, c.ID, "final")
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Content)

	moderated, err := f.comments.UpdateComment(ctx, f.admin, c.ID, "[removed]")
	require.NoError(t, err)
	assert.Equal(t, "[removed]", moderated.Content)

	err = f.comments.DeleteComment(ctx, f.ben, c.ID)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))

	require.NoError(t, f.comments.DeleteComment(ctx, f.ana, c.ID))

	err = f.comments.DeleteComment(ctx, f.ana, c.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	list, err := f.comments.ListComments(ctx, f.ana, blog)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListCommentsNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	blog := uuid.New()

	older, err := f.comments.AddComment(ctx, f.ana, blog, "first")
	require.NoError(t, err)
	newer, err := f.comments.AddComment(ctx, f.ben, blog, "second")
	require.NoError(t, err)
	_, err = f.comments.AddComment(ctx, f.ben, uuid.New(), "elsewhere")
	require.NoError(t, err)

	list, err := f.comments.ListComments(ctx, f.ana, blog)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
}

func TestAddCommentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.comments.AddComment(ctx, f.ana, uuid.New(), " ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.comments.AddComment(ctx, f.ana, uuid.Nil, "hi")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.comments.AddReply(ctx, f.ana, uuid.New(), ReplyInput{Content: "hi"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
