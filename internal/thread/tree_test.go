package thread

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/staffhub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reply(id uuid.UUID, parent *uuid.UUID, content string) models.Reply {
	return models.Reply{ID: id, Content: content, ParentReplyID: parent, CreatedAt: time.Now()}
}

func ids(nodes []*models.ReplyNode) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func countNodes(roots []*models.ReplyNode) int {
	n := 0
	Walk(roots, func(*models.ReplyNode) { n++ })
	return n
}

func TestBuildTreeNestsAndKeepsDanglingAsRoot(t *testing.T) {
	one, two, three, missing := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	replies := []models.Reply{
		reply(one, nil, "first"),
		reply(two, &one, "answer to first"),
		reply(three, &missing, "orphan"),
	}

	roots := BuildTree(replies)

	require.Len(t, roots, 2)
	assert.Equal(t, []uuid.UUID{one, three}, ids(roots))
	assert.Equal(t, []uuid.UUID{two}, ids(roots[0].Children))
	assert.Empty(t, roots[1].Children)
	assert.Empty(t, roots[0].Children[0].Children)
}

func TestBuildTreeKeepsSiblingInsertionOrder(t *testing.T) {
	root := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	replies := []models.Reply{
		reply(root, nil, "root"),
		reply(c, &root, "c"),
		reply(a, &root, "a"),
		reply(b, &root, "b"),
	}

	roots := BuildTree(replies)

	require.Len(t, roots, 1)
	assert.Equal(t, []uuid.UUID{c, a, b}, ids(roots[0].Children))
}

func TestBuildTreeChildBeforeParent(t *testing.T) {
	parent, child := uuid.New(), uuid.New()
	roots := BuildTree([]models.Reply{
		reply(child, &parent, "early child"),
		reply(parent, nil, "parent"),
	})

	require.Len(t, roots, 1)
	assert.Equal(t, parent, roots[0].ID)
	assert.Equal(t, []uuid.UUID{child}, ids(roots[0].Children))
}

func TestBuildTreeIsTotalOnCycles(t *testing.T) {
	a, b, c, self := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	replies := []models.Reply{
		reply(a, &b, "a"),
		reply(b, &a, "b"),
		reply(c, &a, "hangs off the loop"),
		reply(self, &self, "points at itself"),
	}

	roots := BuildTree(replies)

	assert.Equal(t, len(replies), countNodes(roots), "every reply appears exactly once")
	assert.Equal(t, []uuid.UUID{a, b, self}, ids(roots))
	assert.Equal(t, []uuid.UUID{c}, ids(roots[0].Children))
}

func TestBuildTreeDeterministic(t *testing.T) {
	r1, r2, r3 := uuid.New(), uuid.New(), uuid.New()
	replies := []models.Reply{reply(r1, nil, "x"), reply(r2, &r1, "y"), reply(r3, &r2, "z")}

	first := BuildTree(replies)
	second := BuildTree(replies)

	assert.Equal(t, first, second)
	assert.Equal(t, 3, countNodes(first))
}

func TestBuildTreeEmpty(t *testing.T) {
	roots := BuildTree(nil)
	assert.NotNil(t, roots)
	assert.Empty(t, roots)
}
