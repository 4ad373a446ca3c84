// Package thread nests a comment's flat reply list into a forest.
package thread

import (
	"github.com/google/uuid"
	"github.com/lalith-99/staffhub/internal/models"
)

// BuildTree places every reply under its parent. Replies without a parent,
// or whose parent is not in the list, become roots. Siblings keep their
// input order. The input slice is not modified.
//
// A parent pointer that leads back into its own descendants would make a
// cycle that no root reaches; such replies are promoted to roots too, so
// every input reply appears in the output exactly once.
func BuildTree(replies []models.Reply) []*models.ReplyNode {
	nodes := make(map[uuid.UUID]*models.ReplyNode, len(replies))
	order := make([]*models.ReplyNode, 0, len(replies))
	for _, r := range replies {
		n := &models.ReplyNode{Reply: r, Children: make([]*models.ReplyNode, 0)}
		// With duplicate ids the first reply owns the id for parent lookups.
		if _, dup := nodes[r.ID]; !dup {
			nodes[r.ID] = n
		}
		order = append(order, n)
	}

	roots := make([]*models.ReplyNode, 0)
	for _, n := range order {
		parent := parentOf(n, nodes)
		if parent == nil || cyclic(n, nodes) {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}
	return roots
}

func parentOf(n *models.ReplyNode, nodes map[uuid.UUID]*models.ReplyNode) *models.ReplyNode {
	if n.ParentReplyID == nil {
		return nil
	}
	return nodes[*n.ParentReplyID]
}

// cyclic reports whether following parent pointers from n comes back to n.
func cyclic(n *models.ReplyNode, nodes map[uuid.UUID]*models.ReplyNode) bool {
	seen := map[uuid.UUID]bool{n.ID: true}
	for p := parentOf(n, nodes); p != nil; p = parentOf(p, nodes) {
		if p.ID == n.ID {
			return true
		}
		if seen[p.ID] {
			// A loop further up that does not include n; n hangs off it
			// and is reached once its ancestor is promoted.
			return false
		}
		seen[p.ID] = true
	}
	return false
}

// Walk visits every node depth-first in display order.
func Walk(roots []*models.ReplyNode, fn func(*models.ReplyNode)) {
	for _, n := range roots {
		fn(n)
		Walk(n.Children, fn)
	}
}
