// Package service holds the chat core's rules: who may create, read and
// change rooms, messages and comments, and how stored records are resolved
// into the projections clients see.
package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/lalith-99/staffhub/internal/apperr"
	"github.com/lalith-99/staffhub/internal/auth"
	"github.com/lalith-99/staffhub/internal/models"
	"github.com/lalith-99/staffhub/internal/repository"
)

// CanModify is the single moderation rule for comments and replies: the
// author may change their own content and an admin may change anyone's.
func CanModify(actor auth.Identity, authorID uuid.UUID) bool {
	return actor.UserID == authorID || isAdmin(actor)
}

func isAdmin(actor auth.Identity) bool {
	return actor.Role == models.RoleAdmin
}

// resolveRefs loads display projections for ids. An id with no directory
// entry resolves to a bare reference carrying only the id.
func resolveRefs(ctx context.Context, employees repository.EmployeeRepository, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.EmployeeRef, error) {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found, err := employees.GetMany(ctx, tenantID, unique)
	if err != nil {
		return nil, apperr.Persistence("resolve employees", err)
	}

	refs := make(map[uuid.UUID]models.EmployeeRef, len(unique))
	for _, id := range unique {
		if e, ok := found[id]; ok {
			refs[id] = e.Ref()
		} else {
			refs[id] = models.EmployeeRef{ID: id}
		}
	}
	return refs, nil
}
