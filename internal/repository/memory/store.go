// Package memory implements the repositories in process. It backs the
// test suites and the STORAGE_DRIVER=memory mode for local runs.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/staffhub/internal/models"
	"github.com/lalith-99/staffhub/internal/repository"
)

var (
	_ repository.EmployeeRepository = (*EmployeeStore)(nil)
	_ repository.RoomRepository     = (*RoomStore)(nil)
	_ repository.MessageRepository  = (*MessageStore)(nil)
	_ repository.CommentRepository  = (*CommentStore)(nil)
)

// Store holds every collection behind one lock. Values are copied on the
// way in and out so callers never alias stored state.
type Store struct {
	mu        sync.RWMutex
	now       func() time.Time
	employees map[uuid.UUID]models.Employee
	rooms     []models.Room
	messages  []models.Message
	comments  []models.Comment
	nextMsgID int64
}

func New() *Store {
	return &Store{
		now:       time.Now,
		employees: make(map[uuid.UUID]models.Employee),
	}
}

// SetClock replaces the time source. Tests use it to force timestamp ties.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// PutEmployee seeds the directory.
func (s *Store) PutEmployee(e models.Employee) models.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	if e.Role == "" {
		e.Role = "employee"
	}
	s.employees[e.ID] = e
	return e
}

func (s *Store) Employees() *EmployeeStore { return &EmployeeStore{s} }
func (s *Store) Rooms() *RoomStore         { return &RoomStore{s} }
func (s *Store) Messages() *MessageStore   { return &MessageStore{s} }
func (s *Store) Comments() *CommentStore   { return &CommentStore{s} }

type EmployeeStore struct{ s *Store }

func (r *EmployeeStore) GetByID(_ context.Context, tenantID, employeeID uuid.UUID) (*models.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.employees[employeeID]
	if !ok || e.TenantID != tenantID {
		return nil, nil
	}
	return &e, nil
}

func (r *EmployeeStore) GetMany(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[uuid.UUID]models.Employee, len(ids))
	for _, id := range ids {
		if e, ok := r.s.employees[id]; ok && e.TenantID == tenantID {
			out[id] = e
		}
	}
	return out, nil
}

func (r *EmployeeStore) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]models.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Employee, 0)
	for _, e := range r.s.employees {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return strings.Compare(out[i].ID.String(), out[j].ID.String()) < 0
	})
	return out, nil
}

type RoomStore struct{ s *Store }

func copyRoom(r models.Room) models.Room {
	r.Members = slices.Clone(r.Members)
	return r
}

func (r *RoomStore) Create(_ context.Context, room *models.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room.ID = uuid.New()
	room.CreatedAt = r.s.now()
	r.s.rooms = append(r.s.rooms, copyRoom(*room))
	return nil
}

func (r *RoomStore) GetByID(_ context.Context, tenantID, roomID uuid.UUID) (*models.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, room := range r.s.rooms {
		if room.ID == roomID && room.TenantID == tenantID {
			c := copyRoom(room)
			return &c, nil
		}
	}
	return nil, nil
}

func (r *RoomStore) ListByMember(_ context.Context, tenantID, userID uuid.UUID) ([]models.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Room, 0)
	for _, room := range r.s.rooms {
		if room.TenantID == tenantID && room.HasMember(userID) {
			out = append(out, copyRoom(room))
		}
	}
	return out, nil
}

func (r *RoomStore) IsMember(_ context.Context, tenantID, roomID, userID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, room := range r.s.rooms {
		if room.ID == roomID && room.TenantID == tenantID {
			return room.HasMember(userID), nil
		}
	}
	return false, nil
}

type MessageStore struct{ s *Store }

func copyMessage(m models.Message) models.Message {
	m.ReadBy = slices.Clone(m.ReadBy)
	if m.ReadBy == nil {
		m.ReadBy = make([]uuid.UUID, 0)
	}
	return m
}

func (r *MessageStore) Create(_ context.Context, msg *models.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextMsgID++
	msg.ID = r.s.nextMsgID
	if msg.Timestamp.IsZero() {
		msg.Timestamp = r.s.now()
	}
	msg.ReadBy = make([]uuid.UUID, 0)
	r.s.messages = append(r.s.messages, copyMessage(*msg))
	return nil
}

func (r *MessageStore) GetByID(_ context.Context, tenantID uuid.UUID, messageID int64) (*models.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.messages {
		if m.ID == messageID && m.TenantID == tenantID {
			c := copyMessage(m)
			return &c, nil
		}
	}
	return nil, nil
}

func (r *MessageStore) ListByRoom(_ context.Context, tenantID, roomID uuid.UUID) ([]models.Message, error) {
	return r.filter(func(m models.Message) bool {
		id, ok := m.Address.Room()
		return m.TenantID == tenantID && ok && id == roomID
	}), nil
}

func (r *MessageStore) ListDirect(_ context.Context, tenantID, a, b uuid.UUID) ([]models.Message, error) {
	return r.filter(func(m models.Message) bool {
		to, ok := m.Address.Recipient()
		if m.TenantID != tenantID || !ok {
			return false
		}
		return (m.Sender == a && to == b) || (m.Sender == b && to == a)
	}), nil
}

func (r *MessageStore) filter(keep func(models.Message) bool) []models.Message {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Message, 0)
	for _, m := range r.s.messages {
		if keep(m) {
			out = append(out, copyMessage(m))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *MessageStore) MarkRead(_ context.Context, tenantID uuid.UUID, messageID int64, userID uuid.UUID) (*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.messages {
		m := &r.s.messages[i]
		if m.ID != messageID || m.TenantID != tenantID {
			continue
		}
		if !slices.Contains(m.ReadBy, userID) {
			m.ReadBy = append(m.ReadBy, userID)
		}
		c := copyMessage(*m)
		return &c, nil
	}
	return nil, nil
}

type CommentStore struct{ s *Store }

func copyComment(c models.Comment) models.Comment {
	c.Replies = slices.Clone(c.Replies)
	if c.Replies == nil {
		c.Replies = make([]models.Reply, 0)
	}
	return c
}

func (r *CommentStore) find(tenantID, commentID uuid.UUID) *models.Comment {
	for i := range r.s.comments {
		if r.s.comments[i].ID == commentID && r.s.comments[i].TenantID == tenantID {
			return &r.s.comments[i]
		}
	}
	return nil
}

func (r *CommentStore) Create(_ context.Context, c *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	c.Replies = make([]models.Reply, 0)
	r.s.comments = append(r.s.comments, copyComment(*c))
	return nil
}

func (r *CommentStore) GetByID(_ context.Context, tenantID, commentID uuid.UUID) (*models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if c := r.find(tenantID, commentID); c != nil {
		out := copyComment(*c)
		return &out, nil
	}
	return nil, nil
}

func (r *CommentStore) ListByBlog(_ context.Context, tenantID, blogID uuid.UUID) ([]models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Comment, 0)
	// Walk backwards: later inserts are newer, which keeps ties stable.
	for i := len(r.s.comments) - 1; i >= 0; i-- {
		c := r.s.comments[i]
		if c.TenantID == tenantID && c.BlogID == blogID {
			out = append(out, copyComment(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *CommentStore) UpdateContent(_ context.Context, tenantID, commentID uuid.UUID, content string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.find(tenantID, commentID)
	if c == nil {
		return false, nil
	}
	c.Content = content
	c.UpdatedAt = at
	return true, nil
}

func (r *CommentStore) Delete(_ context.Context, tenantID, commentID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.comments {
		if r.s.comments[i].ID == commentID && r.s.comments[i].TenantID == tenantID {
			r.s.comments = slices.Delete(r.s.comments, i, i+1)
			return true, nil
		}
	}
	return false, nil
}

func (r *CommentStore) AppendReply(_ context.Context, tenantID, commentID uuid.UUID, reply models.Reply) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.find(tenantID, commentID)
	if c == nil {
		return false, nil
	}
	c.Replies = append(c.Replies, reply)
	c.UpdatedAt = r.s.now()
	return true, nil
}

func (r *CommentStore) RemoveReply(_ context.Context, tenantID, commentID, replyID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.find(tenantID, commentID)
	if c == nil {
		return false, nil
	}
	idx := slices.IndexFunc(c.Replies, func(rp models.Reply) bool { return rp.ID == replyID })
	if idx < 0 {
		return false, nil
	}
	c.Replies = slices.Delete(c.Replies, idx, idx+1)
	c.UpdatedAt = r.s.now()
	return true, nil
}
