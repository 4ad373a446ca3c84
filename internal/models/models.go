package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Employee is an identity owned by the directory. The chat core only reads
// it to resolve display projections.
//
// TenantID scopes every query; two companies never see each other's staff.
type Employee struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Ref returns the display-safe projection of the employee.
func (e Employee) Ref() EmployeeRef {
	return EmployeeRef{ID: e.ID, Name: e.Name, Email: e.Email}
}

// EmployeeRef is what other people may see about an employee: no role,
// no credentials, nothing else.
type EmployeeRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// RoleAdmin may modify content authored by anyone in the tenant.
const RoleAdmin = "admin"

type RoomKind string

const (
	RoomKindPrivate RoomKind = "private"
	RoomKindProject RoomKind = "project"
	RoomKindGroup   RoomKind = "group"
)

func (k RoomKind) Valid() bool {
	switch k {
	case RoomKindPrivate, RoomKindProject, RoomKindGroup:
		return true
	}
	return false
}

// Room is a chat room. Members is fixed at creation; LinkedProject is set
// exactly when Kind is project.
type Room struct {
	ID            uuid.UUID   `json:"id"`
	TenantID      uuid.UUID   `json:"tenant_id"`
	Name          string      `json:"name"`
	CreatedBy     uuid.UUID   `json:"created_by"`
	Members       []uuid.UUID `json:"members"`
	Kind          RoomKind    `json:"kind"`
	LinkedProject *uuid.UUID  `json:"linked_project,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// HasMember reports whether userID is in the room.
func (r *Room) HasMember(userID uuid.UUID) bool {
	for _, m := range r.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// RoomView is a room with its members resolved to display projections.
type RoomView struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	CreatedBy     uuid.UUID     `json:"created_by"`
	Members       []EmployeeRef `json:"members"`
	Kind          RoomKind      `json:"kind"`
	LinkedProject *uuid.UUID    `json:"linked_project,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

type AddressKind string

const (
	AddressRoom   AddressKind = "room"
	AddressDirect AddressKind = "direct"
)

// Address says where a message goes: a room or a single recipient.
// The fields are unexported so the only way to build one is through
// ToRoom or ToEmployee, which makes "exactly one target" hold by
// construction. The zero Address is invalid.
type Address struct {
	kind AddressKind
	id   uuid.UUID
}

func ToRoom(roomID uuid.UUID) Address {
	return Address{kind: AddressRoom, id: roomID}
}

func ToEmployee(recipientID uuid.UUID) Address {
	return Address{kind: AddressDirect, id: recipientID}
}

func (a Address) Kind() AddressKind { return a.kind }

func (a Address) IsZero() bool { return a.kind == "" }

// Room returns the room id for room-addressed messages.
func (a Address) Room() (uuid.UUID, bool) {
	return a.id, a.kind == AddressRoom
}

// Recipient returns the recipient id for direct-addressed messages.
func (a Address) Recipient() (uuid.UUID, bool) {
	return a.id, a.kind == AddressDirect
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind AddressKind `json:"kind"`
		ID   uuid.UUID   `json:"id"`
	}{a.kind, a.id})
}

// Message is a single chat message.
//
// ID is a bigserial: it grows with insertion order and breaks timestamp
// ties in history listings. Address is immutable once stored. ReadBy only
// ever grows.
type Message struct {
	ID        int64       `json:"id"`
	TenantID  uuid.UUID   `json:"tenant_id"`
	Content   string      `json:"content"`
	Sender    uuid.UUID   `json:"sender"`
	Address   Address     `json:"address"`
	Timestamp time.Time   `json:"timestamp"`
	ReadBy    []uuid.UUID `json:"read_by"`
}

// MessageView is a message with sender and recipient resolved. Exactly one
// of Room and Recipient is set.
type MessageView struct {
	ID        int64        `json:"id"`
	Content   string       `json:"content"`
	Sender    EmployeeRef  `json:"sender"`
	Room      *uuid.UUID   `json:"room,omitempty"`
	Recipient *EmployeeRef `json:"recipient,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	ReadBy    []uuid.UUID  `json:"read_by"`
}

// Comment is a top-level comment on a blog post. Replies are embedded in
// insertion order.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	BlogID    uuid.UUID `json:"blog_id"`
	Author    uuid.UUID `json:"author"`
	Content   string    `json:"content"`
	Replies   []Reply   `json:"replies"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FindReply returns the reply with the given id, or nil.
func (c *Comment) FindReply(id uuid.UUID) *Reply {
	for i := range c.Replies {
		if c.Replies[i].ID == id {
			return &c.Replies[i]
		}
	}
	return nil
}

// Reply lives inside a Comment. A nil ParentReplyID means the reply answers
// the comment itself; otherwise it names another reply of the same comment.
type Reply struct {
	ID            uuid.UUID  `json:"id"`
	Author        uuid.UUID  `json:"author"`
	Content       string     `json:"content"`
	ParentReplyID *uuid.UUID `json:"parent_reply_id"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ReplyNode is a reply placed in its thread.
type ReplyNode struct {
	Reply
	AuthorInfo *EmployeeRef `json:"author_info,omitempty"`
	Children   []*ReplyNode `json:"children"`
}

// CommentView is a comment with its author resolved and replies nested.
type CommentView struct {
	ID        uuid.UUID    `json:"id"`
	BlogID    uuid.UUID    `json:"blog_id"`
	Author    EmployeeRef  `json:"author"`
	Content   string       `json:"content"`
	Replies   []*ReplyNode `json:"replies"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
