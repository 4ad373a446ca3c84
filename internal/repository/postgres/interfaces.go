package postgres

import "github.com/lalith-99/staffhub/internal/repository"

// Compile-time proof that the stores satisfy the repository contracts.
var (
	_ repository.EmployeeRepository = (*EmployeeStore)(nil)
	_ repository.RoomRepository     = (*RoomStore)(nil)
	_ repository.MessageRepository  = (*MessageStore)(nil)
	_ repository.CommentRepository  = (*CommentStore)(nil)
)
