package usecase

import "errors"

// Business errors the delivery layer maps to HTTP statuses.
var (
	ErrInvalidPageSize = errors.New("page_size must be greater than 0")
	ErrCursorNotFound  = errors.New("cursor not found")
	ErrRoomNotFound    = errors.New("chat not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrNotParticipant  = errors.New("not a participant of this chat")
	ErrCannotPost      = errors.New("posting is not allowed for this member")
	ErrUserNotFound    = errors.New("user not found")
	ErrChatExists      = errors.New("private chat already exists")
	ErrSelfChat        = errors.New("cannot open a private chat with yourself")
	ErrInvalidKind     = errors.New("invalid room kind")
	ErrCannotJoin      = errors.New("cannot join this chat")
)
