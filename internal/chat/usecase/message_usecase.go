package usecase

import (
	authdomain "hoosha-backend/internal/auth/domain"
	chatdomain "hoosha-backend/internal/chat/domain"
	chatdto "hoosha-backend/internal/chat/dto"
	"hoosha-backend/internal/chat/repository"
)

// Notifier fans a new message out to the other participants. Implementations
// must be best-effort: a failed push never fails the send.
type Notifier interface {
	MessageCreated(room *chatdomain.Room, message *chatdomain.Message, sender *authdomain.User)
}

// MessageUsecase serves the in-room feed, unread accounting, sending and
// view recording.
type MessageUsecase interface {
	ListMessages(user *authdomain.User, roomID uint, pageSize int, lastMessageID *uint) ([]chatdto.MessageItem, error)
	SendMessage(user *authdomain.User, roomID uint, text string) (*chatdto.MessageItem, error)
	RecordView(user *authdomain.User, messageID uint) error
	UnreadCount(user *authdomain.User, roomID uint) (int64, error)
}

type messageUsecase struct {
	roomRepo    repository.RoomRepository
	messageRepo repository.MessageRepository
	notifier    Notifier
}

// NewMessageUsecase creates the message usecase. notifier may be nil.
func NewMessageUsecase(roomRepo repository.RoomRepository, messageRepo repository.MessageRepository, notifier Notifier) MessageUsecase {
	return &messageUsecase{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		notifier:    notifier,
	}
}

// ListMessages returns one page of the room feed, newest first. The caller
// must participate in the room; a room with no messages is an empty page,
// not an error.
func (u *messageUsecase) ListMessages(user *authdomain.User, roomID uint, pageSize int, lastMessageID *uint) ([]chatdto.MessageItem, error) {
	if pageSize <= 0 {
		return nil, ErrInvalidPageSize
	}

	if err := u.requireRoom(roomID, user.ID); err != nil {
		return nil, err
	}

	var cursor *repository.MessageCursor
	if lastMessageID != nil {
		anchor, err := u.messageRepo.FindInRoom(roomID, *lastMessageID)
		if err != nil {
			return nil, err
		}
		if anchor == nil {
			return nil, ErrCursorNotFound
		}
		cursor = &repository.MessageCursor{CreatedAt: anchor.CreatedAt, MessageID: anchor.ID}
	}

	messages, err := u.messageRepo.ListByRoom(roomID, pageSize, cursor)
	if err != nil {
		return nil, err
	}

	items := make([]chatdto.MessageItem, 0, len(messages))
	for i := range messages {
		items = append(items, messageItem(&messages[i]))
	}
	return items, nil
}

func (u *messageUsecase) SendMessage(user *authdomain.User, roomID uint, text string) (*chatdto.MessageItem, error) {
	room, err := u.roomRepo.FindByID(roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	participant, err := u.roomRepo.GetParticipant(roomID, user.ID)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return nil, ErrNotParticipant
	}
	if !participant.Can(chatdomain.CapPostMessages) {
		return nil, ErrCannotPost
	}

	message := &chatdomain.Message{
		RoomID:   roomID,
		SenderID: &user.ID,
		Sender:   user,
		Text:     text,
	}
	if err := u.messageRepo.Create(message); err != nil {
		return nil, err
	}

	if u.notifier != nil {
		u.notifier.MessageCreated(room, message, user)
	}

	item := messageItem(message)
	return &item, nil
}

// RecordView marks a message as seen by the user. Recording twice has the
// same effect as recording once.
func (u *messageUsecase) RecordView(user *authdomain.User, messageID uint) error {
	message, err := u.messageRepo.FindByID(messageID)
	if err != nil {
		return err
	}
	if message == nil {
		return ErrMessageNotFound
	}

	if err := u.requireRoom(message.RoomID, user.ID); err != nil {
		return err
	}
	return u.messageRepo.RecordView(messageID, user.ID)
}

// UnreadCount counts messages the user has neither sent nor viewed.
func (u *messageUsecase) UnreadCount(user *authdomain.User, roomID uint) (int64, error) {
	if err := u.requireRoom(roomID, user.ID); err != nil {
		return 0, err
	}
	return u.messageRepo.UnreadCount(roomID, user.ID)
}

// requireRoom distinguishes a missing room from a missing membership.
func (u *messageUsecase) requireRoom(roomID, userID uint) error {
	room, err := u.roomRepo.FindByID(roomID)
	if err != nil {
		return err
	}
	if room == nil {
		return ErrRoomNotFound
	}

	participant, err := u.roomRepo.GetParticipant(roomID, userID)
	if err != nil {
		return err
	}
	if participant == nil {
		return ErrNotParticipant
	}
	return nil
}

func messageItem(message *chatdomain.Message) chatdto.MessageItem {
	item := chatdto.MessageItem{
		ID:        message.ID,
		RoomID:    message.RoomID,
		SenderID:  message.SenderID,
		Text:      message.Text,
		CreatedAt: message.CreatedAt,
	}
	if message.Sender != nil {
		item.Sender = message.Sender.Username
	}
	return item
}
