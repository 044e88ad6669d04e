package repository

import (
	"errors"
	"time"

	chatdomain "hoosha-backend/internal/chat/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageCursor is the resolved sort key of the last message the caller saw.
type MessageCursor struct {
	CreatedAt time.Time
	MessageID uint
}

// MessageRepository persists messages and views and serves the room feed.
type MessageRepository interface {
	ListByRoom(roomID uint, limit int, cursor *MessageCursor) ([]chatdomain.Message, error)
	FindInRoom(roomID, messageID uint) (*chatdomain.Message, error)
	FindByID(messageID uint) (*chatdomain.Message, error)
	Create(message *chatdomain.Message) error
	UnreadCount(roomID, userID uint) (int64, error)
	RecordView(messageID, userID uint) error
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{
		db: db,
	}
}

// ListByRoom returns one page of a room's non-deleted messages ordered by
// (created_at DESC, id DESC). With a cursor, only messages strictly before
// it: created_at < c OR (created_at = c AND id < c.id).
func (r *messageRepository) ListByRoom(roomID uint, limit int, cursor *MessageCursor) ([]chatdomain.Message, error) {
	q := r.db.Preload("Sender").
		Where("room_id = ? AND is_deleted = ?", roomID, false)
	if cursor != nil {
		q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))",
			cursor.CreatedAt, cursor.CreatedAt, cursor.MessageID)
	}

	var messages []chatdomain.Message
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// FindInRoom resolves a message id inside a room, excluding soft-deleted
// messages, or (nil, nil).
func (r *messageRepository) FindInRoom(roomID, messageID uint) (*chatdomain.Message, error) {
	var message chatdomain.Message
	err := r.db.Where("id = ? AND room_id = ? AND is_deleted = ?", messageID, roomID, false).
		First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) FindByID(messageID uint) (*chatdomain.Message, error) {
	var message chatdomain.Message
	err := r.db.Where("id = ? AND is_deleted = ?", messageID, false).First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

// Create inserts the message and touches the room so an otherwise empty
// room still sorts by its latest activity.
func (r *messageRepository) Create(message *chatdomain.Message) error {
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&chatdomain.Room{}).Where("id = ?", message.RoomID).
			Update("updated_at", message.CreatedAt).Error
	})
}

// UnreadCount counts messages in the room that are not deleted, were not
// sent by the user and carry no view row for the user.
func (r *messageRepository) UnreadCount(roomID, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&chatdomain.Message{}).
		Where("room_id = ? AND is_deleted = ?", roomID, false).
		Where("(sender_id IS NULL OR sender_id <> ?)", userID).
		Where("NOT EXISTS (SELECT 1 FROM message_views v WHERE v.message_id = messages.id AND v.user_id = ?)", userID).
		Count(&count).Error
	return count, err
}

// RecordView inserts a view row; a duplicate (message, user) is a no-op.
func (r *messageRepository) RecordView(messageID, userID uint) error {
	view := chatdomain.MessageView{
		MessageID: messageID,
		UserID:    userID,
		ViewedAt:  time.Now().UTC(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&view).Error
}
