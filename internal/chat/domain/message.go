package domain

import (
	"time"

	authdomain "hoosha-backend/internal/auth/domain"
)

// Message belongs to exactly one room. Within a room (created_at, id) is a
// total order: ids are monotonically increasing, so equal timestamps are
// broken by id.
type Message struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	RoomID    uint             `json:"room_id" gorm:"not null;index:idx_message_feed,priority:1"`
	SenderID  *uint            `json:"sender_id,omitempty"` // NULL for channel posts
	Sender    *authdomain.User `json:"-"`
	Text      string           `json:"text" gorm:"size:4096"`
	IsDeleted bool             `json:"-" gorm:"not null;default:false"`
	CreatedAt time.Time        `json:"created_at" gorm:"index:idx_message_feed,priority:2"`

	Views []MessageView `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// MessageView records that a user has seen a message. (message, user) is
// unique; duplicate inserts are no-ops.
type MessageView struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	MessageID uint      `json:"message_id" gorm:"not null;uniqueIndex:idx_view_message_user"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_view_message_user"`
	ViewedAt  time.Time `json:"viewed_at" gorm:"autoCreateTime"`
}
