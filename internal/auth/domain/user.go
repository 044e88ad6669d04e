package domain

import "time"

// Role controls how many refresh-token sessions a user may hold at once.
type Role struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:100;uniqueIndex;not null"`
	MaxSessions int    `json:"max_sessions" gorm:"not null;default:2"`
}

type User struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Username         string    `json:"username" gorm:"size:100;uniqueIndex;not null"`
	Email            string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Password         string    `json:"-" gorm:"size:128;not null"` // Never return password in JSON
	Phone            string    `json:"phone" gorm:"size:100;uniqueIndex"`
	FullName         string    `json:"full_name" gorm:"size:100"`
	RoleID           uint      `json:"-" gorm:"not null"`
	Role             Role      `json:"role"`
	IsActive         bool      `json:"is_active" gorm:"not null;default:true"`
	MessagingEnabled bool      `json:"messaging_enabled" gorm:"not null;default:true"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
