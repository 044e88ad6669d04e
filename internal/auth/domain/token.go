package domain

import "time"

// Token kinds, matching the "type" claim inside the signed payload.
const (
	TokenKindAccess  = "at"
	TokenKindRefresh = "rt"
)

// Token is the persisted record of an issued bearer token. A signed token
// is only honored while its row exists; deleting the row revokes it.
type Token struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	JTI       string    `json:"jti" gorm:"size:128;uniqueIndex;not null"`
	Value     string    `json:"-" gorm:"size:512;not null"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	User      User      `json:"-"`
	Kind      string    `json:"kind" gorm:"size:2;not null"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
}

func (t *Token) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
