package domain

import (
	"fmt"
	"time"

	authdomain "hoosha-backend/internal/auth/domain"
)

// Room kinds.
const (
	RoomKindPrivate   = "PV"
	RoomKindGroup     = "GP"
	RoomKindChannel   = "CH"
	RoomKindBroadcast = "BC"
)

// Room is a private 1:1 chat or a multi-member group/channel/broadcast.
type Room struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:255"`
	Kind        string `json:"kind" gorm:"size:2;index;not null"`
	CreatedByID *uint  `json:"created_by,omitempty"`
	// PairKey is "pv:<minUserID>:<maxUserID>" for private rooms and NULL
	// otherwise. The unique index is what keeps concurrent PV creation
	// from producing two rooms for the same pair.
	PairKey     *string   `json:"-" gorm:"size:64;uniqueIndex"`
	IsPublic    bool      `json:"is_public" gorm:"not null;default:false"`
	MemberCount uint      `json:"member_count" gorm:"not null;default:1"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Participants []Participant `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Messages     []Message     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (r *Room) IsGroup() bool {
	return r.Kind == RoomKindGroup || r.Kind == RoomKindChannel || r.Kind == RoomKindBroadcast
}

// PVPairKey builds the pair key for the unordered user pair.
func PVPairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("pv:%d:%d", a, b)
}

// Participant roles.
const (
	RoleOwner      = "OW"
	RoleAdmin      = "AD"
	RoleModerator  = "MO"
	RoleMember     = "ME"
	RoleRestricted = "RE"
	RoleBanned     = "BA"
)

// Capability is the closed set of per-member permissions.
type Capability string

const (
	CapChangeInfo     Capability = "change_info"
	CapPostMessages   Capability = "post_messages"
	CapEditMessages   Capability = "edit_messages"
	CapDeleteMessages Capability = "delete_messages"
	CapBanUsers       Capability = "ban_users"
	CapInviteUsers    Capability = "invite_users"
	CapPinMessages    Capability = "pin_messages"
	CapAddAdmins      Capability = "add_admins"
)

// AllCapabilities is what a room owner is granted on creation.
var AllCapabilities = []Capability{
	CapChangeInfo, CapPostMessages, CapEditMessages, CapDeleteMessages,
	CapBanUsers, CapInviteUsers, CapPinMessages, CapAddAdmins,
}

// Participant is a user's membership in a room. (user, room) is unique.
type Participant struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"user_id" gorm:"not null;uniqueIndex:idx_participant_user_room"`
	User        authdomain.User `json:"-"`
	RoomID      uint            `json:"room_id" gorm:"not null;uniqueIndex:idx_participant_user_room;index"`
	Role        string          `json:"role" gorm:"size:2;not null;default:ME"`
	Permissions []Capability    `json:"permissions" gorm:"serializer:json"`
	JoinedAt    time.Time       `json:"joined_at" gorm:"autoCreateTime"`
}

// Can reports whether the member holds a capability. Owners hold all of
// them, banned and restricted members none; everyone else is checked
// against the granted set, with posting open to plain members.
func (p *Participant) Can(cap Capability) bool {
	switch p.Role {
	case RoleBanned, RoleRestricted:
		return false
	case RoleOwner:
		return true
	}
	for _, granted := range p.Permissions {
		if granted == cap {
			return true
		}
	}
	return cap == CapPostMessages
}
