package repository

import (
	"errors"
	"time"

	authdomain "hoosha-backend/internal/auth/domain"
	chatdomain "hoosha-backend/internal/chat/domain"

	"gorm.io/gorm"
)

// RoomCursor is the resolved sort key of the last room the caller saw.
type RoomCursor struct {
	EffectiveAt time.Time
	RoomID      uint
}

// RoomRepository persists rooms and memberships and serves the
// chronological room listing.
type RoomRepository interface {
	ListForUser(userID uint, limit int, cursor *RoomCursor) ([]chatdomain.Room, error)
	ResolveCursor(userID, roomID uint) (*RoomCursor, error)
	LastMessage(roomID uint) (*chatdomain.Message, error)
	FindByID(roomID uint) (*chatdomain.Room, error)
	GetParticipant(roomID, userID uint) (*chatdomain.Participant, error)
	OtherParticipant(roomID, userID uint) (*chatdomain.Participant, error)
	ParticipantUserIDs(roomID uint, exclude uint) ([]uint, error)
	FindPVRoom(userA, userB uint) (*chatdomain.Room, error)
	CreatePV(requester, target *authdomain.User) (*chatdomain.Room, error)
	CreateGroup(name, kind string, isPublic bool, creator *authdomain.User) (*chatdomain.Room, error)
	Join(roomID, userID uint) (created bool, err error)
}

type roomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{
		db: db,
	}
}

// effectiveAtExpr computes a room's activity timestamp: the newest
// non-deleted message date, falling back to the room's own updated_at.
// Kept as a SQL expression so the whole listing is one store-evaluated
// ordering pass.
const effectiveAtExpr = "COALESCE((SELECT MAX(m.created_at) FROM messages m WHERE m.room_id = rooms.id AND m.is_deleted = ?), rooms.updated_at)"

// ListForUser returns one page of the user's rooms ordered by
// (effective activity timestamp DESC, id DESC). The cursor, when present,
// restricts the page to rooms strictly after it in that order.
func (r *roomRepository) ListForUser(userID uint, limit int, cursor *RoomCursor) ([]chatdomain.Room, error) {
	var rooms []chatdomain.Room

	base := "SELECT rooms.* FROM rooms" +
		" JOIN participants ON participants.room_id = rooms.id AND participants.user_id = ?"
	order := " ORDER BY " + effectiveAtExpr + " DESC, rooms.id DESC LIMIT ?"

	var err error
	if cursor == nil {
		err = r.db.Raw(base+order, userID, false, limit).Scan(&rooms).Error
	} else {
		where := " WHERE (" + effectiveAtExpr + " < ? OR (" + effectiveAtExpr + " = ? AND rooms.id < ?))"
		err = r.db.Raw(base+where+order,
			userID,
			false, cursor.EffectiveAt,
			false, cursor.EffectiveAt, cursor.RoomID,
			false, limit,
		).Scan(&rooms).Error
	}
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// ResolveCursor looks up the sort key of a cursor room. The room must be
// one the requesting user participates in; otherwise (nil, nil).
func (r *roomRepository) ResolveCursor(userID, roomID uint) (*RoomCursor, error) {
	var room chatdomain.Room
	err := r.db.Joins("JOIN participants ON participants.room_id = rooms.id AND participants.user_id = ?", userID).
		Where("rooms.id = ?", roomID).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	last, err := r.LastMessage(roomID)
	if err != nil {
		return nil, err
	}
	effective := room.UpdatedAt
	if last != nil {
		effective = last.CreatedAt
	}
	return &RoomCursor{EffectiveAt: effective, RoomID: room.ID}, nil
}

// LastMessage returns the newest non-deleted message of a room, with its
// sender, or (nil, nil) for an empty room.
func (r *roomRepository) LastMessage(roomID uint) (*chatdomain.Message, error) {
	var message chatdomain.Message
	err := r.db.Preload("Sender").
		Where("room_id = ? AND is_deleted = ?", roomID, false).
		Order("created_at DESC, id DESC").
		First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

func (r *roomRepository) FindByID(roomID uint) (*chatdomain.Room, error) {
	var room chatdomain.Room
	err := r.db.Where("id = ?", roomID).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) GetParticipant(roomID, userID uint) (*chatdomain.Participant, error) {
	var participant chatdomain.Participant
	err := r.db.Where("room_id = ? AND user_id = ?", roomID, userID).First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &participant, nil
}

// OtherParticipant returns the peer membership of a private room.
func (r *roomRepository) OtherParticipant(roomID, userID uint) (*chatdomain.Participant, error) {
	var participant chatdomain.Participant
	err := r.db.Preload("User").
		Where("room_id = ? AND user_id <> ?", roomID, userID).
		First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &participant, nil
}

// ParticipantUserIDs lists the member user ids of a room, minus one user
// (the sender, for notification fan-out).
func (r *roomRepository) ParticipantUserIDs(roomID uint, exclude uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&chatdomain.Participant{}).
		Where("room_id = ? AND user_id <> ?", roomID, exclude).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// FindPVRoom finds the private room containing exactly this user pair.
func (r *roomRepository) FindPVRoom(userA, userB uint) (*chatdomain.Room, error) {
	pairKey := chatdomain.PVPairKey(userA, userB)
	var room chatdomain.Room
	err := r.db.Where("kind = ? AND pair_key = ?", chatdomain.RoomKindPrivate, pairKey).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

// CreatePV creates the private room and both participant rows in one
// transaction. A concurrent creator loses on the pair key unique index and
// surfaces gorm.ErrDuplicatedKey.
func (r *roomRepository) CreatePV(requester, target *authdomain.User) (*chatdomain.Room, error) {
	pairKey := chatdomain.PVPairKey(requester.ID, target.ID)
	now := time.Now().UTC()
	room := chatdomain.Room{
		Name:        requester.Username + ":" + target.Username,
		Kind:        chatdomain.RoomKindPrivate,
		CreatedByID: &requester.ID,
		PairKey:     &pairKey,
		MemberCount: 2,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		participants := []chatdomain.Participant{
			{UserID: requester.ID, RoomID: room.ID, Role: chatdomain.RoleOwner, Permissions: chatdomain.AllCapabilities},
			{UserID: target.ID, RoomID: room.ID, Role: chatdomain.RoleMember},
		}
		return tx.Create(&participants).Error
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// CreateGroup creates a group/channel/broadcast room owned by the creator.
func (r *roomRepository) CreateGroup(name, kind string, isPublic bool, creator *authdomain.User) (*chatdomain.Room, error) {
	now := time.Now().UTC()
	room := chatdomain.Room{
		Name:        name,
		Kind:        kind,
		CreatedByID: &creator.ID,
		IsPublic:    isPublic,
		MemberCount: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		owner := chatdomain.Participant{
			UserID:      creator.ID,
			RoomID:      room.ID,
			Role:        chatdomain.RoleOwner,
			Permissions: chatdomain.AllCapabilities,
		}
		return tx.Create(&owner).Error
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// Join adds the user as a plain member, idempotently.
func (r *roomRepository) Join(roomID, userID uint) (bool, error) {
	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing chatdomain.Participant
		err := tx.Where("room_id = ? AND user_id = ?", roomID, userID).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		participant := chatdomain.Participant{UserID: userID, RoomID: roomID, Role: chatdomain.RoleMember}
		if err := tx.Create(&participant).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil
			}
			return err
		}
		created = true
		return tx.Model(&chatdomain.Room{}).Where("id = ?", roomID).
			Update("member_count", gorm.Expr("member_count + 1")).Error
	})
	return created, err
}
