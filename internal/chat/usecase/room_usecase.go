package usecase

import (
	"errors"

	authdomain "hoosha-backend/internal/auth/domain"
	authrepo "hoosha-backend/internal/auth/repository"
	chatdomain "hoosha-backend/internal/chat/domain"
	chatdto "hoosha-backend/internal/chat/dto"
	"hoosha-backend/internal/chat/repository"

	"gorm.io/gorm"
)

// RoomUsecase serves the chronological room list and room lifecycle:
// group creation, joining, and idempotent private-chat resolution.
type RoomUsecase interface {
	ListRooms(user *authdomain.User, pageSize int, lastRoomID *uint) ([]chatdto.RoomListItem, error)
	CreateGroup(user *authdomain.User, req *chatdto.CreateRoomRequest) (*chatdto.RoomResponse, error)
	CreatePV(user *authdomain.User, targetUsername string) (*chatdto.RoomResponse, error)
	Join(user *authdomain.User, roomID uint) (created bool, err error)
}

type roomUsecase struct {
	roomRepo    repository.RoomRepository
	messageRepo repository.MessageRepository
	userRepo    authrepo.UserRepository
}

func NewRoomUsecase(roomRepo repository.RoomRepository, messageRepo repository.MessageRepository, userRepo authrepo.UserRepository) RoomUsecase {
	return &roomUsecase{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

// ListRooms returns one page of the user's rooms, newest activity first.
// The cursor is the id of the last room of the previous page; an unknown
// cursor fails rather than returning an arbitrary page.
func (u *roomUsecase) ListRooms(user *authdomain.User, pageSize int, lastRoomID *uint) ([]chatdto.RoomListItem, error) {
	if pageSize <= 0 {
		return nil, ErrInvalidPageSize
	}

	var cursor *repository.RoomCursor
	if lastRoomID != nil {
		resolved, err := u.roomRepo.ResolveCursor(user.ID, *lastRoomID)
		if err != nil {
			return nil, err
		}
		if resolved == nil {
			return nil, ErrCursorNotFound
		}
		cursor = resolved
	}

	rooms, err := u.roomRepo.ListForUser(user.ID, pageSize, cursor)
	if err != nil {
		return nil, err
	}

	items := make([]chatdto.RoomListItem, 0, len(rooms))
	for i := range rooms {
		item, err := u.buildListItem(user, &rooms[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func (u *roomUsecase) buildListItem(user *authdomain.User, room *chatdomain.Room) (*chatdto.RoomListItem, error) {
	unread, err := u.messageRepo.UnreadCount(room.ID, user.ID)
	if err != nil {
		return nil, err
	}

	item := &chatdto.RoomListItem{
		ID:          room.ID,
		Name:        room.Name,
		Kind:        room.Kind,
		IsGroup:     room.IsGroup(),
		MemberCount: room.MemberCount,
		UnreadCount: unread,
		UpdatedAt:   room.UpdatedAt,
	}

	last, err := u.roomRepo.LastMessage(room.ID)
	if err != nil {
		return nil, err
	}
	if last != nil {
		lm := &chatdto.LastMessage{Text: last.Text, Date: last.CreatedAt, MessageID: last.ID}
		if last.Sender != nil {
			lm.Sender = last.Sender.Username
		}
		item.LastMessage = lm
	}

	if room.Kind == chatdomain.RoomKindPrivate {
		other, err := u.roomRepo.OtherParticipant(room.ID, user.ID)
		if err != nil {
			return nil, err
		}
		if other != nil {
			item.OtherUser = &chatdto.OtherUser{
				ID:       other.User.ID,
				Username: other.User.Username,
				FullName: other.User.FullName,
			}
		}
	}
	return item, nil
}

func (u *roomUsecase) CreateGroup(user *authdomain.User, req *chatdto.CreateRoomRequest) (*chatdto.RoomResponse, error) {
	switch req.Kind {
	case chatdomain.RoomKindGroup, chatdomain.RoomKindChannel, chatdomain.RoomKindBroadcast:
	default:
		return nil, ErrInvalidKind
	}

	room, err := u.roomRepo.CreateGroup(req.Name, req.Kind, req.IsPublic, user)
	if err != nil {
		return nil, err
	}
	return roomResponse(room), nil
}

// CreatePV resolves the unique private room between the user and the named
// target. An existing room is a conflict, not a silent return; concurrent
// creators race on the pair key and the loser sees the same conflict.
func (u *roomUsecase) CreatePV(user *authdomain.User, targetUsername string) (*chatdto.RoomResponse, error) {
	target, err := u.userRepo.FindByUsername(targetUsername)
	if err != nil {
		return nil, err
	}
	if target == nil || !target.IsActive || !target.MessagingEnabled {
		return nil, ErrUserNotFound
	}
	if target.ID == user.ID {
		return nil, ErrSelfChat
	}

	existing, err := u.roomRepo.FindPVRoom(user.ID, target.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrChatExists
	}

	room, err := u.roomRepo.CreatePV(user, target)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrChatExists
		}
		return nil, err
	}
	return roomResponse(room), nil
}

func (u *roomUsecase) Join(user *authdomain.User, roomID uint) (bool, error) {
	room, err := u.roomRepo.FindByID(roomID)
	if err != nil {
		return false, err
	}
	if room == nil {
		return false, ErrRoomNotFound
	}
	if !room.IsPublic {
		return false, ErrCannotJoin
	}
	return u.roomRepo.Join(roomID, user.ID)
}

func roomResponse(room *chatdomain.Room) *chatdto.RoomResponse {
	return &chatdto.RoomResponse{
		ID:          room.ID,
		Name:        room.Name,
		Kind:        room.Kind,
		MemberCount: room.MemberCount,
		CreatedAt:   room.CreatedAt,
	}
}
