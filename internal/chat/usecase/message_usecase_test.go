package usecase

import (
	"testing"
	"time"

	authdomain "hoosha-backend/internal/auth/domain"
	chatdomain "hoosha-backend/internal/chat/domain"
	"hoosha-backend/internal/chat/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type captureNotifier struct {
	roomIDs []uint
}

func (n *captureNotifier) MessageCreated(room *chatdomain.Room, message *chatdomain.Message, sender *authdomain.User) {
	n.roomIDs = append(n.roomIDs, room.ID)
}

func newTestMessageUsecase(db *gorm.DB, notifier Notifier) (MessageUsecase, repository.RoomRepository, repository.MessageRepository) {
	roomRepo := repository.NewRoomRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	return NewMessageUsecase(roomRepo, messageRepo, notifier), roomRepo, messageRepo
}

func messageIDs(t *testing.T, uc MessageUsecase, user *authdomain.User, roomID uint, pageSize int, last *uint) []uint {
	t.Helper()
	items, err := uc.ListMessages(user, roomID, pageSize, last)
	require.NoError(t, err)
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestListMessagesPaging(t *testing.T) {
	db := openTestDB(t)
	uc, roomRepo, messageRepo := newTestMessageUsecase(db, nil)
	a := createChatUser(t, db, "alice")

	room, err := roomRepo.CreateGroup("g", chatdomain.RoomKindGroup, true, a)
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	t4 := base.Add(4 * time.Second)
	t5 := base.Add(5 * time.Second)

	// Two messages share a timestamp; id breaks the tie.
	for _, m := range []*chatdomain.Message{
		{ID: 8, RoomID: room.ID, SenderID: &a.ID, Text: "m8", CreatedAt: t4},
		{ID: 9, RoomID: room.ID, SenderID: &a.ID, Text: "m9", CreatedAt: t5},
		{ID: 10, RoomID: room.ID, SenderID: &a.ID, Text: "m10", CreatedAt: t5},
	} {
		require.NoError(t, messageRepo.Create(m))
	}

	assert.Equal(t, []uint{10, 9}, messageIDs(t, uc, a, room.ID, 2, nil))

	last := uint(9)
	assert.Equal(t, []uint{8}, messageIDs(t, uc, a, room.ID, 2, &last))

	last = 8
	assert.Empty(t, messageIDs(t, uc, a, room.ID, 2, &last))
}

func TestListMessagesAccess(t *testing.T) {
	db := openTestDB(t)
	uc, roomRepo, _ := newTestMessageUsecase(db, nil)
	a := createChatUser(t, db, "alice")
	b := createChatUser(t, db, "bob")

	room, err := roomRepo.CreateGroup("g", chatdomain.RoomKindGroup, false, a)
	require.NoError(t, err)

	_, err = uc.ListMessages(b, room.ID, 5, nil)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = uc.ListMessages(a, 999, 5, nil)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = uc.ListMessages(a, room.ID, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidPageSize)
}

func TestListMessagesEmptyRoom(t *testing.T) {
	db := openTestDB(t)
	uc, roomRepo, _ := newTestMessageUsecase(db, nil)
	a := createChatUser(t, db, "alice")

	room, err := roomRepo.CreateGroup("g", chatdomain.RoomKindGroup, true, a)
	require.NoError(t, err)

	items, err := uc.ListMessages(a, room.ID, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListMessagesUnknownCursor(t *testing.T) {
	db := openTestDB(t)
	uc, roomRepo, _ := newTestMessageUsecase(db, nil)
	a := createChatUser(t, db, "alice")
	b := createChatUser(t, db, "bob")

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	room, err := roomRepo.CreateGroup("g", chatdomain.RoomKindGroup, true, a)
	require.NoError(t, err)
	other, err := roomRepo.CreatePV(a, b)
	require.NoError(t, err)
	foreign := sendAt(t, db, other.ID, b.ID, "elsewhere", base)

	unknown := uint(999)
	_, err = uc.ListMessages(a, room.ID, 5, &unknown)
	assert.ErrorIs(t, err, ErrCursorNotFound)

	// A message from another room cannot anchor this room's feed.
	_, err = uc.ListMessages(a, room.ID, 5, &foreign.ID)
	assert.ErrorIs(t, err, ErrCursorNotFound)
}

func TestListMessagesHidesDeleted(t *testing.T) {
	db := openTestDB(t)
	uc, roomRepo, _ := newTestMessageUsecase(db, nil)
	a := createChatUser(t, db, "alice")

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	room, err := roomRepo.CreateGroup("g", chatdomain.RoomKindGroup, true, a)
	require.NoError(t, err)
	kept := sendAt(t, db, room.ID, a.ID, "kept", base)
	gone := sendAt(t, db, room.ID, a.ID, "gone", base.Add(time.Second))

	require.NoError(t, db.Model(&chatdomain.Message{}).Where("id = ?", gone.ID).
		Update("is_deleted", true).Error)

	assert.Equal(t, []uint{kept.ID}, messageIDs(t, uc, a, room.ID, 5, nil))

	_, err = uc.ListMessages(a, room.ID, 5, &gone.ID)
	assert.ErrorIs(t, err, ErrCursorNotFound)
}

func TestSendMessage(t *testing.T) {
	db := openTestDB(t)
	notifier := &captureNotifier{}
	uc, roomRepo, _ := newTestMessageUsecase(db, notifier)
	a := createChatUser(t, db, "alice")
	b := createChatUser(t, db, "bob")

	room, err := roomRepo.CreatePV(a, b)
	require.NoError(t, err)

	item, err := uc.SendMessage(a, room.ID, "salam")
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.Equal(t, "salam", item.Text)
	assert.Equal(t, "alice", item.Sender)
	assert.Equal(t, []uint{room.ID}, notifier.roomIDs)

	// Sending bumps the room's activity timestamp.
	got, err := roomRepo.FindByID(room.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, item.CreatedAt, got.UpdatedAt, time.Second)
}

func TestSendMessagePermissions(t *testing.T) {
	db := openTestDB(t)
	uc, roomRepo, _ := newTestMessageUsecase(db, nil)
	a := createChatUser(t, db, "alice")
	b := createChatUser(t, db, "bob")
	c := createChatUser(t, db, "carol")

	room, err := roomRepo.CreateGroup("g", chatdomain.RoomKindGroup, true, a)
	require.NoError(t, err)

	_, err = uc.SendMessage(b, room.ID, "hi")
	assert.ErrorIs(t, err, ErrNotParticipant)

	banned := chatdomain.Participant{UserID: c.ID, RoomID: room.ID, Role: chatdomain.RoleBanned}
	require.NoError(t, db.Create(&banned).Error)

	_, err = uc.SendMessage(c, room.ID, "hi")
	assert.ErrorIs(t, err, ErrCannotPost)

	_, err = uc.SendMessage(a, 999, "hi")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRecordViewIdempotent(t *testing.T) {
	db := openTestDB(t)
	uc, roomRepo, _ := newTestMessageUsecase(db, nil)
	a := createChatUser(t, db, "alice")
	b := createChatUser(t, db, "bob")

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	room, err := roomRepo.CreatePV(a, b)
	require.NoError(t, err)
	msg := sendAt(t, db, room.ID, b.ID, "salam", base)

	unread, err := uc.UnreadCount(a, room.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	require.NoError(t, uc.RecordView(a, msg.ID))
	require.NoError(t, uc.RecordView(a, msg.ID))

	unread, err = uc.UnreadCount(a, room.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)

	var views int64
	require.NoError(t, db.Model(&chatdomain.MessageView{}).
		Where("message_id = ? AND user_id = ?", msg.ID, a.ID).Count(&views).Error)
	assert.EqualValues(t, 1, views)
}

func TestRecordViewAccess(t *testing.T) {
	db := openTestDB(t)
	uc, roomRepo, _ := newTestMessageUsecase(db, nil)
	a := createChatUser(t, db, "alice")
	b := createChatUser(t, db, "bob")
	c := createChatUser(t, db, "carol")

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	room, err := roomRepo.CreatePV(a, b)
	require.NoError(t, err)
	msg := sendAt(t, db, room.ID, b.ID, "salam", base)

	assert.ErrorIs(t, uc.RecordView(c, msg.ID), ErrNotParticipant)
	assert.ErrorIs(t, uc.RecordView(a, 999), ErrMessageNotFound)
}

func TestUnreadExcludesOwnMessages(t *testing.T) {
	db := openTestDB(t)
	uc, roomRepo, _ := newTestMessageUsecase(db, nil)
	a := createChatUser(t, db, "alice")
	b := createChatUser(t, db, "bob")

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	room, err := roomRepo.CreatePV(a, b)
	require.NoError(t, err)
	sendAt(t, db, room.ID, a.ID, "mine", base)
	sendAt(t, db, room.ID, b.ID, "theirs", base.Add(time.Second))

	unread, err := uc.UnreadCount(a, room.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	unread, err = uc.UnreadCount(b, room.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)
}
