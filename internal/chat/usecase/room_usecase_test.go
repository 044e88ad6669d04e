package usecase

import (
	"fmt"
	"testing"
	"time"

	authdomain "hoosha-backend/internal/auth/domain"
	authrepo "hoosha-backend/internal/auth/repository"
	chatdomain "hoosha-backend/internal/chat/domain"
	chatdto "hoosha-backend/internal/chat/dto"
	"hoosha-backend/internal/chat/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&authdomain.Role{},
		&authdomain.User{},
		&chatdomain.Room{},
		&chatdomain.Participant{},
		&chatdomain.Message{},
		&chatdomain.MessageView{},
	))
	return db
}

func createChatUser(t *testing.T, db *gorm.DB, username string) *authdomain.User {
	t.Helper()
	role := authdomain.Role{Name: "normal", MaxSessions: 2}
	require.NoError(t, db.Where(authdomain.Role{Name: "normal"}).FirstOrCreate(&role).Error)

	user := &authdomain.User{
		Username:         username,
		Email:            username + "@example.com",
		Password:         "x",
		Phone:            "0912" + username,
		FullName:         "Test " + username,
		RoleID:           role.ID,
		Role:             role,
		IsActive:         true,
		MessagingEnabled: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newTestRoomUsecase(db *gorm.DB) (RoomUsecase, repository.RoomRepository, repository.MessageRepository) {
	roomRepo := repository.NewRoomRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	return NewRoomUsecase(roomRepo, messageRepo, authrepo.NewUserRepository(db)), roomRepo, messageRepo
}

// sendAt inserts a message with a fixed timestamp, bumping the room like a
// real send would.
func sendAt(t *testing.T, db *gorm.DB, roomID, senderID uint, text string, at time.Time) *chatdomain.Message {
	t.Helper()
	m := &chatdomain.Message{RoomID: roomID, SenderID: &senderID, Text: text, CreatedAt: at}
	require.NoError(t, repository.NewMessageRepository(db).Create(m))
	return m
}

func touchRoom(t *testing.T, db *gorm.DB, roomID uint, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(&chatdomain.Room{}).Where("id = ?", roomID).
		Update("updated_at", at).Error)
}

func listedIDs(items []chatdto.RoomListItem) []uint {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestListRoomsOrdersByActivity(t *testing.T) {
	db := openTestDB(t)
	uc, roomRepo, _ := newTestRoomUsecase(db)
	a := createChatUser(t, db, "alice")
	b := createChatUser(t, db, "bob")
	c := createChatUser(t, db, "carol")

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	r1, err := roomRepo.CreateGroup("g1", chatdomain.RoomKindGroup, true, a)
	require.NoError(t, err)
	r2, err := roomRepo.CreatePV(a, b)
	require.NoError(t, err)
	r3, err := roomRepo.CreateGroup("g2", chatdomain.RoomKindGroup, true, a)
	require.NoError(t, err)
	r4, err := roomRepo.CreatePV(a, c)
	require.NoError(t, err)

	sendAt(t, db, r1.ID, b.ID, "first", base.Add(10*time.Second))
	sendAt(t, db, r2.ID, b.ID, "second", base.Add(30*time.Second))
	touchRoom(t, db, r3.ID, base.Add(20*time.Second))
	sendAt(t, db, r4.ID, c.ID, "third", base.Add(5*time.Second))

	full, err := uc.ListRooms(a, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{r2.ID, r3.ID, r1.ID, r4.ID}, listedIDs(full))

	// Walking page by page must reproduce the full listing exactly.
	page1, err := uc.ListRooms(a, 2, nil)
	require.NoError(t, err)
	require.Len(t, page1, 2)

	cursor := page1[len(page1)-1].ID
	page2, err := uc.ListRooms(a, 2, &cursor)
	require.NoError(t, err)
	require.Len(t, page2, 2)

	cursor = page2[len(page2)-1].ID
	page3, err := uc.ListRooms(a, 2, &cursor)
	require.NoError(t, err)
	assert.Empty(t, page3)

	assert.Equal(t, listedIDs(full), append(listedIDs(page1), listedIDs(page2)...))
}

func TestListRoomsNewMessageBumpsRoom(t *testing.T) {
	db := openTestDB(t)
	uc, roomRepo, _ := newTestRoomUsecase(db)
	a := createChatUser(t, db, "alice")
	b := createChatUser(t, db, "bob")

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	r1, err := roomRepo.CreatePV(a, b)
	require.NoError(t, err)
	r2, err := roomRepo.CreateGroup("g1", chatdomain.RoomKindGroup, true, a)
	require.NoError(t, err)

	sendAt(t, db, r1.ID, b.ID, "older", base.Add(time.Second))
	touchRoom(t, db, r2.ID, base)

	items, err := uc.ListRooms(a, 10, nil)
	require.NoError(t, err)
	require.NotEmpty(t, items)
	assert.Equal(t, r1.ID, items[0].ID)

	sendAt(t, db, r2.ID, a.ID, "newest", base.Add(time.Minute))

	items, err = uc.ListRooms(a, 10, nil)
	require.NoError(t, err)
	require.NotEmpty(t, items)
	assert.Equal(t, r2.ID, items[0].ID)
}

func TestListRoomsValidation(t *testing.T) {
	db := openTestDB(t)
	uc, _, _ := newTestRoomUsecase(db)
	a := createChatUser(t, db, "alice")

	_, err := uc.ListRooms(a, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidPageSize)

	_, err = uc.ListRooms(a, -3, nil)
	assert.ErrorIs(t, err, ErrInvalidPageSize)

	unknown := uint(999)
	_, err = uc.ListRooms(a, 5, &unknown)
	assert.ErrorIs(t, err, ErrCursorNotFound)
}

func TestListRoomsCursorRequiresMembership(t *testing.T) {
	db := openTestDB(t)
	uc, roomRepo, _ := newTestRoomUsecase(db)
	a := createChatUser(t, db, "alice")
	b := createChatUser(t, db, "bob")
	c := createChatUser(t, db, "carol")

	other, err := roomRepo.CreatePV(b, c)
	require.NoError(t, err)

	// A room the requester does not participate in cannot anchor a page.
	_, err = uc.ListRooms(a, 5, &other.ID)
	assert.ErrorIs(t, err, ErrCursorNotFound)
}

func TestListRoomsPVDetails(t *testing.T) {
	db := openTestDB(t)
	uc, roomRepo, messageRepo := newTestRoomUsecase(db)
	a := createChatUser(t, db, "alice")
	b := createChatUser(t, db, "bob")

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	room, err := roomRepo.CreatePV(a, b)
	require.NoError(t, err)
	msg := sendAt(t, db, room.ID, b.ID, "salam", base)

	items, err := uc.ListRooms(a, 10, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, chatdomain.RoomKindPrivate, item.Kind)
	assert.False(t, item.IsGroup)
	assert.EqualValues(t, 1, item.UnreadCount)
	require.NotNil(t, item.LastMessage)
	assert.Equal(t, "salam", item.LastMessage.Text)
	assert.Equal(t, "bob", item.LastMessage.Sender)
	require.NotNil(t, item.OtherUser)
	assert.Equal(t, b.ID, item.OtherUser.ID)

	require.NoError(t, messageRepo.RecordView(msg.ID, a.ID))

	items, err = uc.ListRooms(a, 10, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, 0, items[0].UnreadCount)
}

func TestCreatePV(t *testing.T) {
	db := openTestDB(t)
	uc, _, _ := newTestRoomUsecase(db)
	a := createChatUser(t, db, "alice")
	createChatUser(t, db, "bob")

	room, err := uc.CreatePV(a, "bob")
	require.NoError(t, err)
	assert.Equal(t, chatdomain.RoomKindPrivate, room.Kind)
	assert.EqualValues(t, 2, room.MemberCount)

	var participants int64
	require.NoError(t, db.Model(&chatdomain.Participant{}).
		Where("room_id = ?", room.ID).Count(&participants).Error)
	assert.EqualValues(t, 2, participants)

	_, err = uc.CreatePV(a, "bob")
	assert.ErrorIs(t, err, ErrChatExists)
}

func TestCreatePVRejectsSelf(t *testing.T) {
	db := openTestDB(t)
	uc, _, _ := newTestRoomUsecase(db)
	a := createChatUser(t, db, "alice")

	_, err := uc.CreatePV(a, "alice")
	assert.ErrorIs(t, err, ErrSelfChat)
}

func TestCreatePVUnavailableTarget(t *testing.T) {
	db := openTestDB(t)
	uc, _, _ := newTestRoomUsecase(db)
	a := createChatUser(t, db, "alice")
	b := createChatUser(t, db, "bob")

	_, err := uc.CreatePV(a, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, db.Model(b).Update("messaging_enabled", false).Error)
	_, err = uc.CreatePV(a, "bob")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreatePVPairKeyRace(t *testing.T) {
	db := openTestDB(t)
	_, roomRepo, _ := newTestRoomUsecase(db)
	a := createChatUser(t, db, "alice")
	b := createChatUser(t, db, "bob")

	_, err := roomRepo.CreatePV(a, b)
	require.NoError(t, err)

	// The loser of a concurrent create hits the pair key unique index.
	_, err = roomRepo.CreatePV(b, a)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCreateGroupValidatesKind(t *testing.T) {
	db := openTestDB(t)
	uc, _, _ := newTestRoomUsecase(db)
	a := createChatUser(t, db, "alice")

	_, err := uc.CreateGroup(a, &chatdto.CreateRoomRequest{Name: "g", Kind: "XX"})
	assert.ErrorIs(t, err, ErrInvalidKind)

	room, err := uc.CreateGroup(a, &chatdto.CreateRoomRequest{Name: "g", Kind: chatdomain.RoomKindChannel, IsPublic: true})
	require.NoError(t, err)
	assert.Equal(t, chatdomain.RoomKindChannel, room.Kind)
}

func TestJoin(t *testing.T) {
	db := openTestDB(t)
	uc, roomRepo, _ := newTestRoomUsecase(db)
	a := createChatUser(t, db, "alice")
	b := createChatUser(t, db, "bob")

	public, err := roomRepo.CreateGroup("open", chatdomain.RoomKindGroup, true, a)
	require.NoError(t, err)
	private, err := roomRepo.CreateGroup("closed", chatdomain.RoomKindGroup, false, a)
	require.NoError(t, err)

	created, err := uc.Join(b, public.ID)
	require.NoError(t, err)
	assert.True(t, created)

	// Joining again is a no-op and must not inflate the member count.
	created, err = uc.Join(b, public.ID)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := roomRepo.FindByID(public.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.MemberCount)

	_, err = uc.Join(b, private.ID)
	assert.ErrorIs(t, err, ErrCannotJoin)

	_, err = uc.Join(b, 999)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
