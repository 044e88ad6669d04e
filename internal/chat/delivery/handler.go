package delivery

import (
	"errors"
	"net/http"
	"strconv"

	authdelivery "hoosha-backend/internal/auth/delivery"
	authdto "hoosha-backend/internal/auth/dto"
	chatdto "hoosha-backend/internal/chat/dto"
	"hoosha-backend/internal/chat/usecase"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	roomUsecase    usecase.RoomUsecase
	messageUsecase usecase.MessageUsecase
}

func NewChatHandler(roomUsecase usecase.RoomUsecase, messageUsecase usecase.MessageUsecase) *ChatHandler {
	return &ChatHandler{
		roomUsecase:    roomUsecase,
		messageUsecase: messageUsecase,
	}
}

// GetChatRooms handles GET /chatrooms/:page_size[/:last_chat_room_id].
func (h *ChatHandler) GetChatRooms(c *gin.Context) {
	user := authdelivery.UserFromContext(c)

	pageSize, ok := h.positiveIntParam(c, "page_size",
		"تعداد چت مورد درخواست باید عدد صحیح مثبت باشد !",
		"page_size must be a positive integer !")
	if !ok {
		return
	}

	var lastRoomID *uint
	if raw := c.Param("last_chat_room_id"); raw != "" {
		id, ok := h.positiveIntParam(c, "last_chat_room_id",
			"آیدی آخرین چت مورد درخواست باید عدد صحیح مثبت باشد !",
			"last_chat_room_id must be a positive integer !")
		if !ok {
			return
		}
		lastRoomID = &id
	}

	items, err := h.roomUsecase.ListRooms(user, int(pageSize), lastRoomID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, chatdto.RoomListResponse{Chats: items})
}

// GetMessages handles GET /chats/:chat_id/messages/:page_size[/:last_ms_id].
func (h *ChatHandler) GetMessages(c *gin.Context) {
	user := authdelivery.UserFromContext(c)

	chatID, ok := h.positiveIntParam(c, "chat_id",
		"آیدی چت روم مورد درخواست باید عدد صحیح مثبت باشد !",
		"chat_id must be a positive integer !")
	if !ok {
		return
	}

	pageSize, ok := h.positiveIntParam(c, "page_size",
		"تعداد پیام مورد درخواست باید عدد صحیح مثبت باشد !",
		"page_size must be a positive integer !")
	if !ok {
		return
	}

	var lastMessageID *uint
	if raw := c.Param("last_ms_id"); raw != "" {
		id, ok := h.positiveIntParam(c, "last_ms_id",
			"آیدی آخرین پیام مورد درخواست باید عدد صحیح مثبت باشد !",
			"last_ms_id must be a positive integer !")
		if !ok {
			return
		}
		lastMessageID = &id
	}

	items, err := h.messageUsecase.ListMessages(user, chatID, int(pageSize), lastMessageID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, chatdto.MessageListResponse{Messages: items})
}

// CreateChatRoom handles POST /chatrooms (group/channel/broadcast).
func (h *ChatHandler) CreateChatRoom(c *gin.Context) {
	user := authdelivery.UserFromContext(c)

	var req chatdto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, authdto.NewErrors(
			"نام و نوع چت روم الزامی است!",
			"Room name and kind are required!",
		))
		return
	}

	room, err := h.roomUsecase.CreateGroup(user, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, room)
}

// CreatePVChat handles POST /chatrooms/pv.
func (h *ChatHandler) CreatePVChat(c *gin.Context) {
	user := authdelivery.UserFromContext(c)

	var req chatdto.CreatePVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, authdto.NewErrors(
			"نام کاربری مخاطب الزامی است!",
			"Target username is required!",
		))
		return
	}

	room, err := h.roomUsecase.CreatePV(user, req.Username)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, room)
}

// JoinChatRoom handles POST /chats/:chat_id/join.
func (h *ChatHandler) JoinChatRoom(c *gin.Context) {
	user := authdelivery.UserFromContext(c)

	chatID, ok := h.positiveIntParam(c, "chat_id",
		"آیدی چت روم مورد درخواست باید عدد صحیح مثبت باشد !",
		"chat_id must be a positive integer !")
	if !ok {
		return
	}

	created, err := h.roomUsecase.Join(user, chatID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if created {
		c.JSON(http.StatusCreated, gin.H{"status": "joined"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "already_joined"})
}

// SendMessage handles POST /chats/:chat_id/messages.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	user := authdelivery.UserFromContext(c)

	chatID, ok := h.positiveIntParam(c, "chat_id",
		"آیدی چت روم مورد درخواست باید عدد صحیح مثبت باشد !",
		"chat_id must be a positive integer !")
	if !ok {
		return
	}

	var req chatdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, authdto.NewErrors(
			"متن پیام الزامی است!",
			"Message text is required!",
		))
		return
	}

	item, err := h.messageUsecase.SendMessage(user, chatID, req.Text)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// RecordView handles POST /messages/:message_id/view.
func (h *ChatHandler) RecordView(c *gin.Context) {
	user := authdelivery.UserFromContext(c)

	messageID, ok := h.positiveIntParam(c, "message_id",
		"آیدی پیام مورد درخواست باید عدد صحیح مثبت باشد !",
		"message_id must be a positive integer !")
	if !ok {
		return
	}

	if err := h.messageUsecase.RecordView(user, messageID); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "viewed"})
}

// positiveIntParam parses a path parameter that must be a positive integer.
func (h *ChatHandler) positiveIntParam(c *gin.Context, name, faMsg, enMsg string) (uint, bool) {
	raw := c.Param(name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		c.JSON(http.StatusBadRequest, authdto.NewErrors(faMsg, enMsg))
		return 0, false
	}
	return uint(value), true
}

// writeError maps usecase errors to HTTP statuses and bilingual payloads.
func (h *ChatHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidPageSize):
		c.JSON(http.StatusBadRequest, authdto.NewErrors(
			"تعداد مورد درخواست باید مثبت باشد !",
			"page_size must be greater than 0 !",
		))
	case errors.Is(err, usecase.ErrInvalidKind):
		c.JSON(http.StatusBadRequest, authdto.NewErrors(
			"نوع چت روم معتبر نیست !",
			"Room kind is not valid !",
		))
	case errors.Is(err, usecase.ErrSelfChat):
		c.JSON(http.StatusBadRequest, authdto.NewErrors(
			"امکان ایجاد چت خصوصی با خودتان وجود ندارد !",
			"You cannot open a private chat with yourself !",
		))
	case errors.Is(err, usecase.ErrCursorNotFound):
		c.JSON(http.StatusNotFound, authdto.NewErrors(
			"پیام پیدا نشد !",
			"cursor not found !",
		))
	case errors.Is(err, usecase.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, authdto.NewErrors(
			"چت پیدا نشد !",
			"chat not found !",
		))
	case errors.Is(err, usecase.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, authdto.NewErrors(
			"پیام پیدا نشد !",
			"message not found !",
		))
	case errors.Is(err, usecase.ErrUserNotFound):
		c.JSON(http.StatusNotFound, authdto.NewErrors(
			"کاربر پیدا نشد !",
			"user not found !",
		))
	case errors.Is(err, usecase.ErrNotParticipant):
		c.JSON(http.StatusForbidden, authdto.NewErrors(
			"شما به این چت دسترسی ندارید !",
			"You do not have access to this chat !",
		))
	case errors.Is(err, usecase.ErrCannotPost):
		c.JSON(http.StatusForbidden, authdto.NewErrors(
			"شما اجازه ارسال پیام در این چت را ندارید !",
			"You are not allowed to post in this chat !",
		))
	case errors.Is(err, usecase.ErrCannotJoin):
		c.JSON(http.StatusForbidden, authdto.NewErrors(
			"امکان عضویت در این چت وجود ندارد !",
			"Cannot join this chat !",
		))
	case errors.Is(err, usecase.ErrChatExists):
		c.JSON(http.StatusConflict, authdto.NewErrors(
			"چت خصوصی با این کاربر از قبل وجود دارد !",
			"A private chat with this user already exists !",
		))
	default:
		c.JSON(http.StatusInternalServerError, authdto.NewErrors(
			"خطایی در پردازش درخواست رخ داد!",
			"An error occurred while processing the request!",
		))
	}
}
