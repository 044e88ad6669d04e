package dto

import "time"

type CreateRoomRequest struct {
	Name     string `json:"name" binding:"required"`
	Kind     string `json:"kind" binding:"required"`
	IsPublic bool   `json:"is_public"`
}

type CreatePVRequest struct {
	Username string `json:"username" binding:"required"`
}

type SendMessageRequest struct {
	Text string `json:"text" binding:"required,max=4096"`
}

// LastMessage summarizes the newest non-deleted message of a room.
type LastMessage struct {
	Text      string    `json:"text"`
	Date      time.Time `json:"date"`
	Sender    string    `json:"sender"`
	MessageID uint      `json:"message_id"`
}

// OtherUser is the peer of a private room, from the requester's side.
type OtherUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// RoomListItem is one entry of the chronological room list.
type RoomListItem struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Kind        string       `json:"kind"`
	IsGroup     bool         `json:"is_group"`
	MemberCount uint         `json:"member_count"`
	UnreadCount int64        `json:"unread_count"`
	LastMessage *LastMessage `json:"last_message,omitempty"`
	OtherUser   *OtherUser   `json:"other_user,omitempty"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type RoomListResponse struct {
	Chats []RoomListItem `json:"chats"`
}

// MessageItem is one entry of a room's message feed.
type MessageItem struct {
	ID        uint      `json:"id"`
	RoomID    uint      `json:"room_id"`
	SenderID  *uint     `json:"sender_id,omitempty"`
	Sender    string    `json:"sender,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type MessageListResponse struct {
	Messages []MessageItem `json:"messages"`
}

type RoomResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Kind        string    `json:"kind"`
	MemberCount uint      `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}
