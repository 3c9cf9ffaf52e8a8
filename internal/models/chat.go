package models

import "time"

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageFile  MessageType = "file"
	MessageImage MessageType = "image"
)

var ValidMessageTypes = map[MessageType]bool{
	MessageText:  true,
	MessageFile:  true,
	MessageImage: true,
}

type Conversation struct {
	ID             int64     `json:"id"`
	Participant1ID int64     `json:"participant1_id"`
	Participant2ID int64     `json:"participant2_id"`
	LastMessageAt  time.Time `json:"last_message_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConversationEntry is a conversation as listed for one participant,
// with the other party's summary attached.
type ConversationEntry struct {
	Conversation
	OtherUser   ChatUser `json:"other_user"`
	UnreadCount int      `json:"unread_count"`
}

type ChatUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Message struct {
	ID             int64       `json:"id"`
	ConversationID int64       `json:"conversation_id"`
	SenderID       int64       `json:"sender_id"`
	SenderName     string      `json:"sender_name,omitempty"`
	Content        string      `json:"content"`
	MessageType    MessageType `json:"message_type"`
	FileURL        string      `json:"file_url,omitempty"`
	IsRead         bool        `json:"is_read"`
	CreatedAt      time.Time   `json:"created_at"`
}

type StartConversationRequest struct {
	OtherUserID int64 `json:"other_user_id"`
}

type SendMessageRequest struct {
	Content     string      `json:"content"`
	MessageType MessageType `json:"message_type,omitempty"`
	FileURL     string      `json:"file_url,omitempty"`
}

type MarkReadRequest struct {
	MessageIDs []int64 `json:"message_ids"`
}

type UserSearchResult struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
