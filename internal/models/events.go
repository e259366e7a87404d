package models

import (
	"encoding/json"
	"time"
)

// Event names are the wire contract shared with existing clients and must
// not be renamed.
const (
	// Inbound
	EventJoinRoom      = "joinRoom"
	EventSendMessage   = "sendMessage"
	EventTyping        = "typing"
	EventMarkSeen      = "markSeen"
	EventDeleteMessage = "deleteMessage"

	// Outbound
	EventPreviousMessages = "previousMessages"
	EventNewMessage       = "newMessage"
	EventDisplayTyping    = "displayTyping"
	EventMessagesSeen     = "messagesSeen"
	EventMessageDeleted   = "messageDeleted"
	EventUserStatus       = "userStatus"
	EventError            = "error"
)

// Envelope frames every message on the socket in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinRoomPayload struct {
	Room string `json:"room"`
	User string `json:"user"`
}

type SendMessagePayload struct {
	Room     string `json:"room,omitempty"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver,omitempty"`
	Text     string `json:"text,omitempty"`
	Media    string `json:"media,omitempty"`
}

type TypingPayload struct {
	Room     string `json:"room"`
	User     string `json:"user"`
	IsTyping bool   `json:"isTyping"`
}

type MarkSeenPayload struct {
	Room string `json:"room"`
	User string `json:"user"`
}

type DeleteMessagePayload struct {
	MessageID string `json:"messageId"`
	User      string `json:"user"`
}

type DisplayTypingPayload struct {
	User     string `json:"user"`
	IsTyping bool   `json:"isTyping"`
}

type MessagesSeenPayload struct {
	User string `json:"user"`
}

type MessageDeletedPayload struct {
	MessageID string `json:"messageId"`
}

type UserStatusPayload struct {
	User     string     `json:"user"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
