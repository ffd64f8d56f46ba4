package core

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dkeye/RoomChat/internal/domain"
)

// Inbound event types.
const (
	EventJoinRoom    = "join-room"
	EventChatMessage = "chat-message"
	EventLeaveRoom   = "leave-room"
	EventPing        = "ping"
)

// Outbound event types. chat-message is shared with the inbound side.
const (
	EventJoinedRoom    = "joined-room"
	EventRoomFull      = "room-full"
	EventSystemMessage = "system-message"
	EventLeftRoom      = "left-room"
	EventPong          = "pong"
)

const (
	MsgRoomCodeRequired = "Room code is required."
	msgJoinedFormat     = "%s joined the room."
	msgLeftFormat       = "%s left the room."
)

// Envelope carries only the discriminator of an inbound frame.
type Envelope struct {
	Type string `json:"type"`
}

type JoinRequest struct {
	RoomCode string `json:"roomCode"`
	Username string `json:"username,omitempty"`
	// MaxMembers is kept raw so both numbers and numeric strings are accepted.
	MaxMembers json.RawMessage `json:"maxMembers,omitempty"`
}

type ChatRequest struct {
	RoomCode string `json:"roomCode,omitempty"`
	Message  string `json:"message"`
}

// looseString decodes any JSON scalar as text. Numbers and true keep their
// literal form; false, zero, null and composite values decode to "".
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*s = ""
		return nil
	}
	switch b[0] {
	case '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
	case 'n', 'f', '{', '[':
		*s = ""
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err == nil && f == 0 {
			*s = ""
			return nil
		}
		*s = looseString(b)
	}
	return nil
}

func (r *JoinRequest) UnmarshalJSON(b []byte) error {
	var aux struct {
		RoomCode   looseString     `json:"roomCode"`
		Username   looseString     `json:"username"`
		MaxMembers json.RawMessage `json:"maxMembers"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = JoinRequest{RoomCode: string(aux.RoomCode), Username: string(aux.Username), MaxMembers: aux.MaxMembers}
	return nil
}

func (r *ChatRequest) UnmarshalJSON(b []byte) error {
	var aux struct {
		RoomCode looseString `json:"roomCode"`
		Message  looseString `json:"message"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = ChatRequest{RoomCode: string(aux.RoomCode), Message: string(aux.Message)}
	return nil
}

type RoomEvent struct {
	Type       string          `json:"type"`
	RoomCode   domain.RoomCode `json:"roomCode"`
	MaxMembers int             `json:"maxMembers"`
}

type SystemMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ChatMessage struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Message  string `json:"message"`
	Time     string `json:"time"`
}

type LeftRoom struct {
	Type     string          `json:"type"`
	RoomCode domain.RoomCode `json:"roomCode"`
}

type Pong struct {
	Type string `json:"type"`
}

func NewJoinedRoom(room domain.Room) RoomEvent {
	return RoomEvent{Type: EventJoinedRoom, RoomCode: room.Code, MaxMembers: room.Capacity}
}

func NewRoomFull(room domain.Room) RoomEvent {
	return RoomEvent{Type: EventRoomFull, RoomCode: room.Code, MaxMembers: room.Capacity}
}

func NewSystemMessage(text string) SystemMessage {
	return SystemMessage{Type: EventSystemMessage, Text: text}
}

func NewJoinedNotice(name string) SystemMessage {
	return NewSystemMessage(fmt.Sprintf(msgJoinedFormat, name))
}

func NewLeftNotice(name string) SystemMessage {
	return NewSystemMessage(fmt.Sprintf(msgLeftFormat, name))
}

func NewChatMessage(username, text, at string) ChatMessage {
	return ChatMessage{Type: EventChatMessage, Username: username, Message: text, Time: at}
}

func NewLeftRoom(code domain.RoomCode) LeftRoom {
	return LeftRoom{Type: EventLeftRoom, RoomCode: code}
}

func NewPong() Pong { return Pong{Type: EventPong} }
