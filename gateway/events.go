package gateway

import (
	"encoding/json"

	"github.com/UDAVALAPATISURESH/app-chat/domain"
)

// Inbound events
const (
	eventJoinRoom    = "join_room"
	eventLeaveRoom   = "leave_room"
	eventJoinGroup   = "join_group"
	eventLeaveGroup  = "leave_group"
	eventSendMessage = "send_personal_message"
	eventSendGroup   = "send_group_message"
)

// Outbound events
const (
	eventRoomJoined  = "room_joined"
	eventGroupJoined = "group_joined"
	eventNewMessage  = "new_message"
	eventError       = "error"
)

type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outboundEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type joinRoomRequest struct {
	OtherUserEmail string `json:"otherUserEmail" validate:"required,email"`
}

type joinGroupRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type leaveRoomRequest struct {
	RoomID string `json:"roomId" validate:"required"`
}

type leaveGroupRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

// sendMessageRequest covers both personal and group sends; the broker
// enforces that exactly one recipient field is set.
type sendMessageRequest struct {
	ReceiverID  string `json:"receiverId"`
	GroupID     string `json:"groupId"`
	Message     string `json:"message"`
	MessageType string `json:"messageType" validate:"omitempty,oneof=text image video file"`
	MediaURL    string `json:"mediaUrl"`
	RoomID      string `json:"roomId" validate:"required"`
}

type roomJoinedPayload struct {
	RoomID    domain.RoomID        `json:"roomId"`
	OtherUser domain.PublicProfile `json:"otherUser"`
}

type groupJoinedPayload struct {
	RoomID domain.RoomID `json:"roomId"`
	Group  groupSnapshot `json:"group"`
}

type groupSnapshot struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	AdminID     string   `json:"adminId"`
	Members     []string `json:"members"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type messagesResponse struct {
	Messages []domain.MessagePayload `json:"messages"`
}
