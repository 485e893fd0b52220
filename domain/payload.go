package domain

import "time"

// MessagePayload is the wire shape of a message, carrying a denormalized
// sender snapshot. Live broadcasts, hot history and archived history all
// use this one shape so clients render them with a single code path.
type MessagePayload struct {
	ID         string        `json:"id"`
	Sender     PublicProfile `json:"senderId"`
	ReceiverID string        `json:"receiverId,omitempty"`
	GroupID    string        `json:"groupId,omitempty"`
	Body       string        `json:"message"`
	Type       MessageType   `json:"messageType"`
	MediaURL   string        `json:"mediaUrl"`
	RoomID     RoomID        `json:"roomId"`
	Timestamp  time.Time     `json:"timestamp"`
	ArchivedAt *time.Time    `json:"archivedAt,omitempty"`
}
