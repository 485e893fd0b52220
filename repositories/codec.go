package repositories

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/UDAVALAPATISURESH/app-chat/domain"
)

// messageRecord is the stored shape of a message.
// Equivalent role to the wire payload but flattened for storage:
// only ids, no denormalized sender snapshot.
type messageRecord struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId,omitempty"`
	GroupID    string `json:"groupId,omitempty"`
	Body       string `json:"message"`
	Type       string `json:"messageType"`
	MediaURL   string `json:"mediaUrl,omitempty"`
	RoomID     string `json:"roomId"`
	CreatedAt  int64  `json:"createdAt"`
	ArchivedAt int64  `json:"archivedAt,omitempty"`
}

func encodeMessage(m domain.Message) ([]byte, error) {
	return sonic.Marshal(fromMessage(m))
}

func encodeArchived(m domain.ArchivedMessage) ([]byte, error) {
	record := fromMessage(m.Message)
	record.ArchivedAt = m.ArchivedAt.UnixNano()
	return sonic.Marshal(record)
}

func decodeMessage(data []byte) (domain.Message, error) {
	var record messageRecord
	if err := sonic.Unmarshal(data, &record); err != nil {
		return domain.Message{}, err
	}
	return toMessage(record)
}

func decodeArchived(data []byte) (domain.ArchivedMessage, error) {
	var record messageRecord
	if err := sonic.Unmarshal(data, &record); err != nil {
		return domain.ArchivedMessage{}, err
	}
	message, err := toMessage(record)
	if err != nil {
		return domain.ArchivedMessage{}, err
	}
	return domain.ArchivedMessage{
		Message:    message,
		ArchivedAt: time.Unix(0, record.ArchivedAt).UTC(),
	}, nil
}

func fromMessage(m domain.Message) messageRecord {
	return messageRecord{
		ID:         m.ID.String(),
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		GroupID:    m.GroupID,
		Body:       m.Body,
		Type:       string(m.Type),
		MediaURL:   m.MediaURL,
		RoomID:     string(m.RoomID),
		CreatedAt:  m.CreatedAt.UnixNano(),
	}
}

func toMessage(record messageRecord) (domain.Message, error) {
	parsedID, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:         parsedID,
		SenderID:   record.SenderID,
		ReceiverID: record.ReceiverID,
		GroupID:    record.GroupID,
		Body:       record.Body,
		Type:       domain.MessageType(record.Type),
		MediaURL:   record.MediaURL,
		RoomID:     domain.RoomID(record.RoomID),
		CreatedAt:  time.Unix(0, record.CreatedAt).UTC(),
	}, nil
}
