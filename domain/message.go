// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/UDAVALAPATISURESH/app-chat/errors"
)

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeVideo MessageType = "video"
	MessageTypeFile  MessageType = "file"
)

// Message represents an immutable chat event.
// Exactly one of ReceiverID / GroupID is set: a message is either
// personal or group-scoped, never both, never neither.
type Message struct {
	ID         uuid.UUID
	SenderID   string
	ReceiverID string
	GroupID    string
	Body       string
	Type       MessageType
	MediaURL   string
	RoomID     RoomID
	CreatedAt  time.Time // server-assigned at persistence time
}

// Validate enforces the domain rules a message must satisfy before
// it is ever persisted.
func (m Message) Validate() error {
	if m.Body == "" && m.MediaURL == "" {
		return errors.ErrEmptyMessage
	}
	if (m.ReceiverID == "") == (m.GroupID == "") {
		return errors.ErrAmbiguousRecipient
	}
	// An image/video/file message is its media; text may carry media too,
	// but a non-text type without a media url points at nothing.
	if m.Type != "" && m.Type != MessageTypeText && m.MediaURL == "" {
		return errors.ErrMissingMedia
	}
	return nil
}

// ArchivedMessage is a Message relocated to cold storage.
type ArchivedMessage struct {
	Message
	ArchivedAt time.Time
}
