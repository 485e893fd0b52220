//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/UDAVALAPATISURESH/app-chat/domain"
)

// maxTimestamp is lexicographically greater than any 19-digit padded
// nanosecond timestamp, used as the reverse-scan starting point.
const maxTimestamp = "9999999999999999999"

type IMessageRepository interface {
	StoreMessage(message domain.Message) error
	GetMessages(roomID domain.RoomID, limit, offset int) ([]domain.Message, error)
	SelectOlderThan(cutoff time.Time) ([]domain.Message, error)
	DeleteMessage(message domain.Message) error
}

// MessageRepository is the hot store: append-only, recent window only.
// The ArchivalWorker relocates entries to the ArchiveRepository.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// hotKey formats keys as "msg:{room_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting per room using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using the message UUID as a collision
//     disconnector if two messages land on the same nanosecond.
func hotKey(message domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s",
		message.RoomID,
		message.CreatedAt.UnixNano(),
		message.ID,
	))
}

func (m MessageRepository) StoreMessage(message domain.Message) error {
	data, err := encodeMessage(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(hotKey(message), data)
	})
}

// GetMessages returns the newest `limit` messages of a room after skipping
// `offset`, in ascending order. The scan walks the room prefix backwards
// (newest first) and the collected slice is reversed before returning.
func (m MessageRepository) GetMessages(roomID domain.RoomID, limit, offset int) ([]domain.Message, error) {
	var byteMessages [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", roomID))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		skipped := 0
		for it.Seek(append(prefix, []byte(maxTimestamp)...)); it.ValidForPrefix(prefix); it.Next() {
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && len(byteMessages) == limit {
				break
			}
			err := it.Item().Value(func(value []byte) error {
				byteMessages = append(byteMessages, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(byteMessages))
	// Collected newest first, returned oldest first
	for i := len(byteMessages) - 1; i >= 0; i-- {
		message, err := decodeMessage(byteMessages[i])
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// SelectOlderThan scans every room and returns the messages persisted
// strictly before the cutoff. Read-only: relocation is the caller's job.
// A completed insert is either fully visible to this scan or not at all,
// Badger transactions never expose half-written values.
func (m MessageRepository) SelectOlderThan(cutoff time.Time) ([]domain.Message, error) {
	var selected []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte("msg:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				message, err := decodeMessage(value)
				if err != nil {
					return err
				}
				if message.CreatedAt.Before(cutoff) {
					selected = append(selected, message)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return selected, nil
}

// DeleteMessage removes a single message from the hot store.
// Deleting an absent key is a no-op, so replays after a crash are safe.
func (m MessageRepository) DeleteMessage(message domain.Message) error {
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(hotKey(message))
	})
}
