//go:generate go run go.uber.org/mock/mockgen -source=archive.go -destination=../mocks/mock_archive_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/UDAVALAPATISURESH/app-chat/domain"
)

type IArchiveRepository interface {
	ArchiveMessage(message domain.Message, archivedAt time.Time) error
	GetArchivedMessages(roomID domain.RoomID, limit int) ([]domain.ArchivedMessage, error)
}

// ArchiveRepository is the cold store. Keys are derived from the original
// message (room, creation time, id), so archiving the same message twice
// overwrites one entry instead of duplicating it. That idempotency is what
// makes the copy-then-delete relocation crash-safe.
type ArchiveRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewArchiveRepository(db *badger.DB, log *slog.Logger) ArchiveRepository {
	return ArchiveRepository{db: db, log: log}
}

func coldKey(message domain.Message) []byte {
	return []byte(fmt.Sprintf("arch:%s:%019d:%s",
		message.RoomID,
		message.CreatedAt.UnixNano(),
		message.ID,
	))
}

func (a ArchiveRepository) ArchiveMessage(message domain.Message, archivedAt time.Time) error {
	data, err := encodeArchived(domain.ArchivedMessage{Message: message, ArchivedAt: archivedAt})
	if err != nil {
		return err
	}
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Set(coldKey(message), data)
	})
}

// GetArchivedMessages returns the most recent `limit` archived messages of
// a room in ascending order, mirroring the hot history contract.
func (a ArchiveRepository) GetArchivedMessages(roomID domain.RoomID, limit int) ([]domain.ArchivedMessage, error) {
	var byteMessages [][]byte
	err := a.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("arch:%s:", roomID))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(append(prefix, []byte(maxTimestamp)...)); it.ValidForPrefix(prefix); it.Next() {
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

	messages := make([]domain.ArchivedMessage, 0, len(byteMessages))
	for i := len(byteMessages) - 1; i >= 0; i-- {
		message, err := decodeArchived(byteMessages[i])
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}
