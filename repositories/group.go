//go:generate go run go.uber.org/mock/mockgen -source=group.go -destination=../mocks/mock_group_repository.go -package=mocks
package repositories

import (
	stderrors "errors"

	"github.com/bytedance/sonic"
	"github.com/dgraph-io/badger/v4"

	"github.com/UDAVALAPATISURESH/app-chat/domain"
	"github.com/UDAVALAPATISURESH/app-chat/errors"
)

type IGroupRepository interface {
	GetGroup(id string) (domain.Group, error)
	PutGroup(group domain.Group) error
}

// GroupRepository reads group membership, the one fact this core needs.
// Group lifecycle writes belong to the external collaborator; PutGroup is
// its seeding contract.
type GroupRepository struct {
	db *badger.DB
}

func NewGroupRepository(db *badger.DB) IGroupRepository {
	return &GroupRepository{db: db}
}

type groupRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	AdminID     string   `json:"adminId"`
	Members     []string `json:"members"`
}

func (g *GroupRepository) PutGroup(group domain.Group) error {
	data, err := sonic.Marshal(groupRecord(group))
	if err != nil {
		return err
	}
	return g.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("group:"+group.ID), data)
	})
}

func (g *GroupRepository) GetGroup(id string) (domain.Group, error) {
	var record groupRecord
	err := g.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("group:" + id))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return sonic.Unmarshal(value, &record)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Group{}, errors.ErrGroupNotFound
	}
	if err != nil {
		return domain.Group{}, err
	}
	return domain.Group(record), nil
}
