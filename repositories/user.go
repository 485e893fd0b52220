//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/dgraph-io/badger/v4"

	"github.com/UDAVALAPATISURESH/app-chat/domain"
	"github.com/UDAVALAPATISURESH/app-chat/errors"
)

type IUserRepository interface {
	GetUserByID(id string) (domain.User, error)
	GetUserByEmail(email string) (domain.User, error)
	PutUser(user domain.User) error
}

// UserRepository reads identities owned by the account subsystem.
// PutUser exists for that subsystem (and tests) to seed records; this
// core never creates users on its own.
type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

type userRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

func (u *UserRepository) PutUser(user domain.User) error {
	user.Email = strings.ToLower(user.Email)
	data, err := sonic.Marshal(userRecord(user))
	if err != nil {
		return err
	}
	// Stored under both keys so lookups by id (credential checks) and by
	// email (personal room resolution) stay single reads.
	return u.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte("user:id:"+user.ID), data); err != nil {
			return err
		}
		return txn.Set([]byte("user:email:"+user.Email), data)
	})
}

func (u *UserRepository) GetUserByID(id string) (domain.User, error) {
	return u.getUser("user:id:" + id)
}

func (u *UserRepository) GetUserByEmail(email string) (domain.User, error) {
	return u.getUser("user:email:" + strings.ToLower(email))
}

func (u *UserRepository) getUser(key string) (domain.User, error) {
	var record userRecord
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return sonic.Unmarshal(value, &record)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return domain.User(record), nil
}
