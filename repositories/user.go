//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"newsdesk/errors"
)

type IUserRepository interface {
	CreateUser(email, passwordHash, displayName string) (string, error)
	GetUserByEmail(email string) (User, error)
}

// User is the repository-level representation of an account.
type User struct {
	ID           string    `cbor:"id"`
	Email        string    `cbor:"email"`
	PasswordHash string    `cbor:"passwordHash"`
	DisplayName  string    `cbor:"displayName"`
	CreatedAt    time.Time `cbor:"createdAt"`
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

func userKey(email string) []byte {
	return []byte("user:" + email)
}

// CreateUser persists a new account keyed by email and returns the
// generated user id. The existence check and the write share a transaction
// so two concurrent signups cannot both claim the same email.
func (u *UserRepository) CreateUser(email, passwordHash, displayName string) (string, error) {
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := cbor.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := userKey(email)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		}
		return txn.Set(key, data)
	})

	return user.ID, err
}

// GetUserByEmail retrieves an account by its email key.
func (u *UserRepository) GetUserByEmail(email string) (User, error) {
	var user User

	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &user)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrRecordNotFound
	}
	if err != nil {
		return User{}, err
	}

	return user, nil
}
