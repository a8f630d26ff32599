package repositories

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"newsdesk/errors"
)

func newTestRepository(t *testing.T) IUserRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepository(db)
}

func TestUserRepository_CreateAndFetch(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)

	id, err := repo.CreateUser("reader@example.com", "$argon2id$fake", "Happy Panda")
	req.NoError(err)
	req.NotEmpty(id)

	user, err := repo.GetUserByEmail("reader@example.com")
	req.NoError(err)
	req.Equal(id, user.ID)
	req.Equal("reader@example.com", user.Email)
	req.Equal("$argon2id$fake", user.PasswordHash)
	req.Equal("Happy Panda", user.DisplayName)
	req.False(user.CreatedAt.IsZero())
}

func TestUserRepository_DuplicateEmailIsRejected(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)

	_, err := repo.CreateUser("reader@example.com", "hash-a", "Happy Panda")
	req.NoError(err)

	_, err = repo.CreateUser("reader@example.com", "hash-b", "Lucky Fox")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)

	// The original account is untouched.
	user, err := repo.GetUserByEmail("reader@example.com")
	req.NoError(err)
	req.Equal("hash-a", user.PasswordHash)
}

func TestUserRepository_UnknownEmail(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)

	_, err := repo.GetUserByEmail("nobody@example.com")
	req.ErrorIs(err, errors.ErrRecordNotFound)
}
