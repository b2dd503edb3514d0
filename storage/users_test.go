package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadpost/models"
	"threadpost/utils"
)

func newTestUserStore(t *testing.T) *UserStorage {
	t.Helper()

	db, err := InitDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewUserStorage(db)
}

func TestCreateAndGetByEmail(t *testing.T) {
	store := newTestUserStore(t)

	user := &models.User{Name: "Alice", Email: "Alice@x.com"}
	require.NoError(t, store.Create(user, "secret"))
	assert.NotEmpty(t, user.ID)

	// Lookup folds case, stored email keeps it
	found, err := store.GetByEmail("alice@X.COM")
	require.NoError(t, err)
	assert.Equal(t, "Alice@x.com", found.Email)
	assert.Equal(t, user.ID, found.ID)
}

func TestCreateDuplicateEmail(t *testing.T) {
	store := newTestUserStore(t)

	require.NoError(t, store.Create(&models.User{Name: "A", Email: "a@x.com"}, "pw"))

	err := store.Create(&models.User{Name: "A2", Email: "A@x.com"}, "pw")
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, utils.Classify(err))
}

func TestGetByEmailNotFound(t *testing.T) {
	store := newTestUserStore(t)

	_, err := store.GetByEmail("ghost@x.com")
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, utils.Classify(err))
}

func TestSimilarEmails(t *testing.T) {
	store := newTestUserStore(t)

	for _, email := range []string{"alice@x.com", "alina@x.com", "bob@x.com"} {
		require.NoError(t, store.Create(&models.User{Email: email}, "pw"))
	}

	similar, err := store.SimilarEmails("ali", 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice@x.com", "alina@x.com"}, similar)

	// Fragment matching is case-insensitive
	similar, err = store.SimilarEmails("ALI", 3)
	require.NoError(t, err)
	assert.Len(t, similar, 2)

	similar, err = store.SimilarEmails("zzz", 3)
	require.NoError(t, err)
	assert.Empty(t, similar)
}

func TestAuthenticate(t *testing.T) {
	store := newTestUserStore(t)

	require.NoError(t, store.Create(&models.User{Email: "a@x.com"}, "hunter2"))

	user, err := store.Authenticate("A@x.com", "hunter2")
	require.NoError(t, err)
	assert.False(t, user.LastLoginAt.IsZero())

	_, err = store.Authenticate("a@x.com", "wrong")
	require.Error(t, err)

	_, err = store.Authenticate("ghost@x.com", "hunter2")
	require.Error(t, err)
}
