package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/VitaminP8/linkfeed/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserMemoryStorage_RegisterUser(t *testing.T) {
	storage := NewUserMemoryStorage()
	ctx := context.Background()

	t.Run("Successful user registration", func(t *testing.T) {
		user, err := storage.RegisterUser(ctx, "alice", "alice@example.com", "password123")
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "alice", user.Name)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("Register user with duplicate email", func(t *testing.T) {
		_, err := storage.RegisterUser(ctx, "bob", "bob@example.com", "password123")
		require.NoError(t, err)

		_, err = storage.RegisterUser(ctx, "bobby", "bob@example.com", "anotherpassword")
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("Empty fields are rejected", func(t *testing.T) {
		_, err := storage.RegisterUser(ctx, "", "nobody@example.com", "password123")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestUserMemoryStorage_LoginUser(t *testing.T) {
	storage := NewUserMemoryStorage()
	ctx := context.Background()

	registered, err := storage.RegisterUser(ctx, "carol", "carol@example.com", "secret-pass")
	require.NoError(t, err)

	t.Run("Successful login", func(t *testing.T) {
		user, err := storage.LoginUser(ctx, "carol@example.com", "secret-pass")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, err := storage.LoginUser(ctx, "carol@example.com", "wrong")
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})

	t.Run("Unknown email", func(t *testing.T) {
		_, err := storage.LoginUser(ctx, "nobody@example.com", "secret-pass")
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})
}

func TestUserMemoryStorage_GetUserByID(t *testing.T) {
	storage := NewUserMemoryStorage()
	ctx := context.Background()

	registered, err := storage.RegisterUser(ctx, "dave", "dave@example.com", "password123")
	require.NoError(t, err)

	t.Run("Existing user", func(t *testing.T) {
		user, err := storage.GetUserByID(ctx, uint(registered.ID))
		require.NoError(t, err)
		assert.Equal(t, registered, user)
	})

	t.Run("Missing user", func(t *testing.T) {
		_, err := storage.GetUserByID(ctx, 999)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestUserMemoryStorage_Concurrent(t *testing.T) {
	storage := NewUserMemoryStorage()
	ctx := context.Background()

	var wg sync.WaitGroup
	emails := []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com"}
	for _, email := range emails {
		wg.Add(1)
		go func(email string) {
			defer wg.Done()
			_, err := storage.RegisterUser(ctx, "user", email, "pw")
			assert.NoError(t, err)
		}(email)
	}
	wg.Wait()

	ids := make(map[int]bool)
	for i := 1; i <= len(emails); i++ {
		u, err := storage.GetUserByID(ctx, uint(i))
		require.NoError(t, err)
		ids[u.ID] = true
	}
	assert.Len(t, ids, len(emails))
}
