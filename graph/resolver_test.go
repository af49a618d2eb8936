package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/VitaminP8/linkfeed/graph/model"
	"github.com/VitaminP8/linkfeed/internal/apperr"
	"github.com/VitaminP8/linkfeed/internal/auth"
	"github.com/VitaminP8/linkfeed/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createUserContext(userID uint) context.Context {
	ctx := context.Background()
	return auth.WithUserID(ctx, userID)
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func newTestResolver() (*Resolver, *mocks.MockLinkStorage, *mocks.MockSubscriptionManager) {
	linkStore := mocks.NewMockLinkStorage()
	manager := mocks.NewMockSubscriptionManager()

	return &Resolver{
		LinkStore:           linkStore,
		UserStore:           mocks.NewMockUserStorage(),
		SubscriptionManager: manager,
		PostRequiresAuth:    true,
	}, linkStore, manager
}

func TestMutationResolver_Post(t *testing.T) {
	resolver, linkStore, manager := newTestResolver()

	t.Run("Successful post", func(t *testing.T) {
		ctx := createUserContext(123)

		l, err := resolver.Mutation().Post(ctx, "Test description", "example.com")
		require.NoError(t, err)
		assert.NotZero(t, l.ID)
		assert.Equal(t, "Test description", l.Description)
		assert.Equal(t, "example.com", l.URL)
		require.NotNil(t, l.PostedBy)
		assert.Equal(t, 123, l.PostedBy.ID)

		saved, err := linkStore.GetLinkByID(ctx, uint(l.ID))
		require.NoError(t, err)
		assert.Equal(t, l.ID, saved.ID)

		published := manager.PublishedLinks()
		require.Len(t, published, 1)
		assert.Equal(t, l.ID, published[0].ID)
	})

	t.Run("Authorization error without login", func(t *testing.T) {
		before := linkStore.Calls("CreateLink")

		l, err := resolver.Mutation().Post(context.Background(), "X", "Y")
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
		assert.Nil(t, l)
		assert.Equal(t, before, linkStore.Calls("CreateLink"), "store must not be touched")
	})

	t.Run("Validation error on empty fields", func(t *testing.T) {
		l, err := resolver.Mutation().Post(createUserContext(123), "", "example.com")
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.Nil(t, l)

		_, err = resolver.Mutation().Post(createUserContext(123), "desc", "")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("Anonymous post when login is not required", func(t *testing.T) {
		open := &Resolver{LinkStore: mocks.NewMockLinkStorage()}

		l, err := open.Mutation().Post(context.Background(), "X", "Y")
		require.NoError(t, err)
		assert.Nil(t, l.PostedBy)
	})

	t.Run("Store error is propagated", func(t *testing.T) {
		failing, store, _ := newTestResolver()
		store.FailWith(errors.New("connection refused"))

		l, err := failing.Mutation().Post(createUserContext(1), "X", "Y")
		assert.ErrorIs(t, err, apperr.ErrStore)
		assert.Nil(t, l)
	})
}

func TestMutationResolver_Update(t *testing.T) {
	resolver, linkStore, _ := newTestResolver()
	ctx := createUserContext(123)

	l, err := linkStore.CreateLink(ctx, "Original description", "original.example.com", nil)
	require.NoError(t, err)

	t.Run("Only description leaves url unchanged", func(t *testing.T) {
		updated, err := resolver.Mutation().Update(ctx, l.ID, strPtr("New description"), nil)
		require.NoError(t, err)
		assert.Equal(t, "New description", updated.Description)
		assert.Equal(t, "original.example.com", updated.URL)
	})

	t.Run("Only url leaves description unchanged", func(t *testing.T) {
		updated, err := resolver.Mutation().Update(ctx, l.ID, nil, strPtr("new.example.com"))
		require.NoError(t, err)
		assert.Equal(t, "New description", updated.Description)
		assert.Equal(t, "new.example.com", updated.URL)
	})

	t.Run("No fields is a no-op", func(t *testing.T) {
		updated, err := resolver.Mutation().Update(ctx, l.ID, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "New description", updated.Description)
		assert.Equal(t, "new.example.com", updated.URL)
	})

	t.Run("Empty string is rejected", func(t *testing.T) {
		_, err := resolver.Mutation().Update(ctx, l.ID, strPtr(""), nil)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("Missing link", func(t *testing.T) {
		_, err := resolver.Mutation().Update(ctx, 999, strPtr("x"), nil)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestMutationResolver_Delete(t *testing.T) {
	resolver, linkStore, _ := newTestResolver()
	ctx := createUserContext(123)

	l, err := linkStore.CreateLink(ctx, "To delete", "delete.example.com", nil)
	require.NoError(t, err)

	t.Run("Successfully delete link", func(t *testing.T) {
		deleted, err := resolver.Mutation().Delete(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, l.ID, deleted.ID)
		assert.Equal(t, "To delete", deleted.Description)

		_, err = linkStore.GetLinkByID(ctx, uint(l.ID))
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("Error when deleting non-existent link", func(t *testing.T) {
		deleted, err := resolver.Mutation().Delete(ctx, l.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Nil(t, deleted)

		deleted, err = resolver.Mutation().Delete(ctx, -1)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Nil(t, deleted)
	})
}

func TestMutationResolver_Vote(t *testing.T) {
	resolver, linkStore, manager := newTestResolver()
	ctx := createUserContext(7)

	l, err := linkStore.CreateLink(ctx, "Vote for me", "vote.example.com", nil)
	require.NoError(t, err)

	t.Run("Successful vote", func(t *testing.T) {
		vote, err := resolver.Mutation().Vote(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, vote.User.ID)
		assert.Equal(t, l.ID, vote.Link.ID)
		require.Len(t, vote.Link.Voters, 1)

		assert.Len(t, manager.PublishedVotes(), 1)
	})

	t.Run("Duplicate vote", func(t *testing.T) {
		_, err := resolver.Mutation().Vote(ctx, l.ID)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("Unknown link", func(t *testing.T) {
		_, err := resolver.Mutation().Vote(ctx, 999)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("Error when no authorization", func(t *testing.T) {
		_, err := resolver.Mutation().Vote(context.Background(), l.ID)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})
}

func TestMutationResolver_SignupAndLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_jwt_secret")

	resolver, _, _ := newTestResolver()
	ctx := context.Background()

	t.Run("Successfully sign up", func(t *testing.T) {
		payload, err := resolver.Mutation().Signup(ctx, "alice@example.com", "password123", "alice")
		require.NoError(t, err)
		assert.NotEmpty(t, payload.Token)
		assert.Equal(t, "alice", payload.User.Name)
		assert.Equal(t, "alice@example.com", payload.User.Email)
	})

	t.Run("Successfully login", func(t *testing.T) {
		payload, err := resolver.Mutation().Login(ctx, "alice@example.com", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, payload.Token)
		assert.Equal(t, "alice", payload.User.Name)
	})

	t.Run("Error when signing up with existing email", func(t *testing.T) {
		payload, err := resolver.Mutation().Signup(ctx, "alice@example.com", "password456", "alice2")
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.Nil(t, payload)
	})

	t.Run("Error when logging in with wrong password", func(t *testing.T) {
		payload, err := resolver.Mutation().Login(ctx, "alice@example.com", "wrongpassword")
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
		assert.Nil(t, payload)
	})
}

func TestQueryResolver_Feed(t *testing.T) {
	resolver, linkStore, _ := newTestResolver()
	ctx := context.Background()

	_, err := linkStore.CreateLink(ctx, "Fullstack tutorial for GraphQL", "www.howtographql.com", nil)
	require.NoError(t, err)
	_, err = linkStore.CreateLink(ctx, "GraphQL official website", "graphql.org", nil)
	require.NoError(t, err)

	t.Run("Filter matching both links", func(t *testing.T) {
		f, err := resolver.Query().Feed(ctx, strPtr("GraphQL"), nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, f.Count)
		assert.Len(t, f.Links, 2)
	})

	t.Run("Filter matching one link", func(t *testing.T) {
		f, err := resolver.Query().Feed(ctx, strPtr("official"), nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, f.Count)
		require.Len(t, f.Links, 1)
		assert.Equal(t, 2, f.Links[0].ID)
	})

	t.Run("Sorted and paginated", func(t *testing.T) {
		desc := model.SortDesc
		f, err := resolver.Query().Feed(ctx, nil, intPtr(0), intPtr(1), []*model.LinkOrderByInput{{URL: &desc}})
		require.NoError(t, err)
		assert.Equal(t, 2, f.Count)
		require.Len(t, f.Links, 1)
		assert.Equal(t, "www.howtographql.com", f.Links[0].URL)
	})

	t.Run("Store error fails the whole feed", func(t *testing.T) {
		linkStore.FailWith(errors.New("connection refused"))
		defer linkStore.FailWith(nil)

		f, err := resolver.Query().Feed(ctx, nil, nil, nil, nil)
		assert.ErrorIs(t, err, apperr.ErrStore)
		assert.Nil(t, f)
	})
}

func TestQueryResolver_Link(t *testing.T) {
	resolver, linkStore, _ := newTestResolver()
	ctx := context.Background()

	l, err := linkStore.CreateLink(ctx, "Single", "single.example.com", nil)
	require.NoError(t, err)

	t.Run("Successfully get link by ID", func(t *testing.T) {
		found, err := resolver.Query().Link(ctx, &l.ID)
		require.NoError(t, err)
		assert.Equal(t, l.ID, found.ID)
		assert.Equal(t, "Single", found.Description)
	})

	t.Run("Unknown or absent id resolves to null", func(t *testing.T) {
		found, err := resolver.Query().Link(ctx, intPtr(999))
		assert.NoError(t, err)
		assert.Nil(t, found)

		found, err = resolver.Query().Link(ctx, nil)
		assert.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("Store error is propagated", func(t *testing.T) {
		linkStore.FailWith(errors.New("connection refused"))
		defer linkStore.FailWith(nil)

		found, err := resolver.Query().Link(ctx, &l.ID)
		assert.ErrorIs(t, err, apperr.ErrStore)
		assert.Nil(t, found)
	})
}

func TestSubscriptionResolver_NewLink(t *testing.T) {
	resolver, _, _ := newTestResolver()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := resolver.Subscription().NewLink(ctx)
	require.NoError(t, err)

	posted, err := resolver.Mutation().Post(createUserContext(1), "Live", "live.example.com")
	require.NoError(t, err)

	select {
	case received := <-ch:
		assert.Equal(t, posted.ID, received.ID)
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for link")
	}

	// после отмены контекста канал закрывается
	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Channel was not closed after cancel")
	}
}

func TestSubscriptionResolver_NewVote(t *testing.T) {
	resolver, linkStore, _ := newTestResolver()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := resolver.Subscription().NewVote(ctx)
	require.NoError(t, err)

	l, err := linkStore.CreateLink(ctx, "Votable", "votable.example.com", nil)
	require.NoError(t, err)

	vote, err := resolver.Mutation().Vote(createUserContext(5), l.ID)
	require.NoError(t, err)

	select {
	case received := <-ch:
		assert.Equal(t, vote.ID, received.ID)
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for vote")
	}
}
