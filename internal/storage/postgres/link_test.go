package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/VitaminP8/linkfeed/graph/model"
	"github.com/VitaminP8/linkfeed/internal/apperr"
	"github.com/VitaminP8/linkfeed/internal/link"
	"github.com/VitaminP8/linkfeed/models"
	"github.com/jinzhu/gorm"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func ids(links []*model.Link) []int {
	result := make([]int, 0, len(links))
	for _, l := range links {
		result = append(result, l.ID)
	}
	return result
}

// createTestUser создает тестового пользователя и возвращает его ID
func createTestUser(t *testing.T, db *gorm.DB, email string) uint {
	user := &models.User{
		Name:     "testuser",
		Email:    email,
		Password: "password123",
	}

	err := db.Create(user).Error
	require.NoError(t, err, "Failed to create test user")

	return user.ID
}

func seedLinks(t *testing.T, storage *LinkPostgresStorage) {
	t.Helper()
	ctx := context.Background()

	_, err := storage.CreateLink(ctx, "Fullstack tutorial for GraphQL", "www.howtographql.com", nil)
	require.NoError(t, err)
	_, err = storage.CreateLink(ctx, "GraphQL official website", "graphql.org", nil)
	require.NoError(t, err)
	_, err = storage.CreateLink(ctx, "Go documentation", "go.dev", nil)
	require.NoError(t, err)
}

func TestLinkPostgresStorage_CreateLink(t *testing.T) {
	ctx := context.Background()

	t.Run("Link with author", func(t *testing.T) {
		db := setupTestDB(t)
		storage := NewLinkPostgresStorage(db)
		userID := createTestUser(t, db, "author@example.com")

		l, err := storage.CreateLink(ctx, "desc", "example.com", &userID)
		require.NoError(t, err)
		assert.NotZero(t, l.ID)
		assert.Equal(t, "desc", l.Description)
		assert.Equal(t, "example.com", l.URL)
		assert.False(t, l.CreatedAt.IsZero())
		require.NotNil(t, l.PostedBy)
		assert.Equal(t, int(userID), l.PostedBy.ID)
		assert.Empty(t, l.Voters)

		// Проверяем, что ссылка действительно создалась в БД
		var row models.Link
		err = db.First(&row, l.ID).Error
		require.NoError(t, err)
		assert.Equal(t, "desc", row.Description)
	})

	t.Run("Anonymous link", func(t *testing.T) {
		db := setupTestDB(t)
		storage := NewLinkPostgresStorage(db)

		l, err := storage.CreateLink(ctx, "anon", "anon.example.com", nil)
		require.NoError(t, err)
		assert.Nil(t, l.PostedBy)
	})
}

func TestLinkPostgresStorage_FindLinks(t *testing.T) {
	db := setupTestDB(t)
	storage := NewLinkPostgresStorage(db)
	seedLinks(t, storage)
	ctx := context.Background()

	t.Run("Filter matches description or url", func(t *testing.T) {
		links, err := storage.FindLinks(ctx, link.ListOptions{
			Filter:  link.Filter{Contains: "GraphQL"},
			OrderBy: []link.Order{{Field: link.OrderByCreatedAt}},
		})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, ids(links))

		links, err = storage.FindLinks(ctx, link.ListOptions{Filter: link.Filter{Contains: "official"}})
		require.NoError(t, err)
		assert.Equal(t, []int{2}, ids(links))
	})

	t.Run("Like wildcards are matched literally", func(t *testing.T) {
		_, err := storage.CreateLink(ctx, "100% coverage", "pct.example.com", nil)
		require.NoError(t, err)
		defer db.Unscoped().Where("url = ?", "pct.example.com").Delete(&models.Link{})

		links, err := storage.FindLinks(ctx, link.ListOptions{Filter: link.Filter{Contains: "%"}})
		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, "100% coverage", links[0].Description)

		links, err = storage.FindLinks(ctx, link.ListOptions{Filter: link.Filter{Contains: "_"}})
		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("Sort by description", func(t *testing.T) {
		links, err := storage.FindLinks(ctx, link.ListOptions{
			OrderBy: []link.Order{{Field: link.OrderByDescription}},
		})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3, 2}, ids(links))

		links, err = storage.FindLinks(ctx, link.ListOptions{
			OrderBy: []link.Order{{Field: link.OrderByURL, Descending: true}},
		})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, ids(links))
	})

	t.Run("Skip and take", func(t *testing.T) {
		order := []link.Order{{Field: link.OrderByDescription}}

		links, err := storage.FindLinks(ctx, link.ListOptions{OrderBy: order, Skip: 1, Take: intPtr(1)})
		require.NoError(t, err)
		assert.Equal(t, []int{3}, ids(links))

		links, err = storage.FindLinks(ctx, link.ListOptions{OrderBy: order, Skip: 1})
		require.NoError(t, err)
		assert.Equal(t, []int{3, 2}, ids(links))

		links, err = storage.FindLinks(ctx, link.ListOptions{Take: intPtr(0)})
		require.NoError(t, err)
		assert.Empty(t, links)

		links, err = storage.FindLinks(ctx, link.ListOptions{Skip: 10})
		require.NoError(t, err)
		assert.Empty(t, links)
	})
}

func TestLinkPostgresStorage_FindLinksOrder(t *testing.T) {
	db := setupTestDB(t)
	storage := NewLinkPostgresStorage(db)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rows := []struct {
		description string
		url         string
		createdAt   time.Time
	}{
		{"beta", "b.example.com", base},
		{"alpha", "z.example.com", base.Add(time.Hour)},
		{"alpha", "a.example.com", base.Add(time.Hour)},
		{"gamma", "c.example.com", base.Add(2 * time.Hour)},
	}
	for _, r := range rows {
		l, err := storage.CreateLink(ctx, r.description, r.url, nil)
		require.NoError(t, err)
		err = db.Model(&models.Link{}).Where("id = ?", l.ID).UpdateColumn("created_at", r.createdAt).Error
		require.NoError(t, err)
	}

	t.Run("Composite key, earlier entry wins", func(t *testing.T) {
		links, err := storage.FindLinks(ctx, link.ListOptions{
			OrderBy: []link.Order{
				{Field: link.OrderByDescription},
				{Field: link.OrderByURL, Descending: true},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3, 1, 4}, ids(links))
	})

	t.Run("Sort by createdAt descending, ties by id", func(t *testing.T) {
		links, err := storage.FindLinks(ctx, link.ListOptions{
			OrderBy: []link.Order{{Field: link.OrderByCreatedAt, Descending: true}},
		})
		require.NoError(t, err)
		assert.Equal(t, []int{4, 2, 3, 1}, ids(links))
	})

	t.Run("Composite sort before pagination", func(t *testing.T) {
		links, err := storage.FindLinks(ctx, link.ListOptions{
			OrderBy: []link.Order{
				{Field: link.OrderByCreatedAt, Descending: true},
				{Field: link.OrderByURL},
			},
			Skip: 1,
			Take: intPtr(2),
		})
		require.NoError(t, err)
		assert.Equal(t, []int{3, 2}, ids(links))
	})
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: votes.link_id, votes.user_id")))

	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))
}

func TestLinkPostgresStorage_CountLinks(t *testing.T) {
	db := setupTestDB(t)
	storage := NewLinkPostgresStorage(db)
	seedLinks(t, storage)
	ctx := context.Background()

	count, err := storage.CountLinks(ctx, link.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = storage.CountLinks(ctx, link.Filter{Contains: "GraphQL"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLinkPostgresStorage_GetLinkByID(t *testing.T) {
	db := setupTestDB(t)
	storage := NewLinkPostgresStorage(db)
	seedLinks(t, storage)
	ctx := context.Background()

	t.Run("Existing link", func(t *testing.T) {
		l, err := storage.GetLinkByID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "graphql.org", l.URL)
	})

	t.Run("Missing link", func(t *testing.T) {
		l, err := storage.GetLinkByID(ctx, 404)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Nil(t, l)
	})
}

func TestLinkPostgresStorage_UpdateLink(t *testing.T) {
	db := setupTestDB(t)
	storage := NewLinkPostgresStorage(db)
	seedLinks(t, storage)
	ctx := context.Background()

	t.Run("Only description", func(t *testing.T) {
		l, err := storage.UpdateLink(ctx, 1, link.Patch{Description: strPtr("Updated")})
		require.NoError(t, err)
		assert.Equal(t, "Updated", l.Description)
		assert.Equal(t, "www.howtographql.com", l.URL)
	})

	t.Run("Only url", func(t *testing.T) {
		l, err := storage.UpdateLink(ctx, 2, link.Patch{URL: strPtr("https://graphql.org")})
		require.NoError(t, err)
		assert.Equal(t, "GraphQL official website", l.Description)
		assert.Equal(t, "https://graphql.org", l.URL)
	})

	t.Run("Empty patch", func(t *testing.T) {
		l, err := storage.UpdateLink(ctx, 3, link.Patch{})
		require.NoError(t, err)
		assert.Equal(t, "Go documentation", l.Description)
		assert.Equal(t, "go.dev", l.URL)
	})

	t.Run("Missing link", func(t *testing.T) {
		_, err := storage.UpdateLink(ctx, 404, link.Patch{URL: strPtr("x")})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestLinkPostgresStorage_DeleteLinkByID(t *testing.T) {
	db := setupTestDB(t)
	storage := NewLinkPostgresStorage(db)
	seedLinks(t, storage)
	ctx := context.Background()

	t.Run("Returns prior state", func(t *testing.T) {
		l, err := storage.DeleteLinkByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, l.ID)
		assert.Equal(t, "Fullstack tutorial for GraphQL", l.Description)

		_, err = storage.GetLinkByID(ctx, 1)
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		count, err := storage.CountLinks(ctx, link.Filter{})
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("Missing link", func(t *testing.T) {
		l, err := storage.DeleteLinkByID(ctx, 1)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Nil(t, l)
	})
}

func TestLinkPostgresStorage_Vote(t *testing.T) {
	db := setupTestDB(t)
	storage := NewLinkPostgresStorage(db)
	ctx := context.Background()

	userID := createTestUser(t, db, "voter@example.com")
	l, err := storage.CreateLink(ctx, "desc", "example.com", nil)
	require.NoError(t, err)

	t.Run("Successful vote", func(t *testing.T) {
		vote, err := storage.Vote(ctx, uint(l.ID), userID)
		require.NoError(t, err)
		assert.NotZero(t, vote.ID)
		assert.Equal(t, int(userID), vote.User.ID)
		require.Len(t, vote.Link.Voters, 1)
		assert.Equal(t, int(userID), vote.Link.Voters[0].ID)
	})

	t.Run("Second vote is rejected", func(t *testing.T) {
		_, err := storage.Vote(ctx, uint(l.ID), userID)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("Duplicate insert past the check is a validation error", func(t *testing.T) {
		// голос уже есть, вставка напрямую упирается в уникальный индекс
		vote, err := storage.createVote(uint(l.ID), userID)
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.NotErrorIs(t, err, apperr.ErrStore)
		assert.Nil(t, vote)

		var count int
		require.NoError(t, db.Model(&models.Vote{}).Where("link_id = ?", l.ID).Count(&count).Error)
		assert.Equal(t, 1, count)
	})

	t.Run("Unknown link", func(t *testing.T) {
		_, err := storage.Vote(ctx, 404, userID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("Unknown user", func(t *testing.T) {
		_, err := storage.Vote(ctx, uint(l.ID), 404)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestLinkPostgresStorage_StoreError(t *testing.T) {
	db := setupTestDB(t)
	storage := NewLinkPostgresStorage(db)
	ctx := context.Background()

	// после закрытия соединения любой запрос падает
	require.NoError(t, db.Close())

	_, err := storage.CountLinks(ctx, link.Filter{})
	assert.ErrorIs(t, err, apperr.ErrStore)

	_, err = storage.FindLinks(ctx, link.ListOptions{})
	assert.ErrorIs(t, err, apperr.ErrStore)
}
