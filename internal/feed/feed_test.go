package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/VitaminP8/linkfeed/graph/model"
	"github.com/VitaminP8/linkfeed/internal/apperr"
	"github.com/VitaminP8/linkfeed/internal/link"
	"github.com/VitaminP8/linkfeed/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func sortPtr(v model.Sort) *model.Sort {
	return &v
}

func newTutorialStore(t *testing.T) *mocks.MockLinkStorage {
	t.Helper()
	store := mocks.NewMockLinkStorage()
	ctx := context.Background()

	_, err := store.CreateLink(ctx, "Fullstack tutorial for GraphQL", "www.howtographql.com", nil)
	require.NoError(t, err)
	_, err = store.CreateLink(ctx, "GraphQL official website", "graphql.org", nil)
	require.NoError(t, err)
	return store
}

func mustID(t *testing.T, args Args) string {
	t.Helper()
	id, err := ID(args)
	require.NoError(t, err)
	return id
}

func linkIDs(f *model.Feed) []int {
	result := make([]int, 0, len(f.Links))
	for _, l := range f.Links {
		result = append(result, l.ID)
	}
	return result
}

func TestResolve_Filter(t *testing.T) {
	store := newTutorialStore(t)
	ctx := context.Background()

	t.Run("Filter present in both descriptions", func(t *testing.T) {
		f, err := Resolve(ctx, store, Args{Filter: strPtr("GraphQL")})
		require.NoError(t, err)
		assert.Equal(t, 2, f.Count)
		assert.Equal(t, []int{1, 2}, linkIDs(f))
	})

	t.Run("Filter present in one description", func(t *testing.T) {
		f, err := Resolve(ctx, store, Args{Filter: strPtr("official")})
		require.NoError(t, err)
		assert.Equal(t, 1, f.Count)
		assert.Equal(t, []int{2}, linkIDs(f))
	})

	t.Run("Filter matches url", func(t *testing.T) {
		f, err := Resolve(ctx, store, Args{Filter: strPtr("howtographql")})
		require.NoError(t, err)
		assert.Equal(t, 1, f.Count)
		assert.Equal(t, []int{1}, linkIDs(f))
	})

	t.Run("Absent and empty filter match everything", func(t *testing.T) {
		f, err := Resolve(ctx, store, Args{})
		require.NoError(t, err)
		assert.Equal(t, 2, f.Count)

		f, err = Resolve(ctx, store, Args{Filter: strPtr("")})
		require.NoError(t, err)
		assert.Equal(t, 2, f.Count)
	})

	t.Run("No match gives an empty, non-nil page", func(t *testing.T) {
		f, err := Resolve(ctx, store, Args{Filter: strPtr("nothing like this")})
		require.NoError(t, err)
		assert.Equal(t, 0, f.Count)
		assert.NotNil(t, f.Links)
		assert.Empty(t, f.Links)
	})
}

func TestResolve_Pagination(t *testing.T) {
	store := mocks.NewMockLinkStorage()
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		_, err := store.CreateLink(ctx, fmt.Sprintf("link %d", i), fmt.Sprintf("example.com/%d", i), nil)
		require.NoError(t, err)
	}

	// len(links) == min(take, count - skip), не меньше нуля; count не зависит от пагинации
	for _, skip := range []int{0, 1, 3, 5, 7} {
		for _, take := range []int{0, 1, 2, 5, 10} {
			t.Run(fmt.Sprintf("skip=%d take=%d", skip, take), func(t *testing.T) {
				f, err := Resolve(ctx, store, Args{Skip: intPtr(skip), Take: intPtr(take)})
				require.NoError(t, err)
				assert.Equal(t, 5, f.Count)

				want := min(take, max(5-skip, 0))
				assert.Len(t, f.Links, want)
				assert.LessOrEqual(t, len(f.Links), take)
				if want > 0 {
					assert.Equal(t, skip+1, f.Links[0].ID)
				}
			})
		}
	}

	t.Run("Skip without take returns the rest", func(t *testing.T) {
		f, err := Resolve(ctx, store, Args{Skip: intPtr(3)})
		require.NoError(t, err)
		assert.Equal(t, []int{4, 5}, linkIDs(f))
	})

	t.Run("Count reflects filter, not page", func(t *testing.T) {
		f, err := Resolve(ctx, store, Args{Filter: strPtr("link"), Skip: intPtr(1), Take: intPtr(1)})
		require.NoError(t, err)
		assert.Equal(t, 5, f.Count)
		assert.Len(t, f.Links, 1)
	})
}

func TestResolve_OrderBy(t *testing.T) {
	store := mocks.NewMockLinkStorage()
	ctx := context.Background()

	_, err := store.CreateLink(ctx, "beta", "b.example.com", nil)
	require.NoError(t, err)
	_, err = store.CreateLink(ctx, "alpha", "z.example.com", nil)
	require.NoError(t, err)
	_, err = store.CreateLink(ctx, "alpha", "a.example.com", nil)
	require.NoError(t, err)

	t.Run("Single key", func(t *testing.T) {
		f, err := Resolve(ctx, store, Args{OrderBy: []*model.LinkOrderByInput{
			{URL: sortPtr(model.SortAsc)},
		}})
		require.NoError(t, err)
		assert.Equal(t, []int{3, 1, 2}, linkIDs(f))
	})

	t.Run("Composite key, earlier entry wins", func(t *testing.T) {
		f, err := Resolve(ctx, store, Args{OrderBy: []*model.LinkOrderByInput{
			{Description: sortPtr(model.SortAsc)},
			{URL: sortPtr(model.SortDesc)},
		}})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3, 1}, linkIDs(f))
	})

	t.Run("Sort before pagination", func(t *testing.T) {
		f, err := Resolve(ctx, store, Args{
			Skip:    intPtr(1),
			Take:    intPtr(1),
			OrderBy: []*model.LinkOrderByInput{{URL: sortPtr(model.SortDesc)}},
		})
		require.NoError(t, err)
		assert.Equal(t, []int{1}, linkIDs(f))
	})
}

func TestResolve_Validation(t *testing.T) {
	store := newTutorialStore(t)
	ctx := context.Background()

	cases := map[string]Args{
		"negative skip":       {Skip: intPtr(-1)},
		"negative take":       {Take: intPtr(-1)},
		"empty orderBy entry": {OrderBy: []*model.LinkOrderByInput{{}}},
		"two fields in entry": {OrderBy: []*model.LinkOrderByInput{{URL: sortPtr(model.SortAsc), Description: sortPtr(model.SortAsc)}}},
		"nil orderBy entry":   {OrderBy: []*model.LinkOrderByInput{nil}},
	}

	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			f, err := Resolve(ctx, store, args)
			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.Nil(t, f)
		})
	}

	assert.Zero(t, store.Calls("CountLinks"), "invalid arguments must not reach the store")
}

func TestResolve_StoreErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Count failure", func(t *testing.T) {
		store := newTutorialStore(t)
		store.FailWith(errors.New("connection refused"))

		f, err := Resolve(ctx, store, Args{})
		assert.ErrorIs(t, err, apperr.ErrStore)
		assert.Contains(t, err.Error(), "connection refused")
		assert.Nil(t, f)
		assert.Zero(t, store.Calls("FindLinks"))
	})

	t.Run("Classified errors keep their kind", func(t *testing.T) {
		store := newTutorialStore(t)
		store.FailWith(apperr.Store("could not count links", errors.New("timeout")))

		_, err := Resolve(ctx, store, Args{})
		assert.Equal(t, apperr.CodeStore, apperr.Code(err))
	})
}

func TestResolve_RoundTrips(t *testing.T) {
	store := newTutorialStore(t)

	_, err := Resolve(context.Background(), store, Args{Filter: strPtr("GraphQL"), Take: intPtr(1)})
	require.NoError(t, err)

	assert.Equal(t, 1, store.Calls("CountLinks"))
	assert.Equal(t, 1, store.Calls("FindLinks"))
}

func TestID(t *testing.T) {
	t.Run("Identical arguments give identical ids", func(t *testing.T) {
		a := Args{Filter: strPtr("go"), Skip: intPtr(1), Take: intPtr(2), OrderBy: []*model.LinkOrderByInput{
			{CreatedAt: sortPtr(model.SortDesc)},
		}}
		b := Args{Filter: strPtr("go"), Skip: intPtr(1), Take: intPtr(2), OrderBy: []*model.LinkOrderByInput{
			{CreatedAt: sortPtr(model.SortDesc)},
		}}
		assert.Equal(t, mustID(t, a), mustID(t, b))
	})

	t.Run("Known format", func(t *testing.T) {
		id := mustID(t, Args{Filter: strPtr("go"), Take: intPtr(2), OrderBy: []*model.LinkOrderByInput{
			{URL: sortPtr(model.SortAsc)},
		}})
		assert.Equal(t, `main-feed:{"filter":"go","take":2,"orderBy":[{"field":"url","direction":"asc"}]}`, id)
		assert.Equal(t, "main-feed:{}", mustID(t, Args{}))
	})

	t.Run("Any differing argument gives a different id", func(t *testing.T) {
		variants := []Args{
			{},
			{Filter: strPtr("")},
			{Filter: strPtr("go")},
			{Filter: strPtr("Go")},
			{Skip: intPtr(0)},
			{Skip: intPtr(1)},
			{Take: intPtr(0)},
			{Take: intPtr(1)},
			{Skip: intPtr(1), Take: intPtr(2)},
			{Skip: intPtr(2), Take: intPtr(1)},
			{OrderBy: []*model.LinkOrderByInput{{URL: sortPtr(model.SortAsc)}}},
			{OrderBy: []*model.LinkOrderByInput{{URL: sortPtr(model.SortDesc)}}},
			{OrderBy: []*model.LinkOrderByInput{{Description: sortPtr(model.SortAsc)}}},
			{OrderBy: []*model.LinkOrderByInput{{URL: sortPtr(model.SortAsc)}, {Description: sortPtr(model.SortAsc)}}},
			{OrderBy: []*model.LinkOrderByInput{{Description: sortPtr(model.SortAsc)}, {URL: sortPtr(model.SortAsc)}}},
		}

		seen := make(map[string]int)
		for i, args := range variants {
			id := mustID(t, args)
			if j, dup := seen[id]; dup {
				t.Fatalf("variants %d and %d share id %q", j, i, id)
			}
			seen[id] = i
		}
	})

	t.Run("Feed carries the id", func(t *testing.T) {
		store := newTutorialStore(t)
		args := Args{Filter: strPtr("GraphQL")}

		f1, err := Resolve(context.Background(), store, args)
		require.NoError(t, err)
		f2, err := Resolve(context.Background(), store, args)
		require.NoError(t, err)

		assert.Equal(t, mustID(t, args), f1.ID)
		assert.Equal(t, f1.ID, f2.ID)
	})
}

func TestArgs_ListOptions(t *testing.T) {
	opts, err := Args{
		Filter: strPtr("go"),
		Skip:   intPtr(2),
		Take:   intPtr(3),
		OrderBy: []*model.LinkOrderByInput{
			{CreatedAt: sortPtr(model.SortDesc)},
			{Description: sortPtr(model.SortAsc)},
		},
	}.ListOptions()
	require.NoError(t, err)

	assert.Equal(t, "go", opts.Filter.Contains)
	assert.Equal(t, 2, opts.Skip)
	require.NotNil(t, opts.Take)
	assert.Equal(t, 3, *opts.Take)
	assert.Equal(t, []link.Order{
		{Field: link.OrderByCreatedAt, Descending: true},
		{Field: link.OrderByDescription},
	}, opts.OrderBy)
}
