package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/VitaminP8/linkfeed/graph/model"
	"github.com/VitaminP8/linkfeed/internal/apperr"
	"github.com/VitaminP8/linkfeed/internal/link"
)

const idPrefix = "main-feed:"

// Args - аргументы запроса feed в том виде, в котором их отдает gqlgen
type Args struct {
	Filter  *string
	Skip    *int
	Take    *int
	OrderBy []*model.LinkOrderByInput
}

// Resolve строит страницу ленты: сначала count по фильтру, затем сам список.
// Count не зависит от skip/take.
func Resolve(ctx context.Context, store link.LinkStorage, args Args) (*model.Feed, error) {
	opts, err := args.ListOptions()
	if err != nil {
		return nil, err
	}

	id, err := ID(args)
	if err != nil {
		return nil, err
	}

	count, err := store.CountLinks(ctx, opts.Filter)
	if err != nil {
		return nil, apperr.Classify(err)
	}

	links, err := store.FindLinks(ctx, opts)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	if links == nil {
		links = []*model.Link{}
	}

	return &model.Feed{
		ID:    id,
		Links: links,
		Count: count,
	}, nil
}

// ListOptions проверяет аргументы и переводит их в запрос к хранилищу
func (a Args) ListOptions() (link.ListOptions, error) {
	var opts link.ListOptions

	if a.Filter != nil {
		opts.Filter.Contains = *a.Filter
	}

	if a.Skip != nil {
		if *a.Skip < 0 {
			return opts, apperr.Validation("skip must not be negative, got %d", *a.Skip)
		}
		opts.Skip = *a.Skip
	}

	if a.Take != nil {
		if *a.Take < 0 {
			return opts, apperr.Validation("take must not be negative, got %d", *a.Take)
		}
		take := *a.Take
		opts.Take = &take
	}

	for i, in := range a.OrderBy {
		entries := orderEntries(in)
		if len(entries) != 1 {
			return opts, apperr.Validation("orderBy[%d] must set exactly one field", i)
		}
		opts.OrderBy = append(opts.OrderBy, link.Order{
			Field:      entries[0].column,
			Descending: entries[0].dir == model.SortDesc,
		})
	}

	return opts, nil
}

type orderEntry struct {
	name   string
	column link.OrderField
	dir    model.Sort
}

// orderEntries раскладывает LinkOrderByInput в фиксированном порядке полей
func orderEntries(in *model.LinkOrderByInput) []orderEntry {
	if in == nil {
		return nil
	}

	var entries []orderEntry
	if in.Description != nil {
		entries = append(entries, orderEntry{"description", link.OrderByDescription, *in.Description})
	}
	if in.URL != nil {
		entries = append(entries, orderEntry{"url", link.OrderByURL, *in.URL})
	}
	if in.CreatedAt != nil {
		entries = append(entries, orderEntry{"createdAt", link.OrderByCreatedAt, *in.CreatedAt})
	}
	return entries
}

type canonicalOrder struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// Порядок полей структуры задает порядок ключей в JSON
type canonicalArgs struct {
	Filter  *string          `json:"filter,omitempty"`
	Skip    *int             `json:"skip,omitempty"`
	Take    *int             `json:"take,omitempty"`
	OrderBy []canonicalOrder `json:"orderBy,omitempty"`
}

// ID - детерминированный идентификатор страницы ленты для кеша клиента.
// Отсутствующий аргумент и аргумент с нулевым значением дают разные id.
func ID(a Args) (string, error) {
	c := canonicalArgs{
		Filter: a.Filter,
		Skip:   a.Skip,
		Take:   a.Take,
	}
	for _, in := range a.OrderBy {
		for _, e := range orderEntries(in) {
			c.OrderBy = append(c.OrderBy, canonicalOrder{Field: e.name, Direction: e.dir.String()})
		}
	}

	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("could not build feed id: %w", err)
	}
	return idPrefix + string(b), nil
}
