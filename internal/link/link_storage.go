package link

import (
	"context"

	"github.com/VitaminP8/linkfeed/graph/model"
)

type LinkStorage interface {
	FindLinks(ctx context.Context, opts ListOptions) ([]*model.Link, error)
	CountLinks(ctx context.Context, filter Filter) (int, error)
	GetLinkByID(ctx context.Context, id uint) (*model.Link, error)
	CreateLink(ctx context.Context, description, url string, postedByID *uint) (*model.Link, error)
	UpdateLink(ctx context.Context, id uint, patch Patch) (*model.Link, error)
	DeleteLinkByID(ctx context.Context, id uint) (*model.Link, error)
	Vote(ctx context.Context, linkID, userID uint) (*model.Vote, error)
}

// Filter отбирает ссылки, у которых description или url содержит Contains.
// Пустой Contains означает "все ссылки".
type Filter struct {
	Contains string
}

func (f Filter) Empty() bool {
	return f.Contains == ""
}

// OrderField - имя колонки, по которой разрешена сортировка
type OrderField string

const (
	OrderByDescription OrderField = "description"
	OrderByURL         OrderField = "url"
	OrderByCreatedAt   OrderField = "created_at"
)

type Order struct {
	Field      OrderField
	Descending bool
}

// ListOptions - аргументы findMany. Take == nil означает "без ограничения".
type ListOptions struct {
	Filter  Filter
	Skip    int
	Take    *int
	OrderBy []Order
}

// Patch содержит только явно переданные поля, nil - оставить как есть
type Patch struct {
	Description *string
	URL         *string
}

func (p Patch) Empty() bool {
	return p.Description == nil && p.URL == nil
}
