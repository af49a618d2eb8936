package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/VitaminP8/linkfeed/graph/model"
	"github.com/VitaminP8/linkfeed/internal/apperr"
	"github.com/VitaminP8/linkfeed/internal/link"
)

type userLookup interface {
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
}

type linkRecord struct {
	id          uint
	description string
	url         string
	createdAt   time.Time
	postedByID  *uint
}

type voteRecord struct {
	id     uint
	linkID uint
	userID uint
}

type LinkMemoryStorage struct {
	mu         sync.Mutex
	links      []*linkRecord // в порядке создания
	votes      []voteRecord
	nextID     uint
	nextVoteID uint
	users      userLookup // для postedBy и voters (может быть nil)
	now        func() time.Time
}

func NewLinkMemoryStorage(users userLookup) *LinkMemoryStorage {
	return &LinkMemoryStorage{
		nextID:     1,
		nextVoteID: 1,
		users:      users,
		now:        time.Now,
	}
}

func matches(r *linkRecord, f link.Filter) bool {
	if f.Empty() {
		return true
	}
	return strings.Contains(r.description, f.Contains) || strings.Contains(r.url, f.Contains)
}

func compareBy(a, b *linkRecord, field link.OrderField) int {
	switch field {
	case link.OrderByDescription:
		return strings.Compare(a.description, b.description)
	case link.OrderByURL:
		return strings.Compare(a.url, b.url)
	case link.OrderByCreatedAt:
		return a.createdAt.Compare(b.createdAt)
	}
	return 0
}

func (s *LinkMemoryStorage) CountLinks(ctx context.Context, filter link.Filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, r := range s.links {
		if matches(r, filter) {
			count++
		}
	}
	return count, nil
}

func (s *LinkMemoryStorage) FindLinks(ctx context.Context, opts link.ListOptions) ([]*model.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found []*linkRecord
	for _, r := range s.links {
		if matches(r, opts.Filter) {
			found = append(found, r)
		}
	}

	// стабильная сортировка: при равных ключах остается порядок создания (то есть по id)
	if len(opts.OrderBy) > 0 {
		sort.SliceStable(found, func(i, j int) bool {
			for _, o := range opts.OrderBy {
				c := compareBy(found[i], found[j], o.Field)
				if c == 0 {
					continue
				}
				if o.Descending {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if opts.Skip >= len(found) {
		return []*model.Link{}, nil
	}
	end := len(found)
	if opts.Take != nil && opts.Skip+*opts.Take < end {
		end = opts.Skip + *opts.Take
	}
	page := found[opts.Skip:end]

	results := make([]*model.Link, 0, len(page))
	for _, r := range page {
		results = append(results, s.toModel(ctx, r))
	}
	return results, nil
}

func (s *LinkMemoryStorage) GetLinkByID(ctx context.Context, id uint) (*model.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, _, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return s.toModel(ctx, r), nil
}

func (s *LinkMemoryStorage) CreateLink(ctx context.Context, description, url string, postedByID *uint) (*model.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := &linkRecord{
		id:          s.nextID,
		description: description,
		url:         url,
		createdAt:   s.now(),
	}
	if postedByID != nil {
		id := *postedByID
		r.postedByID = &id
	}
	s.nextID++

	s.links = append(s.links, r)
	return s.toModel(ctx, r), nil
}

func (s *LinkMemoryStorage) UpdateLink(ctx context.Context, id uint, patch link.Patch) (*model.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, _, err := s.find(id)
	if err != nil {
		return nil, err
	}

	if patch.Description != nil {
		r.description = *patch.Description
	}
	if patch.URL != nil {
		r.url = *patch.URL
	}
	return s.toModel(ctx, r), nil
}

func (s *LinkMemoryStorage) DeleteLinkByID(ctx context.Context, id uint) (*model.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, idx, err := s.find(id)
	if err != nil {
		return nil, err
	}
	prior := s.toModel(ctx, r)

	s.links = append(s.links[:idx], s.links[idx+1:]...)

	votes := s.votes[:0]
	for _, v := range s.votes {
		if v.linkID != id {
			votes = append(votes, v)
		}
	}
	s.votes = votes

	return prior, nil
}

func (s *LinkMemoryStorage) Vote(ctx context.Context, linkID, userID uint) (*model.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, _, err := s.find(linkID)
	if err != nil {
		return nil, err
	}

	voter, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, v := range s.votes {
		if v.linkID == linkID && v.userID == userID {
			return nil, apperr.Validation("user %d already voted for link %d", userID, linkID)
		}
	}

	v := voteRecord{id: s.nextVoteID, linkID: linkID, userID: userID}
	s.nextVoteID++
	s.votes = append(s.votes, v)

	return &model.Vote{
		ID:   int(v.id),
		Link: s.toModel(ctx, r),
		User: voter,
	}, nil
}

// find ищет ссылку по id, вызывается под s.mu
func (s *LinkMemoryStorage) find(id uint) (*linkRecord, int, error) {
	for i, r := range s.links {
		if r.id == id {
			return r, i, nil
		}
	}
	return nil, -1, apperr.NotFound("link %d not found", id)
}

func (s *LinkMemoryStorage) user(ctx context.Context, id uint) (*model.User, error) {
	if s.users == nil {
		return &model.User{ID: int(id)}, nil
	}
	return s.users.GetUserByID(ctx, id)
}

// toModel собирает ответ, вызывается под s.mu
func (s *LinkMemoryStorage) toModel(ctx context.Context, r *linkRecord) *model.Link {
	result := &model.Link{
		ID:          int(r.id),
		Description: r.description,
		URL:         r.url,
		CreatedAt:   r.createdAt,
		Voters:      []*model.User{},
	}

	if r.postedByID != nil {
		if u, err := s.user(ctx, *r.postedByID); err == nil {
			result.PostedBy = u
		}
	}

	for _, v := range s.votes {
		if v.linkID != r.id {
			continue
		}
		if u, err := s.user(ctx, v.userID); err == nil {
			result.Voters = append(result.Voters, u)
		}
	}
	return result
}
