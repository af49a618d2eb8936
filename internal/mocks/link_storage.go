package mocks

import (
	"context"
	"sync"

	"github.com/VitaminP8/linkfeed/graph/model"
	"github.com/VitaminP8/linkfeed/internal/link"
	"github.com/VitaminP8/linkfeed/internal/storage/memory"
)

// MockLinkStorage реализует link.LinkStorage поверх in-memory хранилища,
// считает вызовы и умеет возвращать заданную ошибку
type MockLinkStorage struct {
	*memory.LinkMemoryStorage

	mu    sync.Mutex
	err   error
	calls map[string]int
}

func NewMockLinkStorage() *MockLinkStorage {
	return &MockLinkStorage{
		LinkMemoryStorage: memory.NewLinkMemoryStorage(nil),
		calls:             make(map[string]int),
	}
}

// FailWith заставляет все последующие вызовы возвращать err (nil - отключить)
func (m *MockLinkStorage) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls возвращает, сколько раз был вызван метод
func (m *MockLinkStorage) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockLinkStorage) record(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[method]++
	return m.err
}

func (m *MockLinkStorage) FindLinks(ctx context.Context, opts link.ListOptions) ([]*model.Link, error) {
	if err := m.record("FindLinks"); err != nil {
		return nil, err
	}
	return m.LinkMemoryStorage.FindLinks(ctx, opts)
}

func (m *MockLinkStorage) CountLinks(ctx context.Context, filter link.Filter) (int, error) {
	if err := m.record("CountLinks"); err != nil {
		return 0, err
	}
	return m.LinkMemoryStorage.CountLinks(ctx, filter)
}

func (m *MockLinkStorage) GetLinkByID(ctx context.Context, id uint) (*model.Link, error) {
	if err := m.record("GetLinkByID"); err != nil {
		return nil, err
	}
	return m.LinkMemoryStorage.GetLinkByID(ctx, id)
}

func (m *MockLinkStorage) CreateLink(ctx context.Context, description, url string, postedByID *uint) (*model.Link, error) {
	if err := m.record("CreateLink"); err != nil {
		return nil, err
	}
	return m.LinkMemoryStorage.CreateLink(ctx, description, url, postedByID)
}

func (m *MockLinkStorage) UpdateLink(ctx context.Context, id uint, patch link.Patch) (*model.Link, error) {
	if err := m.record("UpdateLink"); err != nil {
		return nil, err
	}
	return m.LinkMemoryStorage.UpdateLink(ctx, id, patch)
}

func (m *MockLinkStorage) DeleteLinkByID(ctx context.Context, id uint) (*model.Link, error) {
	if err := m.record("DeleteLinkByID"); err != nil {
		return nil, err
	}
	return m.LinkMemoryStorage.DeleteLinkByID(ctx, id)
}

func (m *MockLinkStorage) Vote(ctx context.Context, linkID, userID uint) (*model.Vote, error) {
	if err := m.record("Vote"); err != nil {
		return nil, err
	}
	return m.LinkMemoryStorage.Vote(ctx, linkID, userID)
}
