package mocks

import (
	"sync"

	"github.com/VitaminP8/linkfeed/graph/model"
	"github.com/VitaminP8/linkfeed/internal/subscription"
)

// MockSubscriptionManager рассылает события как настоящий менеджер
// и дополнительно запоминает все опубликованное
type MockSubscriptionManager struct {
	*subscription.SubscriptionManager

	mu    sync.Mutex
	links []*model.Link
	votes []*model.Vote
}

func NewMockSubscriptionManager() *MockSubscriptionManager {
	return &MockSubscriptionManager{
		SubscriptionManager: subscription.NewSubscriptionManager(),
	}
}

func (m *MockSubscriptionManager) PublishLink(link *model.Link) {
	m.mu.Lock()
	m.links = append(m.links, link)
	m.mu.Unlock()

	m.SubscriptionManager.PublishLink(link)
}

func (m *MockSubscriptionManager) PublishVote(vote *model.Vote) {
	m.mu.Lock()
	m.votes = append(m.votes, vote)
	m.mu.Unlock()

	m.SubscriptionManager.PublishVote(vote)
}

// PublishedLinks - вспомогательный метод для тестирования
func (m *MockSubscriptionManager) PublishedLinks() []*model.Link {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Link(nil), m.links...)
}

func (m *MockSubscriptionManager) PublishedVotes() []*model.Vote {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Vote(nil), m.votes...)
}
