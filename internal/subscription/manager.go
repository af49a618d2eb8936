package subscription

import (
	"sync"
	"time"

	"github.com/VitaminP8/linkfeed/graph/model"
)

// сколько Publish ждет медленного подписчика, прежде чем пропустить его
const publishTimeout = 500 * time.Millisecond

// subscriber - канал одного подписчика; closed защищает от записи в закрытый канал
type subscriber[T any] struct {
	mu     sync.Mutex
	ch     chan T
	closed bool
}

func (s *subscriber[T]) send(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	select {
	case s.ch <- v:
	case <-time.After(publishTimeout):
		// Если канал заполнен, ждем короткое время
	}
}

func (s *subscriber[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// topic - список подписчиков одного типа событий
type topic[T any] struct {
	mu   sync.Mutex
	subs []*subscriber[T]
}

func (t *topic[T]) subscribe() (<-chan T, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sub := &subscriber[T]{ch: make(chan T, 1)} // Буфер 1, чтобы не блокировался писатель
	t.subs = append(t.subs, sub)

	// функция для отписки
	cancel := func() {
		t.mu.Lock()
		for i, s := range t.subs {
			if s == sub {
				t.subs = append(t.subs[:i], t.subs[i+1:]...)
				break
			}
		}
		t.mu.Unlock()

		sub.close()
	}

	return sub.ch, cancel
}

// publish рассылает событие параллельно, поэтому ждет не дольше publishTimeout
// независимо от числа медленных подписчиков. Список копируется под локом,
// отправка идет без него.
func (t *topic[T]) publish(v T) {
	t.mu.Lock()
	subs := make([]*subscriber[T], len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()

	var wg sync.WaitGroup
	for _, sub := range subs {
		sub := sub
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub.send(v)
		}()
	}
	wg.Wait()
}

func (t *topic[T]) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

type SubscriptionManager struct {
	links topic[*model.Link]
	votes topic[*model.Vote]
}

func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{}
}

func (m *SubscriptionManager) SubscribeLinks() (<-chan *model.Link, func()) {
	return m.links.subscribe()
}

func (m *SubscriptionManager) PublishLink(link *model.Link) {
	m.links.publish(link)
}

func (m *SubscriptionManager) SubscribeVotes() (<-chan *model.Vote, func()) {
	return m.votes.subscribe()
}

func (m *SubscriptionManager) PublishVote(vote *model.Vote) {
	m.votes.publish(vote)
}
