package subscription

import (
	"sync"
	"testing"
	"time"

	"github.com/VitaminP8/linkfeed/graph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLink(id int) *model.Link {
	return &model.Link{
		ID:          id,
		Description: "Test link",
		URL:         "example.com",
		CreatedAt:   time.Now(),
		Voters:      []*model.User{},
	}
}

func TestSubscriptionManager_Subscribe(t *testing.T) {
	t.Run("Should create a subscription channel", func(t *testing.T) {
		manager := NewSubscriptionManager()

		ch, cancel := manager.SubscribeLinks()
		assert.NotNil(t, ch)
		assert.NotNil(t, cancel)
		assert.Equal(t, 1, manager.links.count())

		// Вызываем отмену подписки
		cancel()
		assert.Equal(t, 0, manager.links.count())

		_, ok := <-ch
		assert.False(t, ok, "Channel should be closed after cancel")
	})

	t.Run("Multiple subscriptions", func(t *testing.T) {
		manager := NewSubscriptionManager()

		_, cancel1 := manager.SubscribeLinks()
		_, cancel2 := manager.SubscribeLinks()
		_, cancel3 := manager.SubscribeVotes()

		assert.Equal(t, 2, manager.links.count())
		assert.Equal(t, 1, manager.votes.count())

		// Отменяем вторую подписку
		cancel2()
		assert.Equal(t, 1, manager.links.count())

		cancel1()
		cancel3()
		assert.Equal(t, 0, manager.links.count())
		assert.Equal(t, 0, manager.votes.count())
	})
}

func TestSubscriptionManager_Publish(t *testing.T) {
	t.Run("Should send link to subscribers", func(t *testing.T) {
		manager := NewSubscriptionManager()

		ch1, cancel1 := manager.SubscribeLinks()
		ch2, cancel2 := manager.SubscribeLinks()
		defer cancel1()
		defer cancel2()

		l := testLink(1)
		manager.PublishLink(l)

		for i, ch := range []<-chan *model.Link{ch1, ch2} {
			select {
			case received := <-ch:
				assert.Equal(t, l, received, "Subscriber %d did not receive correct link", i+1)
			case <-time.After(time.Second):
				t.Fatalf("Subscriber %d timed out waiting for link", i+1)
			}
		}
	})

	t.Run("Votes and links are separate", func(t *testing.T) {
		manager := NewSubscriptionManager()

		links, cancelLinks := manager.SubscribeLinks()
		votes, cancelVotes := manager.SubscribeVotes()
		defer cancelLinks()
		defer cancelVotes()

		vote := &model.Vote{ID: 1, Link: testLink(1), User: &model.User{ID: 2}}
		manager.PublishVote(vote)

		select {
		case received := <-votes:
			assert.Equal(t, vote, received)
		case <-time.After(time.Second):
			t.Fatal("Timed out waiting for vote")
		}

		select {
		case <-links:
			t.Fatal("Link subscriber should not receive the vote")
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("Publishing without subscribers should not panic", func(t *testing.T) {
		manager := NewSubscriptionManager()

		assert.NotPanics(t, func() {
			manager.PublishLink(testLink(1))
			manager.PublishVote(&model.Vote{ID: 1})
		})
	})
}

func TestSubscriptionManager_Concurrent(t *testing.T) {
	t.Run("Concurrent subscriptions and publications", func(t *testing.T) {
		manager := NewSubscriptionManager()

		numSubscribers := 10
		numPublications := 5

		var wg sync.WaitGroup
		var mu sync.Mutex
		received := make([]int, numSubscribers)
		cancels := make([]func(), numSubscribers)

		for i := 0; i < numSubscribers; i++ {
			ch, cancel := manager.SubscribeLinks()
			cancels[i] = cancel

			go func(idx int, ch <-chan *model.Link) {
				for l := range ch {
					require.NotNil(t, l)
					mu.Lock()
					received[idx]++
					mu.Unlock()
				}
			}(i, ch)
		}

		for i := 0; i < numPublications; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				manager.PublishLink(testLink(idx + 1))
			}(i)
		}
		wg.Wait()

		// Даем время на обработку всех сообщений
		time.Sleep(500 * time.Millisecond)

		for _, cancel := range cancels {
			cancel()
		}

		mu.Lock()
		for i := 0; i < numSubscribers; i++ {
			assert.Equal(t, numPublications, received[i], "Subscriber %d did not receive all links", i)
		}
		mu.Unlock()
	})

	t.Run("Concurrent subscribes and unsubscribes", func(t *testing.T) {
		manager := NewSubscriptionManager()

		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				ch, cancel := manager.SubscribeVotes()
				time.Sleep(5 * time.Millisecond)
				cancel()

				_, ok := <-ch
				assert.False(t, ok, "Channel should be closed after cancel")
			}()
		}
		wg.Wait()

		assert.Equal(t, 0, manager.votes.count())
	})
}

func TestSubscriptionManager_SlowSubscribers(t *testing.T) {
	t.Run("Publish waits once, not once per stalled subscriber", func(t *testing.T) {
		manager := NewSubscriptionManager()

		// подписчики, которые ничего не читают
		for i := 0; i < 4; i++ {
			_, cancel := manager.SubscribeLinks()
			defer cancel()
		}
		// первое событие занимает буфер каждого канала
		manager.PublishLink(testLink(1))

		start := time.Now()
		manager.PublishLink(testLink(2))
		elapsed := time.Since(start)

		assert.GreaterOrEqual(t, elapsed, publishTimeout)
		assert.Less(t, elapsed, 2*publishTimeout)
	})

	t.Run("Stalled publish does not block subscribe", func(t *testing.T) {
		manager := NewSubscriptionManager()

		_, cancel := manager.SubscribeLinks()
		defer cancel()
		manager.PublishLink(testLink(1))

		done := make(chan struct{})
		go func() {
			defer close(done)
			manager.PublishLink(testLink(2))
		}()

		time.Sleep(50 * time.Millisecond)
		start := time.Now()
		_, cancel2 := manager.SubscribeLinks()
		defer cancel2()
		assert.Less(t, time.Since(start), publishTimeout/2)

		<-done
	})

	t.Run("Cancel during publish does not panic", func(t *testing.T) {
		manager := NewSubscriptionManager()

		ch, cancel := manager.SubscribeVotes()
		manager.PublishVote(&model.Vote{ID: 1})

		done := make(chan struct{})
		go func() {
			defer close(done)
			manager.PublishVote(&model.Vote{ID: 2})
		}()

		time.Sleep(50 * time.Millisecond)
		cancel()
		<-done

		assert.Equal(t, 0, manager.votes.count())
		// в канале остается первое событие, затем он закрыт
		v, ok := <-ch
		require.True(t, ok)
		assert.Equal(t, 1, v.ID)
		_, ok = <-ch
		assert.False(t, ok)
	})
}
