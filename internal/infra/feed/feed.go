// Package feed delivers "something changed" notifications for the catalog
// and the ledger. Subscribers re-read the full collection on every signal.
package feed

import (
	"context"
	"sync"
)

type Topic string

const (
	TopicMaterials Topic = "materials"
	TopicLedger    Topic = "ledger"
)

type Publisher interface {
	Publish(ctx context.Context, topic Topic) error
}

// Subscriber returns a channel that receives one value per change. The
// channel is closed once ctx is done.
type Subscriber interface {
	Subscribe(ctx context.Context, topic Topic) (<-chan struct{}, error)
}

// Watch calls fn with the freshly loaded collection immediately and again
// after every change on topic. It blocks until ctx is done.
func Watch[T any](ctx context.Context, sub Subscriber, topic Topic, load func(context.Context) ([]T, error), fn func([]T)) error {
	ch, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}
	items, err := load(ctx)
	if err != nil {
		return err
	}
	fn(items)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ch:
			if !ok {
				return ctx.Err()
			}
			items, err := load(ctx)
			if err != nil {
				return err
			}
			fn(items)
		}
	}
}

// Local is an in-process feed. Signals are coalesced per subscriber.
type Local struct {
	mu   sync.Mutex
	subs map[Topic]map[chan struct{}]struct{}
}

func NewLocal() *Local {
	return &Local{subs: make(map[Topic]map[chan struct{}]struct{})}
}

func (l *Local) Publish(_ context.Context, topic Topic) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ch := range l.subs[topic] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

func (l *Local) Subscribe(ctx context.Context, topic Topic) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	l.mu.Lock()
	if l.subs[topic] == nil {
		l.subs[topic] = make(map[chan struct{}]struct{})
	}
	l.subs[topic][ch] = struct{}{}
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		delete(l.subs[topic], ch)
		close(ch)
		l.mu.Unlock()
	}()
	return ch, nil
}
