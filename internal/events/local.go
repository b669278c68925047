package events

import (
	"context"
	"sync"
)

const subscriberBuffer = 16

// LocalBroker delivers events inside one process. A subscriber that falls
// behind by more than its buffer misses events rather than blocking writers.
type LocalBroker struct {
	mu   sync.Mutex
	subs map[string]map[chan VersionEvent]struct{}
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[string]map[chan VersionEvent]struct{})}
}

func (b *LocalBroker) Publish(_ context.Context, evt VersionEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs[evt.ProjectID] {
		select {
		case ch <- evt:
		default:
		}
	}
	return nil
}

func (b *LocalBroker) Subscribe(_ context.Context, projectID string) (<-chan VersionEvent, func(), error) {
	ch := make(chan VersionEvent, subscriberBuffer)

	b.mu.Lock()
	if b.subs[projectID] == nil {
		b.subs[projectID] = make(map[chan VersionEvent]struct{})
	}
	b.subs[projectID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[projectID], ch)
			if len(b.subs[projectID]) == 0 {
				delete(b.subs, projectID)
			}
			close(ch)
		})
	}
	return ch, cancel, nil
}
