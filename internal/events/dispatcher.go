package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventHandler reacts to one ticket or account event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans ticket and account events out to subscribers such as the mail notifier.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// inMemoryDispatcher runs subscribers on the publishing goroutine, in subscription order.
type inMemoryDispatcher struct {
	mu          sync.RWMutex
	subscribers map[EventType][]EventHandler
	logger      *zap.Logger
}

// NewInMemoryDispatcher returns a process-local dispatcher. A nil logger discards output.
func NewInMemoryDispatcher(logger *zap.Logger) Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inMemoryDispatcher{
		subscribers: make(map[EventType][]EventHandler),
		logger:      logger,
	}
}

// Publish hands the event to every subscriber of its type. Subscriber failures are
// logged, never returned, so a mail outage cannot fail the request that raised the
// event. Once ctx is done the remaining subscribers are skipped.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	subscribers := d.subscribers[event.Type]
	d.mu.RUnlock()

	for i, handle := range subscribers {
		if err := ctx.Err(); err != nil {
			d.logger.Warn("event delivery abandoned",
				zap.String("event_type", string(event.Type)),
				zap.String("subject_id", event.SubjectID),
				zap.Int("skipped", len(subscribers)-i),
				zap.Error(err))
			return nil
		}
		start := time.Now()
		if err := handle(ctx, event); err != nil {
			d.logger.Warn("event handler failed",
				zap.String("event_type", string(event.Type)),
				zap.String("event_id", event.ID),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
		}
	}
	return nil
}

// Subscribe appends handler to the subscribers of eventType.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// Publish iterates the slice unlocked; never append to it in place.
	current := d.subscribers[eventType]
	next := make([]EventHandler, len(current), len(current)+1)
	copy(next, current)
	d.subscribers[eventType] = append(next, handler)
}
