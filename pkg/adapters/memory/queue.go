package memory

import (
	"context"
	"io"
	"sync"

	"github.com/aretw0/kiteflow/pkg/domain"
)

// Queue implements ports.EventSource over a FIFO slice.
// Next returns io.EOF once the queue is drained.
type Queue struct {
	mu     sync.Mutex
	events []domain.Event
}

// NewQueue creates a queue holding events in order.
func NewQueue(events ...domain.Event) *Queue {
	return &Queue{events: append([]domain.Event(nil), events...)}
}

// Push appends events to the tail of the queue.
func (q *Queue) Push(events ...domain.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, events...)
}

// Next pops the head of the queue.
func (q *Queue) Next(ctx context.Context) (domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return domain.Event{}, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return domain.Event{}, io.EOF
	}
	ev := q.events[0]
	q.events = q.events[1:]
	return ev, nil
}
