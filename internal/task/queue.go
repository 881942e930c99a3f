package task

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/futureview-api/internal/domain"
)

// Descriptor is the queue-only snapshot of a job. It is never persisted.
type Descriptor struct {
	ViewingID  uuid.UUID
	Params     domain.GenerationParams
	EnqueuedAt time.Time
}

type node struct {
	descriptor Descriptor
	next       *node
}

// Queue is an unbounded FIFO queue of descriptors. Push never blocks and is
// safe for many producers. Pop blocks until an item arrives.
type Queue struct {
	mu     sync.Mutex
	head   *node
	tail   *node
	size   int
	closed bool

	// notify holds at most one pending wake-up for a blocked Pop.
	notify chan struct{}
	done   chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Push appends d to the back of the queue.
func (q *Queue) Push(d Descriptor) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}

	n := &node{descriptor: d}
	if q.tail == nil {
		q.head = n
	} else {
		q.tail.next = n
	}
	q.tail = n
	q.size++
	q.mu.Unlock()

	q.signal()
	return nil
}

// Pop removes and returns the descriptor at the front of the queue, waiting
// for one if the queue is empty. It returns ctx.Err() if ctx ends first, and
// ErrQueueClosed once the queue is closed and every item has been popped.
func (q *Queue) Pop(ctx context.Context) (Descriptor, error) {
	for {
		q.mu.Lock()
		if n := q.head; n != nil {
			q.head = n.next
			if q.head == nil {
				q.tail = nil
			}
			q.size--
			more := q.head != nil
			q.mu.Unlock()

			// pass the wake-up on in case another consumer is waiting
			if more {
				q.signal()
			}
			return n.descriptor, nil
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return Descriptor{}, ErrQueueClosed
		}

		select {
		case <-ctx.Done():
			return Descriptor{}, ctx.Err()
		case <-q.notify:
		case <-q.done:
		}
	}
}

// Len reports the number of queued descriptors.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Close stops accepting pushes. Items already queued can still be popped.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

func (q *Queue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
