// Package notify collects transient user-facing notices for the UI to drain.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/superdelivery/storefront/internal/core/domain"
	"github.com/superdelivery/storefront/internal/core/ports"
)

const defaultCapacity = 50

// Queue is a bounded notice buffer. When full, the oldest notice is dropped.
type Queue struct {
	mu       sync.Mutex
	notices  []domain.Notice
	capacity int
	now      func() time.Time
	log      zerolog.Logger
}

var _ ports.Notifier = (*Queue)(nil)

// NewQueue returns a Queue holding at most capacity notices.
func NewQueue(capacity int, log zerolog.Logger) *Queue {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Queue{
		capacity: capacity,
		now:      time.Now,
		log:      log.With().Str("component", "notify").Logger(),
	}
}

// Notify enqueues n and logs it.
func (q *Queue) Notify(n domain.Notice) {
	if n.At.IsZero() {
		n.At = q.now()
	}

	ev := q.log.Info()
	if n.Level == domain.NoticeError {
		ev = q.log.Warn()
	}
	ev.Str("level", string(n.Level)).Str("title", n.Title).Msg(n.Message)

	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.notices) == q.capacity {
		q.notices = q.notices[1:]
	}
	q.notices = append(q.notices, n)
}

// Drain returns and removes all pending notices, oldest first.
func (q *Queue) Drain() []domain.Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.notices
	q.notices = nil
	if out == nil {
		out = []domain.Notice{}
	}
	return out
}

// Len returns the number of pending notices.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.notices)
}
