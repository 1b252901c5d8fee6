package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
	"github.com/custodia-labs/markscan/internal/core/ports/driving"
	"github.com/custodia-labs/markscan/internal/logger"
)

// Ensure ActivityService implements both sides of the feed.
var (
	_ driving.ActivityService = (*ActivityService)(nil)
	_ driven.ActivitySink     = (*ActivityService)(nil)
)

// Activity feed sizing.
const (
	DefaultActivityCapacity = 100
	subscriberBuffer        = 16
)

// ActivityService keeps a bounded in-memory feed of recent events and fans
// new ones out to subscribers. Subscribers that fall behind miss events.
type ActivityService struct {
	records driven.RecordStore
	engine  string
	started time.Time
	now     func() time.Time

	mu          sync.RWMutex
	ring        []domain.Activity
	next        int
	size        int
	subscribers map[int]chan domain.Activity
	nextSubID   int
}

// NewActivityService creates a feed holding up to capacity events.
// records and engine feed the health report and may be zero values.
func NewActivityService(capacity int, records driven.RecordStore, engine string) *ActivityService {
	if capacity <= 0 {
		capacity = DefaultActivityCapacity
	}
	return &ActivityService{
		records:     records,
		engine:      engine,
		started:     time.Now(),
		now:         time.Now,
		ring:        make([]domain.Activity, capacity),
		subscribers: make(map[int]chan domain.Activity),
	}
}

// Publish implements driven.ActivitySink.
func (s *ActivityService) Publish(activity domain.Activity) {
	s.Record(activity)
}

// Record appends an event and fans it out.
func (s *ActivityService) Record(activity domain.Activity) {
	if activity.At.IsZero() {
		activity.At = s.now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ring[s.next] = activity
	s.next = (s.next + 1) % len(s.ring)
	if s.size < len(s.ring) {
		s.size++
	}

	for id, ch := range s.subscribers {
		select {
		case ch <- activity:
		default:
			logger.Debug("activity subscriber %d is behind, dropping %s event", id, activity.Kind)
		}
	}
}

// Recent returns up to n events, oldest first. n <= 0 returns all of them.
func (s *ActivityService) Recent(n int) []domain.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > s.size {
		n = s.size
	}
	out := make([]domain.Activity, 0, n)
	start := (s.next - n + len(s.ring)) % len(s.ring)
	for i := 0; i < n; i++ {
		out = append(out, s.ring[(start+i)%len(s.ring)])
	}
	return out
}

// Subscribe registers a subscriber. The returned function unsubscribes and
// closes the channel; it is safe to call more than once.
func (s *ActivityService) Subscribe() (<-chan domain.Activity, func()) {
	ch := make(chan domain.Activity, subscriberBuffer)

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Health reports a service health snapshot.
func (s *ActivityService) Health(ctx context.Context) domain.Health {
	now := s.now()

	s.mu.RLock()
	subscribers := len(s.subscribers)
	s.mu.RUnlock()

	h := domain.Health{
		Status:      "ok",
		Uptime:      now.Sub(s.started).Truncate(time.Second),
		OCREngine:   s.engine,
		Subscribers: subscribers,
		CheckedAt:   now.UTC(),
	}
	if h.OCREngine == "" {
		h.OCREngine = "none"
		h.Status = "degraded"
	}
	if s.records != nil {
		count, err := s.records.Count(ctx)
		if err != nil {
			logger.Warn("health: count records: %v", err)
			h.Status = "degraded"
		}
		h.Records = count
	}
	return h
}
