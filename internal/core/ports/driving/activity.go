package driving

import (
	"context"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

// ActivityService keeps the live activity feed.
type ActivityService interface {
	// Record appends an event and fans it out to subscribers.
	Record(activity domain.Activity)

	// Recent returns up to n events, oldest first.
	Recent(n int) []domain.Activity

	// Subscribe returns a channel of new events and a function that
	// unsubscribes and closes it.
	Subscribe() (<-chan domain.Activity, func())

	// Health reports a service health snapshot.
	Health(ctx context.Context) domain.Health
}
