package driven

import "github.com/custodia-labs/markscan/internal/core/domain"

// ActivitySink receives activity feed events. Publish must not block.
type ActivitySink interface {
	Publish(activity domain.Activity)
}
