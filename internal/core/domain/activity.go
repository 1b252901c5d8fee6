package domain

import "time"

// ActivityKind categorises an activity feed event.
type ActivityKind string

// Activity kinds.
const (
	ActivityUpload         ActivityKind = "upload"
	ActivityUploadFailed   ActivityKind = "upload_failed"
	ActivityRecordDeleted  ActivityKind = "record_deleted"
	ActivitySearch         ActivityKind = "search"
	ActivityLogin          ActivityKind = "login"
	ActivityAdminCreated   ActivityKind = "admin_created"
	ActivityAdminDeleted   ActivityKind = "admin_deleted"
	ActivitySemesterChange ActivityKind = "semester_changed"
)

// Activity is one entry in the live activity feed.
type Activity struct {
	Kind    ActivityKind `json:"kind"`
	Message string       `json:"message"`
	Actor   string       `json:"actor,omitempty"`
	At      time.Time    `json:"at"`
}

// Health is a point-in-time snapshot of service health.
type Health struct {
	Status      string        `json:"status"`
	Uptime      time.Duration `json:"uptime"`
	Records     int           `json:"records"`
	OCREngine   string        `json:"ocrEngine"`
	Subscribers int           `json:"subscribers"`
	CheckedAt   time.Time     `json:"checkedAt"`
}
