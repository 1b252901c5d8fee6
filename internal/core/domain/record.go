package domain

import "time"

// StudentRecord is a persisted OCRResult together with where the scan lives
// and who uploaded it.
type StudentRecord struct {
	// ID is the surrogate identifier used for administrative operations.
	ID string `json:"id"`

	OCRResult

	// ImagePath is the storage location of the scanned marksheet.
	ImagePath string `json:"imagePath"`

	// UploadedBy is the username of the uploading administrator.
	UploadedBy string `json:"uploadedBy"`

	// SemesterID links the record to the semester active at upload time.
	// Empty when no semester was active.
	SemesterID string `json:"semesterId,omitempty"`

	// CreatedAt is when the record was first stored.
	CreatedAt time.Time `json:"createdAt"`
}

// NameKey returns the normalised name used for lookups.
func (r StudentRecord) NameKey() string {
	name, _ := IdentityKey(r.Name, r.TURegd)
	return name
}

// RegdKey returns the normalised registration number used for lookups.
func (r StudentRecord) RegdKey() string {
	_, regd := IdentityKey(r.Name, r.TURegd)
	return regd
}

// RecordFilter narrows a record listing.
type RecordFilter struct {
	// SemesterID restricts results to one semester when set.
	SemesterID string

	// Limit caps the number of records returned. Zero means no limit.
	Limit int

	// Offset skips the first N records.
	Offset int
}
