package domain

import "time"

// StorageBackend selects where student records are persisted.
type StorageBackend string

// Available storage backends.
const (
	StorageSQLite    StorageBackend = "sqlite"
	StorageMemory    StorageBackend = "memory"
	StorageFirestore StorageBackend = "firestore"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StorageMemory, StorageFirestore:
		return true
	default:
		return false
	}
}

// ImageBackend selects where uploaded scans are kept.
type ImageBackend string

// Available image backends.
const (
	ImagesLocal ImageBackend = "local"
	ImagesGCS   ImageBackend = "gcs"
)

// IsValid returns true if the backend is recognised.
func (b ImageBackend) IsValid() bool {
	return b == ImagesLocal || b == ImagesGCS
}

// OCREngine selects the text recognizer.
type OCREngine string

// Available OCR engines.
const (
	OCRTesseract OCREngine = "tesseract"
	OCRVertex    OCREngine = "vertex"
)

// IsValid returns true if the engine is recognised.
func (e OCREngine) IsValid() bool {
	return e == OCRTesseract || e == OCRVertex
}

// Description returns a human-readable description of the engine.
func (e OCREngine) Description() string {
	switch e {
	case OCRTesseract:
		return "Tesseract (local)"
	case OCRVertex:
		return "Vertex AI Gemini (cloud)"
	default:
		return "Unknown"
	}
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr string
}

// StorageSettings configures record persistence.
type StorageSettings struct {
	Backend StorageBackend

	// DataDir holds the SQLite database. Empty means ~/.markscan/data.
	DataDir string

	// FirestoreProject and FirestoreCollection apply to the firestore backend.
	FirestoreProject    string
	FirestoreCollection string
}

// ImageSettings configures scan storage.
type ImageSettings struct {
	Backend ImageBackend

	// Dir is the local directory for the local backend.
	Dir string

	// Bucket is the Cloud Storage bucket for the gcs backend.
	Bucket string
}

// OCRSettings configures recognition.
type OCRSettings struct {
	Engine    OCREngine
	Languages []string
	DPI       int
	Timeout   time.Duration

	// Vertex AI settings apply to the vertex engine.
	VertexProject string
	VertexRegion  string
	VertexModel   string
}

// UploadSettings configures batch processing.
type UploadSettings struct {
	// Workers bounds concurrent recognitions in a batch.
	Workers int
}

// AuthSettings configures administrator sessions.
type AuthSettings struct {
	SessionTTL         time.Duration
	LoginRatePerMinute int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Server  ServerSettings
	Storage StorageSettings
	Images  ImageSettings
	OCR     OCRSettings
	Upload  UploadSettings
	Auth    AuthSettings

	// PatternPack is an optional YAML file of extra extraction rules.
	PatternPack string

	// WatchDir is the inbox directory for the watch command.
	WatchDir string
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Server: ServerSettings{Addr: ":8080"},
		Storage: StorageSettings{
			Backend:             StorageSQLite,
			FirestoreCollection: "student_records",
		},
		Images: ImageSettings{Backend: ImagesLocal},
		OCR: OCRSettings{
			Engine:       OCRTesseract,
			Languages:    []string{"eng"},
			DPI:          300,
			Timeout:      60 * time.Second,
			VertexRegion: "us-central1",
			VertexModel:  "gemini-1.5-pro",
		},
		Upload: UploadSettings{Workers: 4},
		Auth: AuthSettings{
			SessionTTL:         12 * time.Hour,
			LoginRatePerMinute: 10,
		},
	}
}
