// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Recognizer: Turns a scanned image into raw text (Tesseract or Vertex AI)
//   - RecordStore: Student record persistence (SQLite, memory or Firestore)
//   - AdminStore: Administrator account persistence
//   - SemesterStore: Semester persistence
//   - SessionStore: Login session persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ImagePreprocessor: Normalises scans before recognition. Without it,
//     images reach the recognizer untouched.
//   - ImageStore: Keeps uploaded scans. Without it, records carry no image path.
//   - ActivitySink: Receives activity feed events. Without it, nothing is published.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
