// Package domain defines the core business entities for markscan.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - OCRResult: The structured fields read from one scanned marksheet
//   - Extraction: The tagged extractor output before sentinels are applied
//   - StudentRecord: A persisted OCRResult with its scan and uploader
//   - Semester, Admin, Session: Administrative entities
//   - Activity: An entry in the live activity feed
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
