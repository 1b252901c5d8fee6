// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// RecordService is the upload pipeline: recognise, extract, reject scans
// without a name or registration number, then store. The other services
// cover lookups, administrator accounts and sessions, semesters, the
// activity feed and settings.
//
// Services are pure Go with no CGO. OCR engines and storage backends are
// reached only through the driven ports.
package services
