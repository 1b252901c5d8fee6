// Package extraction turns raw OCR text from a scanned marksheet into
// structured result fields.
//
// Every field has an ordered list of rules. A rule pairs a regular
// expression with a function that turns its submatches into a value; the
// first rule that yields a usable value wins. New document layouts are
// supported by appending rules, either in rules.go or at runtime through a
// YAML pattern pack (see LoadPack).
//
// Extraction never fails. Fields that cannot be found are left absent in
// the returned domain.Extraction and become sentinels only when converted
// to a domain.OCRResult.
//
// All functions are pure and safe for concurrent use.
package extraction
