// Package ocr holds the text recognition adapters.
//
// Sub-packages:
//   - tesseract: local recognition through libtesseract (requires CGO)
//   - vertex: cloud recognition with a Gemini model on Vertex AI
//   - preprocess: decodes scans and normalises them to grayscale PNG
package ocr
