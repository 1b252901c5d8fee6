package domain

import (
	"path/filepath"
	"strings"
)

// Image is an encoded scan submitted for recognition.
type Image struct {
	// Filename is the display name used in logs and error messages.
	Filename string

	// Data holds the encoded image bytes.
	Data []byte

	// ContentType is the MIME type, e.g. image/png. May be empty.
	ContentType string
}

// Upload is one file in an upload batch.
type Upload struct {
	Image

	// UploadedBy is the username of the uploading administrator.
	UploadedBy string
}

// supportedImageExts lists the scan formats accepted for upload.
var supportedImageExts = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

// IsSupportedImage reports whether the filename has a recognised scan extension.
func IsSupportedImage(filename string) bool {
	_, ok := supportedImageExts[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// ContentTypeFor guesses the MIME type from a filename extension.
func ContentTypeFor(filename string) string {
	return supportedImageExts[strings.ToLower(filepath.Ext(filename))]
}

// FileOutcome reports the result of processing one file in a batch.
type FileOutcome struct {
	Filename string         `json:"filename"`
	Record   *StudentRecord `json:"record,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Succeeded reports whether the file produced a stored record.
func (o FileOutcome) Succeeded() bool {
	return o.Error == "" && o.Record != nil
}

// BatchReport summarises a batch upload. Outcomes keep input order.
type BatchReport struct {
	Outcomes  []FileOutcome `json:"outcomes"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}
