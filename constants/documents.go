package constants

import "strings"

// DocumentKind selects which extraction rule set and provider schema apply.
type DocumentKind string

const (
	KindInvoice  DocumentKind = "invoice"
	KindReceipt  DocumentKind = "receipt"
	KindDocument DocumentKind = "document"
)

// AllowedMIMETypes holds the MIME types accepted for extraction uploads.
var AllowedMIMETypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"application/pdf",
}

// AllowedExtensions holds the default allowed file extensions for ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MIMETypeAllowed reports whether mt is on the upload allow-list.
func MIMETypeAllowed(mt string) bool {
	for _, m := range AllowedMIMETypes {
		if strings.EqualFold(mt, m) {
			return true
		}
	}
	return false
}

// MapExtToMIME maps a normalized extension to its declared MIME type.
// Returns "" for unsupported extensions.
func MapExtToMIME(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return "application/pdf"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	}
	return ""
}
