package constants

import "strings"

// AcceptedMediaType is the only upload content type the pipeline handles.
const AcceptedMediaType = "application/pdf"

// MaxUploadBytesDefault caps uploads at the transport layer (25 MiB).
const MaxUploadBytesDefault = 25 << 20

// MinViableTextLen is the threshold below which acquired text is treated as
// unextractable (scanned/image-only) content.
const MinViableTextLen = 50

// AllowedExtensions holds the default allowed file extensions for uploads.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether the extension (with or without dot) is accepted.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
