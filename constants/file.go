package constants

// DefaultMaxFileSize caps uploaded ID images at 10MB unless overridden by settings.
const DefaultMaxFileSize = 10 * 1024 * 1024

// DefaultAllowedFileTypes lists the MIME types accepted for upload.
var DefaultAllowedFileTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"application/pdf",
}

// AllowedFileType reports whether mime is in the allowed list.
func AllowedFileType(allowed []string, mime string) bool {
	for _, t := range allowed {
		if t == mime {
			return true
		}
	}
	return false
}
