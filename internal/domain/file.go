package domain

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
)

// MaxUploadSize is the limit for adopter-submitted attachments.
const MaxUploadSize = 50 << 20

const objectPrefix = "adoption-requests"

var allowedMimeTypes = map[string]struct{}{
	"video/mp4":       {},
	"image/jpeg":      {},
	"image/jpg":       {},
	"image/png":       {},
	"application/pdf": {},
}

// ValidateUpload applies the shared file gate to a user-supplied document
// before anything is written to blob storage.
func ValidateUpload(name string, size int64, mime string) error {
	if size == 0 {
		return EmptyFileError{Name: name}
	}
	if size > MaxUploadSize {
		return FileTooLargeError{Name: name, Size: size, Max: MaxUploadSize}
	}
	if _, ok := allowedMimeTypes[strings.ToLower(mime)]; !ok {
		return InvalidFileTypeError{Name: name, Mime: mime}
	}
	return nil
}

// ObjectPath builds the deterministic storage path for a request document.
// ParseObjectPath must recover the same foundation and request ids, so the
// signed-URL read path stays consistent with the write path.
func ObjectPath(foundationID, requestID int64, docType DocType, filename string, t time.Time) string {
	return fmt.Sprintf("%s/%d/%d/%s-%d-%s",
		objectPrefix, foundationID, requestID, docType, t.Unix(), SanitizeFileName(filename))
}

// ParseObjectPath extracts the foundation and request ids from a storage
// path produced by ObjectPath.
func ParseObjectPath(p string) (foundationID, requestID int64, err error) {
	parts := strings.Split(path.Clean(p), "/")
	if len(parts) != 4 || parts[0] != objectPrefix {
		return 0, 0, fmt.Errorf("malformed object path %q", p)
	}
	foundationID, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed foundation id in object path %q", p)
	}
	requestID, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed request id in object path %q", p)
	}
	return foundationID, requestID, nil
}

// SanitizeFileName strips path separators and anything outside a safe
// character set so user input cannot shape the storage layout.
func SanitizeFileName(name string) string {
	name = path.Base(name)
	if name == "/" || name == "." {
		return "file"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
