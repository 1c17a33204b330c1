package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ObjectStorage is the bucket side of file uploads.
type ObjectStorage interface {
	// Upload stores the object and returns its public URL.
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	// Remove deletes the objects; missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error
	PublicURL(key string) string
}

// ObjectKey builds classes/{classID}/{kind}/{parentID}/{uuid}-{name}.
func ObjectKey(classID, kind, parentID, filename string) string {
	return path.Join("classes", classID, kind, parentID, uuid.NewString()+"-"+SanitizeFilename(filename))
}

// SanitizeFilename keeps letters, digits, dot, dash and underscore; everything
// else becomes an underscore. The original name stays in the files row.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	if len(out) > 120 {
		out = out[len(out)-120:]
	}
	return out
}

func publicURL(base, bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/%s/%s", base, bucket, strings.Join(segments, "/"))
}
