// Package archive keeps the raw bytes of uploaded statements.
package archive

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	gcsstorage "cloud.google.com/go/storage"
)

// GCSArchive writes statements to a Cloud Storage bucket.
type GCSArchive struct {
	bucket *gcsstorage.BucketHandle
	now    func() time.Time
}

// NewGCSArchive archives into bucket.
func NewGCSArchive(bucket *gcsstorage.BucketHandle) *GCSArchive {
	return &GCSArchive{bucket: bucket, now: time.Now}
}

// Put stores data and returns the object path.
func (a *GCSArchive) Put(ctx context.Context, userID, filename string, data []byte) (string, error) {
	name := ObjectPath(userID, filename, a.now())

	w := a.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType(filename)
	w.Metadata = map[string]string{"user_id": userID, "filename": filename}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("write statement %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close statement %s: %w", name, err)
	}
	return name, nil
}

// ObjectPath is statements/<user>/<UTC timestamp>-<base filename>.
func ObjectPath(userID, filename string, at time.Time) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "statement"
	}
	return path.Join("statements", userID, at.UTC().Format("20060102T150405Z")+"-"+base)
}

func contentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".csv":
		return "text/csv"
	}
	return "application/octet-stream"
}
