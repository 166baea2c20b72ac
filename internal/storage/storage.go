// Package storage stores uploaded images in an object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"
)

// ErrObjectNotFound is returned when a delete targets an URL the store does not own.
var ErrObjectNotFound = errors.New("object not found")

// Object describes one stored blob.
type Object struct {
	URL         string    `json:"url"`
	Pathname    string    `json:"pathname"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// BlobStore is the object store used for images.
type BlobStore interface {
	Put(ctx context.Context, pathname string, r io.Reader, size int64, contentType string) (Object, error)
	Delete(ctx context.Context, url string) error
	List(ctx context.Context, prefix string) ([]Object, error)
}

// GalleryPrefix is the root of gallery uploads that are not tied to a project.
const GalleryPrefix = "gallery/"

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// ProjectImagePath builds {projectId}/{imageName}-{timestamp}.{ext}.
func ProjectImagePath(projectID, imageName, ext string, now time.Time) string {
	return path.Join(cleanSegment(projectID), objectName(imageName, ext, now))
}

// GalleryImagePath builds gallery/{folder}/{imageName}-{timestamp}.{ext}.
func GalleryImagePath(folder, imageName, ext string, now time.Time) string {
	folder = cleanSegment(folder)
	if folder == "" {
		folder = "uncategorized"
	}
	return path.Join(strings.TrimSuffix(GalleryPrefix, "/"), folder, objectName(imageName, ext, now))
}

// GalleryFolderPrefix returns the listing prefix for a gallery folder, or the
// whole gallery when folder is empty.
func GalleryFolderPrefix(folder string) string {
	folder = cleanSegment(folder)
	if folder == "" {
		return GalleryPrefix
	}
	return GalleryPrefix + folder + "/"
}

func objectName(imageName, ext string, now time.Time) string {
	name := cleanSegment(imageName)
	if name == "" {
		name = "image"
	}
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("%s-%d.%s", name, now.UnixMilli(), ext)
}

func cleanSegment(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	return strings.Trim(unsafeNameChars.ReplaceAllString(lowered, "-"), "-")
}

// joinURL appends a pathname to a base URL or URL path.
func joinURL(base, pathname string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(pathname, "/")
}

// pathnameFromURL strips base from url. ok is false when url is not under base.
func pathnameFromURL(base, url string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	pathname := strings.TrimPrefix(url, prefix)
	if i := strings.IndexAny(pathname, "?#"); i >= 0 {
		pathname = pathname[:i]
	}
	cleaned := path.Clean("/" + pathname)
	if cleaned == "/" {
		return "", false
	}
	return strings.TrimPrefix(cleaned, "/"), true
}
