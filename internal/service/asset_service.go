package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/photofolio/internal/content"
	"github.com/photofolio/internal/logger"
	"github.com/photofolio/internal/storage"
	_ "golang.org/x/image/webp"
)

var (
	ErrNotAnImage    = errors.New("only image files can be uploaded")
	ErrImageTooLarge = errors.New("image exceeds the upload size limit")
	ErrImageInUse    = errors.New("image is referenced by one or more projects")
	ErrImageURL      = errors.New("image url is required")
)

// ImageInUseError lists the projects that block an image deletion.
type ImageInUseError struct {
	URL      string
	Projects []content.Project
}

func (e *ImageInUseError) Error() string {
	return fmt.Sprintf("%s: %d project(s) reference %s", ErrImageInUse, len(e.Projects), e.URL)
}

func (e *ImageInUseError) Unwrap() error { return ErrImageInUse }

// ImageReferences finds projects pointing at an image URL.
type ImageReferences interface {
	FindProjectsReferencingImage(ctx context.Context, url string) ([]content.Project, error)
}

// AssetService uploads, lists and deletes images in the blob store.
type AssetService struct {
	store   storage.BlobStore
	refs    ImageReferences
	log     *logger.Logger
	maxSize int64
	now     func() time.Time
}

// UploadInput describes one uploaded file. ProjectID wins over Folder when both are set.
type UploadInput struct {
	File        io.Reader
	Filename    string
	ContentType string
	ProjectID   string
	Folder      string
	ImageName   string
}

// UploadResult is the stored object plus decoded dimensions when the format is known.
type UploadResult struct {
	storage.Object
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

// ImageUsage reports whether an image is referenced.
type ImageUsage struct {
	URL      string            `json:"url"`
	InUse    bool              `json:"inUse"`
	Projects []content.Project `json:"projects"`
}

// NewAssetService creates an AssetService. maxSize <= 0 disables the size limit.
func NewAssetService(store storage.BlobStore, refs ImageReferences, log *logger.Logger, maxSize int64) *AssetService {
	if log == nil {
		log = logger.Nop()
	}
	return &AssetService{
		store:   store,
		refs:    refs,
		log:     log.With("service", "AssetService"),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Upload stores an image under the project or gallery folder path convention.
func (s *AssetService) Upload(ctx context.Context, input UploadInput) (UploadResult, error) {
	contentType := strings.ToLower(strings.TrimSpace(input.ContentType))
	if !strings.HasPrefix(contentType, "image/") {
		return UploadResult{}, ErrNotAnImage
	}

	reader := input.File
	if s.maxSize > 0 {
		reader = io.LimitReader(input.File, s.maxSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return UploadResult{}, fmt.Errorf("read upload: %w", err)
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return UploadResult{}, ErrImageTooLarge
	}

	var result UploadResult
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		result.Width = cfg.Width
		result.Height = cfg.Height
	} else {
		s.log.Debug("image dimensions unavailable", "filename", input.Filename, "error", err)
	}

	imageName := strings.TrimSpace(input.ImageName)
	if imageName == "" {
		imageName = strings.TrimSuffix(filepath.Base(input.Filename), filepath.Ext(input.Filename))
	}
	ext := extensionFor(input.Filename, contentType)
	now := s.now()

	var pathname string
	if projectID := strings.TrimSpace(input.ProjectID); projectID != "" {
		pathname = storage.ProjectImagePath(projectID, imageName, ext, now)
	} else {
		pathname = storage.GalleryImagePath(input.Folder, imageName, ext, now)
	}

	obj, err := s.store.Put(ctx, pathname, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return UploadResult{}, fmt.Errorf("store upload: %w", err)
	}
	result.Object = obj
	s.log.Info("image uploaded", "pathname", obj.Pathname, "size", obj.Size)
	return result, nil
}

// ListGallery lists gallery uploads, newest first. An empty folder lists all of them.
func (s *AssetService) ListGallery(ctx context.Context, folder string) ([]storage.Object, error) {
	objects, err := s.store.List(ctx, storage.GalleryFolderPrefix(folder))
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	if objects == nil {
		objects = []storage.Object{}
	}
	return objects, nil
}

// Usage reports the projects referencing url.
func (s *AssetService) Usage(ctx context.Context, url string) (ImageUsage, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return ImageUsage{}, ErrImageURL
	}
	projects, err := s.refs.FindProjectsReferencingImage(ctx, url)
	if err != nil {
		return ImageUsage{}, err
	}
	return ImageUsage{URL: url, InUse: len(projects) > 0, Projects: projects}, nil
}

// Delete removes an image unless a project still references it, in which case
// an *ImageInUseError is returned and nothing is deleted.
func (s *AssetService) Delete(ctx context.Context, url string) error {
	usage, err := s.Usage(ctx, url)
	if err != nil {
		return err
	}
	if usage.InUse {
		return &ImageInUseError{URL: usage.URL, Projects: usage.Projects}
	}
	if err := s.store.Delete(ctx, usage.URL); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	s.log.Info("image deleted", "url", usage.URL)
	return nil
}

func extensionFor(filename, contentType string) string {
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."); ext != "" {
		return ext
	}
	switch contentType {
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "jpg"
	}
}
