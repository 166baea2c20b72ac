package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore keeps blobs in a directory that the HTTP server exposes under urlPath.
type LocalStore struct {
	root    string
	urlPath string
}

// NewLocalStore creates root when missing.
func NewLocalStore(root, urlPath string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: root, urlPath: "/" + strings.Trim(urlPath, "/")}, nil
}

// Root returns the directory blobs are written to.
func (s *LocalStore) Root() string { return s.root }

// URLPath returns the URL prefix blobs are served under.
func (s *LocalStore) URLPath() string { return s.urlPath }

func (s *LocalStore) Put(ctx context.Context, pathname string, r io.Reader, size int64, contentType string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	target, err := s.resolve(pathname)
	if err != nil {
		return Object{}, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Object{}, fmt.Errorf("create dir for %s: %w", pathname, err)
	}

	file, err := os.Create(target)
	if err != nil {
		return Object{}, fmt.Errorf("create %s: %w", pathname, err)
	}
	written, err := io.Copy(file, r)
	closeErr := file.Close()
	if err != nil {
		os.Remove(target)
		return Object{}, fmt.Errorf("write %s: %w", pathname, err)
	}
	if closeErr != nil {
		return Object{}, fmt.Errorf("close %s: %w", pathname, closeErr)
	}

	return Object{
		URL:         joinURL(s.urlPath, pathname),
		Pathname:    pathname,
		Size:        written,
		ContentType: contentType,
		UploadedAt:  time.Now().UTC(),
	}, nil
}

func (s *LocalStore) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pathname, ok := pathnameFromURL(s.urlPath, url)
	if !ok {
		return ErrObjectNotFound
	}
	target, err := s.resolve(pathname)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("remove %s: %w", pathname, err)
	}
	return nil
}

func (s *LocalStore) List(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		pathname := filepath.ToSlash(rel)
		if !strings.HasPrefix(pathname, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, Object{
			URL:         joinURL(s.urlPath, pathname),
			Pathname:    pathname,
			Size:        info.Size(),
			ContentType: mime.TypeByExtension(path.Ext(pathname)),
			UploadedAt:  info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	sortNewestFirst(objects)
	return objects, nil
}

// resolve maps a pathname into root, refusing anything that escapes it.
func (s *LocalStore) resolve(pathname string) (string, error) {
	cleaned := path.Clean("/" + filepath.ToSlash(pathname))
	if cleaned == "/" {
		return "", fmt.Errorf("invalid pathname %q", pathname)
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(cleaned, "/"))), nil
}
