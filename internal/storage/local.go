// Package storage persists uploaded ticket images on the local filesystem.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStore writes uploads under a single directory. Stored names combine a
// timestamp, a short random suffix and the original filename, so two uploads
// of the same file in the same second cannot collide.
type LocalStore struct {
	dir string
}

// NewLocalStore constructs a store rooted at dir.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// EnsureDir creates the upload directory if missing. Safe to call repeatedly.
func (s *LocalStore) EnsureDir() error {
	return os.MkdirAll(s.dir, 0o755)
}

// Dir returns the upload directory path.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save streams the multipart upload to disk and returns the stored path.
func (s *LocalStore) Save(fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("%s_%s_%s",
		time.Now().Format("20060102_150405"),
		strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		sanitizeFilename(fileHeader.Filename),
	)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Remove deletes a stored image. A missing file is not an error; deletion of
// the owning ticket must succeed regardless.
func (s *LocalStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "upload"
	}
	return name
}
