// Package storage keeps uploaded images on the local disk
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultMaxBytes is the upload limit when none is configured
	DefaultMaxBytes int64 = 5 << 20
	// PublicPrefix is the path prefix of stored references, served statically
	PublicPrefix = "uploads"
)

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".webp": true,
}

var allowedTypes = []string{"image/jpeg", "image/png", "image/webp"}

// ImageStore saves an uploaded image and returns the reference to store on a record
type ImageStore interface {
	Save(file *multipart.FileHeader) (string, error)
}

// LocalImageStore writes images into a directory. Files are not removed when
// the record that references them later fails to save.
type LocalImageStore struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

func NewLocalImageStore(dir string, maxBytes int64) (*LocalImageStore, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &LocalImageStore{dir: dir, maxBytes: maxBytes, now: time.Now}, nil
}

// Dir is the directory served under /uploads
func (s *LocalImageStore) Dir() string {
	return s.dir
}

func (s *LocalImageStore) Save(file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", models.NewValidationError("Image file is required")
	}
	if file.Size > s.maxBytes {
		return "", models.NewValidationError(fmt.Sprintf("Image must be at most %d bytes", s.maxBytes))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", models.NewValidationError("Only jpeg, jpg, png and webp images are allowed")
	}

	src, err := file.Open()
	if err != nil {
		return "", models.NewInternalError("failed to open upload", err)
	}
	defer src.Close()

	// Read one byte past the limit so oversized bodies with a lying header are caught
	data, err := io.ReadAll(io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		return "", models.NewInternalError("failed to read upload", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", models.NewValidationError(fmt.Sprintf("Image must be at most %d bytes", s.maxBytes))
	}

	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), allowedTypes...) {
		return "", models.NewValidationError("Only jpeg, jpg, png and webp images are allowed")
	}

	name := fmt.Sprintf("image-%d-%s%s", s.now().UnixMilli(), uuid.NewString()[:8], ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", models.NewInternalError("failed to store upload", err)
	}

	log.WithFields(log.Fields{
		"file":      name,
		"mime_type": detected.String(),
		"size":      len(data),
	}).Debug("Image stored")
	return PublicPrefix + "/" + name, nil
}
