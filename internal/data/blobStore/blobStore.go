package blobStore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/avanth/docuquery/internal/domain/docModel"
	"github.com/avanth/docuquery/pkg/logger_i"
)

// LocalBlobStore keeps uploaded files on disk under a single directory.
// Locators are bare file names, never paths, so a stored locator can not
// escape the directory.
type LocalBlobStore struct {
	dir    string
	logger *logger_i.Logger
}

func NewLocalBlobStore(dir string) (*LocalBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory %s: %w", dir, err)
	}
	return &LocalBlobStore{
		dir:    dir,
		logger: logger_i.NewLogger("Blob Store :"),
	}, nil
}

// Save writes data under a fresh unique name derived from the upload's
// original file name and returns the locator.
func (b *LocalBlobStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	locator := uuid.NewString() + "_" + sanitizeName(name)
	fullPath := filepath.Join(b.dir, locator)

	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing blob %s: %w", locator, err)
	}
	b.logger.Debug("blob saved", "locator", locator, "bytes", len(data))
	return locator, nil
}

func (b *LocalBlobStore) Path(locator string) string {
	return filepath.Join(b.dir, filepath.Base(locator))
}

// sanitizeName strips directory components and characters that make file
// names awkward on disk.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." {
		name = "upload"
	}
	return name
}

var _ docModel.BlobStore = (*LocalBlobStore)(nil)
