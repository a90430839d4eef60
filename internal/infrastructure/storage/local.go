// Package storage persists uploaded images on the local filesystem. Files are
// renamed to random UUIDs under a per-category directory so user-supplied
// names never reach the disk.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
)

const maxFileSize = 5 << 20 // 5 MiB

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
}

// LocalStorage implements ports.FileStorage on top of a base directory.
type LocalStorage struct {
	baseDir string
	log     zerolog.Logger
}

// NewLocalStorage creates a LocalStorage rooted at baseDir. The directory is
// created on first Store, not here.
func NewLocalStorage(baseDir string, log zerolog.Logger) *LocalStorage {
	return &LocalStorage{baseDir: baseDir, log: log}
}

// Validate rejects files with a disallowed extension or a size over 5 MiB.
func (s *LocalStorage) Validate(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return fmt.Errorf("%w: file type %q is not allowed", domain.ErrValidation, ext)
	}
	if size > maxFileSize {
		return fmt.Errorf("%w: file exceeds the %d byte limit", domain.ErrValidation, maxFileSize)
	}
	return nil
}

// Store writes the content under baseDir/<category>/<uuid><ext> and returns
// the reference path relative to baseDir. The size limit is enforced again
// while copying so a lying Content-Length cannot bypass Validate.
func (s *LocalStorage) Store(ctx context.Context, filename string, content io.Reader, category string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: file type %q is not allowed", domain.ErrValidation, ext)
	}

	dir := filepath.Join(s.baseDir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(content, maxFileSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > maxFileSize {
		err = fmt.Errorf("%w: file exceeds the %d byte limit", domain.ErrValidation, maxFileSize)
	}
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("path", path).Msg("failed to remove partial upload")
		}
		return "", err
	}

	return filepath.ToSlash(filepath.Join(category, name)), nil
}

// Delete removes a previously stored file. It reports false without error when
// the file is already gone, and refuses references that escape the base dir.
func (s *LocalStorage) Delete(ref string) (bool, error) {
	clean := filepath.Clean(filepath.FromSlash(ref))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return false, fmt.Errorf("%w: invalid file reference", domain.ErrValidation)
	}

	err := os.Remove(filepath.Join(s.baseDir, clean))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("removing stored file: %w", err)
	}
	return true, nil
}
