package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	return NewLocalStorage(t.TempDir(), zerolog.Nop())
}

func TestValidate(t *testing.T) {
	s := newTestStorage(t)

	cases := []struct {
		name     string
		filename string
		size     int64
		wantErr  bool
	}{
		{"jpg ok", "photo.jpg", 1024, false},
		{"uppercase extension ok", "PHOTO.JPG", 1024, false},
		{"png ok", "shot.png", maxFileSize, false},
		{"pdf rejected", "scan.pdf", 1024, true},
		{"no extension rejected", "photo", 1024, true},
		{"oversize rejected", "huge.jpg", maxFileSize + 1, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.Validate(tc.filename, tc.size)
			if tc.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("Validate() error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestStoreWritesUUIDNamedFile(t *testing.T) {
	s := newTestStorage(t)

	ref, err := s.Store(context.Background(), "original.jpeg", bytes.NewReader([]byte("image-bytes")), "reports")
	if err != nil {
		t.Fatalf("Store() error: %v", err)
	}

	if !strings.HasPrefix(ref, "reports/") {
		t.Errorf("ref = %q, want reports/ prefix", ref)
	}
	if !strings.HasSuffix(ref, ".jpeg") {
		t.Errorf("ref = %q, want .jpeg suffix", ref)
	}
	if strings.Contains(ref, "original") {
		t.Errorf("ref %q leaks the original filename", ref)
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, filepath.FromSlash(ref)))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Errorf("stored content = %q", data)
	}
}

func TestStoreEnforcesSizeWhileCopying(t *testing.T) {
	s := newTestStorage(t)

	big := bytes.NewReader(make([]byte, maxFileSize+1))
	if _, err := s.Store(context.Background(), "big.png", big, "reports"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Store() error = %v, want ErrValidation", err)
	}

	// The partial file must not survive.
	entries, err := os.ReadDir(filepath.Join(s.baseDir, "reports"))
	if err != nil {
		t.Fatalf("reading category dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("partial upload left behind: %v", entries)
	}
}

func TestStoreRejectsBadExtension(t *testing.T) {
	s := newTestStorage(t)

	if _, err := s.Store(context.Background(), "run.sh", strings.NewReader("x"), "reports"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Store() error = %v, want ErrValidation", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStorage(t)

	ref, err := s.Store(context.Background(), "a.png", strings.NewReader("x"), "profiles")
	if err != nil {
		t.Fatalf("Store() error: %v", err)
	}

	removed, err := s.Delete(ref)
	if err != nil || !removed {
		t.Fatalf("Delete() = (%v, %v), want (true, nil)", removed, err)
	}

	removed, err = s.Delete(ref)
	if err != nil || removed {
		t.Fatalf("second Delete() = (%v, %v), want (false, nil)", removed, err)
	}
}

func TestDeleteRejectsTraversal(t *testing.T) {
	s := newTestStorage(t)

	for _, ref := range []string{"../etc/passwd", "/etc/passwd", "."} {
		if _, err := s.Delete(ref); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Delete(%q) error = %v, want ErrValidation", ref, err)
		}
	}
}
