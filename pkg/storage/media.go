package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MediaStore persists verification images and audio on local disk.
// Files are grouped per student under the base directory.
type MediaStore struct {
	baseDir string
	tempDir string
}

// NewMediaStore ensures the base and temp directories exist.
func NewMediaStore(baseDir, tempDir string) (*MediaStore, error) {
	if baseDir == "" {
		baseDir = "./media"
	}
	if tempDir == "" {
		tempDir = filepath.Join(baseDir, "tmp")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp media directory: %w", err)
	}
	return &MediaStore{baseDir: baseDir, tempDir: tempDir}, nil
}

// Save writes the given bytes under uploads/<studentID>/<filename> and
// returns the relative key.
func (s *MediaStore) Save(studentID, filename string, data []byte) (string, error) {
	key := fmt.Sprintf("uploads/%s/%d_%s", studentID, time.Now().UnixMilli(), sanitize(filename))
	path := s.resolve(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare media directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}
	return key, nil
}

// SaveStream copies from reader into a temp file and returns the temp key.
func (s *MediaStore) SaveStream(filename string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), sanitize(filename))
	path := filepath.Join(s.tempDir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create temp media file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write temp media stream: %w", err)
	}
	return name, nil
}

// Promote moves a staged temp file into the student's upload directory and
// returns the final key. The temp file is left behind on failure so the
// cleanup job can reap it.
func (s *MediaStore) Promote(tempName, studentID string) (string, error) {
	key := fmt.Sprintf("uploads/%s/%s", studentID, sanitize(tempName))
	path := s.resolve(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare media directory: %w", err)
	}
	if err := os.Rename(filepath.Join(s.tempDir, tempName), path); err != nil {
		return "", fmt.Errorf("promote temp media file: %w", err)
	}
	return key, nil
}

// Open returns a read-only handle for the stored file.
func (s *MediaStore) Open(key string) (*os.File, error) {
	return os.Open(s.resolve(key))
}

// CleanupTemp removes temp uploads older than maxAge and reports the count.
func (s *MediaStore) CleanupTemp(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		return 0, fmt.Errorf("read temp media directory: %w", err)
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.tempDir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func (s *MediaStore) resolve(key string) string {
	cleaned := filepath.Clean("/" + key)
	return filepath.Join(s.baseDir, cleaned)
}

func sanitize(filename string) string {
	filename = filepath.Base(filename)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, filename)
}
