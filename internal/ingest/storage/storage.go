// Package storage keeps uploaded business plan documents on local disk.
// Paths returned here are stable and recorded on the business_plans rows.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStore saves and serves business plan files under a base directory.
type FileStore struct {
	baseDir string
	planDir string
}

// New creates the upload directories if needed.
func New(baseDir string) (*FileStore, error) {
	planDir := filepath.Join(baseDir, "business_plans")
	if err := os.MkdirAll(planDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{baseDir: baseDir, planDir: planDir}, nil
}

// SavePlan writes the document and returns its path, stored file name, and
// size. The name embeds the project id and a timestamp so repeated uploads
// never collide.
func (s *FileStore) SavePlan(projectID, originalName string, r io.Reader) (string, string, int64, error) {
	name := fmt.Sprintf("%s_%s_%s", projectID, time.Now().Format("20060102_150405"), sanitize(originalName))
	path := filepath.Join(s.planDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", "", 0, fmt.Errorf("create file: %w", err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", "", 0, fmt.Errorf("write file: %w", err)
	}
	return path, name, size, nil
}

// PlanPath resolves a stored file name back to its on-disk path.
func (s *FileStore) PlanPath(fileName string) string {
	return filepath.Join(s.planDir, filepath.Base(fileName))
}

// Exists reports whether the file is still on disk.
func (s *FileStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Size returns the file size in bytes.
func (s *FileStore) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Delete removes a file, best effort. It never fails the caller.
func (s *FileStore) Delete(path string) bool {
	return os.Remove(path) == nil
}

func sanitize(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
