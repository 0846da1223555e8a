package storage

import (
	"os"
	"path/filepath"
	"strings"
)

// FileKV stores each value as one file under a base directory, with a total
// capacity ceiling across all values. It models the browser storage substrate:
// a small, hard-capped blob store that refuses writes past its quota instead
// of failing halfway.
type FileKV struct {
	baseDir  string
	maxBytes int64 // 0 = unlimited
}

// NewFileKV creates the base directory if needed.
func NewFileKV(baseDir string, maxBytes int64) (*FileKV, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &FileKV{baseDir: baseDir, maxBytes: maxBytes}, nil
}

func (s *FileKV) Get(name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *FileKV) Set(name string, data []byte) error {
	if s.maxBytes > 0 {
		used, err := s.usedBytes(name)
		if err != nil {
			return err
		}
		if used+int64(len(data)) > s.maxBytes {
			return ErrQuotaExceeded
		}
	}
	// Atomic write: temp file in the same directory, then rename.
	tmp, err := os.CreateTemp(s.baseDir, ".kv-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (s *FileKV) Remove(name string) error {
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// usedBytes sums the sizes of every stored value except the one being
// replaced.
func (s *FileKV) usedBytes(exclude string) (int64, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".dat") {
			continue
		}
		if entry.Name() == exclude+".dat" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

func (s *FileKV) path(name string) string {
	return filepath.Join(s.baseDir, name+".dat")
}
