package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const metaSuffix = ".ctype"

// LocalStorage stores objects on the local filesystem. The declared
// content type is kept in a sidecar file next to each object so it
// survives process restarts.
type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

func (s *LocalStorage) fullPath(path string) (string, error) {
	if path == "" || strings.Contains(path, "..") {
		return "", fmt.Errorf("invalid object path %q", path)
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(path)), nil
}

func (s *LocalStorage) Upload(_ context.Context, path string, contentType string, data []byte) error {
	full, err := s.fullPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	if err := os.WriteFile(full+metaSuffix, []byte(contentType), 0644); err != nil {
		os.Remove(full)
		return fmt.Errorf("write object metadata: %w", err)
	}
	return nil
}

func (s *LocalStorage) Download(_ context.Context, path string) (*Object, error) {
	full, err := s.fullPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read object: %w", err)
	}
	contentType := "application/octet-stream"
	if meta, err := os.ReadFile(full + metaSuffix); err == nil {
		contentType = string(meta)
	}
	return &Object{Data: data, ContentType: contentType}, nil
}

func (s *LocalStorage) Delete(_ context.Context, path string) error {
	full, err := s.fullPath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("object %s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("remove object: %w", err)
	}
	os.Remove(full + metaSuffix)
	return nil
}

func (s *LocalStorage) List(_ context.Context, prefix string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, metaSuffix) {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, p)
		if err != nil {
			return err
		}
		objPath := filepath.ToSlash(rel)
		if strings.HasPrefix(objPath, prefix) {
			paths = append(paths, objPath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	return paths, nil
}
