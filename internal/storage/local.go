package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalSource reads reference files from a directory.
type LocalSource struct {
	basePath string
}

// NewLocalSource creates a local source rooted at basePath, which must exist.
func NewLocalSource(basePath string) (*LocalSource, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("reference path %s is not a directory", basePath)
	}
	return &LocalSource{basePath: basePath}, nil
}

func (s *LocalSource) Name() string { return "local" }

// Fetch opens the resource's file under the base directory.
func (s *LocalSource) Fetch(ctx context.Context, res Resource) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath := filepath.Join(s.basePath, res.FileName)
	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, res.FileName)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}
