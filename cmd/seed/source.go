package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/stockpilot/backend-go/internal/config"
	"github.com/andresuchdata/stockpilot/backend-go/internal/storage"
	"github.com/urfave/cli/v2"
)

// seedSource resolves a seed file name to a readable local path.
type seedSource interface {
	fetch(ctx context.Context, name string) (string, error)
}

type dirSource struct {
	dir string
}

func (s dirSource) fetch(ctx context.Context, name string) (string, error) {
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// objectSource downloads seed files from an object storage prefix.
type objectSource struct {
	client  storage.ObjectStorage
	prefix  string
	destDir string
	keys    map[string]bool
}

func newSeedSource(c *cli.Context) (seedSource, error) {
	prefix := strings.TrimSpace(c.String("s3-prefix"))
	if prefix == "" {
		return dirSource{dir: c.String("data-dir")}, nil
	}

	client, err := storage.NewS3Client(config.Load().Storage)
	if err != nil {
		return nil, err
	}
	return newObjectSource(c.Context, client, prefix, c.String("download-dir"))
}

func newObjectSource(ctx context.Context, client storage.ObjectStorage, prefix, destDir string) (*objectSource, error) {
	if destDir == "" {
		destDir = "./data/tmp/seed"
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure download dir %s: %w", destDir, err)
	}

	objects, err := client.ListObjects(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects for prefix %s: %w", prefix, err)
	}

	keys := make(map[string]bool)
	for _, obj := range objects {
		if strings.HasSuffix(strings.ToLower(obj.Key), ".csv") {
			keys[obj.Key] = true
		}
	}

	return &objectSource{client: client, prefix: prefix, destDir: destDir, keys: keys}, nil
}

func (s *objectSource) fetch(ctx context.Context, name string) (string, error) {
	key := resolveObjectKey(s.prefix, name)
	if !s.keys[key] {
		return "", fmt.Errorf("object %s: %w", key, os.ErrNotExist)
	}

	localPath := filepath.Join(s.destDir, objectRelativePath(s.prefix, key))
	if err := s.client.DownloadObject(ctx, key, localPath); err != nil {
		return "", err
	}
	return localPath, nil
}

func resolveObjectKey(prefix, override string) string {
	if override == "" {
		return strings.TrimSpace(prefix)
	}
	if prefix == "" {
		return strings.TrimPrefix(override, "/")
	}

	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	overrideTrimmed := strings.TrimPrefix(strings.TrimSpace(override), "/")

	if strings.HasPrefix(overrideTrimmed, prefixTrimmed) {
		return overrideTrimmed
	}
	return fmt.Sprintf("%s/%s", prefixTrimmed, overrideTrimmed)
}

func objectRelativePath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	rel := strings.TrimPrefix(key, prefixTrimmed+"/")
	if rel == "" {
		return filepath.Base(key)
	}
	return rel
}
