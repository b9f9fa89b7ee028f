package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// tmpPattern names in-flight writes. Dot files are never listed.
const tmpPattern = ".partial-*"

type fileStore struct {
	dir string
}

// NewFileStore returns a Store keeping one file per key directly in dir.
// File names are the path-escaped keys, so "results/ab12" is stored as
// "results%2Fab12". A value becomes visible only once fully written.
func NewFileStore(dir string) Store {
	return &fileStore{dir: dir}
}

func (s *fileStore) List(ctx context.Context) ([]string, error) {
	dirents, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	keys := make([]string, 0, len(dirents))
	for _, d := range dirents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			continue
		}
		key, err := url.PathUnescape(d.Name())
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *fileStore) Load(ctx context.Context, keys ...string) ([]Entry, error) {
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(s.file(key))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		case err != nil:
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, key, err)
		}
		entries = append(entries, Entry{Key: key, Value: data})
	}
	return entries, nil
}

func (s *fileStore) Save(ctx context.Context, entries ...Entry) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.replace(s.file(e.Key), e.Value); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSaveFailed, e.Key, err)
		}
	}
	return nil
}

// replace writes data to a temporary file in the same directory and renames
// it over target.
func (s *fileStore) replace(target string, data []byte) (err error) {
	tmp, err := os.CreateTemp(s.dir, tmpPattern)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func (s *fileStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		err := os.Remove(s.file(key))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) file(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key))
}
