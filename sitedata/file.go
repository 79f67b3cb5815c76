package sitedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend stores each key as <dir>/<key>.json. A write goes to a temp
// file in the same directory and is renamed over the target, so readers see
// either the old or the new content in full. Concurrent writers are not
// serialized: the last rename wins.
type FileBackend struct {
	dir string
}

// NewFileBackend creates dir if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, unavailable("open", "", err)
	}
	return &FileBackend{dir: dir}, nil
}

// Close is a no-op; the file backend holds no open handles between calls.
func (b *FileBackend) Close() error { return nil }

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, key+".json")
}

func (b *FileBackend) ReadDocument(_ context.Context, key string) (json.RawMessage, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("read document", key, err)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, corrupt("read document", key, err)
	}
	if obj == nil {
		return nil, corrupt("read document", key, fmt.Errorf("stored document is null"))
	}
	return json.RawMessage(data), nil
}

func (b *FileBackend) WriteDocument(_ context.Context, key string, doc json.RawMessage) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return b.replace("write document", key, doc)
}

// CreateDocument links a fully written temp file into place. The link fails
// if the target already exists, so an existing document is never replaced.
func (b *FileBackend) CreateDocument(_ context.Context, key string, doc json.RawMessage) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}
	tmpName, err := b.writeTemp("create document", key, doc)
	if err != nil {
		return false, err
	}
	defer os.Remove(tmpName)
	err = os.Link(tmpName, b.path(key))
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, unavailable("create document", key, err)
	}
	return true, nil
}

func (b *FileBackend) ReadCollection(_ context.Context, key string) ([]json.RawMessage, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, unavailable("read collection", key, err)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, corrupt("read collection", key, err)
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}

func (b *FileBackend) WriteCollection(_ context.Context, key string, items []json.RawMessage) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return invalidf("encode collection %q: %v", key, err)
	}
	return b.replace("write collection", key, data)
}

// replace writes data to a temp file, syncs it and renames it over the target.
func (b *FileBackend) replace(op, key string, data []byte) error {
	tmpName, err := b.writeTemp(op, key, data)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpName, b.path(key)); err != nil {
		os.Remove(tmpName)
		return unavailable(op, key, err)
	}
	return nil
}

// writeTemp writes data to a synced temp file next to the target and
// returns its name.
func (b *FileBackend) writeTemp(op, key string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(b.dir, key+".*.tmp")
	if err != nil {
		return "", unavailable(op, key, err)
	}
	tmpName := tmp.Name()
	fail := func(err error) (string, error) {
		tmp.Close()
		os.Remove(tmpName)
		return "", unavailable(op, key, err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", unavailable(op, key, err)
	}
	return tmpName, nil
}
