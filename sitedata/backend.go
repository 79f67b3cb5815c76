// Package sitedata persists the site content document, the slide collection and
// gallery image metadata behind a database or file backend.
package sitedata

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

// Logical keys used by the stores.
const (
	ContentKey = "site_content"
	SlidesKey  = "slides"
	ImagesKey  = "images"
)

// Backend stores keyed JSON documents and keyed ordered JSON collections.
// Writes replace the stored value in full.
type Backend interface {
	// ReadDocument returns ErrNotFound when key has never been written.
	ReadDocument(ctx context.Context, key string) (json.RawMessage, error)
	WriteDocument(ctx context.Context, key string, doc json.RawMessage) error
	// CreateDocument writes doc only if key has no document yet and reports
	// whether it did.
	CreateDocument(ctx context.Context, key string, doc json.RawMessage) (bool, error)
	// ReadCollection returns an empty slice when key has never been written.
	ReadCollection(ctx context.Context, key string) ([]json.RawMessage, error)
	WriteCollection(ctx context.Context, key string, items []json.RawMessage) error
	Close() error
}

// Options select and configure the backend. They are read once at startup.
type Options struct {
	UseDatabase bool
	DatabaseURL string // sqlite path or postgres:// URL
	DataDir     string // directory for the file backend
}

// Open returns the backend chosen by opts.
func Open(ctx context.Context, opts Options) (Backend, error) {
	if opts.UseDatabase {
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("sitedata: database url is required")
		}
		return OpenDatabase(ctx, opts.DatabaseURL)
	}
	if opts.DataDir == "" {
		return nil, fmt.Errorf("sitedata: data dir is required")
	}
	return NewFileBackend(opts.DataDir)
}

var reKey = regexp.MustCompile(`^[a-z0-9_-]+$`)

func checkKey(key string) error {
	if !reKey.MatchString(key) {
		return invalidf("bad storage key %q", key)
	}
	return nil
}
