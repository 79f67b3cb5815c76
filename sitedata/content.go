package sitedata

import (
	"context"
	"encoding/json"
	"errors"
)

// ContentStore reads and replaces the site content document. It keeps no
// state of its own; every call goes to the backend.
type ContentStore struct {
	backend Backend
}

// NewContentStore returns a ContentStore over b.
func NewContentStore(b Backend) *ContentStore {
	return &ContentStore{backend: b}
}

// Get returns the current document. On first use it persists and returns
// DefaultDocument, unless a concurrent Save got there first.
func (s *ContentStore) Get(ctx context.Context) (Document, error) {
	raw, err := s.backend.ReadDocument(ctx, ContentKey)
	if errors.Is(err, ErrNotFound) {
		return s.materializeDefault(ctx)
	}
	if err != nil {
		return nil, err
	}
	return decodeStored(raw)
}

// materializeDefault stores DefaultDocument if the key is still empty. When
// another writer created the document first, that document is returned.
func (s *ContentStore) materializeDefault(ctx context.Context) (Document, error) {
	doc := DefaultDocument()
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, invalidf("encode content: %v", err)
	}
	created, err := s.backend.CreateDocument(ctx, ContentKey, data)
	if err != nil {
		return nil, err
	}
	if created {
		return doc, nil
	}
	raw, err := s.backend.ReadDocument(ctx, ContentKey)
	if err != nil {
		return nil, err
	}
	return decodeStored(raw)
}

func decodeStored(raw json.RawMessage) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		return nil, corrupt("read document", ContentKey, errors.New("stored content is not a JSON object"))
	}
	return doc, nil
}

// Save replaces the whole document with raw, which must be a JSON object.
func (s *ContentStore) Save(ctx context.Context, raw []byte) (Document, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, err
	}
	if err := s.write(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *ContentStore) write(ctx context.Context, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return invalidf("encode content: %v", err)
	}
	return s.backend.WriteDocument(ctx, ContentKey, data)
}
