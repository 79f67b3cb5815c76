package sitedata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Slide is one carousel entry: an id plus arbitrary display fields. It
// serializes as a flat JSON object.
type Slide struct {
	ID     string
	Fields map[string]json.RawMessage

	// numericID is the id literal when it was decoded from a JSON number.
	// It is written back as a number while ID still matches it.
	numericID json.RawMessage
}

func (s Slide) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(s.Fields)+1)
	for k, v := range s.Fields {
		m[k] = v
	}
	if s.numericID != nil && string(s.numericID) == s.ID {
		m["id"] = s.numericID
	} else {
		id, err := json.Marshal(s.ID)
		if err != nil {
			return nil, err
		}
		m["id"] = id
	}
	return json.Marshal(m)
}

func (s *Slide) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if m == nil {
		return errors.New("slide must be a JSON object")
	}
	s.ID = ""
	s.numericID = nil
	if raw, ok := m["id"]; ok {
		delete(m, "id")
		id, numeric, err := decodeID(raw)
		if err != nil {
			return err
		}
		s.ID = id
		if numeric {
			s.numericID = json.RawMessage(id)
		}
	}
	s.Fields = m
	return nil
}

// decodeID accepts string and numeric ids; numbers keep their literal form
// and are reported as numeric.
func decodeID(raw json.RawMessage) (id string, numeric bool, err error) {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, false, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true, nil
	}
	return "", false, fmt.Errorf("slide id must be a string, got %s", raw)
}

// Text returns the string field name, or "" if absent or not a string.
func (s Slide) Text(name string) string {
	var v string
	if raw, ok := s.Fields[name]; ok {
		_ = json.Unmarshal(raw, &v)
	}
	return v
}

// ParseSlide decodes a request body into a Slide.
func ParseSlide(raw []byte) (Slide, error) {
	var s Slide
	if err := json.Unmarshal(raw, &s); err != nil {
		return Slide{}, invalidf("slide: %v", err)
	}
	return s, nil
}

// SlideStore manages the ordered slide collection. Every mutation reads the
// collection, changes it and writes it back whole.
type SlideStore struct {
	backend Backend
	newID   func() (string, error)
}

// NewSlideStore returns a SlideStore over b that assigns UUIDv7 ids.
func NewSlideStore(b Backend) *SlideStore {
	return &SlideStore{backend: b, newID: newSlideID}
}

func newSlideID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// maxIDAttempts bounds retries when a generated id is already taken.
const maxIDAttempts = 8

// List returns the slides in order. It never returns nil on success.
func (s *SlideStore) List(ctx context.Context) ([]Slide, error) {
	items, err := s.backend.ReadCollection(ctx, SlidesKey)
	if err != nil {
		return nil, err
	}
	slides := make([]Slide, 0, len(items))
	for i, raw := range items {
		var sl Slide
		if err := json.Unmarshal(raw, &sl); err != nil {
			return nil, corrupt("read collection", SlidesKey, fmt.Errorf("slide %d: %w", i, err))
		}
		slides = append(slides, sl)
	}
	return slides, nil
}

// Create appends slide, assigning an id when it has none. An explicit id
// that is already in use fails with ErrConflict.
func (s *SlideStore) Create(ctx context.Context, slide Slide) (Slide, error) {
	slides, err := s.List(ctx)
	if err != nil {
		return Slide{}, err
	}
	taken := make(map[string]struct{}, len(slides))
	for _, sl := range slides {
		taken[sl.ID] = struct{}{}
	}
	if slide.ID == "" {
		id, err := s.uniqueID(taken)
		if err != nil {
			return Slide{}, err
		}
		slide.ID = id
	} else if _, ok := taken[slide.ID]; ok {
		return Slide{}, fmt.Errorf("%w: slide %q already exists", ErrConflict, slide.ID)
	}
	slides = append(slides, slide)
	if err := s.save(ctx, slides); err != nil {
		return Slide{}, err
	}
	return slide, nil
}

func (s *SlideStore) uniqueID(taken map[string]struct{}) (string, error) {
	for range maxIDAttempts {
		id, err := s.newID()
		if err != nil {
			return "", fmt.Errorf("generate slide id: %w", err)
		}
		if _, ok := taken[id]; !ok && id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: no free slide id after %d attempts", ErrConflict, maxIDAttempts)
}

// Update replaces the slide with the same id, keeping its position. When no
// slide matches, the collection is written back unchanged and slide is
// returned as given.
func (s *SlideStore) Update(ctx context.Context, slide Slide) (Slide, error) {
	if slide.ID == "" {
		return Slide{}, invalidf("slide id is required")
	}
	slides, err := s.List(ctx)
	if err != nil {
		return Slide{}, err
	}
	for i := range slides {
		if slides[i].ID == slide.ID {
			slides[i] = slide
		}
	}
	if err := s.save(ctx, slides); err != nil {
		return Slide{}, err
	}
	return slide, nil
}

// Delete removes every slide with id. Deleting a missing id succeeds.
func (s *SlideStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return invalidf("slide id is required")
	}
	slides, err := s.List(ctx)
	if err != nil {
		return err
	}
	kept := slides[:0]
	for _, sl := range slides {
		if sl.ID != id {
			kept = append(kept, sl)
		}
	}
	return s.save(ctx, kept)
}

func (s *SlideStore) save(ctx context.Context, slides []Slide) error {
	items := make([]json.RawMessage, 0, len(slides))
	for _, sl := range slides {
		data, err := json.Marshal(sl)
		if err != nil {
			return invalidf("encode slide %q: %v", sl.ID, err)
		}
		items = append(items, data)
	}
	return s.backend.WriteCollection(ctx, SlidesKey, items)
}
