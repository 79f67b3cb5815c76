package sitedata

import (
	"bytes"
	"encoding/json"
)

// Document is the site content: a JSON object of named sections. Sections the
// engine does not know about are carried through unchanged.
type Document map[string]json.RawMessage

// About is the "about" section.
type About struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Service is one entry of the "services" section.
type Service struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// GalleryItem is one entry of the "galerie" section.
type GalleryItem struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Image       string `json:"image"`
	Description string `json:"description,omitempty"`
}

// Distinction is one entry of the "distinctions" section.
type Distinction struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
}

const defaultDocumentJSON = `{"about":{"title":"","text":""},"services":[],"galerie":[],"legal":"","distinctions":[]}`

// DefaultDocument returns the document materialized on first read.
func DefaultDocument() Document {
	var d Document
	_ = json.Unmarshal([]byte(defaultDocumentJSON), &d)
	return d
}

// ParseDocument decodes raw into a Document. Anything other than a JSON
// object is rejected with ErrInvalidPayload.
func ParseDocument(raw []byte) (Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, invalidf("content must be a JSON object")
	}
	var d Document
	if err := json.Unmarshal(trimmed, &d); err != nil {
		return nil, invalidf("content is not valid JSON: %v", err)
	}
	return d, nil
}

// About returns the about section, or its zero value if missing or malformed.
func (d Document) About() About {
	return section[About](d, "about")
}

// Services returns the services section, or nil if missing or malformed.
func (d Document) Services() []Service {
	return section[[]Service](d, "services")
}

// Gallery returns the galerie section, or nil if missing or malformed.
func (d Document) Gallery() []GalleryItem {
	return section[[]GalleryItem](d, "galerie")
}

// Legal returns the legal text.
func (d Document) Legal() string {
	return section[string](d, "legal")
}

// Distinctions returns the distinctions section, or nil if missing or malformed.
func (d Document) Distinctions() []Distinction {
	return section[[]Distinction](d, "distinctions")
}

func section[T any](d Document, name string) T {
	var v T
	raw, ok := d[name]
	if !ok {
		return v
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero
	}
	return v
}
