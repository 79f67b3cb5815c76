package sitedata

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDocumentAccessorsFallBackToEmpty(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"about":"not an object","services":{"id":"x"},"legal":7}`))
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}
	if got := doc.About(); got != (About{}) {
		t.Errorf("About() = %+v, want zero", got)
	}
	if got := doc.Services(); got != nil {
		t.Errorf("Services() = %+v, want nil", got)
	}
	if got := doc.Legal(); got != "" {
		t.Errorf("Legal() = %q, want empty", got)
	}
	if got := doc.Gallery(); got != nil {
		t.Errorf("Gallery() = %+v, want nil", got)
	}
	if got := doc.Distinctions(); got != nil {
		t.Errorf("Distinctions() = %+v, want nil", got)
	}
}

func TestDocumentAccessors(t *testing.T) {
	doc, err := ParseDocument([]byte(`{
		"services": [{"id": "s1", "title": "Design"}, {"id": "s2"}],
		"galerie": [{"id": "g1", "image": "/a.jpg"}],
		"distinctions": [{"id": "d1", "title": "Prize", "date": "2021"}]
	}`))
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}
	services := doc.Services()
	if len(services) != 2 || services[0].Title != "Design" || services[1].ID != "s2" {
		t.Errorf("Services() = %+v", services)
	}
	if g := doc.Gallery(); len(g) != 1 || g[0].Image != "/a.jpg" {
		t.Errorf("Gallery() = %+v", g)
	}
	if d := doc.Distinctions(); len(d) != 1 || d[0].Date != "2021" {
		t.Errorf("Distinctions() = %+v", d)
	}
}

func TestDefaultDocumentShape(t *testing.T) {
	doc := DefaultDocument()
	for _, name := range []string{"about", "services", "galerie", "legal", "distinctions"} {
		if _, ok := doc[name]; !ok {
			t.Errorf("default document lacks %q", name)
		}
	}
	// Each call returns an independent map.
	doc["legal"] = json.RawMessage(`"changed"`)
	if DefaultDocument().Legal() != "" {
		t.Error("DefaultDocument shares state between calls")
	}
}

func TestSlideJSON(t *testing.T) {
	s, err := ParseSlide([]byte(`{"id": 1700000000000, "title": "Welcome", "order": 2}`))
	if err != nil {
		t.Fatalf("ParseSlide failed: %v", err)
	}
	if s.ID != "1700000000000" {
		t.Errorf("ID = %q, want numeric literal", s.ID)
	}
	if _, ok := s.Fields["id"]; ok {
		t.Error("id must not be duplicated in Fields")
	}

	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	assertJSONEqual(t, out, []byte(`{"id":1700000000000,"title":"Welcome","order":2}`))

	s.ID = "renamed"
	out, err = json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	assertJSONEqual(t, out, []byte(`{"id":"renamed","title":"Welcome","order":2}`))

	noID, err := ParseSlide([]byte(`{"id": null, "title": "x"}`))
	if err != nil {
		t.Fatalf("ParseSlide failed: %v", err)
	}
	if noID.ID != "" {
		t.Errorf("null id parsed as %q", noID.ID)
	}

	for _, body := range []string{`[]`, `null`, `"slide"`, `{"id": true}`, `{`} {
		if _, err := ParseSlide([]byte(body)); !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("ParseSlide(%q) error = %v, want ErrInvalidPayload", body, err)
		}
	}
}
