package sitedata

import (
	"context"
	"encoding/json"
	"fmt"
)

// Image is metadata for an uploaded gallery image.
type Image struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Size         int    `json:"size"`
	UploadedAt   string `json:"uploaded_at"`
}

// ImageStore keeps image metadata as an ordered collection, newest last.
type ImageStore struct {
	backend Backend
}

// NewImageStore returns an ImageStore over b.
func NewImageStore(b Backend) *ImageStore {
	return &ImageStore{backend: b}
}

// List returns all images in upload order.
func (s *ImageStore) List(ctx context.Context) ([]Image, error) {
	items, err := s.backend.ReadCollection(ctx, ImagesKey)
	if err != nil {
		return nil, err
	}
	images := make([]Image, 0, len(items))
	for i, raw := range items {
		var img Image
		if err := json.Unmarshal(raw, &img); err != nil {
			return nil, corrupt("read collection", ImagesKey, fmt.Errorf("image %d: %w", i, err))
		}
		images = append(images, img)
	}
	return images, nil
}

// Exists reports whether an image with filename is recorded.
func (s *ImageStore) Exists(ctx context.Context, filename string) (bool, error) {
	images, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, img := range images {
		if img.Filename == filename {
			return true, nil
		}
	}
	return false, nil
}

// Add appends img, replacing any earlier record with the same filename.
func (s *ImageStore) Add(ctx context.Context, img Image) error {
	images, err := s.List(ctx)
	if err != nil {
		return err
	}
	images = append(removeImage(images, img.Filename), img)
	return s.save(ctx, images)
}

// Delete removes the record for filename. Missing records are ignored.
func (s *ImageStore) Delete(ctx context.Context, filename string) error {
	images, err := s.List(ctx)
	if err != nil {
		return err
	}
	return s.save(ctx, removeImage(images, filename))
}

func removeImage(images []Image, filename string) []Image {
	kept := images[:0]
	for _, img := range images {
		if img.Filename != filename {
			kept = append(kept, img)
		}
	}
	return kept
}

func (s *ImageStore) save(ctx context.Context, images []Image) error {
	items := make([]json.RawMessage, 0, len(images))
	for _, img := range images {
		data, err := json.Marshal(img)
		if err != nil {
			return err
		}
		items = append(items, data)
	}
	return s.backend.WriteCollection(ctx, ImagesKey, items)
}
