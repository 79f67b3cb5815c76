package showcase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/showcase/sitedata"
)

func textView(format string, args ...func(Page) any) func(Page) templ.Component {
	return func(p Page) templ.Component {
		return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			vals := make([]any, len(args))
			for i, fn := range args {
				vals[i] = fn(p)
			}
			_, err := fmt.Fprintf(w, format, vals...)
			return err
		})
	}
}

func staticView(body string) func() templ.Component {
	return func() templ.Component {
		return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			_, err := io.WriteString(w, body)
			return err
		})
	}
}

func testViews() ViewFuncs {
	return ViewFuncs{
		Home: textView("home %s slides=%d",
			func(p Page) any { return p.Site.Name },
			func(p Page) any { return len(p.Slides) }),
		About: textView("about %s",
			func(p Page) any { return p.Content.About().Title }),
		NotFound:    staticView("custom not found"),
		ServerError: staticView("custom server error"),
	}
}

func TestPagesRenderCurrentContent(t *testing.T) {
	app, tc := newTestApp(t, testViews())
	ctx := context.Background()

	rec := tc.do(http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "home Test Site slides=0", rec.Body.String())
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))

	_, err := app.Content.Save(ctx, []byte(`{"about":{"title":"Atelier","text":""}}`))
	require.NoError(t, err)
	_, err = app.Slides.Create(ctx, sitedata.Slide{ID: "one"})
	require.NoError(t, err)

	rec = tc.do(http.MethodGet, "/about/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "about Atelier", rec.Body.String())

	rec = tc.do(http.MethodGet, "/", nil, "")
	assert.Equal(t, "home Test Site slides=1", rec.Body.String())
}

func TestPagesWithoutViewAreNotRouted(t *testing.T) {
	_, tc := newTestApp(t, testViews())

	rec := tc.do(http.MethodGet, "/legal/", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "custom not found", rec.Body.String())
}

func TestAPINotFoundIsJSON(t *testing.T) {
	_, tc := newTestApp(t, testViews())

	rec := tc.json(http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", errorMessage(t, rec))
}

func TestPageStorageFailureRendersErrorView(t *testing.T) {
	backend := brokenBackend{err: &sitedata.StorageError{Op: "read", Key: "site_content", Kind: sitedata.ErrStorageUnavailable, Err: os.ErrPermission}}
	_, tc := newTestApp(t, testViews(), WithBackend(backend))

	rec := tc.do(http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "custom server error", rec.Body.String())
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func (tc *testClient) upload(filename string, data []byte) *http.Response {
	tc.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	require.NoError(tc.t, err)
	_, err = part.Write(data)
	require.NoError(tc.t, err)
	require.NoError(tc.t, mw.Close())
	return tc.do(http.MethodPost, "/api/images", &body, mw.FormDataContentType()).Result()
}

func TestImageUploadListDelete(t *testing.T) {
	app, tc := newTestApp(t, ViewFuncs{}, asAdmin())

	resp := tc.upload("My Photo.png", testPNG(t, 1000, 500))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var first imageResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&first))
	assert.Equal(t, "my-photo.jpg", first.Filename)
	assert.Equal(t, "My Photo.png", first.OriginalName)
	assert.Equal(t, 800, first.Width)
	assert.Equal(t, 400, first.Height)
	assert.Equal(t, "/public/uploads/my-photo.jpg", first.URL)
	assert.FileExists(t, filepath.Join(app.Config.StaticDir, "uploads", "my-photo.jpg"))

	resp = tc.upload("my photo.png", testPNG(t, 20, 10))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var second imageResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&second))
	assert.Equal(t, "my-photo-2.jpg", second.Filename)
	assert.Equal(t, 20, second.Width)

	rec := tc.json(http.MethodGet, "/api/images", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []imageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "my-photo.jpg", listed[0].Filename)
	assert.Equal(t, "my-photo-2.jpg", listed[1].Filename)

	rec = tc.json(http.MethodDelete, "/api/images/my-photo.jpg", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NoFileExists(t, filepath.Join(app.Config.StaticDir, "uploads", "my-photo.jpg"))

	images, err := app.Images.List(context.Background())
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "my-photo-2.jpg", images[0].Filename)
}

// imageRecordFailure stores everything except the image collection.
type imageRecordFailure struct {
	sitedata.Backend
}

func (f imageRecordFailure) WriteCollection(ctx context.Context, key string, items []json.RawMessage) error {
	if key == sitedata.ImagesKey {
		return &sitedata.StorageError{Op: "write collection", Key: key, Kind: sitedata.ErrStorageUnavailable, Err: os.ErrPermission}
	}
	return f.Backend.WriteCollection(ctx, key, items)
}

func TestImageUploadRemovesFileWhenRecordFails(t *testing.T) {
	backend, err := sitedata.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	app, tc := newTestApp(t, ViewFuncs{}, asAdmin(), WithBackend(imageRecordFailure{Backend: backend}))

	resp := tc.upload("photo.png", testPNG(t, 20, 10))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NoFileExists(t, filepath.Join(app.Config.StaticDir, "uploads", "photo.jpg"))

	entries, err := os.ReadDir(filepath.Join(app.Config.StaticDir, "uploads"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImageUploadRejectsNonImage(t *testing.T) {
	app, tc := newTestApp(t, ViewFuncs{}, asAdmin())

	resp := tc.upload("notes.png", []byte("definitely not a png"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	images, err := app.Images.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestImageDeleteRejectsHiddenNames(t *testing.T) {
	_, tc := newTestApp(t, ViewFuncs{}, asAdmin())

	rec := tc.json(http.MethodDelete, "/api/images/.hidden", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"  Déjà  vu!  ", "d-j-vu"},
		{"already-slugged", "already-slugged"},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
	assert.Equal(t, "image", slugifyFilename("???.png"))
	assert.Equal(t, "holiday-2024", slugifyFilename("/tmp/Holiday 2024.jpeg"))
}
