package showcase

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	"github.com/eringen/showcase/sitedata"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

// imageResponse is an Image plus the public URL it is served from.
type imageResponse struct {
	sitedata.Image
	URL string `json:"url"`
}

func imageURL(filename string) string {
	return path.Join("/public", uploadsSubdir, filename)
}

// processImage decodes an image from src, resizes it down to maxImageWidth
// if wider, and encodes it as JPEG.
func processImage(src io.Reader, originalName string) (sitedata.Image, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return sitedata.Image{}, nil, fmt.Errorf("%w: decode image: %v", sitedata.ErrInvalidPayload, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return sitedata.Image{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return sitedata.Image{
		Filename:     slugifyFilename(originalName) + ".jpg",
		OriginalName: originalName,
		Width:        w,
		Height:       h,
		Size:         buf.Len(),
		UploadedAt:   time.Now().UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}

func (a *App) uploadsDir() string {
	return filepath.Join(a.Config.StaticDir, uploadsSubdir)
}

// ensureUniqueFilename appends a counter until the name is free both on disk
// and in the image collection.
func (a *App) ensureUniqueFilename(ctx context.Context, img *sitedata.Image) error {
	base := strings.TrimSuffix(img.Filename, ".jpg")
	candidate := img.Filename
	for counter := 2; ; counter++ {
		_, statErr := os.Stat(filepath.Join(a.uploadsDir(), candidate))
		if statErr != nil && !os.IsNotExist(statErr) {
			return fmt.Errorf("stat upload: %w", statErr)
		}
		recorded, err := a.Images.Exists(ctx, candidate)
		if err != nil {
			return err
		}
		if os.IsNotExist(statErr) && !recorded {
			break
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
	img.Filename = candidate
	return nil
}

func (a *App) handleImageUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return fmt.Errorf("%w: no image file provided", sitedata.ErrInvalidPayload)
	}
	if file.Size > maxUploadSize {
		return fmt.Errorf("%w: file too large (max 10MB)", sitedata.ErrInvalidPayload)
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, data, err := processImage(src, file.Filename)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := a.ensureUniqueFilename(ctx, &img); err != nil {
		return err
	}

	dir := a.uploadsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	dest := filepath.Join(dir, img.Filename)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}

	if err := a.Images.Add(ctx, img); err != nil {
		if rmErr := os.Remove(dest); rmErr != nil {
			c.Logger().Errorf("remove unrecorded upload %s: %v", dest, rmErr)
		}
		return err
	}
	c.Logger().Infof("image %s uploaded by %s", img.Filename, adminName(c))
	return c.JSON(http.StatusOK, imageResponse{Image: img, URL: imageURL(img.Filename)})
}

func (a *App) handleImageDelete(c echo.Context) error {
	filename := c.Param("filename")
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return fmt.Errorf("%w: invalid filename", sitedata.ErrInvalidPayload)
	}

	// A file already gone from disk still has its record removed.
	_ = os.Remove(filepath.Join(a.uploadsDir(), filename))

	if err := a.Images.Delete(c.Request().Context(), filename); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (a *App) handleImageList(c echo.Context) error {
	images, err := a.Images.List(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]imageResponse, 0, len(images))
	for _, img := range images {
		out = append(out, imageResponse{Image: img, URL: imageURL(img.Filename)})
	}
	return c.JSON(http.StatusOK, out)
}
