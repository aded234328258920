package oembed

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Thumbnail is an existing preview image and its pixel size
type Thumbnail struct {
	URL    string
	Width  int
	Height int
}

// ThumbnailSource looks up the preview image of a chart.
// It returns nil, nil when the chart has no thumbnail.
type ThumbnailSource interface {
	Thumbnail(ctx context.Context, chartID string) (*Thumbnail, error)
}

// thumbnailNames are tried in order inside a chart's thumbnail directory
var thumbnailNames = []string{"full.png", "full.jpg", "full.webp"}

// FileThumbnails serves thumbnails rendered by the publish pipeline into
// <Dir>/<chart id>/ and exposed publicly below BaseURL.
type FileThumbnails struct {
	dir     string
	baseURL string
}

// NewFileThumbnails creates a filesystem thumbnail source
func NewFileThumbnails(dir, baseURL string) *FileThumbnails {
	return &FileThumbnails{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Thumbnail reads only the image header to get the pixel size.
func (f *FileThumbnails) Thumbnail(ctx context.Context, chartID string) (*Thumbnail, error) {
	if chartID == "" || chartID == "." || chartID == ".." || strings.ContainsAny(chartID, `/\`) {
		return nil, nil
	}

	for _, name := range thumbnailNames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(f.dir, chartID, name)
		width, height, err := decodeImageSize(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return &Thumbnail{
			URL:    f.baseURL + "/" + url.PathEscape(chartID) + "/" + name,
			Width:  width,
			Height: height,
		}, nil
	}
	return nil, nil
}

func decodeImageSize(path string) (int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = file.Close() }()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode thumbnail %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}
