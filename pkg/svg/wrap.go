// Package svg embeds raster images in SVG containers. The output is a
// base64 data URI inside an <image> element, not a traced vector.
package svg

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/spf13/afero"
)

// MIME types used for embedded payloads.
const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
)

const wrapperTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">
    <image width="%d" height="%d" xlink:href="data:%s;base64,%s"/>
</svg>
`

// Wrap builds an SVG document embedding the given encoded raster bytes.
func Wrap(mime string, data []byte, width, height int) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf(wrapperTemplate, width, height, width, height, width, height, mime, encoded)
}

// EncodeRaster re-encodes a decoded image for embedding. Images with
// transparency keep PNG; opaque images become JPEG at the given quality.
func EncodeRaster(img image.Image, quality int) ([]byte, string, error) {
	if quality <= 0 || quality > 100 {
		quality = 95
	}

	var buf bytes.Buffer
	if isOpaque(img) {
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", fmt.Errorf("encode jpeg: %w", err)
		}
		return buf.Bytes(), MIMEJPEG, nil
	}

	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), MIMEPNG, nil
}

func isOpaque(img image.Image) bool {
	if op, ok := img.(interface{ Opaque() bool }); ok {
		return op.Opaque()
	}
	return false
}

// WrapImage encodes an image and wraps it in an SVG document.
func WrapImage(img image.Image, quality int) (string, error) {
	data, mime, err := EncodeRaster(img, quality)
	if err != nil {
		return "", err
	}
	bounds := img.Bounds()
	return Wrap(mime, data, bounds.Dx(), bounds.Dy()), nil
}

// WrapPNG wraps already-encoded PNG bytes without re-encoding.
func WrapPNG(data []byte) (string, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode png dimensions: %w", err)
	}
	return Wrap(MIMEPNG, data, cfg.Width, cfg.Height), nil
}

// Write stores an SVG document, gzip-compressed when compress is set
// (the SVGZ convention).
func Write(fs afero.Fs, path, document string, compress bool) error {
	if !compress {
		if err := afero.WriteFile(fs, path, []byte(document), 0o644); err != nil {
			return fmt.Errorf("write svg: %w", err)
		}
		return nil
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(document)); err != nil {
		return fmt.Errorf("compress svg: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("finalize svgz: %w", err)
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write svgz: %w", err)
	}
	return nil
}
