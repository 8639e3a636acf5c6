// Package imaging produces local placeholder images so the pipeline can keep
// moving when the remote image service is unavailable.
package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultWidth  = 1024
	defaultHeight = 1024
)

// ParseResolution reads "W:H" or "WxH" into pixel dimensions, falling back to
// 1024x1024 for anything malformed.
func ParseResolution(res string) (int, int) {
	res = strings.TrimSpace(res)
	sep := ":"
	if !strings.Contains(res, sep) {
		sep = "x"
	}
	parts := strings.SplitN(res, sep, 2)
	if len(parts) != 2 {
		return defaultWidth, defaultHeight
	}
	w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return defaultWidth, defaultHeight
	}
	return w, h
}

// WritePlaceholder renders a flat light panel with a darker header band and
// saves it as a JPEG at path. The band hints "this is a stand-in" without
// needing font rendering.
func WritePlaceholder(path, resolution string) error {
	w, h := ParseResolution(resolution)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{245, 245, 245, 255}}, image.Point{}, draw.Src)

	bandHeight := h / 8
	if bandHeight < 16 {
		bandHeight = 16
	}
	band := image.Rect(0, 0, w, bandHeight)
	draw.Draw(img, band, &image.Uniform{color.RGBA{200, 204, 210, 255}}, image.Point{}, draw.Src)

	border := color.RGBA{160, 164, 170, 255}
	for x := 0; x < w; x++ {
		img.Set(x, 0, border)
		img.Set(x, h-1, border)
	}
	for y := 0; y < h; y++ {
		img.Set(0, y, border)
		img.Set(w-1, y, border)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 92}); err != nil {
		return err
	}
	return f.Close()
}
