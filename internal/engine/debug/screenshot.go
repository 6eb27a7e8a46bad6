// Package debug provides developer tooling for the running renderer.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/Faultbox/orrery/internal/engine/gpu"
)

// Screenshotter writes framebuffer captures as PNG files.
type Screenshotter struct {
	outputDir string
	prefix    string

	// Now stamps file names. Tests replace it.
	Now func() time.Time
}

// NewScreenshotter creates a capturer writing prefix_<timestamp>.png files into outputDir.
func NewScreenshotter(outputDir, prefix string) *Screenshotter {
	return &Screenshotter{outputDir: outputDir, prefix: prefix, Now: time.Now}
}

// Capture reads the framebuffer and saves it.
func (s *Screenshotter) Capture(r gpu.FrameReader) (string, error) {
	pix, w, h, err := r.ReadPixels()
	if err != nil {
		return "", fmt.Errorf("reading framebuffer: %w", err)
	}
	img, err := FromBottomUp(pix, w, h)
	if err != nil {
		return "", err
	}
	return s.Save(img)
}

// FromBottomUp builds an image from RGBA rows stored bottom row first,
// the order glReadPixels returns.
func FromBottomUp(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: %dx%d with %d bytes", width, height, len(pixels))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[src:src+rowSize])
	}
	return img, nil
}

// Save encodes img into a new timestamped file and returns its path.
func (s *Screenshotter) Save(img image.Image) (string, error) {
	if s.outputDir != "" {
		if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := s.filename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", filename, err)
	}
	return filename, nil
}

func (s *Screenshotter) filename() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	name := fmt.Sprintf("%s_%s.png", s.prefix, now().Format("2006-01-02_15-04-05.000"))
	if s.outputDir != "" {
		name = filepath.Join(s.outputDir, name)
	}
	return name
}
