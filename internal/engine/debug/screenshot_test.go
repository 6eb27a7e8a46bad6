package debug

import (
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/orrery/internal/engine/gpu/gputest"
)

func TestFromBottomUp(t *testing.T) {
	// Two rows: bottom red, top blue.
	pix := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	img, err := FromBottomUp(pix, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("top pixel = %v, want blue", got)
	}
	if got := img.RGBAAt(0, 1); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("bottom pixel = %v, want red", got)
	}
}

func TestFromBottomUpSizeMismatch(t *testing.T) {
	if _, err := FromBottomUp(make([]byte, 7), 1, 2); err == nil {
		t.Error("expected size error")
	}
	if _, err := FromBottomUp(nil, 0, 0); err == nil {
		t.Error("expected error for empty frame")
	}
}

func TestCaptureWritesPNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	s := NewScreenshotter(dir, "orrery")
	s.Now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 5, 0, time.UTC) }

	dev := gputest.New(1)
	dev.Width, dev.Height = 4, 3
	path, err := s.Capture(dev)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if want := filepath.Join(dir, "orrery_2024-03-01_12-30-05.000.png"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("size = %v", b)
	}
	// The device's white first row is the bottom of the image.
	if r, _, _, _ := img.At(0, 2).RGBA(); r != 0xffff {
		t.Errorf("bottom row not white")
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); r != 0 {
		t.Errorf("top row not black")
	}
}

type failingReader struct{}

func (failingReader) ReadPixels() ([]byte, int, int, error) {
	return nil, 0, 0, errors.New("no context")
}

func TestCaptureReadError(t *testing.T) {
	s := NewScreenshotter(t.TempDir(), "x")
	if _, err := s.Capture(failingReader{}); err == nil {
		t.Error("expected read error")
	}
}
