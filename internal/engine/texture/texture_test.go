package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodePNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.Set(2, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	img, err := Decode("Earth.png", encodePNG(t, src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if got := img.RGBAAt(2, 1); got != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("pixel = %v", got)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode("Mars.jpg", []byte("not an image")); err == nil {
		t.Error("expected error")
	}
}

func tgaHeader(kind byte, w, h, bpp int, topDown bool) []byte {
	hdr := make([]byte, 18)
	hdr[2] = kind
	hdr[12], hdr[13] = byte(w), byte(w>>8)
	hdr[14], hdr[15] = byte(h), byte(h>>8)
	hdr[16] = byte(bpp)
	if topDown {
		hdr[17] = 0x20
	}
	return hdr
}

func TestDecodeTGAUncompressed(t *testing.T) {
	// 2x1, bottom-up, BGR.
	data := append(tgaHeader(tgaTrueColor, 2, 1, 24, false), 1, 2, 3, 4, 5, 6)
	img, err := Decode("ring.TGA", data)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{R: 3, G: 2, B: 1, A: 255}) {
		t.Errorf("pixel 0 = %v", got)
	}
	if got := img.RGBAAt(1, 0); got != (color.RGBA{R: 6, G: 5, B: 4, A: 255}) {
		t.Errorf("pixel 1 = %v", got)
	}
}

func TestDecodeTGAOrientation(t *testing.T) {
	// 1x2 grayscale: first stored row is the bottom unless top-down is set.
	bottomUp := append(tgaHeader(tgaGray, 1, 2, 8, false), 10, 20)
	img, err := Decode("a.tga", bottomUp)
	if err != nil {
		t.Fatal(err)
	}
	if img.RGBAAt(0, 1).R != 10 || img.RGBAAt(0, 0).R != 20 {
		t.Errorf("bottom-up rows misplaced: %v %v", img.RGBAAt(0, 0), img.RGBAAt(0, 1))
	}

	topDown := append(tgaHeader(tgaGray, 1, 2, 8, true), 10, 20)
	img, err = Decode("a.tga", topDown)
	if err != nil {
		t.Fatal(err)
	}
	if img.RGBAAt(0, 0).R != 10 || img.RGBAAt(0, 1).R != 20 {
		t.Errorf("top-down rows misplaced: %v %v", img.RGBAAt(0, 0), img.RGBAAt(0, 1))
	}
}

func TestDecodeTGARLE(t *testing.T) {
	// 4x1 top-down BGRA: run of 3 red pixels, then one raw green pixel.
	data := tgaHeader(tgaTrueColorRLE, 4, 1, 32, true)
	data = append(data, 0x82, 0, 0, 255, 128)
	data = append(data, 0x00, 0, 255, 0, 255)
	img, err := Decode("x.tga", data)
	if err != nil {
		t.Fatal(err)
	}
	for x := 0; x < 3; x++ {
		if got := img.RGBAAt(x, 0); got != (color.RGBA{R: 255, A: 128}) {
			t.Errorf("pixel %d = %v", x, got)
		}
	}
	if got := img.RGBAAt(3, 0); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("pixel 3 = %v", got)
	}
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := map[string][]byte{
		"short":       {1, 2, 3},
		"color-map":   func() []byte { h := tgaHeader(tgaTrueColor, 1, 1, 24, false); h[1] = 1; return h }(),
		"bad type":    tgaHeader(1, 1, 1, 8, false),
		"bad depth":   tgaHeader(tgaTrueColor, 1, 1, 16, false),
		"truncated":   append(tgaHeader(tgaTrueColor, 2, 2, 24, false), 1, 2, 3),
		"rle cut off": append(tgaHeader(tgaTrueColorRLE, 4, 1, 24, false), 0x83, 1),
		"empty":       tgaHeader(tgaTrueColor, 0, 0, 24, false),
	}
	for name, data := range tests {
		if _, err := decodeTGA(data); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestToRGBAOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 6))
	src.SetRGBA(6, 5, color.RGBA{R: 9, A: 255})
	out := ToRGBA(src)
	if out.Bounds().Min != (image.Point{}) {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	if out.RGBAAt(1, 0).R != 9 {
		t.Errorf("pixel not shifted: %v", out.RGBAAt(1, 0))
	}
}

func TestSolidAndFallback(t *testing.T) {
	img := Solid(color.RGBA{B: 200, A: 255}, 0)
	if img.Bounds().Dx() != 1 {
		t.Errorf("size clamped to %d", img.Bounds().Dx())
	}
	fb := Fallback()
	if !Opaque(fb) || fb.RGBAAt(0, 0).R != 0x80 {
		t.Errorf("unexpected fallback %v", fb.RGBAAt(0, 0))
	}
}

func TestLuminanceToAlpha(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.SetRGBA(1, 0, color.RGBA{A: 255})
	LuminanceToAlpha(img)
	if img.RGBAAt(0, 0).A != 255 || img.RGBAAt(1, 0).A != 0 {
		t.Errorf("alpha = %d, %d", img.RGBAAt(0, 0).A, img.RGBAAt(1, 0).A)
	}

	// Already translucent images keep their alpha.
	img.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	LuminanceToAlpha(img)
	if img.RGBAAt(0, 0).A != 255 || img.RGBAAt(1, 0).A != 0 {
		t.Error("translucent image modified")
	}
}
