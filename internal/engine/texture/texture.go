// Package texture decodes body and skybox images into RGBA pixels.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Decode decodes PNG, JPEG, BMP, WebP or TGA data. The name is only used
// to recognise TGA, which has no signature.
func Decode(name string, data []byte) (*image.RGBA, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err := decodeTGA(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		return img, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts any image to a zero-origin *image.RGBA.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// Solid returns a size x size image filled with c.
func Solid(c color.RGBA, size int) *image.RGBA {
	if size < 1 {
		size = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// Fallback is the texture substituted when a body's image is missing.
func Fallback() *image.RGBA {
	return Solid(color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}, 4)
}

// Opaque reports whether every pixel has full alpha.
func Opaque(img *image.RGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xff {
			return false
		}
	}
	return true
}

// LuminanceToAlpha turns an opaque mask into a translucent one in place:
// alpha takes the pixel's luminance. Images that already carry alpha are
// left alone.
func LuminanceToAlpha(img *image.RGBA) {
	if !Opaque(img) {
		return
	}
	for i := 0; i+3 < len(img.Pix); i += 4 {
		r, g, b := uint32(img.Pix[i]), uint32(img.Pix[i+1]), uint32(img.Pix[i+2])
		img.Pix[i+3] = uint8((299*r + 587*g + 114*b) / 1000)
	}
}
