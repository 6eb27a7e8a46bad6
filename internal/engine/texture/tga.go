package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types handled by decodeTGA.
const (
	tgaTrueColor    = 2
	tgaGray         = 3
	tgaTrueColorRLE = 10
	tgaGrayRLE      = 11
)

var errTGATruncated = errors.New("tga: data truncated")

// decodeTGA decodes uncompressed or RLE true-color (24/32 bit) and
// grayscale (8 bit) TGA images.
func decodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < 18 {
		return nil, errTGATruncated
	}
	idLen := int(data[0])
	if data[1] != 0 {
		return nil, errors.New("tga: color-mapped images not supported")
	}
	kind := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topDown := data[17]&0x20 != 0

	gray := kind == tgaGray || kind == tgaGrayRLE
	switch {
	case kind != tgaTrueColor && kind != tgaTrueColorRLE && !gray:
		return nil, fmt.Errorf("tga: unsupported image type %d", kind)
	case gray && bpp != 8:
		return nil, fmt.Errorf("tga: unsupported grayscale depth %d", bpp)
	case !gray && bpp != 24 && bpp != 32:
		return nil, fmt.Errorf("tga: unsupported depth %d", bpp)
	case width == 0 || height == 0:
		return nil, errors.New("tga: empty image")
	}
	if 18+idLen > len(data) {
		return nil, errTGATruncated
	}
	src := data[18+idLen:]
	step := bpp / 8

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	put := func(n int, px []byte) {
		x, y := n%width, n/width
		if !topDown {
			y = height - 1 - y
		}
		c := color.RGBA{A: 0xff}
		if gray {
			c.R, c.G, c.B = px[0], px[0], px[0]
		} else {
			c.R, c.G, c.B = px[2], px[1], px[0]
			if step == 4 {
				c.A = px[3]
			}
		}
		img.SetRGBA(x, y, c)
	}

	total := width * height
	if kind == tgaTrueColor || kind == tgaGray {
		if len(src) < total*step {
			return nil, errTGATruncated
		}
		for n := 0; n < total; n++ {
			put(n, src[n*step:])
		}
		return img, nil
	}

	n, i := 0, 0
	for n < total {
		if i >= len(src) {
			return nil, errTGATruncated
		}
		header := src[i]
		i++
		count := int(header&0x7f) + 1
		if header&0x80 != 0 {
			if i+step > len(src) {
				return nil, errTGATruncated
			}
			for ; count > 0 && n < total; count-- {
				put(n, src[i:])
				n++
			}
			i += step
			continue
		}
		for ; count > 0 && n < total; count-- {
			if i+step > len(src) {
				return nil, errTGATruncated
			}
			put(n, src[i:])
			n++
			i += step
		}
	}
	return img, nil
}
