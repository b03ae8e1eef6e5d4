package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// PreviewOptions controls how a transparent image is rendered for viewing.
type PreviewOptions struct {
	// Background is a "#RRGGBB" or "#RGB" color to composite over; the "#"
	// is optional. Empty selects a checkerboard.
	Background string

	// CheckerSize is the checkerboard square size in pixels. Default 8.
	CheckerSize int

	// MaxWidth scales the preview down, preserving aspect ratio, when the
	// image is wider. Zero keeps the original size.
	MaxWidth int
}

// Preview composites img over a checkerboard or solid color and returns it
// as an opaque PNG, so MCP clients that drop alpha still show which pixels
// were keyed out.
func Preview(img image.Image, opts PreviewOptions) (*EncodedImage, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	var bg *image.NRGBA
	if opts.Background != "" {
		hex := strings.TrimSpace(opts.Background)
		if !strings.HasPrefix(hex, "#") {
			hex = "#" + hex
		}
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("invalid background color %q: %w", opts.Background, err)
		}
		r, g, bl := c.RGB255()
		bg = imaging.New(b.Dx(), b.Dy(), color.NRGBA{R: r, G: g, B: bl, A: 255})
	} else {
		size := opts.CheckerSize
		if size <= 0 {
			size = 8
		}
		bg = checkerboard(b.Dx(), b.Dy(), size)
	}

	out := imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
	if opts.MaxWidth > 0 && out.Bounds().Dx() > opts.MaxWidth {
		out = imaging.Resize(out, opts.MaxWidth, 0, imaging.Lanczos)
	}

	return EncodePNG(out)
}

var (
	checkerLight = color.NRGBA{204, 204, 204, 255}
	checkerDark  = color.NRGBA{153, 153, 153, 255}
)

func checkerboard(w, h, size int) *image.NRGBA {
	img := imaging.New(w, h, checkerLight)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/size+y/size)%2 == 1 {
				img.SetNRGBA(x, y, checkerDark)
			}
		}
	}
	return img
}
