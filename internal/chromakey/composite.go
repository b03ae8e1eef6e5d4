package chromakey

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"
)

// Composite joins color and mask into a non-premultiplied RGBA image. The
// mask becomes the alpha channel as is; nothing is blended with a background.
func Composite(img *RGB, m *Mask) (*image.NRGBA, error) {
	const op = "composite"
	if err := sameSize(op, img, m); err != nil {
		return nil, err
	}

	w := img.Width
	out := image.NewNRGBA(image.Rect(0, 0, w, img.Height))
	parallel.Line(img.Height, func(start, end int) {
		for y := start; y < end; y++ {
			row := out.Pix[y*out.Stride : y*out.Stride+w*4]
			for x := 0; x < w; x++ {
				i := y*w + x
				row[x*4+0] = to8(img.R[i])
				row[x*4+1] = to8(img.G[i])
				row[x*4+2] = to8(img.B[i])
				row[x*4+3] = to8(m.Values[i])
			}
		}
	})
	return out, nil
}
