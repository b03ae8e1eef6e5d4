package chromakey

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"
)

// RGB is a planar floating point color buffer with channels in [0,1].
//
// Pixel (x, y) lives at index y*Width+x in each plane. Alpha is nil when the
// source image was fully opaque.
type RGB struct {
	Width  int
	Height int
	R      []float64
	G      []float64
	B      []float64
	Alpha  []float64
}

// NewRGB allocates a black, opaque buffer of the given size.
func NewRGB(width, height int) *RGB {
	n := width * height
	return &RGB{
		Width:  width,
		Height: height,
		R:      make([]float64, n),
		G:      make([]float64, n),
		B:      make([]float64, n),
	}
}

// FromImage converts any image.Image into an RGB buffer.
//
// The source is normalized to non-premultiplied NRGBA (origin at 0,0) first,
// so the caller's image is never read again after this returns.
func FromImage(img image.Image) (*RGB, error) {
	if img == nil {
		return nil, inputError("convert", "nil image")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, inputError("convert", "image has zero size %dx%d", b.Dx(), b.Dy())
	}

	return fromNRGBA(imaging.Clone(img)), nil
}

// fromNRGBA splits an NRGBA image with origin 0,0 into planes.
func fromNRGBA(src *image.NRGBA) *RGB {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	out := NewRGB(w, h)
	alpha := make([]float64, w*h)
	translucent := make([]bool, h)

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+w*4]
			for x := 0; x < w; x++ {
				i := y*w + x
				p := row[x*4 : x*4+4]
				out.R[i] = float64(p[0]) / 255
				out.G[i] = float64(p[1]) / 255
				out.B[i] = float64(p[2]) / 255
				alpha[i] = float64(p[3]) / 255
				if p[3] != 255 {
					translucent[y] = true
				}
			}
		}
	})

	for _, t := range translucent {
		if t {
			out.Alpha = alpha
			break
		}
	}
	return out
}

// Clone returns a deep copy of the buffer.
func (c *RGB) Clone() *RGB {
	out := &RGB{
		Width:  c.Width,
		Height: c.Height,
		R:      append([]float64(nil), c.R...),
		G:      append([]float64(nil), c.G...),
		B:      append([]float64(nil), c.B...),
	}
	if c.Alpha != nil {
		out.Alpha = append([]float64(nil), c.Alpha...)
	}
	return out
}

func (c *RGB) validate(op string) error {
	if c == nil {
		return inputError(op, "nil image")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return inputError(op, "image has zero size %dx%d", c.Width, c.Height)
	}
	n := c.Width * c.Height
	if len(c.R) != n || len(c.G) != n || len(c.B) != n {
		return inputError(op, "channel length does not match %dx%d", c.Width, c.Height)
	}
	if c.Alpha != nil && len(c.Alpha) != n {
		return inputError(op, "alpha length does not match %dx%d", c.Width, c.Height)
	}
	return nil
}

// Mask is a single channel grid in [0,1]: 0 is background, 1 is subject.
type Mask struct {
	Width  int
	Height int
	Values []float64
}

// NewMask allocates an all-background mask.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Values: make([]float64, width*height)}
}

// At returns the mask value at (x, y).
func (m *Mask) At(x, y int) float64 {
	return m.Values[y*m.Width+x]
}

// Set stores a value at (x, y), clamped to [0,1].
func (m *Mask) Set(x, y int, v float64) {
	m.Values[y*m.Width+x] = clamp01(v)
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	return &Mask{Width: m.Width, Height: m.Height, Values: append([]float64(nil), m.Values...)}
}

// Equal reports whether both masks have the same size and identical values.
func (m *Mask) Equal(o *Mask) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.Width != o.Width || m.Height != o.Height || len(m.Values) != len(o.Values) {
		return false
	}
	for i, v := range m.Values {
		if v != o.Values[i] {
			return false
		}
	}
	return true
}

// ToGray renders the mask as an 8-bit grayscale image (white = subject).
func (m *Mask) ToGray() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			out.SetGray(x, y, color.Gray{Y: to8(m.At(x, y))})
		}
	}
	return out
}

func (m *Mask) validate(op string) error {
	if m == nil {
		return inputError(op, "nil mask")
	}
	if m.Width <= 0 || m.Height <= 0 {
		return inputError(op, "mask has zero size %dx%d", m.Width, m.Height)
	}
	if len(m.Values) != m.Width*m.Height {
		return inputError(op, "mask length %d does not match %dx%d", len(m.Values), m.Width, m.Height)
	}
	return nil
}

func sameSize(op string, c *RGB, m *Mask) error {
	if err := c.validate(op); err != nil {
		return err
	}
	if err := m.validate(op); err != nil {
		return err
	}
	if c.Width != m.Width || c.Height != m.Height {
		return inputError(op, "image %dx%d and mask %dx%d differ", c.Width, c.Height, m.Width, m.Height)
	}
	return nil
}

// clamp01 constrains v to [0,1]; NaN maps to 0.
func clamp01(v float64) float64 {
	if v > 0 {
		if v > 1 {
			return 1
		}
		return v
	}
	return 0
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

// clampInt constrains an index to [lo, hi]. Used for replicated borders.
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
