package chromakey

import (
	"github.com/anthonynsimon/bild/parallel"
)

// Refine cleans up a raw mask with an erosion and a dilation pass.
//
// With Opening the mask is eroded then dilated, which removes subject specks
// no larger than the erosion radius while regrowing the remaining boundary.
// Closing runs the passes the other way round and fills small holes. A zero
// radius skips its pass, so Refine(m, 0, 0, order) equals m. Radii above
// MaxMorphRadius are rejected.
func Refine(m *Mask, erosionRadius, dilationRadius int, order MorphOrder) (*Mask, error) {
	const op = "refine"
	if err := m.validate(op); err != nil {
		return nil, err
	}
	if err := checkRadius(op, "erosion_radius", erosionRadius, MaxMorphRadius); err != nil {
		return nil, err
	}
	if err := checkRadius(op, "dilation_radius", dilationRadius, MaxMorphRadius); err != nil {
		return nil, err
	}

	switch order {
	case Opening:
		return morph(morph(m, erosionRadius, minOf), dilationRadius, maxOf), nil
	case Closing:
		return morph(morph(m, dilationRadius, maxOf), erosionRadius, minOf), nil
	}
	return nil, paramError(op, "morph_order", order, "must be opening or closing")
}

// Erode replaces every value with the minimum of its (2r+1)x(2r+1) neighborhood.
func Erode(m *Mask, radius int) (*Mask, error) {
	return Refine(m, radius, 0, Opening)
}

// Dilate replaces every value with the maximum of its (2r+1)x(2r+1) neighborhood.
func Dilate(m *Mask, radius int) (*Mask, error) {
	return Refine(m, 0, radius, Opening)
}

func minOf(a, b float64) float64 {
	if b < a {
		return b
	}
	return a
}

func maxOf(a, b float64) float64 {
	if b > a {
		return b
	}
	return a
}

// morph applies a square rank filter as a horizontal then a vertical pass.
// Each pass reads from its own input snapshot and writes a fresh buffer.
// Out-of-grid neighbors are replicated from the nearest border pixel, so a
// window wider than the grid sees the same values as one that just spans it.
func morph(m *Mask, radius int, pick func(a, b float64) float64) *Mask {
	if radius == 0 {
		return m.Clone()
	}
	w, h := m.Width, m.Height
	rx, ry := min(radius, w-1), min(radius, h-1)

	rows := NewMask(w, h)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			src := m.Values[y*w : (y+1)*w]
			dst := rows.Values[y*w : (y+1)*w]
			for x := 0; x < w; x++ {
				v := src[clampInt(x-rx, 0, w-1)]
				for dx := -rx + 1; dx <= rx; dx++ {
					v = pick(v, src[clampInt(x+dx, 0, w-1)])
				}
				dst[x] = v
			}
		}
	})

	out := NewMask(w, h)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				v := rows.Values[clampInt(y-ry, 0, h-1)*w+x]
				for dy := -ry + 1; dy <= ry; dy++ {
					v = pick(v, rows.Values[clampInt(y+dy, 0, h-1)*w+x])
				}
				out.Values[y*w+x] = v
			}
		}
	})
	return out
}
