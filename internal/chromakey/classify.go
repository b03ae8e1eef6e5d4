package chromakey

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/lucasb-eyer/go-colorful"
)

// chroma is a color projected onto the hue/saturation plane plus its value.
type chroma struct {
	x, y float64
	v    float64
}

func toChroma(c colorful.Color) chroma {
	h, s, v := c.Hsv()
	rad := h * math.Pi / 180
	return chroma{x: s * math.Cos(rad), y: s * math.Sin(rad), v: v}
}

// Distance returns the key distance of a color: the euclidean distance of
// the two chroma vectors (saturation times the unit hue vector) combined with
// the brightness difference scaled by lumaWeight.
//
// A backdrop that is lit unevenly keeps its hue and saturation, so with a
// small lumaWeight its pixels stay close to the key. Range is
// [0, sqrt(4+lumaWeight^2)].
func Distance(c colorful.Color, key KeyColor, lumaWeight float64) float64 {
	return chromaDistance(toChroma(c), toChroma(key.colorful()), lumaWeight)
}

func chromaDistance(p, k chroma, lumaWeight float64) float64 {
	dx := p.x - k.x
	dy := p.y - k.y
	dv := lumaWeight * (p.v - k.v)
	return math.Sqrt(dx*dx + dy*dy + dv*dv)
}

// membership maps a distance onto [0,1] through the threshold band.
func membership(d float64, t Thresholds) float64 {
	if d <= t.Low {
		return 0
	}
	if d >= t.High {
		return 1
	}
	// Low < d < High here, so the band is never empty.
	return clamp01((d - t.Low) / (t.High - t.Low))
}

// Classify computes the raw subject mask of img against key.
//
// Every pixel is classified independently; rows are processed in parallel.
func Classify(img *RGB, key KeyColor, t Thresholds, lumaWeight float64) (*Mask, error) {
	const op = "classify"
	if err := img.validate(op); err != nil {
		return nil, err
	}
	if err := t.validate(op); err != nil {
		return nil, err
	}
	if math.IsNaN(lumaWeight) || lumaWeight < 0 {
		return nil, paramError(op, "luminance_weight", lumaWeight, "must be >= 0")
	}

	k := toChroma(key.colorful())
	w := img.Width
	out := NewMask(w, img.Height)
	parallel.Line(img.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				p := toChroma(colorful.Color{R: img.R[i], G: img.G[i], B: img.B[i]})
				out.Values[i] = membership(chromaDistance(p, k, lumaWeight), t)
			}
		}
	})
	return out, nil
}
