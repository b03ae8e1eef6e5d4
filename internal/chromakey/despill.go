package chromakey

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// Rec. 601 luma weights, indexed by Channel.
var lumaWeights = [3]float64{0.299, 0.587, 0.114}

// Despill removes backdrop tint reflected onto the subject near its edges.
//
// The spill channel is the key's dominant channel. Its excess over the mean
// of the other two channels is the spill. Pixels whose excess is above
// threshold and whose mask value m lies strictly between 0 and 1 lose
// strength*(1-m)*excess from the spill channel; the luminance this removes is
// added back evenly to all three channels so the pixel turns neutral rather
// than darker. Fully background and fully subject pixels, and pixels
// without excess, are copied unchanged. Strength 0 returns an exact copy.
func Despill(img *RGB, m *Mask, key KeyColor, strength, threshold float64) (*RGB, error) {
	const op = "despill"
	if err := sameSize(op, img, m); err != nil {
		return nil, err
	}
	if !inUnit(strength) {
		return nil, paramError(op, "despill_strength", strength, "must be in [0,1]")
	}
	if !inUnit(threshold) {
		return nil, paramError(op, "despill_threshold", threshold, "must be in [0,1]")
	}

	out := img.Clone()
	if strength == 0 {
		return out, nil
	}

	spill := key.SpillChannel()
	planes := [3][]float64{out.R, out.G, out.B}
	s, o1, o2 := planes[spill], planes[(spill+1)%3], planes[(spill+2)%3]
	restore := lumaWeights[spill]

	w := img.Width
	parallel.Line(img.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				mv := m.Values[i]
				if mv <= 0 || mv >= 1 {
					continue
				}
				excess := s[i] - (o1[i]+o2[i])/2
				if excess <= threshold || excess <= 0 {
					continue
				}
				delta := strength * (1 - mv) * excess
				lift := restore * delta
				s[i] = clamp01(s[i] - delta + lift)
				o1[i] = clamp01(o1[i] + lift)
				o2[i] = clamp01(o2[i] + lift)
			}
		}
	})
	return out, nil
}

// SpillExcess returns the spill of a single color against key, or 0 when the
// spill channel does not exceed the mean of the other two.
func SpillExcess(r, g, b float64, key KeyColor) float64 {
	c := [3]float64{r, g, b}
	spill := key.SpillChannel()
	e := c[spill] - (c[(spill+1)%3]+c[(spill+2)%3])/2
	return math.Max(e, 0)
}
