package chromakey

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// Feather softens mask boundaries with a separable symmetric blur of width
// 2*radius+1, producing a gradual alpha transition.
//
// The weighted sum at every pixel is divided by the sum of the weights it
// used, so a locally constant region comes out unchanged. Neighbors outside
// the grid are replicated from the border. Radius 0 returns an equal copy;
// radii above MaxFeatherRadius are rejected.
func Feather(m *Mask, radius int, kernel FeatherKernel) (*Mask, error) {
	const op = "feather"
	if err := m.validate(op); err != nil {
		return nil, err
	}
	if err := checkRadius(op, "feather_radius", radius, MaxFeatherRadius); err != nil {
		return nil, err
	}
	if radius == 0 {
		return m.Clone(), nil
	}

	var weights []float64
	switch kernel {
	case Gaussian:
		weights = gaussianWeights(radius)
	case Box:
		weights = boxWeights(radius)
	default:
		return nil, paramError(op, "feather_kernel", kernel, "must be gaussian or box")
	}

	w, h := m.Width, m.Height
	rows := NewMask(w, h)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			src := m.Values[y*w : (y+1)*w]
			for x := 0; x < w; x++ {
				var acc, sum float64
				for k, wt := range weights {
					acc += wt * src[clampInt(x+k-radius, 0, w-1)]
					sum += wt
				}
				rows.Values[y*w+x] = clamp01(acc / sum)
			}
		}
	})

	out := NewMask(w, h)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				var acc, sum float64
				for k, wt := range weights {
					acc += wt * rows.Values[clampInt(y+k-radius, 0, h-1)*w+x]
					sum += wt
				}
				out.Values[y*w+x] = clamp01(acc / sum)
			}
		}
	})
	return out, nil
}

// gaussianWeights returns an unnormalized 1-D Gaussian for a 2r+1 tap
// kernel. Sigma follows the automatic choice OpenCV makes for a given
// kernel size: 0.3*((ksize-1)/2 - 1) + 0.8.
func gaussianWeights(radius int) []float64 {
	sigma := 0.3*float64(radius-1) + 0.8
	weights := make([]float64, 2*radius+1)
	for i := range weights {
		d := float64(i - radius)
		weights[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
	}
	return weights
}

func boxWeights(radius int) []float64 {
	weights := make([]float64, 2*radius+1)
	for i := range weights {
		weights[i] = 1
	}
	return weights
}
