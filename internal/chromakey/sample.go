package chromakey

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/stat"
)

// DefaultSampleSize is the patch size used when SampleRegion.Size is 0.
const DefaultSampleSize = 8

// UniformSpread is the largest per-channel standard deviation (in [0,1]
// units) for which a sampled backdrop is reported as uniform.
const UniformSpread = 0.08

// KeySample is a resolved key color and, for sampled sources, the spread of
// the pixels it was computed from.
type KeySample struct {
	Key     KeyColor   `json:"key"`
	Hex     string     `json:"hex"`
	Sampled bool       `json:"sampled"`
	Pixels  int        `json:"pixels,omitempty"`
	StdDev  [3]float64 `json:"std_dev,omitempty"`
	Uniform bool       `json:"uniform"`
}

// ResolveKey turns a KeyColorSource into a concrete key color.
//
// Fixed sources resolve to their color. Sampled sources crop the region out
// of img and take the per-channel mean of its pixels. Region coordinates are
// relative to the top-left corner of img.
func ResolveKey(img image.Image, src KeyColorSource) (KeySample, error) {
	const op = "resolve key"
	switch src.Kind {
	case KeyFixed:
		return KeySample{Key: src.Color, Hex: src.Color.Hex(), Uniform: true}, nil
	case KeySampled:
	default:
		return KeySample{}, paramError(op, "key", src.Kind, "unknown key color source")
	}

	if img == nil {
		return KeySample{}, inputError(op, "nil image")
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return KeySample{}, inputError(op, "image has zero size %dx%d", w, h)
	}
	if err := src.Region.validate(op); err != nil {
		return KeySample{}, err
	}
	rects, err := src.Region.rects(w, h)
	if err != nil {
		return KeySample{}, err
	}

	var rs, gs, bs []float64
	for _, r := range rects {
		patch := imaging.Crop(img, r.Add(b.Min))
		pw, ph := patch.Bounds().Dx(), patch.Bounds().Dy()
		for y := 0; y < ph; y++ {
			row := patch.Pix[y*patch.Stride : y*patch.Stride+pw*4]
			for x := 0; x < pw; x++ {
				rs = append(rs, float64(row[x*4+0])/255)
				gs = append(gs, float64(row[x*4+1])/255)
				bs = append(bs, float64(row[x*4+2])/255)
			}
		}
	}
	if len(rs) == 0 {
		return KeySample{}, paramError(op, "region", src.Region, "region contains no pixels")
	}

	sample := KeySample{Sampled: true, Pixels: len(rs), Uniform: true}
	var mean [3]float64
	for ch, vals := range [3][]float64{rs, gs, bs} {
		m, sd := stat.MeanStdDev(vals, nil)
		if len(vals) < 2 || math.IsNaN(sd) {
			sd = 0
		}
		mean[ch] = m
		sample.StdDev[ch] = sd
		if sd > UniformSpread {
			sample.Uniform = false
		}
	}
	sample.Key = KeyColor{R: to8(mean[0]), G: to8(mean[1]), B: to8(mean[2])}
	sample.Hex = sample.Key.Hex()
	return sample, nil
}

func (r SampleRegion) validate(op string) error {
	switch r.Kind {
	case RegionCorners, RegionBorder:
		if r.Size < 0 {
			return paramError(op, "region.size", r.Size, "must be >= 0")
		}
	case RegionRect:
		if r.X1 < 0 || r.Y1 < 0 || r.X1 >= r.X2 || r.Y1 >= r.Y2 {
			return paramError(op, "region", r, "rect needs 0 <= x1 < x2 and 0 <= y1 < y2")
		}
	default:
		return paramError(op, "region.kind", r.Kind, "must be corners, border or rect")
	}
	return nil
}

// rects lists the rectangles covered by the region in a w x h image. The
// rectangles never overlap, so a patch or frame wider than half the image
// counts each pixel once.
func (r SampleRegion) rects(w, h int) ([]image.Rectangle, error) {
	size := r.Size
	if size == 0 {
		size = DefaultSampleSize
	}
	if size > w {
		size = w
	}
	if size > h {
		size = h
	}
	// Far edge strips start no earlier than where the near ones end.
	right, bottom := max(size, w-size), max(size, h-size)

	switch r.Kind {
	case RegionCorners:
		return nonEmpty(
			image.Rect(0, 0, size, size),
			image.Rect(right, 0, w, size),
			image.Rect(0, bottom, size, h),
			image.Rect(right, bottom, w, h),
		), nil
	case RegionBorder:
		return nonEmpty(
			image.Rect(0, 0, w, size),
			image.Rect(0, bottom, w, h),
			image.Rect(0, size, size, bottom),
			image.Rect(right, size, w, bottom),
		), nil
	case RegionRect:
		rect := image.Rect(r.X1, r.Y1, r.X2, r.Y2)
		if !rect.In(image.Rect(0, 0, w, h)) {
			return nil, paramError("resolve key", "region", r, "rect lies outside the image")
		}
		return []image.Rectangle{rect}, nil
	}
	return nil, paramError("resolve key", "region.kind", r.Kind, "must be corners, border or rect")
}

func nonEmpty(rects ...image.Rectangle) []image.Rectangle {
	out := rects[:0]
	for _, r := range rects {
		if !r.Empty() {
			out = append(out, r)
		}
	}
	return out
}
