package chromakey

import (
	"image"

	"github.com/disintegration/imaging"
)

// Stats counts output pixels by opacity.
type Stats struct {
	Width       int `json:"width"`
	Height      int `json:"height"`
	Transparent int `json:"transparent"` // alpha == 0
	Partial     int `json:"partial"`     // 0 < alpha < 255
	Opaque      int `json:"opaque"`      // alpha == 255
}

// Result holds the output image and every intermediate mask of a run.
type Result struct {
	Image     *image.NRGBA
	Key       KeySample
	Raw       *Mask // Classifier output
	Refined   *Mask // After erosion/dilation
	Feathered *Mask // After feathering; the alpha before source alpha is applied
	Stats     Stats
}

// Remove runs the full chroma-key pipeline on src.
//
// The stages run in a fixed order: classify, refine, feather, despill,
// composite. Each stage produces new buffers; src is only read. When src has
// an alpha channel of its own, the output alpha is the feathered mask
// multiplied by it. Remove either returns a complete result or an error.
func Remove(src image.Image, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, inputError("remove", "nil image")
	}
	if b := src.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, inputError("remove", "image has zero size %dx%d", b.Dx(), b.Dy())
	}

	norm := imaging.Clone(src)
	img := fromNRGBA(norm)
	key, err := ResolveKey(norm, p.Key)
	if err != nil {
		return nil, err
	}

	raw, err := Classify(img, key.Key, p.Thresholds(), p.LuminanceWeight)
	if err != nil {
		return nil, err
	}
	refined, err := Refine(raw, p.ErosionRadius, p.DilationRadius, p.MorphOrder)
	if err != nil {
		return nil, err
	}
	feathered, err := Feather(refined, p.FeatherRadius, p.FeatherKernel)
	if err != nil {
		return nil, err
	}

	weight := feathered
	if p.DespillWeight == RefinedMask {
		weight = refined
	}
	despilled, err := Despill(img, weight, key.Key, p.DespillStrength, p.DespillThreshold)
	if err != nil {
		return nil, err
	}

	alpha := feathered
	if img.Alpha != nil {
		alpha = feathered.Clone()
		for i, a := range img.Alpha {
			alpha.Values[i] = clamp01(alpha.Values[i] * a)
		}
	}
	out, err := Composite(despilled, alpha)
	if err != nil {
		return nil, err
	}

	return &Result{
		Image:     out,
		Key:       key,
		Raw:       raw,
		Refined:   refined,
		Feathered: feathered,
		Stats:     CountAlpha(out),
	}, nil
}

// RemoveBackground is Remove returning only the output image.
func RemoveBackground(src image.Image, p Params) (*image.NRGBA, error) {
	res, err := Remove(src, p)
	if err != nil {
		return nil, err
	}
	return res.Image, nil
}

// CountAlpha tallies transparent, partial and opaque pixels of img.
func CountAlpha(img *image.NRGBA) Stats {
	b := img.Bounds()
	st := Stats{Width: b.Dx(), Height: b.Dy()}
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for x := 0; x < b.Dx(); x++ {
			switch row[x*4+3] {
			case 0:
				st.Transparent++
			case 255:
				st.Opaque++
			default:
				st.Partial++
			}
		}
	}
	return st
}
