package main

import (
	"flag"
	"strings"

	"github.com/dotback/Gemini-Transparent-Background/internal/chromakey"
)

// keyFlags holds the keying flags shared by the remove and mask commands.
type keyFlags struct {
	key        *string
	region     *string
	sampleSize *int

	threshold *float64
	softBand  *float64
	luma      *float64

	erode  *int
	dilate *int
	order  *string

	feather *int
	kernel  *string

	despill          *float64
	despillThreshold *float64
	despillWeight    *string
}

func registerKeyFlags(fs *flag.FlagSet) *keyFlags {
	d := chromakey.DefaultParams()
	return &keyFlags{
		key:        fs.String("key", "green", `key color: green, blue, #RRGGBB or "auto" to sample the backdrop`),
		region:     fs.String("sample", "corners", "sample region for -key auto: corners or border"),
		sampleSize: fs.Int("sample-size", chromakey.DefaultSampleSize, "corner patch size or border width in pixels"),

		threshold: fs.Float64("threshold", d.EdgeThreshold, "color distance at or below which a pixel is background"),
		softBand:  fs.Float64("soft", d.SoftBand, "partial-alpha band above -threshold; 0 for a hard cut"),
		luma:      fs.Float64("luma", d.LuminanceWeight, "weight of brightness difference in the color distance"),

		erode:  fs.Int("erode", d.ErosionRadius, "erosion radius in pixels"),
		dilate: fs.Int("dilate", d.DilationRadius, "dilation radius in pixels"),
		order:  fs.String("order", "opening", "morphology order: opening (erode first) or closing"),

		feather: fs.Int("feather", d.FeatherRadius, "edge feather radius in pixels"),
		kernel:  fs.String("kernel", "gaussian", "feather kernel: gaussian or box"),

		despill:          fs.Float64("despill", d.DespillStrength, "despill strength in [0,1]"),
		despillThreshold: fs.Float64("despill-threshold", d.DespillThreshold, "minimum spill excess before correction"),
		despillWeight:    fs.String("despill-weight", "feathered", "mask weighting despill: feathered or refined"),
	}
}

func (f *keyFlags) params() (chromakey.Params, error) {
	p := chromakey.DefaultParams()

	if strings.EqualFold(*f.key, "auto") {
		p.Key = chromakey.SampledFromRegion(chromakey.SampleRegion{
			Kind: chromakey.RegionKind(strings.ToLower(*f.region)),
			Size: *f.sampleSize,
		})
	} else {
		k, err := chromakey.ParseKeyColor(*f.key)
		if err != nil {
			return p, err
		}
		p.Key = chromakey.Fixed(k)
	}

	p.EdgeThreshold = *f.threshold
	p.SoftBand = *f.softBand
	p.LuminanceWeight = *f.luma
	p.ErosionRadius = *f.erode
	p.DilationRadius = *f.dilate
	p.FeatherRadius = *f.feather
	p.DespillStrength = *f.despill
	p.DespillThreshold = *f.despillThreshold

	var err error
	if p.MorphOrder, err = chromakey.ParseMorphOrder(*f.order); err != nil {
		return p, err
	}
	if p.FeatherKernel, err = chromakey.ParseFeatherKernel(*f.kernel); err != nil {
		return p, err
	}
	if p.DespillWeight, err = chromakey.ParseDespillWeight(*f.despillWeight); err != nil {
		return p, err
	}
	return p, p.Validate()
}
