package server

import (
	"strings"

	"github.com/dotback/Gemini-Transparent-Background/internal/chromakey"
)

// keyingArgs are the keying parameters shared by the chromakey_* tools.
// Pointer fields distinguish "not given" from zero so that server defaults
// only apply to omitted arguments.
type keyingArgs struct {
	pathArgs

	// Key is "green", "blue", "#RRGGBB" or "auto". "auto" samples the
	// backdrop from SampleRegion, defaulting to the image corners.
	Key          string                  `json:"key"`
	SampleRegion *chromakey.SampleRegion `json:"sample_region,omitempty"`

	EdgeThreshold    *float64 `json:"edge_threshold,omitempty"`
	SoftBand         *float64 `json:"soft_band,omitempty"`
	LuminanceWeight  *float64 `json:"luminance_weight,omitempty"`
	ErosionRadius    *int     `json:"erosion_radius,omitempty"`
	DilationRadius   *int     `json:"dilation_radius,omitempty"`
	MorphOrder       string   `json:"morph_order,omitempty"`
	FeatherRadius    *int     `json:"feather_radius,omitempty"`
	FeatherKernel    string   `json:"feather_kernel,omitempty"`
	DespillStrength  *float64 `json:"despill_strength,omitempty"`
	DespillThreshold *float64 `json:"despill_threshold,omitempty"`
	DespillWeight    string   `json:"despill_weight,omitempty"`
}

// params applies a on top of def and validates the result.
func (a keyingArgs) params(def chromakey.Params) (chromakey.Params, error) {
	p := def

	switch key := strings.TrimSpace(a.Key); {
	case strings.EqualFold(key, "auto") || (key == "" && a.SampleRegion != nil):
		region := chromakey.SampleRegion{Kind: chromakey.RegionCorners}
		if a.SampleRegion != nil {
			region = *a.SampleRegion
		}
		p.Key = chromakey.SampledFromRegion(region)
	case key != "":
		k, err := chromakey.ParseKeyColor(key)
		if err != nil {
			return chromakey.Params{}, err
		}
		p.Key = chromakey.Fixed(k)
	}

	if a.EdgeThreshold != nil {
		p.EdgeThreshold = *a.EdgeThreshold
	}
	if a.SoftBand != nil {
		p.SoftBand = *a.SoftBand
	}
	if a.LuminanceWeight != nil {
		p.LuminanceWeight = *a.LuminanceWeight
	}
	if a.ErosionRadius != nil {
		p.ErosionRadius = *a.ErosionRadius
	}
	if a.DilationRadius != nil {
		p.DilationRadius = *a.DilationRadius
	}
	if a.FeatherRadius != nil {
		p.FeatherRadius = *a.FeatherRadius
	}
	if a.DespillStrength != nil {
		p.DespillStrength = *a.DespillStrength
	}
	if a.DespillThreshold != nil {
		p.DespillThreshold = *a.DespillThreshold
	}

	var err error
	if a.MorphOrder != "" {
		if p.MorphOrder, err = chromakey.ParseMorphOrder(a.MorphOrder); err != nil {
			return chromakey.Params{}, err
		}
	}
	if a.FeatherKernel != "" {
		if p.FeatherKernel, err = chromakey.ParseFeatherKernel(a.FeatherKernel); err != nil {
			return chromakey.Params{}, err
		}
	}
	if a.DespillWeight != "" {
		if p.DespillWeight, err = chromakey.ParseDespillWeight(a.DespillWeight); err != nil {
			return chromakey.Params{}, err
		}
	}

	if err := p.Validate(); err != nil {
		return chromakey.Params{}, err
	}
	return p, nil
}
