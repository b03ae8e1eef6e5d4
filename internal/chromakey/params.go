package chromakey

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// KeyColor is the backdrop color to remove, in 8-bit components.
type KeyColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Common backdrop colors.
var (
	Green = KeyColor{R: 0, G: 255, B: 0}
	Blue  = KeyColor{R: 0, G: 0, B: 255}
)

// ParseKeyColor accepts "green", "blue" or a hex color such as "#00FF00".
func ParseKeyColor(s string) (KeyColor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "green":
		return Green, nil
	case "blue":
		return Blue, nil
	}
	hex := strings.TrimSpace(s)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return KeyColor{}, paramError("parse", "key", s, "expected green, blue or #RRGGBB")
	}
	r, g, b := c.RGB255()
	return KeyColor{R: r, G: g, B: b}, nil
}

// Hex formats the key as "#RRGGBB".
func (k KeyColor) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", k.R, k.G, k.B)
}

func (k KeyColor) colorful() colorful.Color {
	return colorful.Color{R: float64(k.R) / 255, G: float64(k.G) / 255, B: float64(k.B) / 255}
}

// Channel identifies one color plane.
type Channel int

const (
	ChannelR Channel = iota
	ChannelG
	ChannelB
)

func (c Channel) String() string {
	switch c {
	case ChannelR:
		return "red"
	case ChannelG:
		return "green"
	case ChannelB:
		return "blue"
	}
	return fmt.Sprintf("Channel(%d)", int(c))
}

// SpillChannel returns the dominant channel of the key. Ties prefer green,
// then blue, which covers the usual green and blue screens.
func (k KeyColor) SpillChannel() Channel {
	switch {
	case k.G >= k.R && k.G >= k.B:
		return ChannelG
	case k.B >= k.R:
		return ChannelB
	}
	return ChannelR
}

// RegionKind selects how a key color is sampled from the image.
type RegionKind string

const (
	RegionCorners RegionKind = "corners" // Four square patches of Size px
	RegionBorder  RegionKind = "border"  // Frame Size px wide along every edge
	RegionRect    RegionKind = "rect"    // Explicit rectangle X1,Y1 (inclusive) to X2,Y2 (exclusive)
)

// SampleRegion describes where to sample the backdrop color.
type SampleRegion struct {
	Kind RegionKind `json:"kind"`
	Size int        `json:"size,omitempty"`
	X1   int        `json:"x1,omitempty"`
	Y1   int        `json:"y1,omitempty"`
	X2   int        `json:"x2,omitempty"`
	Y2   int        `json:"y2,omitempty"`
}

// KeySourceKind tags the KeyColorSource variant.
type KeySourceKind int

const (
	KeyFixed KeySourceKind = iota
	KeySampled
)

// KeyColorSource is either a fixed key color or a region of the input to
// sample it from. It is resolved once per run, before classification.
type KeyColorSource struct {
	Kind   KeySourceKind
	Color  KeyColor
	Region SampleRegion
}

// Fixed returns a source that always resolves to c.
func Fixed(c KeyColor) KeyColorSource {
	return KeyColorSource{Kind: KeyFixed, Color: c}
}

// SampledFromRegion returns a source that averages the pixels of r.
func SampledFromRegion(r SampleRegion) KeyColorSource {
	return KeyColorSource{Kind: KeySampled, Region: r}
}

// MorphOrder is the order of the erosion and dilation passes.
type MorphOrder int

const (
	// Opening erodes then dilates: removes specks smaller than the radius.
	Opening MorphOrder = iota
	// Closing dilates then erodes: fills holes smaller than the radius.
	Closing
)

// FeatherKernel selects the smoothing kernel used by Feather.
type FeatherKernel int

const (
	Gaussian FeatherKernel = iota
	Box
)

// DespillWeight selects which mask weights the despill correction.
type DespillWeight int

const (
	FeatheredMask DespillWeight = iota
	RefinedMask
)

// Thresholds maps color distance to mask value: distance <= Low is
// background, distance >= High is subject, linear in between.
type Thresholds struct {
	Low  float64
	High float64
}

func (t Thresholds) validate(op string) error {
	if math.IsNaN(t.Low) || t.Low < 0 {
		return paramError(op, "low threshold", t.Low, "must be >= 0")
	}
	if math.IsNaN(t.High) || t.Low > t.High {
		return paramError(op, "high threshold", t.High, "must be >= low threshold")
	}
	return nil
}

// Radius limits. Work per pixel grows with the radius, so larger values are
// rejected rather than run.
const (
	MaxMorphRadius   = 64
	MaxFeatherRadius = 256
)

// Params is the full set of pipeline controls. A Params value is read-only
// for the duration of a run.
type Params struct {
	Key              KeyColorSource
	EdgeThreshold    float64 // Color distance at or below which a pixel is background
	SoftBand         float64 // Width of the partial-membership band above EdgeThreshold
	LuminanceWeight  float64 // Weight of brightness difference in the color distance
	ErosionRadius    int
	DilationRadius   int
	MorphOrder       MorphOrder
	FeatherRadius    int
	FeatherKernel    FeatherKernel
	DespillStrength  float64 // 0 disables despill, 1 removes all spill excess
	DespillThreshold float64 // Minimum spill excess before a pixel is corrected
	DespillWeight    DespillWeight
}

// DefaultParams returns the defaults for a pure green backdrop.
func DefaultParams() Params {
	return Params{
		Key:             Fixed(Green),
		EdgeThreshold:   0.35,
		SoftBand:        0.15,
		LuminanceWeight: 0.3,
		FeatherRadius:   2,
		DespillStrength: 0.7,
	}
}

// Thresholds derives the classifier band from EdgeThreshold and SoftBand.
func (p Params) Thresholds() Thresholds {
	return Thresholds{Low: p.EdgeThreshold, High: p.EdgeThreshold + p.SoftBand}
}

// Validate checks every parameter against its documented range.
func (p Params) Validate() error {
	const op = "params"
	if math.IsNaN(p.EdgeThreshold) || p.EdgeThreshold < 0 {
		return paramError(op, "edge_threshold", p.EdgeThreshold, "must be >= 0")
	}
	if math.IsNaN(p.SoftBand) || p.SoftBand < 0 {
		return paramError(op, "soft_band", p.SoftBand, "must be >= 0")
	}
	if err := p.Thresholds().validate(op); err != nil {
		return err
	}
	if math.IsNaN(p.LuminanceWeight) || p.LuminanceWeight < 0 {
		return paramError(op, "luminance_weight", p.LuminanceWeight, "must be >= 0")
	}
	if err := checkRadius(op, "erosion_radius", p.ErosionRadius, MaxMorphRadius); err != nil {
		return err
	}
	if err := checkRadius(op, "dilation_radius", p.DilationRadius, MaxMorphRadius); err != nil {
		return err
	}
	if p.MorphOrder != Opening && p.MorphOrder != Closing {
		return paramError(op, "morph_order", p.MorphOrder, "must be opening or closing")
	}
	if err := checkRadius(op, "feather_radius", p.FeatherRadius, MaxFeatherRadius); err != nil {
		return err
	}
	if p.FeatherKernel != Gaussian && p.FeatherKernel != Box {
		return paramError(op, "feather_kernel", p.FeatherKernel, "must be gaussian or box")
	}
	if !inUnit(p.DespillStrength) {
		return paramError(op, "despill_strength", p.DespillStrength, "must be in [0,1]")
	}
	if !inUnit(p.DespillThreshold) {
		return paramError(op, "despill_threshold", p.DespillThreshold, "must be in [0,1]")
	}
	if p.DespillWeight != FeatheredMask && p.DespillWeight != RefinedMask {
		return paramError(op, "despill_weight", p.DespillWeight, "must be feathered or refined")
	}
	switch p.Key.Kind {
	case KeyFixed:
	case KeySampled:
		if err := p.Key.Region.validate(op); err != nil {
			return err
		}
	default:
		return paramError(op, "key", p.Key.Kind, "unknown key color source")
	}
	return nil
}

func checkRadius(op, name string, r, limit int) error {
	if r < 0 || r > limit {
		return paramError(op, name, r, fmt.Sprintf("must be in [0,%d]", limit))
	}
	return nil
}

func inUnit(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// ParseMorphOrder accepts "opening" or "closing".
func ParseMorphOrder(s string) (MorphOrder, error) {
	switch strings.ToLower(s) {
	case "", "opening", "open":
		return Opening, nil
	case "closing", "close":
		return Closing, nil
	}
	return 0, paramError("parse", "morph_order", s, "expected opening or closing")
}

// ParseFeatherKernel accepts "gaussian" or "box".
func ParseFeatherKernel(s string) (FeatherKernel, error) {
	switch strings.ToLower(s) {
	case "", "gaussian":
		return Gaussian, nil
	case "box":
		return Box, nil
	}
	return 0, paramError("parse", "feather_kernel", s, "expected gaussian or box")
}

// ParseDespillWeight accepts "feathered" or "refined".
func ParseDespillWeight(s string) (DespillWeight, error) {
	switch strings.ToLower(s) {
	case "", "feathered":
		return FeatheredMask, nil
	case "refined":
		return RefinedMask, nil
	}
	return 0, paramError("parse", "despill_weight", s, "expected feathered or refined")
}
