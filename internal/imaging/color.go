package imaging

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGBAColor represents an RGBA color with 8-bit components. A is
// non-premultiplied opacity: 0 is fully transparent, 255 fully opaque.
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// HSVColor is a color in HSV space, the space keying distances are measured
// in.
type HSVColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent
	V int `json:"v"` // Value: 0-100 percent
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorResult contains a color value in multiple representations.
//
// The Hex format excludes alpha; use RGBA.A to get transparency information.
type ColorResult struct {
	Hex  string    `json:"hex"`
	RGB  RGBColor  `json:"rgb"`
	RGBA RGBAColor `json:"rgba"`
	HSV  HSVColor  `json:"hsv"`
	HSL  HSLColor  `json:"hsl"`
}

// SampleColor extracts the color value at a specific pixel coordinate.
//
// Coordinates are relative to the image bounds origin, so (0,0) is always the
// top-left pixel even for sub-images. The color is reported non-premultiplied:
// a translucent green pixel reads as green with a low alpha rather than as a
// darkened green.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	if x < 0 || x >= bounds.Dx() || y < 0 || y >= bounds.Dy() {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds %dx%d", x, y, bounds.Dx(), bounds.Dy())
	}

	r8, g8, b8, a8 := nrgba8(img, bounds.Min.X+x, bounds.Min.Y+y)
	return newColorResult(r8, g8, b8, a8), nil
}

func newColorResult(r, g, b, a uint8) *ColorResult {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, s, v := c.Hsv()
	hh, ss, ll := c.Hsl()

	return &ColorResult{
		Hex:  fmt.Sprintf("#%02X%02X%02X", r, g, b),
		RGB:  RGBColor{R: r, G: g, B: b},
		RGBA: RGBAColor{R: r, G: g, B: b, A: a},
		HSV:  HSVColor{H: degrees(h), S: percent(s), V: percent(v)},
		HSL:  HSLColor{H: degrees(hh), S: percent(ss), L: percent(ll)},
	}
}

// nrgba8 reads a pixel as non-premultiplied 8-bit components.
func nrgba8(img image.Image, x, y int) (r, g, b, a uint8) {
	r32, g32, b32, a32 := img.At(x, y).RGBA()
	if a32 == 0 {
		return 0, 0, 0, 0
	}
	if a32 != 0xffff {
		r32 = r32 * 0xffff / a32
		g32 = g32 * 0xffff / a32
		b32 = b32 * 0xffff / a32
	}
	return uint8(r32 >> 8), uint8(g32 >> 8), uint8(b32 >> 8), uint8(a32 >> 8)
}

func degrees(h float64) int {
	if math.IsNaN(h) {
		return 0
	}
	return int(math.Round(h)) % 360
}

func percent(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(v * 100))
}

// LabeledPoint is a pixel coordinate with an optional descriptive label such
// as "backdrop" or "hair".
type LabeledPoint struct {
	X     int
	Y     int
	Label string
}

// LabeledColorResult combines a color sample with its location and label.
type LabeledColorResult struct {
	Label string      `json:"label,omitempty"`
	X     int         `json:"x"`
	Y     int         `json:"y"`
	Color ColorResult `json:"color"`
}

// MultiColorResult contains color samples in the order they were requested.
type MultiColorResult struct {
	Samples []LabeledColorResult `json:"samples"`
}

// SampleColorsMulti extracts colors at multiple pixel coordinates in a single
// call. If any point is out of bounds no partial results are returned.
func SampleColorsMulti(img image.Image, points []LabeledPoint) (*MultiColorResult, error) {
	results := make([]LabeledColorResult, 0, len(points))

	for _, p := range points {
		color, err := SampleColor(img, p.X, p.Y)
		if err != nil {
			return nil, fmt.Errorf("failed to sample point (%d,%d): %w", p.X, p.Y, err)
		}
		results = append(results, LabeledColorResult{
			Label: p.Label,
			X:     p.X,
			Y:     p.Y,
			Color: *color,
		})
	}

	return &MultiColorResult{Samples: results}, nil
}

// Region represents a rectangular region within an image.
//
// (X1, Y1) is the top-left corner (inclusive) and (X2, Y2) the bottom-right
// corner (exclusive), both relative to the image origin.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Rect returns the region translated into the bounds of img.
func (r Region) Rect(bounds image.Rectangle) (image.Rectangle, error) {
	if r.X1 < 0 || r.Y1 < 0 || r.X2 <= r.X1 || r.Y2 <= r.Y1 {
		return image.Rectangle{}, fmt.Errorf("invalid region (%d,%d)-(%d,%d)", r.X1, r.Y1, r.X2, r.Y2)
	}
	if r.X2 > bounds.Dx() || r.Y2 > bounds.Dy() {
		return image.Rectangle{}, fmt.Errorf("region (%d,%d)-(%d,%d) exceeds image bounds %dx%d",
			r.X1, r.Y1, r.X2, r.Y2, bounds.Dx(), bounds.Dy())
	}
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2).Add(bounds.Min), nil
}

// ColorFrequency represents a quantized color and its share of the pixels.
type ColorFrequency struct {
	Hex        string   `json:"hex"`
	Percentage float64  `json:"percentage"`
	RGB        RGBColor `json:"rgb"`
}

// DominantColorsResult contains colors sorted by frequency, most common first.
type DominantColorsResult struct {
	Colors []ColorFrequency `json:"colors"`
}

// DominantColors extracts the count most common colors from an image or
// region. It is the quickest way to find a backdrop color: on a typical
// green-screen shot the first entry is the screen.
//
// Colors are quantized to 16 levels per channel before counting, so
// #F0F0F0 and #FAFAFA fall in the same bucket. Fully transparent pixels are
// skipped. Ties are broken by hex string to keep the output stable.
func DominantColors(img image.Image, count int, region *Region) (*DominantColorsResult, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}

	bounds := img.Bounds()
	if region != nil {
		r, err := region.Rect(bounds)
		if err != nil {
			return nil, err
		}
		bounds = r
	}

	counts := make(map[RGBColor]int)
	total := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := nrgba8(img, x, y)
			if a == 0 {
				continue
			}
			counts[RGBColor{R: r / 16 * 16, G: g / 16 * 16, B: b / 16 * 16}]++
			total++
		}
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for c, n := range counts {
		colors = append(colors, ColorFrequency{
			Hex:        fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B),
			Percentage: float64(n) / float64(total) * 100,
			RGB:        c,
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if len(colors) > count {
		colors = colors[:count]
	}

	return &DominantColorsResult{Colors: colors}, nil
}
