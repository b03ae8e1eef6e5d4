package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createGreenScreenImage creates a green backdrop with a red block covering
// the right quarter.
func createGreenScreenImage(width, height int) *image.RGBA {
	img := createInMemoryImage(width, height, color.RGBA{0, 255, 0, 255})
	for y := 0; y < height; y++ {
		for x := width * 3 / 4; x < width; x++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	return img
}

func TestSampleColor(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 128, 64, 255})

	result, err := SampleColor(img, 50, 50)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}

	if result.Hex != "#FF8040" {
		t.Errorf("Hex: got %s, want #FF8040", result.Hex)
	}
	if result.RGBA != (RGBAColor{255, 128, 64, 255}) {
		t.Errorf("RGBA: got %+v, want (255,128,64,255)", result.RGBA)
	}
}

func TestSampleColor_KnownColors(t *testing.T) {
	tests := []struct {
		name    string
		color   color.RGBA
		wantHex string
		wantHSV HSVColor
		wantHSL HSLColor
	}{
		{"pure red", color.RGBA{255, 0, 0, 255}, "#FF0000", HSVColor{0, 100, 100}, HSLColor{0, 100, 50}},
		{"pure green", color.RGBA{0, 255, 0, 255}, "#00FF00", HSVColor{120, 100, 100}, HSLColor{120, 100, 50}},
		{"pure blue", color.RGBA{0, 0, 255, 255}, "#0000FF", HSVColor{240, 100, 100}, HSLColor{240, 100, 50}},
		{"white", color.RGBA{255, 255, 255, 255}, "#FFFFFF", HSVColor{0, 0, 100}, HSLColor{0, 0, 100}},
		{"black", color.RGBA{0, 0, 0, 255}, "#000000", HSVColor{0, 0, 0}, HSLColor{0, 0, 0}},
		{"dark green", color.RGBA{0, 128, 0, 255}, "#008000", HSVColor{120, 100, 50}, HSLColor{120, 100, 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createInMemoryImage(10, 10, tt.color)
			result, err := SampleColor(img, 5, 5)
			if err != nil {
				t.Fatalf("SampleColor failed: %v", err)
			}

			if result.Hex != tt.wantHex {
				t.Errorf("Hex: got %s, want %s", result.Hex, tt.wantHex)
			}
			if result.HSV != tt.wantHSV {
				t.Errorf("HSV: got %+v, want %+v", result.HSV, tt.wantHSV)
			}
			if result.HSL != tt.wantHSL {
				t.Errorf("HSL: got %+v, want %+v", result.HSL, tt.wantHSL)
			}
		})
	}
}

func TestSampleColor_NonPremultiplied(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{0, 255, 0, 128})

	result, err := SampleColor(img, 0, 0)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}
	if result.RGBA != (RGBAColor{0, 255, 0, 128}) {
		t.Errorf("got %+v, want straight green at alpha 128", result.RGBA)
	}
}

func TestSampleColor_OutOfBounds(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name string
		x, y int
	}{
		{"negative x", -1, 50},
		{"negative y", 50, -1},
		{"x too large", 100, 50},
		{"y too large", 50, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SampleColor(img, tt.x, tt.y); err == nil {
				t.Error("SampleColor should fail for out-of-bounds coordinates")
			}
		})
	}
}

func TestSampleColor_SubImageOrigin(t *testing.T) {
	img := createGreenScreenImage(40, 10)
	sub := img.SubImage(image.Rect(30, 0, 40, 10))

	result, err := SampleColor(sub, 0, 0)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}
	if result.Hex != "#FF0000" {
		t.Errorf("got %s, want #FF0000 at the sub-image origin", result.Hex)
	}
}

func TestSampleColorsMulti(t *testing.T) {
	img := createGreenScreenImage(40, 40)
	points := []LabeledPoint{
		{X: 0, Y: 0, Label: "backdrop"},
		{X: 39, Y: 20, Label: "subject"},
		{X: 5, Y: 39},
	}

	result, err := SampleColorsMulti(img, points)
	if err != nil {
		t.Fatalf("SampleColorsMulti failed: %v", err)
	}
	if len(result.Samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(result.Samples))
	}

	want := []string{"#00FF00", "#FF0000", "#00FF00"}
	for i, s := range result.Samples {
		if s.Color.Hex != want[i] {
			t.Errorf("sample %d: got %s, want %s", i, s.Color.Hex, want[i])
		}
		if s.Label != points[i].Label || s.X != points[i].X || s.Y != points[i].Y {
			t.Errorf("sample %d: location/label not preserved: %+v", i, s)
		}
	}

	if _, err := SampleColorsMulti(img, []LabeledPoint{{X: 1, Y: 1}, {X: 400, Y: 1}}); err == nil {
		t.Error("SampleColorsMulti should fail when any point is out of bounds")
	}
}

func TestDominantColors(t *testing.T) {
	img := createGreenScreenImage(100, 100)

	result, err := DominantColors(img, 5, nil)
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}
	if len(result.Colors) != 2 {
		t.Fatalf("got %d colors, want 2", len(result.Colors))
	}

	// Quantization maps 255 to 240.
	if c := result.Colors[0]; c.Hex != "#00F000" || c.Percentage != 75 {
		t.Errorf("first color: got %+v, want #00F000 at 75%%", c)
	}
	if c := result.Colors[1]; c.Hex != "#F00000" || c.Percentage != 25 {
		t.Errorf("second color: got %+v, want #F00000 at 25%%", c)
	}
}

func TestDominantColors_WithRegion(t *testing.T) {
	img := createGreenScreenImage(100, 100)

	result, err := DominantColors(img, 3, &Region{X1: 80, Y1: 0, X2: 100, Y2: 10})
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}
	if len(result.Colors) != 1 || result.Colors[0].Hex != "#F00000" {
		t.Errorf("got %+v, want only red", result.Colors)
	}
}

func TestDominantColors_SkipsTransparent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	img.SetNRGBA(0, 0, color.NRGBA{0, 0, 255, 255})

	result, err := DominantColors(img, 3, nil)
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}
	if len(result.Colors) != 1 || result.Colors[0].Percentage != 100 {
		t.Errorf("got %+v, want a single opaque color at 100%%", result.Colors)
	}
}

func TestDominantColors_Invalid(t *testing.T) {
	img := createInMemoryImage(10, 10, color.White)

	tests := []struct {
		name   string
		count  int
		region *Region
	}{
		{"zero count", 0, nil},
		{"inverted region", 3, &Region{X1: 5, Y1: 0, X2: 2, Y2: 5}},
		{"region outside", 3, &Region{X1: 0, Y1: 0, X2: 11, Y2: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DominantColors(img, tt.count, tt.region); err == nil {
				t.Error("DominantColors should fail")
			}
		})
	}
}
