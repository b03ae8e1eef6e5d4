package chromakey

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

// quadrantImage creates a 4x4 image whose top-left 2x2 quadrant is pure
// green and the rest pure red.
func quadrantImage() *image.RGBA {
	img := solidImage(4, 4, pureRed)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, pureGreen)
		}
	}
	return img
}

func sharpParams() Params {
	p := DefaultParams()
	p.ErosionRadius = 0
	p.DilationRadius = 0
	p.FeatherRadius = 0
	return p
}

func TestRemove_QuadrantHardEdge(t *testing.T) {
	out, err := RemoveBackground(quadrantImage(), sharpParams())
	if err != nil {
		t.Fatalf("RemoveBackground failed: %v", err)
	}

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c := out.NRGBAAt(x, y)
			if x < 2 && y < 2 {
				if c.A != 0 {
					t.Errorf("(%d,%d) green quadrant: alpha %d, want 0", x, y, c.A)
				}
				continue
			}
			if c != (color.NRGBA{255, 0, 0, 255}) {
				t.Errorf("(%d,%d) red quadrant: got %v, want opaque red", x, y, c)
			}
		}
	}
}

func TestRemove_QuadrantFeathered(t *testing.T) {
	p := sharpParams()
	p.FeatherRadius = 1

	res, err := Remove(quadrantImage(), p)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	out := res.Image

	// Pixels touching the quadrant boundary get a soft alpha.
	for _, pt := range []image.Point{{1, 1}, {1, 0}, {0, 1}, {2, 2}, {2, 1}, {1, 2}, {2, 0}, {0, 2}} {
		a := res.Feathered.At(pt.X, pt.Y)
		if a <= 0 || a >= 1 {
			t.Errorf("boundary %v: mask %v, want strictly inside (0,1)", pt, a)
		}
		if c := out.NRGBAAt(pt.X, pt.Y); c.A == 0 || c.A == 255 {
			t.Errorf("boundary %v: alpha %d, want partial", pt, c.A)
		}
	}

	// Far corners keep their hard values.
	for _, tt := range []struct {
		pt   image.Point
		want uint8
	}{
		{image.Pt(0, 0), 0},
		{image.Pt(3, 3), 255},
		{image.Pt(3, 0), 255},
		{image.Pt(0, 3), 255},
	} {
		if a := out.NRGBAAt(tt.pt.X, tt.pt.Y).A; a != tt.want {
			t.Errorf("corner %v: alpha %d, want %d", tt.pt, a, tt.want)
		}
	}

	// Red pixels have no green excess, so despill leaves them alone.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if x < 2 && y < 2 {
				continue
			}
			c := out.NRGBAAt(x, y)
			if c.R != 255 || c.G != 0 || c.B != 0 {
				t.Errorf("(%d,%d) red color changed to %v", x, y, c)
			}
		}
	}
}

func TestRemove_GreenishPixelDespill(t *testing.T) {
	img := solidImage(5, 5, pureGreen)
	img.SetRGBA(2, 2, color.RGBA{200, 230, 150, 255})

	p := sharpParams()
	p.FeatherRadius = 1
	p.DespillStrength = 1

	res, err := Remove(img, p)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if v := res.Raw.At(2, 2); v != 1 {
		t.Fatalf("raw mask of the subject pixel: got %v, want 1", v)
	}
	m := res.Feathered.At(2, 2)
	if m <= 0 || m >= 1 {
		t.Fatalf("feathered mask: got %v, want inside (0,1)", m)
	}

	c := res.Image.NRGBAAt(2, 2)
	if c.G >= 230 {
		t.Errorf("green not reduced: got %d", c.G)
	}
	avg := (float64(c.R) + float64(c.B)) / 2
	if float64(c.G) < avg {
		t.Errorf("green %d overshot the red/blue average %v", c.G, avg)
	}
	// The remaining excess scales with the mask value: 55 * m.
	excess := float64(c.G) - avg
	if want := 55 * m; math.Abs(excess-want) > 1.5 {
		t.Errorf("remaining excess: got %v, want about %v", excess, want)
	}
}

func TestRemove_PureBackground(t *testing.T) {
	for _, key := range []KeyColor{Green, Blue} {
		img := solidImage(6, 5, color.RGBA{key.R, key.G, key.B, 255})
		p := DefaultParams()
		p.Key = Fixed(key)
		p.ErosionRadius, p.DilationRadius = 1, 1

		res, err := Remove(img, p)
		if err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if res.Stats.Transparent != 30 {
			t.Errorf("key %s: transparent pixels %d, want 30 (%+v)", key.Hex(), res.Stats.Transparent, res.Stats)
		}
	}
}

func TestRemove_PureSubject(t *testing.T) {
	colors := []color.RGBA{
		pureRed,
		{0, 0, 255, 255},
		{255, 255, 255, 255},
		{0, 0, 0, 255},
		{200, 100, 50, 255},
	}
	img := image.NewRGBA(image.Rect(0, 0, 10, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 10; x++ {
			img.SetRGBA(x, y, colors[(x+y)%len(colors)])
		}
	}

	res, err := Remove(img, DefaultParams())
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	for i, v := range res.Raw.Values {
		if v != 1 {
			t.Fatalf("raw mask %d: got %v, want 1", i, v)
		}
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 10; x++ {
			src := img.RGBAAt(x, y)
			got := res.Image.NRGBAAt(x, y)
			if got != (color.NRGBA{src.R, src.G, src.B, 255}) {
				t.Errorf("(%d,%d): got %v, want %v", x, y, got, src)
			}
		}
	}
}

func TestRemove_DimensionsAndRange(t *testing.T) {
	sizes := []image.Point{{1, 1}, {3, 7}, {16, 2}, {9, 9}}
	params := DefaultParams()
	params.ErosionRadius, params.DilationRadius, params.FeatherRadius = 2, 1, 3

	for _, sz := range sizes {
		img := image.NewRGBA(image.Rect(0, 0, sz.X, sz.Y))
		for y := 0; y < sz.Y; y++ {
			for x := 0; x < sz.X; x++ {
				img.SetRGBA(x, y, color.RGBA{uint8(x * 37), uint8(200 - y*11), uint8(x * y * 5), 255})
			}
		}

		res, err := Remove(img, params)
		if err != nil {
			t.Fatalf("%v: Remove failed: %v", sz, err)
		}
		if b := res.Image.Bounds(); b.Dx() != sz.X || b.Dy() != sz.Y {
			t.Errorf("%v: output bounds %v", sz, b)
		}
		for _, m := range []*Mask{res.Raw, res.Refined, res.Feathered} {
			if m.Width != sz.X || m.Height != sz.Y {
				t.Errorf("%v: mask size %dx%d", sz, m.Width, m.Height)
			}
			for _, v := range m.Values {
				if v < 0 || v > 1 || math.IsNaN(v) {
					t.Fatalf("%v: mask value %v out of range", sz, v)
				}
			}
		}
		if st := res.Stats; st.Transparent+st.Partial+st.Opaque != sz.X*sz.Y {
			t.Errorf("%v: stats %+v do not add up", sz, st)
		}
	}
}

func TestRemove_NonZeroOrigin(t *testing.T) {
	src := quadrantImage()
	shifted := image.NewRGBA(image.Rect(20, 30, 24, 34))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			shifted.SetRGBA(20+x, 30+y, src.RGBAAt(x, y))
		}
	}

	out, err := RemoveBackground(shifted, sharpParams())
	if err != nil {
		t.Fatalf("RemoveBackground failed: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Errorf("bounds: got %v", out.Bounds())
	}
	if out.NRGBAAt(0, 0).A != 0 || out.NRGBAAt(3, 3).A != 255 {
		t.Error("quadrants not keyed after origin shift")
	}
}

func TestRemove_SourceAlphaKept(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{255, 0, 0, 102})

	out, err := RemoveBackground(img, sharpParams())
	if err != nil {
		t.Fatalf("RemoveBackground failed: %v", err)
	}
	if a := out.NRGBAAt(0, 0).A; a != 255 {
		t.Errorf("opaque pixel: alpha %d, want 255", a)
	}
	if a := out.NRGBAAt(1, 0).A; a != 102 {
		t.Errorf("translucent pixel: alpha %d, want 102", a)
	}
}

func TestRemove_SampledKey(t *testing.T) {
	backdrop := color.RGBA{0, 0, 230, 255}
	img := framedImage(12, 12, 4, backdrop, color.RGBA{240, 200, 40, 255})
	p := sharpParams()
	p.Key = SampledFromRegion(SampleRegion{Kind: RegionCorners, Size: 2})

	res, err := Remove(img, p)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if res.Key.Key != (KeyColor{0, 0, 230}) {
		t.Errorf("sampled key: got %v", res.Key.Key)
	}
	if res.Image.NRGBAAt(0, 0).A != 0 || res.Image.NRGBAAt(6, 6).A != 255 {
		t.Error("blue backdrop not keyed with sampled key")
	}
}

func TestRemove_Deterministic(t *testing.T) {
	img := quadrantImage()
	p := DefaultParams()
	a, err := RemoveBackground(img, p)
	if err != nil {
		t.Fatalf("RemoveBackground failed: %v", err)
	}
	b, _ := RemoveBackground(img, p)
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("byte %d differs between runs", i)
		}
	}
	if img.RGBAAt(0, 0) != pureGreen {
		t.Error("input image was modified")
	}
}

func TestRemove_Errors(t *testing.T) {
	bad := DefaultParams()
	bad.DespillStrength = 3
	wideFeather := DefaultParams()
	wideFeather.FeatherRadius = 3000000
	wideErosion := DefaultParams()
	wideErosion.ErosionRadius = 3000000

	tests := []struct {
		name string
		img  image.Image
		p    Params
		want error
	}{
		{"nil image", nil, DefaultParams(), ErrInvalidInput},
		{"empty image", image.NewRGBA(image.Rect(0, 0, 0, 5)), DefaultParams(), ErrInvalidInput},
		{"bad params", quadrantImage(), bad, ErrInvalidParameter},
		{"feather radius too large", solidImage(64, 64, pureRed), wideFeather, ErrInvalidParameter},
		{"erosion radius too large", solidImage(64, 64, pureRed), wideErosion, ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Remove(tt.img, tt.p)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if res != nil {
				t.Error("no result should be returned on error")
			}
		})
	}
}
