package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Crop extracts a region of img and encodes it as PNG, optionally scaled.
//
// It is meant for inspecting keyed edges up close: a scale above 1 enlarges
// with nearest-neighbor filtering so individual alpha steps stay visible.
// Scales below 1 use Lanczos.
func Crop(img image.Image, region Region, scale float64) (*EncodedImage, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %v", scale)
	}
	rect, err := region.Rect(img.Bounds())
	if err != nil {
		return nil, err
	}

	cropped := imaging.Crop(img, rect)
	if scale != 1 {
		w := int(float64(cropped.Bounds().Dx())*scale + 0.5)
		h := int(float64(cropped.Bounds().Dy())*scale + 0.5)
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("scale %v shrinks region to nothing", scale)
		}
		filter := imaging.Lanczos
		if scale > 1 {
			filter = imaging.NearestNeighbor
		}
		cropped = imaging.Resize(cropped, w, h, filter)
	}

	return EncodePNG(cropped)
}
