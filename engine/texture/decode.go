package texture

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/cockroachdb/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads any registered image format (png, jpeg, gif, bmp, tiff, webp) and returns it as
// tightly packed RGBA8 with its origin at (0, 0). When maxDimension is positive and either side
// exceeds it, the image is scaled down to fit, keeping its aspect ratio.
//
// Parameters:
//   - r: the encoded image
//   - maxDimension: the largest allowed width or height, or 0 for no limit
//
// Returns:
//   - *image.RGBA: the decoded pixels
//   - error: an ErrMalformedData error when the data is not a decodable image
func Decode(r io.Reader, maxDimension int) (*image.RGBA, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode image"), common.ErrMalformedData)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, common.Malformed("decode image: %s image is empty", format)
	}

	return toRGBA(src, maxDimension), nil
}

// toRGBA copies src into a new RGBA8 image at the origin, scaled to fit maxDimension.
func toRGBA(src image.Image, maxDimension int) *image.RGBA {
	b := src.Bounds()
	w, h := fit(b.Dx(), b.Dy(), maxDimension)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	}
	return dst
}

// DecodeFile opens path and decodes it with Decode.
//
// Parameters:
//   - path: the image file
//   - maxDimension: the largest allowed width or height, or 0 for no limit
//
// Returns:
//   - *image.RGBA: the decoded pixels
//   - error: ErrNotFound when the file cannot be opened, ErrMalformedData when it cannot be decoded
func DecodeFile(path string, maxDimension int) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.NotFound(err, path)
	}
	defer f.Close()

	img, err := Decode(f, maxDimension)
	if err != nil {
		return nil, errors.Wrapf(err, "load texture %s", path)
	}
	return img, nil
}

// fit returns w x h scaled to fit within limit on both sides.
func fit(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
