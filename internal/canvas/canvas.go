// Package canvas is the drawing service templates render with. Every Image is
// owned by the call that created it; nothing here holds shared mutable state
// apart from the parsed default fonts, which are read-only after init.
package canvas

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"

	// Extra decoders on top of the gif/jpeg/png/bmp/tiff set imaging registers.
	_ "golang.org/x/image/webp"
)

// Format is an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// DefaultJPEGQuality is used by EncodeJPEG when no quality is given.
const DefaultJPEGQuality = 90

// ErrEmptyImage is returned by Open for zero-length buffers.
var ErrEmptyImage = errors.New("image data is empty")

// Image is a mutable NRGBA raster.
type Image struct {
	img *image.NRGBA
}

// Open decodes PNG, JPEG, GIF (first frame), BMP, TIFF or WebP bytes. EXIF
// orientation is applied. The input buffer is not retained.
func Open(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	return Decode(bytes.NewReader(data))
}

// Decode reads an image from r.
func Decode(r io.Reader) (*Image, error) {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return FromImage(src), nil
}

// New returns a w x h image filled with c.
func New(w, h int, c color.Color) *Image {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &Image{img: imaging.New(w, h, c)}
}

// FromImage copies src into a new Image.
func FromImage(src image.Image) *Image {
	return &Image{img: imaging.Clone(src)}
}

// Image exposes the underlying raster.
func (i *Image) Image() image.Image {
	return i.img
}

// Width returns the image width in pixels.
func (i *Image) Width() int {
	return i.img.Bounds().Dx()
}

// Height returns the image height in pixels.
func (i *Image) Height() int {
	return i.img.Bounds().Dy()
}

// Size returns (width, height).
func (i *Image) Size() (int, int) {
	return i.Width(), i.Height()
}

// Clone returns an independent copy.
func (i *Image) Clone() *Image {
	return &Image{img: imaging.Clone(i.img)}
}

// Resize scales to exactly w x h.
func (i *Image) Resize(w, h int) *Image {
	return &Image{img: imaging.Resize(i.img, w, h, imaging.Lanczos)}
}

// ResizeKeepRatio scales and center-crops so the result fills w x h without
// distortion.
func (i *Image) ResizeKeepRatio(w, h int) *Image {
	return &Image{img: imaging.Fill(i.img, w, h, imaging.Center, imaging.Lanczos)}
}

// ResizeFit scales down so the image fits inside w x h, keeping its ratio.
func (i *Image) ResizeFit(w, h int) *Image {
	return &Image{img: imaging.Fit(i.img, w, h, imaging.Lanczos)}
}

// Crop returns the part of the image inside rect.
func (i *Image) Crop(rect image.Rectangle) *Image {
	return &Image{img: imaging.Crop(i.img, rect)}
}

// Paste draws src onto i at pt. With alpha set, src is blended using its
// alpha channel; otherwise its pixels replace the destination.
func (i *Image) Paste(src *Image, pt image.Point, alpha bool) {
	if src == nil {
		return
	}
	if alpha {
		i.img = imaging.Overlay(i.img, src.img, pt, 1.0)
		return
	}
	i.img = imaging.Paste(i.img, src.img, pt)
}

// PasteBelow places src at pt underneath the current content, so transparent
// regions of i reveal src.
func (i *Image) PasteBelow(src *Image, pt image.Point) {
	if src == nil {
		return
	}
	w, h := i.Size()
	base := imaging.New(w, h, color.Transparent)
	base = imaging.Overlay(base, src.img, pt, 1.0)
	i.img = imaging.Overlay(base, i.img, image.Point{}, 1.0)
}

// FillRect paints rect with c.
func (i *Image) FillRect(rect image.Rectangle, c color.Color) {
	block := imaging.New(rect.Dx(), rect.Dy(), c)
	i.img = imaging.Overlay(i.img, block, rect.Min, 1.0)
}

// Encode writes the image in the given format.
func (i *Image) Encode(format Format, quality int) ([]byte, error) {
	switch format {
	case FormatPNG, "":
		return i.EncodePNG()
	case FormatJPEG, "jpg":
		return i.EncodeJPEG(quality)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// EncodePNG returns PNG bytes.
func (i *Image) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, i.img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJPEG returns JPEG bytes. Transparent areas are flattened onto white.
func (i *Image) EncodeJPEG(quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	w, h := i.Size()
	flat := imaging.Overlay(imaging.New(w, h, color.White), i.img, image.Point{}, 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// DetectFormat sniffs the container format of encoded bytes.
func DetectFormat(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return format, nil
}
