// Package imaging normalises uploaded report photos: the real format is
// sniffed from the bytes, oversized images are downscaled and the result
// is always re-encoded as JPEG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"golang.org/x/image/draw"
)

// MaxDimension is the maximum width or height for stored photos.
const MaxDimension = 1024

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 85

// ErrUnsupported is returned for uploads that are not an accepted image type.
var ErrUnsupported = errors.New("unsupported image format")

// extMIME maps file extensions from the allowed_photo_types setting to the
// MIME type sniffed from the upload.
var extMIME = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
}

// Processor validates and re-encodes photos.
type Processor struct {
	MaxDimension int
	Quality      int
	allowed      map[string]bool
}

// NewProcessor accepts the comma-separated extension list used by the
// allowed_photo_types setting, e.g. "jpg,jpeg,png,gif". Unknown
// extensions are ignored; an empty list accepts every supported format.
func NewProcessor(allowedTypes string) *Processor {
	p := &Processor{MaxDimension: MaxDimension, Quality: JPEGQuality, allowed: map[string]bool{}}
	for _, ext := range strings.Split(allowedTypes, ",") {
		ext = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(ext), ".")))
		if mime, ok := extMIME[ext]; ok {
			p.allowed[mime] = true
		}
	}
	if len(p.allowed) == 0 {
		for _, mime := range extMIME {
			p.allowed[mime] = true
		}
	}
	return p
}

// Photo is a processed JPEG.
type Photo struct {
	Data   []byte
	Width  int
	Height int
}

// Process reads image data, validates the format by sniffing bytes,
// downscales if larger than MaxDimension, and re-encodes as JPEG.
func (p *Processor) Process(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	// Client supplied content types are not trusted.
	detected := http.DetectContentType(data)
	if !p.allowed[detected] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = downscale(img, p.MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.Quality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	b := img.Bounds()
	return &Photo{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// downscale resizes the image so neither dimension exceeds maxDim,
// preserving aspect ratio. Images within bounds are returned unchanged.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, h*maxDim/w)
	} else {
		newW = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
	image.RegisterFormat("gif", "GIF8?a", gif.Decode, gif.DecodeConfig)
}
