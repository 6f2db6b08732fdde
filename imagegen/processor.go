// processor.go implements the image normalizer. Every provider output,
// whatever its source format, leaves the pipeline as a JPEG data URL so
// clients render results uniformly without a second fetch.
package imagegen

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"artgen_backend/logging"

	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// maxOutputDimension bounds decoded images before re-encoding. Provider
// output larger than this on either side is scaled down to fit.
const maxOutputDimension = 4096

// Processor converts provider images into JPEG data URLs.
//
// Normalization is best-effort: if the input cannot be decoded, the
// original bytes pass through as a data URL in their declared format
// rather than failing the whole generation.
//
// Thread Safety: Processor is safe for concurrent use.
type Processor struct {
	logger *logging.Logger
}

// NewProcessor creates an image normalizer.
func NewProcessor(logger *logging.Logger) *Processor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Processor{logger: logger}
}

// Normalize re-encodes the image as a JPEG data URL at the given quality.
// quality is clamped to the 1..100 range the JPEG encoder accepts.
func (p *Processor) Normalize(img *Image, quality int) (string, error) {
	if img == nil || len(img.Data) == 0 {
		return "", fmt.Errorf("imagegen: no image data to normalize")
	}

	decoded, format, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		p.logger.Warn("image decode failed, passing original through",
			zap.String("declared_mime", img.MIME),
			zap.Error(err))
		return passthroughDataURL(img), nil
	}

	decoded = scaleToFit(decoded, maxOutputDimension)

	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, decoded, &jpeg.Options{Quality: quality}); err != nil {
		p.logger.Warn("jpeg encode failed, passing original through",
			zap.String("source_format", format),
			zap.Error(err))
		return passthroughDataURL(img), nil
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// passthroughDataURL wraps the original bytes without re-encoding.
func passthroughDataURL(img *Image) string {
	mime := img.MIME
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// scaleToFit shrinks img so neither side exceeds max. Images already in
// bounds are returned unchanged.
func scaleToFit(img image.Image, max int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= max && h <= max {
		return img
	}

	scale := float64(max) / float64(w)
	if h > w {
		scale = float64(max) / float64(h)
	}
	dstW := int(float64(w) * scale)
	dstH := int(float64(h) * scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}
