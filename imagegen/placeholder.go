// placeholder.go implements the synthetic image renderer. It serves two
// routes: placeholder-family models that have no real adapter, and the
// fallback path when a real provider fails. The output is a diagonal
// gradient with a caption naming the prompt.
package imagegen

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"artgen_backend/models"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// gradientPairs are the start and end colors of the placeholder gradients.
var gradientPairs = [][2]color.RGBA{
	{{R: 0x66, G: 0x7e, B: 0xea, A: 0xff}, {R: 0x76, G: 0x4b, B: 0xa2, A: 0xff}},
	{{R: 0xf0, G: 0x93, B: 0xfb, A: 0xff}, {R: 0xf5, G: 0x57, B: 0x6c, A: 0xff}},
	{{R: 0x4f, G: 0xac, B: 0xfe, A: 0xff}, {R: 0x00, G: 0xf2, B: 0xfe, A: 0xff}},
	{{R: 0x43, G: 0xe9, B: 0x7b, A: 0xff}, {R: 0x38, G: 0xf9, B: 0xd7, A: 0xff}},
	{{R: 0xfa, G: 0x70, B: 0x9a, A: 0xff}, {R: 0xfe, G: 0xe1, B: 0x40, A: 0xff}},
	{{R: 0x30, G: 0xcf, B: 0xd0, A: 0xff}, {R: 0x33, G: 0x08, B: 0x67, A: 0xff}},
	{{R: 0xa8, G: 0xed, B: 0xea, A: 0xff}, {R: 0xfe, G: 0xd6, B: 0xe3, A: 0xff}},
	{{R: 0xff, G: 0x9a, B: 0x9e, A: 0xff}, {R: 0xfe, G: 0xcf, B: 0xef, A: 0xff}},
}

// captionPromptLen is how much of the prompt appears in the caption.
const captionPromptLen = 30

// PlaceholderGenerator renders synthetic images locally. It implements
// Provider so placeholder-family models route through the same dispatch
// path as real adapters.
//
// Thread Safety: PlaceholderGenerator is stateless and safe for
// concurrent use.
type PlaceholderGenerator struct{}

// NewPlaceholderGenerator creates the synthetic renderer.
func NewPlaceholderGenerator() *PlaceholderGenerator {
	return &PlaceholderGenerator{}
}

// Generate renders a gradient at the requested dimensions. The gradient
// pair is picked from the seed, so an explicit seed reproduces the same
// placeholder.
func (g *PlaceholderGenerator) Generate(_ context.Context, params models.Params) (*Image, error) {
	width, height := params.Width, params.Height
	if width <= 0 {
		width = models.FallbackWidth
	}
	if height <= 0 {
		height = models.FallbackHeight
	}

	pair := gradientPairs[int(params.Seed)%len(gradientPairs)]
	img := renderGradient(width, height, pair[0], pair[1])
	drawCaption(img, placeholderCaption(params.Prompt))

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("imagegen: encoding placeholder: %w", err)
	}
	return &Image{Data: buf.Bytes(), MIME: "image/png"}, nil
}

func placeholderCaption(prompt string) string {
	return "AI Generated: " + truncateText(prompt, captionPromptLen) + "..."
}

// renderGradient fills a diagonal gradient from the top-left color to the
// bottom-right color.
func renderGradient(width, height int, from, to color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	span := float64(width + height - 2)
	if span <= 0 {
		span = 1
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			t := float64(x+y) / span
			img.SetRGBA(x, y, color.RGBA{
				R: lerp(from.R, to.R, t),
				G: lerp(from.G, to.G, t),
				B: lerp(from.B, to.B, t),
				A: 0xff,
			})
		}
	}
	return img
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

// drawCaption renders the caption centered on the image.
func drawCaption(img *image.RGBA, caption string) {
	face := basicfont.Face7x13
	bounds := img.Bounds()

	textWidth := font.MeasureString(face, caption).Ceil()
	x := (bounds.Dx() - textWidth) / 2
	if x < 0 {
		x = 0
	}
	y := bounds.Dy()/2 + face.Metrics().Ascent.Ceil()/2

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(bounds.Min.X+x, bounds.Min.Y+y),
	}
	drawer.DrawString(caption)
}

// Ensure PlaceholderGenerator implements Provider at compile time.
var _ Provider = (*PlaceholderGenerator)(nil)
