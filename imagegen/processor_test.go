package imagegen

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"artgen_backend/logging"
)

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}
	return buf.Bytes()
}

func decodeDataURL(t *testing.T, dataURL, wantPrefix string) []byte {
	t.Helper()
	if !strings.HasPrefix(dataURL, wantPrefix) {
		t.Fatalf("data URL prefix = %.40q, want %q", dataURL, wantPrefix)
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, wantPrefix))
	if err != nil {
		t.Fatalf("decoding data URL payload: %v", err)
	}
	return data
}

func TestNormalizeProducesJPEGDataURL(t *testing.T) {
	p := NewProcessor(logging.NewNop())

	dataURL, err := p.Normalize(&Image{Data: testPNG(t, 40, 30), MIME: "image/png"}, 75)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	payload := decodeDataURL(t, dataURL, "data:image/jpeg;base64,")
	decoded, err := jpeg.Decode(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("payload is not valid JPEG: %v", err)
	}
	if decoded.Bounds().Dx() != 40 || decoded.Bounds().Dy() != 30 {
		t.Errorf("dimensions = %v, want 40x30", decoded.Bounds())
	}
}

func TestNormalizeQualityClamp(t *testing.T) {
	p := NewProcessor(logging.NewNop())
	src := &Image{Data: testPNG(t, 16, 16), MIME: "image/png"}

	for _, quality := range []int{-5, 0, 50, 100, 150} {
		if _, err := p.Normalize(src, quality); err != nil {
			t.Errorf("Normalize(quality=%d) error = %v", quality, err)
		}
	}
}

func TestNormalizeUndecodableInputPassesThrough(t *testing.T) {
	p := NewProcessor(logging.NewNop())
	garbage := []byte("not an image at all")

	dataURL, err := p.Normalize(&Image{Data: garbage, MIME: "image/webp"}, 75)
	if err != nil {
		t.Fatalf("Normalize() error = %v, want passthrough", err)
	}

	payload := decodeDataURL(t, dataURL, "data:image/webp;base64,")
	if !bytes.Equal(payload, garbage) {
		t.Error("passthrough altered the original bytes")
	}
}

func TestNormalizePassthroughDefaultsMIME(t *testing.T) {
	p := NewProcessor(logging.NewNop())

	dataURL, err := p.Normalize(&Image{Data: []byte{0x00, 0x01}}, 75)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if !strings.HasPrefix(dataURL, "data:application/octet-stream;base64,") {
		t.Errorf("data URL = %.50q, want octet-stream fallback", dataURL)
	}
}

func TestNormalizeRejectsEmptyInput(t *testing.T) {
	p := NewProcessor(logging.NewNop())

	if _, err := p.Normalize(nil, 75); err == nil {
		t.Error("Normalize(nil) succeeded, want error")
	}
	if _, err := p.Normalize(&Image{}, 75); err == nil {
		t.Error("Normalize(empty) succeeded, want error")
	}
}

func TestScaleToFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h, max    int
		wantW, wantH int
	}{
		{"within bounds", 100, 50, 200, 100, 50},
		{"wide overflow", 400, 100, 200, 200, 50},
		{"tall overflow", 100, 400, 200, 50, 200},
		{"square overflow", 300, 300, 100, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
			got := scaleToFit(src, tt.max)
			if got.Bounds().Dx() != tt.wantW || got.Bounds().Dy() != tt.wantH {
				t.Errorf("scaleToFit(%dx%d, %d) = %v, want %dx%d",
					tt.w, tt.h, tt.max, got.Bounds(), tt.wantW, tt.wantH)
			}
		})
	}
}
