package exports

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Signatures larger than this are scaled down before embedding.
const maxSignaturePixels = 1200

var errBlankSignature = errors.New("signature image is blank")

type signatureImage struct {
	jpeg          []byte
	width, height int
}

// fit returns the largest size with the image's aspect ratio inside w x h.
func (s *signatureImage) fit(w, h float64) (float64, float64) {
	iw, ih := float64(s.width), float64(s.height)
	scale := w / iw
	if ih*scale > h {
		scale = h / ih
	}
	return iw * scale, ih * scale
}

// decodeSignature accepts a data URI or bare base64 image and returns it
// re-encoded as JPEG on a white background.
func decodeSignature(payload string) (*signatureImage, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, errors.New("empty signature payload")
	}
	if strings.HasPrefix(payload, "data:") {
		_, data, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, errors.New("malformed data URI")
		}
		payload = data
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode signature base64: %w", err)
		}
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid signature dimensions: %dx%d", width, height)
	}

	if width > maxSignaturePixels || height > maxSignaturePixels {
		scale := float64(maxSignaturePixels) / float64(max(width, height))
		width = max(1, int(float64(width)*scale))
		height = max(1, int(float64(height)*scale))
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(canvas, canvas.Bounds(), img, bounds, draw.Over, nil)

	if isBlankImage(canvas) {
		return nil, errBlankSignature
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to convert %s signature to JPEG: %w", format, err)
	}
	return &signatureImage{jpeg: buf.Bytes(), width: width, height: height}, nil
}

// isBlankImage reports whether every pixel is (near) white. A cleared
// signature pad produces such an image.
func isBlankImage(img *image.RGBA) bool {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		if img.Pix[i] < 0xf0 || img.Pix[i+1] < 0xf0 || img.Pix[i+2] < 0xf0 {
			return false
		}
	}
	return true
}
