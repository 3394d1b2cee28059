// Package imagex shrinks oversized photo attachments so they fit under the
// configured byte ceiling before being persisted locally.
package imagex

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

var (
	// ErrNotAnImage is returned when the payload does not decode as an image.
	ErrNotAnImage = errors.New("payload is not a decodable image")

	// ErrTooLarge is returned when even the lowest acceptable quality cannot
	// bring the payload under the byte ceiling.
	ErrTooLarge = errors.New("image exceeds size limit after compression")
)

// Options controls the downscale/re-encode pipeline.
type Options struct {
	// MaxBytes is the byte ceiling; payloads at or under it pass unchanged.
	MaxBytes int
	// MaxEdge clamps the longest image edge, in pixels.
	MaxEdge int
	// StartQuality, QualityStep and QualityFloor drive JPEG re-encoding:
	// quality starts at StartQuality and decreases by QualityStep per round
	// until the output fits or the floor is reached.
	StartQuality float64
	QualityStep  float64
	QualityFloor float64
}

// DefaultOptions mirror the limits enforced server-side.
func DefaultOptions() Options {
	return Options{
		MaxBytes:     8 << 20,
		MaxEdge:      1600,
		StartQuality: 0.85,
		QualityStep:  0.10,
		QualityFloor: 0.50,
	}
}

// Result describes the outcome of FitUnderLimit.
type Result struct {
	Data     []byte
	MimeType string
	// Resized reports whether the payload was re-encoded (false means the
	// original bytes were already under the ceiling).
	Resized bool
	// Quality is the JPEG quality used for the final encode, 0 when the
	// original bytes were kept.
	Quality float64
}

// IsImageMime reports whether mime names an image type.
func IsImageMime(mime string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mime)), "image/")
}

// FitUnderLimit returns the payload unchanged when it is already under the
// ceiling. Otherwise it decodes the image, clamps the longest edge to
// opts.MaxEdge, and re-encodes as JPEG at decreasing quality until the result
// fits. If the quality floor is reached and the output is still oversized,
// ErrTooLarge is returned and the attachment must be rejected.
func FitUnderLimit(data []byte, opts Options) (*Result, error) {
	if opts.MaxBytes <= 0 {
		return nil, fmt.Errorf("invalid byte ceiling %d", opts.MaxBytes)
	}

	if len(data) <= opts.MaxBytes {
		return &Result{Data: data, Resized: false}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	img = clampLongestEdge(img, opts.MaxEdge)

	// Quality floor is inclusive: 0.85, 0.75, ..., 0.55, 0.50.
	quality := opts.StartQuality
	for {
		if quality < opts.QualityFloor {
			quality = opts.QualityFloor
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: int(quality*100 + 0.5)}); err != nil {
			return nil, fmt.Errorf("jpeg encode: %w", err)
		}

		if buf.Len() <= opts.MaxBytes {
			return &Result{
				Data:     buf.Bytes(),
				MimeType: "image/jpeg",
				Resized:  true,
				Quality:  quality,
			}, nil
		}

		if quality <= opts.QualityFloor {
			return nil, ErrTooLarge
		}
		quality -= opts.QualityStep
	}
}

func clampLongestEdge(img image.Image, maxEdge int) image.Image {
	if maxEdge <= 0 {
		return img
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxEdge {
		return img
	}

	scale := float64(maxEdge) / float64(longest)
	dw := int(float64(w)*scale + 0.5)
	dh := int(float64(h)*scale + 0.5)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
