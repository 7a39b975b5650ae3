// Package qrcode mengubah URL verifikasi menjadi gambar QR (PNG / WebP).
// Tidak tahu apa-apa soal token atau status; input-nya hanya string URL.
package qrcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	qr "github.com/skip2/go-qrcode"
)

type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"

	DefaultSize = 320
	MinSize     = 128
	MaxSize     = 1024
)

var ErrUnsupportedFormat = errors.New("unsupported QR image format")

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPNG:
		return FormatPNG, nil
	case FormatWebP:
		return FormatWebP, nil
	}
	return "", ErrUnsupportedFormat
}

func (f Format) ContentType() string {
	if f == FormatWebP {
		return "image/webp"
	}
	return "image/png"
}

// ClampSize: 0 → default, sisanya dibatasi [MinSize, MaxSize].
func ClampSize(size int) int {
	switch {
	case size <= 0:
		return DefaultSize
	case size < MinSize:
		return MinSize
	case size > MaxSize:
		return MaxSize
	}
	return size
}

type Renderer struct {
	Level qr.RecoveryLevel
}

func NewRenderer() *Renderer {
	// Medium cukup untuk layar HP & kertas cetak
	return &Renderer{Level: qr.Medium}
}

func (r *Renderer) Image(content string, size int) (image.Image, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("qr content is empty")
	}
	code, err := qr.New(content, r.Level)
	if err != nil {
		return nil, fmt.Errorf("build qr: %w", err)
	}
	return code.Image(ClampSize(size)), nil
}

// Render encodes the QR for content as PNG or lossless WebP.
func (r *Renderer) Render(content string, size int, format Format) ([]byte, error) {
	img, err := r.Image(content, size)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	switch format {
	case FormatPNG, "":
		if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	case FormatWebP:
		// lossless: modul QR harus tetap tajam
		if err := webp.Encode(buf, img, &webp.Options{Lossless: true}); err != nil {
			return nil, fmt.Errorf("encode webp: %w", err)
		}
	default:
		return nil, ErrUnsupportedFormat
	}
	return buf.Bytes(), nil
}
