package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleURL = "https://compsphere.id/admin/verify/0123456789abcdef0123456789abcdef"

func TestRender_PNG(t *testing.T) {
	out, err := NewRenderer().Render(sampleURL, 256, FormatPNG)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}

func TestRender_WebP(t *testing.T) {
	out, err := NewRenderer().Render(sampleURL, 0, FormatWebP)
	require.NoError(t, err)

	img, err := webp.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, img.Bounds().Dx())
}

func TestRender_Errors(t *testing.T) {
	_, err := NewRenderer().Render("", 256, FormatPNG)
	assert.Error(t, err)

	_, err = NewRenderer().Render(sampleURL, 256, Format("gif"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseFormatAndClamp(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	f, err = ParseFormat(" WEBP ")
	require.NoError(t, err)
	assert.Equal(t, FormatWebP, f)
	assert.Equal(t, "image/webp", f.ContentType())

	_, err = ParseFormat("jpg")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.Equal(t, DefaultSize, ClampSize(0))
	assert.Equal(t, MinSize, ClampSize(10))
	assert.Equal(t, MaxSize, ClampSize(5000))
	assert.Equal(t, 400, ClampSize(400))
}
