package processors

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitekit/internal/asset"
	"git.home.luguber.info/inful/sitekit/internal/buildctx"
	"git.home.luguber.info/inful/sitekit/internal/media"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodedSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h, mw, mh int
		wantW, wantH int
		wantResize   bool
	}{
		{"within bounds", 100, 50, 200, 200, 100, 50, false},
		{"width bound", 100, 50, 40, 0, 40, 20, true},
		{"height bound", 100, 50, 0, 10, 20, 10, true},
		{"both bounds pick tighter", 100, 100, 50, 25, 25, 25, true},
		{"unbounded", 100, 50, 0, 0, 100, 50, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, ok := fit(tt.w, tt.h, tt.mw, tt.mh)
			assert.Equal(t, tt.wantResize, ok)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestIsRaster(t *testing.T) {
	tests := []struct {
		mt   media.MediaType
		want bool
	}{
		{media.PNG, true},
		{media.JPEG, true},
		{media.GIF, true},
		{media.SVG, false},
		{media.WebP, false},
		{media.CSS, false},
		{media.ICO, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isRaster(tt.mt), tt.mt.String())
	}
}

func TestImage_SkipsNonImages(t *testing.T) {
	a := asset.NewText("style.css", media.CSS, "body{}")
	require.NoError(t, (&Image{Options: ImageOptions{MaxWidth: 1}}).Process(buildctx.New(), a))
	out, err := a.Text()
	require.NoError(t, err)
	assert.Equal(t, "body{}", out)
}

func TestImage_Downscales(t *testing.T) {
	a := asset.NewBinary("img/a.png", media.PNG, testPNG(t, 100, 50))
	p := &Image{Options: ImageOptions{MaxWidth: 40}}
	require.NoError(t, p.Process(buildctx.New(), a))

	data, err := a.Bytes()
	require.NoError(t, err)
	w, h := decodedSize(t, data)
	assert.Equal(t, 40, w)
	assert.Equal(t, 20, h)
	assert.Equal(t, media.PNG, a.MediaType())
}

func TestImage_LeavesSmallImagesAlone(t *testing.T) {
	orig := testPNG(t, 10, 10)
	a := asset.NewBinary("a.png", media.PNG, orig)
	require.NoError(t, (&Image{Options: ImageOptions{MaxWidth: 40, MaxHeight: 40}}).Process(buildctx.New(), a))
	data, _ := a.Bytes()
	assert.Equal(t, orig, data)
}

func TestImage_Malformed(t *testing.T) {
	a := asset.NewBinary("a.png", media.PNG, []byte("not a png"))
	err := (&Image{Options: ImageOptions{MaxWidth: 10}}).Process(buildctx.New(), a)
	var pe *ProcessingError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, Malformed, pe.Kind)
}

func TestFavicon_WrapsPNGInICO(t *testing.T) {
	a := asset.NewBinary("favicon.png", media.PNG, testPNG(t, 64, 64))
	require.NoError(t, (&Favicon{Size: 32}).Process(buildctx.New(), a))

	assert.Equal(t, media.ICO, a.MediaType())
	data, err := a.Bytes()
	require.NoError(t, err)
	require.Greater(t, len(data), 22)
	assert.Equal(t, []byte{0, 0, 1, 0, 1, 0}, data[:6])
	assert.Equal(t, byte(32), data[6])
	assert.Equal(t, byte(32), data[7])

	w, h := decodedSize(t, data[22:])
	assert.Equal(t, 32, w)
	assert.Equal(t, 32, h)
}

func TestFavicon_OnlyMatchesFaviconStem(t *testing.T) {
	a := asset.NewBinary("logo.png", media.PNG, testPNG(t, 8, 8))
	require.NoError(t, (&Favicon{Size: 32}).Process(buildctx.New(), a))
	assert.Equal(t, media.PNG, a.MediaType())
}
