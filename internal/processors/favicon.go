package processors

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"path"
	"strings"

	"golang.org/x/image/draw"

	"git.home.luguber.info/inful/sitekit/internal/asset"
	"git.home.luguber.info/inful/sitekit/internal/buildctx"
	"git.home.luguber.info/inful/sitekit/internal/media"
)

// DefaultFaviconSize is used when no size is configured.
const DefaultFaviconSize = 32

const faviconStem = "favicon"

// Favicon turns a raster image named favicon.* into a single-entry ICO file.
type Favicon struct {
	Size int
}

func (f *Favicon) Process(_ *buildctx.Context, a *asset.Asset) error {
	if !isRaster(a.MediaType()) {
		return nil
	}
	base := path.Base(a.Path())
	if !strings.EqualFold(strings.TrimSuffix(base, path.Ext(base)), faviconStem) {
		return nil
	}
	data, err := bytesOf(a)
	if err != nil {
		return err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return MalformedError(err, "%s", a.Path())
	}

	size := min(max(f.Size, 1), 256)
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var pngData bytes.Buffer
	if err := png.Encode(&pngData, dst); err != nil {
		return CompilationError(err, "encode %s", a.Path())
	}
	a.SetBinary(icoWrap(pngData.Bytes(), size))
	a.SetMediaType(media.ICO)
	return nil
}

// icoWrap builds an ICO container holding one PNG encoded image.
func icoWrap(pngData []byte, size int) []byte {
	const headerLen, entryLen = 6, 16
	dim := byte(size)
	if size >= 256 {
		dim = 0
	}

	var buf bytes.Buffer
	buf.Grow(headerLen + entryLen + len(pngData))
	_ = binary.Write(&buf, binary.LittleEndian, struct {
		Reserved, Type, Count uint16
	}{0, 1, 1})
	_ = binary.Write(&buf, binary.LittleEndian, struct {
		Width, Height, Colors, Reserved uint8
		Planes, BitCount                uint16
		Size, Offset                    uint32
	}{dim, dim, 0, 0, 1, 32, uint32(len(pngData)), headerLen + entryLen})
	buf.Write(pngData)
	return buf.Bytes()
}
