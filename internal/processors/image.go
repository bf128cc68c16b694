package processors

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"slices"

	"golang.org/x/image/draw"

	"git.home.luguber.info/inful/sitekit/internal/asset"
	"git.home.luguber.info/inful/sitekit/internal/buildctx"
	"git.home.luguber.info/inful/sitekit/internal/media"
)

const jpegQuality = 90

// Image downscales raster images to fit within the configured bounds,
// keeping the aspect ratio and the original format.
type Image struct {
	Options ImageOptions
}

// decodable lists the image types with a registered decoder.
var decodable = []media.MediaType{media.PNG, media.JPEG, media.GIF}

func isRaster(mt media.MediaType) bool {
	return mt.Category() == media.CategoryImage && slices.Contains(decodable, mt)
}

func (p *Image) Process(_ *buildctx.Context, a *asset.Asset) error {
	if !isRaster(a.MediaType()) {
		return nil
	}
	if p.Options.MaxWidth <= 0 && p.Options.MaxHeight <= 0 {
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

	w, h, ok := fit(src.Bounds().Dx(), src.Bounds().Dy(), p.Options.MaxWidth, p.Options.MaxHeight)
	if !ok {
		return nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	out, err := encode(a.MediaType(), dst)
	if err != nil {
		return CompilationError(err, "encode %s", a.Path())
	}
	a.SetBinary(out)
	return nil
}

// fit returns the largest size within the bounds keeping the aspect ratio.
// ok is false when no resize is needed.
func fit(w, h, maxW, maxH int) (int, int, bool) {
	if w <= 0 || h <= 0 {
		return w, h, false
	}
	scale := 1.0
	if maxW > 0 && w > maxW {
		scale = float64(maxW) / float64(w)
	}
	if maxH > 0 && float64(h)*scale > float64(maxH) {
		scale = float64(maxH) / float64(h)
	}
	if scale >= 1 {
		return w, h, false
	}
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))
	return nw, nh, true
}

func encode(mt media.MediaType, img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch mt {
	case media.JPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	case media.GIF:
		err = gif.Encode(&buf, img, nil)
	default:
		err = png.Encode(&buf, img)
	}
	return buf.Bytes(), err
}
