// Package media maps file extensions to media types and media types to broad
// categories. The registry is a fixed declarative table; lookups never fail.
package media

import "strings"

// Category is the broad class of a media type. The image processors only
// touch CategoryImage assets and the types command lists it per entry.
type Category int

const (
	CategoryApplication Category = iota
	CategoryText
	CategoryImage
	CategoryAudio
	CategoryVideo
	CategoryFont
)

func (c Category) String() string {
	switch c {
	case CategoryText:
		return "text"
	case CategoryImage:
		return "image"
	case CategoryAudio:
		return "audio"
	case CategoryVideo:
		return "video"
	case CategoryFont:
		return "font"
	default:
		return "application"
	}
}

// MediaType identifies a registered type, or an unknown one carrying the
// original extension verbatim. The zero value is an unknown type with no extension.
type MediaType struct {
	id  int
	ext string
}

type definition struct {
	name    string
	mime    string
	textual bool
	exts    []string // most to least common
}

var registry = []definition{{name: "unknown", mime: "application/octet-stream"}}

func register(name, mime string, textual bool, exts ...string) MediaType {
	registry = append(registry, definition{name: name, mime: mime, textual: textual, exts: exts})
	return MediaType{id: len(registry) - 1}
}

var (
	HTML       = register("html", "text/html", true, "html", "htm")
	Markdown   = register("markdown", "text/markdown", true, "md", "markdown")
	CSS        = register("css", "text/css", true, "css")
	SCSS       = register("scss", "text/x-scss", true, "scss")
	JavaScript = register("javascript", "text/javascript", true, "js", "mjs")
	PlainText  = register("text", "text/plain", true, "txt")
	CSV        = register("csv", "text/csv", true, "csv")
	JSON       = register("json", "application/json", true, "json", "webmanifest")
	XML        = register("xml", "application/xml", true, "xml", "rss")
	SVG        = register("svg", "image/svg+xml", true, "svg")
	PNG        = register("png", "image/png", false, "png")
	JPEG       = register("jpeg", "image/jpeg", false, "jpg", "jpeg")
	GIF        = register("gif", "image/gif", false, "gif")
	WebP       = register("webp", "image/webp", false, "webp")
	ICO        = register("ico", "image/x-icon", false, "ico")
	WOFF       = register("woff", "font/woff", false, "woff")
	WOFF2      = register("woff2", "font/woff2", false, "woff2")
	PDF        = register("pdf", "application/pdf", false, "pdf")
	MP4        = register("mp4", "video/mp4", false, "mp4")
	MP3        = register("mp3", "audio/mpeg", false, "mp3")
	WASM       = register("wasm", "application/wasm", false, "wasm")
)

var (
	byExtension = map[string]MediaType{}
	byMIME      = map[string]MediaType{}
)

func init() {
	for id := 1; id < len(registry); id++ {
		t := MediaType{id: id}
		byMIME[registry[id].mime] = t
		for _, ext := range registry[id].exts {
			byExtension[ext] = t
		}
	}
}

// TypeFor returns the media type registered for ext (with or without a
// leading dot, case-insensitive). Unregistered extensions yield an unknown type
// that remembers ext exactly as given, minus the dot.
func TypeFor(ext string) MediaType {
	ext = strings.TrimPrefix(ext, ".")
	if t, ok := byExtension[strings.ToLower(ext)]; ok {
		return t
	}
	return MediaType{ext: ext}
}

// ForPath returns the media type for the extension of a slash-separated path.
func ForPath(p string) MediaType {
	return TypeFor(Ext(p))
}

// ByMIME looks a registered type up by its MIME name.
func ByMIME(mime string) (MediaType, bool) {
	t, ok := byMIME[strings.ToLower(mime)]
	return t, ok
}

// All returns the registered types in declaration order.
func All() []MediaType {
	out := make([]MediaType, 0, len(registry)-1)
	for id := 1; id < len(registry); id++ {
		out = append(out, MediaType{id: id})
	}
	return out
}

// Ext returns the extension of the last path element without the dot, or "".
func Ext(p string) string {
	base := p[strings.LastIndexByte(p, '/')+1:]
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}
	return base[i+1:]
}

func (t MediaType) IsUnknown() bool { return t.id == 0 }

// Name is the short registry name ("html", "png", ...), "unknown" otherwise.
func (t MediaType) Name() string { return registry[t.id].name }

// MIME is the MIME name; unknown types report application/octet-stream.
func (t MediaType) MIME() string { return registry[t.id].mime }

func (t MediaType) String() string {
	if t.IsUnknown() && t.ext != "" {
		return t.MIME() + " (." + t.ext + ")"
	}
	return t.MIME()
}

// Extensions lists extensions most common first. Unknown types list their
// original extension, if any.
func (t MediaType) Extensions() []string {
	if t.IsUnknown() {
		if t.ext == "" {
			return nil
		}
		return []string{t.ext}
	}
	return registry[t.id].exts
}

// Extension is the preferred output extension, "" when there is none.
func (t MediaType) Extension() string {
	if exts := t.Extensions(); len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// Category derives the broad class from the MIME prefix. Anything outside
// text, image, audio, video and font counts as application.
func (t MediaType) Category() Category {
	prefix, _, _ := strings.Cut(t.MIME(), "/")
	switch prefix {
	case "text":
		return CategoryText
	case "image":
		return CategoryImage
	case "audio":
		return CategoryAudio
	case "video":
		return CategoryVideo
	case "font":
		return CategoryFont
	default:
		return CategoryApplication
	}
}

// IsTextual reports whether contents of this type are expected to be UTF-8 text.
func (t MediaType) IsTextual() bool { return registry[t.id].textual }
