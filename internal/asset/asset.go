// Package asset defines the in-memory file that flows through the pipeline.
package asset

import (
	"errors"
	"strings"
	"unicode/utf8"

	"git.home.luguber.info/inful/sitekit/internal/media"
)

// Shape describes which representation an asset currently holds.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeBinary
	ShapeText
)

func (s Shape) String() string {
	switch s {
	case ShapeBinary:
		return "binary"
	case ShapeText:
		return "text"
	default:
		return "none"
	}
}

var (
	// ErrNonTextual is returned when text is requested from binary or empty contents.
	ErrNonTextual = errors.New("asset contents are not textual")
	// ErrNonBinary is returned when bytes are requested from textual or empty contents.
	ErrNonBinary = errors.New("asset contents are not binary")
	// ErrInvalidUTF8 is returned when binary contents cannot be reinterpreted as text.
	ErrInvalidUTF8 = errors.New("asset contents are not valid UTF-8")
)

// Asset is one logical file. Its path is its identity within a build; its
// media type and contents change as processors run.
type Asset struct {
	path      string
	mediaType media.MediaType
	origin    string

	shape Shape
	data  []byte
	text  string
}

// New creates an asset with no contents.
func New(path string, mt media.MediaType) *Asset {
	return &Asset{path: path, mediaType: mt}
}

// NewBinary creates an asset owning data.
func NewBinary(path string, mt media.MediaType, data []byte) *Asset {
	a := New(path, mt)
	a.SetBinary(data)
	return a
}

// NewText creates an asset holding text.
func NewText(path string, mt media.MediaType, text string) *Asset {
	a := New(path, mt)
	a.SetText(text)
	return a
}

func (a *Asset) Path() string                    { return a.path }
func (a *Asset) MediaType() media.MediaType      { return a.mediaType }
func (a *Asset) SetMediaType(mt media.MediaType) { a.mediaType = mt }
func (a *Asset) Shape() Shape                    { return a.shape }

// Origin names the kit an asset came from; empty for source assets.
func (a *Asset) Origin() string { return a.origin }

// SetOrigin records the kit an asset came from.
func (a *Asset) SetOrigin(kit string) { a.origin = kit }

// Text returns textual contents.
func (a *Asset) Text() (string, error) {
	if a.shape != ShapeText {
		return "", ErrNonTextual
	}
	return a.text, nil
}

// Bytes returns binary contents.
func (a *Asset) Bytes() ([]byte, error) {
	if a.shape != ShapeBinary {
		return nil, ErrNonBinary
	}
	return a.data, nil
}

// Raw returns the contents as bytes whatever the shape, for writing to disk.
func (a *Asset) Raw() []byte {
	switch a.shape {
	case ShapeText:
		return []byte(a.text)
	case ShapeBinary:
		return a.data
	default:
		return nil
	}
}

// SetText replaces the contents with text. Invalid UTF-8 sequences are
// replaced so the textual invariant always holds.
func (a *Asset) SetText(s string) {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
	}
	a.shape, a.text, a.data = ShapeText, s, nil
}

// SetBinary replaces the contents with data.
func (a *Asset) SetBinary(data []byte) {
	a.shape, a.data, a.text = ShapeBinary, data, ""
}

// Clear drops the contents.
func (a *Asset) Clear() {
	a.shape, a.data, a.text = ShapeNone, nil, ""
}

// DecodeText turns binary contents into text when they are valid UTF-8.
// Textual contents are left alone.
func (a *Asset) DecodeText() error {
	switch a.shape {
	case ShapeText:
		return nil
	case ShapeBinary:
		if !utf8.Valid(a.data) {
			return ErrInvalidUTF8
		}
		a.SetText(string(a.data))
		return nil
	default:
		return ErrNonBinary
	}
}

// Clone returns an independent copy.
func (a *Asset) Clone() *Asset {
	c := *a
	if a.data != nil {
		c.data = append([]byte(nil), a.data...)
	}
	return &c
}
