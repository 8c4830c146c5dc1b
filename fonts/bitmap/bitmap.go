// Package bitmap loads bitmap fonts such as .pcf and .bdf formats,
// and exposes each glyph as a cell of on/off pixels.
package bitmap

import (
	"errors"
	"fmt"
)

// Property is either an `Atom` or an `Int`
type Property interface {
	isProperty()
}

func (Atom) isProperty() {}
func (Int) isProperty()  {}

type Atom string

type Int int32

// Bitmap stores the pixels of one glyph cell,
// top row first. A true value is an inked pixel.
type Bitmap [][]bool

// Height returns the number of rows.
func (b Bitmap) Height() int { return len(b) }

// Width returns the length of the longest row.
func (b Bitmap) Width() int {
	w := 0
	for _, row := range b {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// String draws the bitmap with 'X' for inked pixels.
func (b Bitmap) String() string {
	out := make([]byte, 0, len(b)*(b.Width()+1))
	for _, row := range b {
		for _, px := range row {
			if px {
				out = append(out, 'X')
			} else {
				out = append(out, '.')
			}
		}
		out = append(out, '\n')
	}
	return string(out)
}

func newBitmap(width, height int) Bitmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	out := make(Bitmap, height)
	for i := range out {
		out[i] = make([]bool, width)
	}
	return out
}

// set ignores pixels falling outside the cell
func (b Bitmap) set(x, y int) {
	if y < 0 || y >= len(b) || x < 0 || x >= len(b[y]) {
		return
	}
	b[y][x] = true
}

// Font is a loaded bitmap font. Glyphs are rasterized
// once, at load time, into cells of `advance` x (Ascent + Descent)
// pixels, with the baseline at row `Ascent`.
type Font struct {
	Name            string
	Ascent, Descent int
	Properties      map[string]Property
	Glyphs          map[rune]Bitmap
}

// Glyph returns the cell bitmap for `r`, or an error
// wrapping ErrNoGlyph.
func (f *Font) Glyph(r rune) (Bitmap, error) {
	g, ok := f.Glyphs[r]
	if !ok {
		return nil, &GlyphLookupError{Code: r, Err: ErrNoGlyph}
	}
	return g, nil
}

// ErrNoGlyph is returned when the font does not define a character.
var ErrNoGlyph = errors.New("no glyph defined")

// ResourceLoadError is returned when a font file can't be read or parsed.
type ResourceLoadError struct {
	Path string
	Err  error
}

func (e *ResourceLoadError) Error() string {
	return fmt.Sprintf("loading font %q: %s", e.Path, e.Err)
}

func (e *ResourceLoadError) Unwrap() error { return e.Err }

// GlyphLookupError is returned when a character has
// no usable glyph.
type GlyphLookupError struct {
	Code rune
	Err  error
}

func (e *GlyphLookupError) Error() string {
	return fmt.Sprintf("glyph %U (%q): %s", e.Code, e.Code, e.Err)
}

func (e *GlyphLookupError) Unwrap() error { return e.Err }

// cell places glyph pixels in a font cell
type cell struct {
	Bitmap
	ascent int
}

func newCell(advance, ascent, descent int) cell {
	return cell{Bitmap: newBitmap(advance, ascent+descent), ascent: ascent}
}

// setInk marks the pixel (x, y) of a glyph bounding box of height `h`
// whose lower left corner is at (xOff, yOff) relative to the origin,
// y growing downwards inside the box.
func (c cell) setInk(x, y, h, xOff, yOff int) {
	top := c.ascent - (yOff + h)
	c.set(xOff+x, top+y)
}
