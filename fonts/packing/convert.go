package packing

import (
	"errors"
	"fmt"

	"github.com/McHogardty/z80/fonts/bitmap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// GlyphSource is implemented by *bitmap.Font.
type GlyphSource interface {
	Glyph(r rune) (bitmap.Bitmap, error)
}

// Options selects the characters to convert.
type Options struct {
	// First and Last are the (inclusive) target character codes.
	First, Last byte

	// Charset maps target codes to the runes looked up in the font.
	// When nil, codes are used as is.
	Charset *charmap.Charmap

	// SkipMissing replaces missing or malformed glyphs by a blank one,
	// so that the table stays indexed by code. By default, such glyphs
	// are fatal.
	SkipMissing bool
}

// DefaultOptions selects the printable ASCII range.
func DefaultOptions() Options {
	return Options{First: ' ', Last: '~'}
}

// LookupCharset returns the single byte charset with the given IANA name,
// such as "ISO-8859-1" or "KOI8-R".
func LookupCharset(name string) (*charmap.Charmap, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, err
	}
	cm, ok := enc.(*charmap.Charmap)
	if !ok {
		return nil, fmt.Errorf("charset %s is not a single byte encoding", name)
	}
	return cm, nil
}

// Record is the packed glyph of one character code.
type Record struct {
	Code    byte
	Rune    rune
	Columns Packed
	// Missing is true when the glyph was replaced by a blank one.
	Missing bool
	// Err is the reason of the replacement
	Err error
}

func (opts Options) runeOf(code byte) rune {
	if opts.Charset != nil {
		return opts.Charset.DecodeByte(code)
	}
	return rune(code)
}

// Convert packs the glyphs of every code between opts.First and opts.Last,
// in ascending order. Lookup and shape errors are returned as *bitmap.GlyphLookupError.
func Convert(src GlyphSource, opts Options) ([]Record, error) {
	if opts.First > opts.Last {
		return nil, fmt.Errorf("invalid character range 0x%02x-0x%02x", opts.First, opts.Last)
	}
	out := make([]Record, 0, int(opts.Last)-int(opts.First)+1)
	for code := int(opts.First); code <= int(opts.Last); code++ {
		rec := Record{Code: byte(code), Rune: opts.runeOf(byte(code))}
		cols, err := packGlyph(src, rec.Rune)
		if err != nil {
			if !opts.SkipMissing {
				return nil, err
			}
			rec.Missing, rec.Err = true, err
		} else {
			rec.Columns = cols
		}
		out = append(out, rec)
	}
	return out, nil
}

func packGlyph(src GlyphSource, r rune) (Packed, error) {
	g, err := src.Glyph(r)
	if err != nil {
		var lookup *bitmap.GlyphLookupError
		if errors.As(err, &lookup) {
			return Packed{}, err
		}
		return Packed{}, &bitmap.GlyphLookupError{Code: r, Err: err}
	}
	cols, err := Pack(g)
	if err != nil {
		return Packed{}, &bitmap.GlyphLookupError{Code: r, Err: err}
	}
	return cols, nil
}
