// Package packing converts 5x8 glyph cells into column bytes,
// the layout expected by the framebuffer text routine: one byte
// per glyph column, the top row in bit 0.
package packing

import (
	"errors"
	"fmt"

	"github.com/McHogardty/z80/fonts/bitmap"
)

const (
	Rows    = 8
	Columns = 5
)

// ErrShape is returned for glyphs which are not Columns x Rows.
var ErrShape = errors.New("unexpected glyph shape")

// Packed stores one byte per glyph column.
type Packed [Columns]uint8

// Pack encodes the glyph rows, from top to bottom: each row shifts the
// column accumulators right, and inked pixels set the high bit.
// After the last row, bit 0 holds the top row and bit 7 the bottom row.
func Pack(b bitmap.Bitmap) (Packed, error) {
	var out Packed
	if len(b) != Rows {
		return out, fmt.Errorf("%w: %d rows instead of %d", ErrShape, len(b), Rows)
	}
	for y, row := range b {
		if len(row) != Columns {
			return out, fmt.Errorf("%w: row %d has %d columns instead of %d", ErrShape, y, len(row), Columns)
		}
	}

	for _, row := range b {
		for i, px := range row {
			col := out[i] >> 1
			if px {
				col |= 0x80
			}
			out[i] = col
		}
	}
	return out, nil
}

// Unpack is the inverse of Pack.
func Unpack(p Packed) bitmap.Bitmap {
	out := make(bitmap.Bitmap, Rows)
	for y := range out {
		out[y] = make([]bool, Columns)
		for i, col := range p {
			out[y][i] = col>>y&1 == 1
		}
	}
	return out
}
