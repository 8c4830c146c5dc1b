package bitmap

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/zachomedia/go-bdf"
)

// parseBDF reports the panics of bdf.Parse on inconsistent
// files as errors.
func parseBDF(data []byte) (bf *bdf.Font, err error) {
	defer func() {
		if r := recover(); r != nil {
			bf, err = nil, fmt.Errorf("corrupted BDF file: %v", r)
		}
	}()
	return bdf.Parse(data)
}

// rawEncodings returns the ENCODING value of each STARTCHAR block,
// in file order, before any charset decoding.
func rawEncodings(data []byte) []int {
	var out []int
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "STARTCHAR":
			out = append(out, -1)
		case "ENCODING":
			if len(out) != 0 && len(fields) > 1 {
				if v, err := strconv.Atoi(fields[1]); err == nil {
					out[len(out)-1] = v
				}
			}
		}
	}
	return out
}

// ParseBDF parses a .bdf file content and rasterizes every
// encoded glyph.
func ParseBDF(data []byte) (*Font, error) {
	bf, err := parseBDF(data)
	if err != nil {
		return nil, err
	}
	raw := rawEncodings(data)
	if len(raw) != len(bf.Characters) {
		raw = nil
	}

	out := &Font{
		Name:       bf.Name,
		Ascent:     bf.Ascent,
		Descent:    bf.Descent,
		Properties: map[string]Property{},
		Glyphs:     make(map[rune]Bitmap, len(bf.Characters)),
	}
	if bf.Name != "" {
		out.Properties["FONT"] = Atom(bf.Name)
	}
	if bf.PixelSize != 0 {
		out.Properties["PIXEL_SIZE"] = Int(bf.PixelSize)
	}

	if out.Ascent+out.Descent <= 0 {
		// no FONT_ASCENT/FONT_DESCENT: use the glyphs extents
		out.Ascent, out.Descent = bdfExtents(bf)
	}
	out.Properties["FONT_ASCENT"] = Int(out.Ascent)
	out.Properties["FONT_DESCENT"] = Int(out.Descent)

	for i, ch := range bf.Characters {
		if ch.Encoding < 0 || (raw != nil && raw[i] < 0) {
			continue // unencoded glyph
		}
		advance := ch.Advance[0]
		if advance <= 0 && ch.Alpha != nil {
			advance = ch.LowerPoint[0] + ch.Alpha.Bounds().Dx()
		}
		c := newCell(advance, out.Ascent, out.Descent)
		if ch.Alpha != nil {
			bounds := ch.Alpha.Bounds()
			h := bounds.Dy()
			for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
				for x := bounds.Min.X; x < bounds.Max.X; x++ {
					if ch.Alpha.AlphaAt(x, y).A != 0 {
						c.setInk(x-bounds.Min.X, y-bounds.Min.Y, h, ch.LowerPoint[0], ch.LowerPoint[1])
					}
				}
			}
		}
		out.Glyphs[ch.Encoding] = c.Bitmap
	}
	return out, nil
}

func bdfExtents(bf *bdf.Font) (ascent, descent int) {
	for _, ch := range bf.Characters {
		if ch.Alpha == nil {
			continue
		}
		if top := ch.LowerPoint[1] + ch.Alpha.Bounds().Dy(); top > ascent {
			ascent = top
		}
		if bottom := -ch.LowerPoint[1]; bottom > descent {
			descent = bottom
		}
	}
	return ascent, descent
}
