// Package specimen draws proof sheets of packed glyph tables.
//
// Glyphs are drawn back from their column bytes, so that the sheets show
// exactly what the framebuffer routine will display.
package specimen

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/McHogardty/z80/fonts/packing"
	"github.com/phpdave11/gofpdf"
	"golang.org/x/image/draw"
)

// Options controls the PDF layout.
type Options struct {
	Title   string
	Dot     float64 // size of one pixel, in mm
	PerLine int     // glyphs per line
}

// DefaultOptions returns a 16 glyphs wide A4 layout.
func DefaultOptions() Options {
	return Options{Title: "Glyph table", Dot: 1.5, PerLine: 16}
}

const margin = 15. // mm

// WritePDF writes a one page (or more) PDF showing every record,
// labelled with its hexadecimal code. Missing glyphs are framed in red.
func WritePDF(w io.Writer, recs []packing.Record, opts Options) error {
	if opts.Dot <= 0 {
		opts.Dot = DefaultOptions().Dot
	}
	if opts.PerLine <= 0 {
		opts.PerLine = DefaultOptions().PerLine
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(opts.Title, true)
	pdf.SetCreator("bdfasm", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	_, pageHeight := pdf.GetPageSize()
	boxW := float64(packing.Columns+3) * opts.Dot
	boxH := float64(packing.Rows)*opts.Dot + 6 // room for the label

	newPage := func() float64 {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Text(margin, margin, tr(opts.Title))
		pdf.SetFont("Courier", "", 6)
		return margin + 6
	}

	y := newPage()
	for i, rec := range recs {
		col := i % opts.PerLine
		if col == 0 && i != 0 {
			y += boxH
			if y+boxH > pageHeight-margin {
				y = newPage()
			}
		}
		x := margin + float64(col)*boxW

		label := fmt.Sprintf("%02x", rec.Code)
		if rec.Code > ' ' && rec.Code < 0x7f {
			label += " " + string(rune(rec.Code))
		}
		pdf.SetTextColor(80, 80, 80)
		pdf.Text(x, y+boxH-2, label)

		if rec.Missing {
			pdf.SetDrawColor(200, 0, 0)
			pdf.Rect(x, y, float64(packing.Columns)*opts.Dot, float64(packing.Rows)*opts.Dot, "D")
			continue
		}

		pdf.SetFillColor(0, 0, 0)
		glyph := packing.Unpack(rec.Columns)
		for gy, row := range glyph {
			for gx, px := range row {
				if px {
					pdf.Rect(x+float64(gx)*opts.Dot, y+float64(gy)*opts.Dot, opts.Dot, opts.Dot, "F")
				}
			}
		}
	}

	return pdf.Output(w)
}

// Image draws the records side by side, separated by one blank column,
// each pixel being scaled to `scale` x `scale`.
func Image(recs []packing.Record, scale int) *image.Gray {
	if scale < 1 {
		scale = 1
	}
	const stride = packing.Columns + 1
	src := image.NewGray(image.Rect(0, 0, max(len(recs)*stride-1, 1), packing.Rows))
	draw.Draw(src, src.Bounds(), image.White, image.Point{}, draw.Src)
	for i, rec := range recs {
		glyph := packing.Unpack(rec.Columns)
		for y, row := range glyph {
			for x, px := range row {
				if px {
					src.SetGray(i*stride+x, y, color.Gray{})
				}
			}
		}
	}
	if scale == 1 {
		return src
	}

	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// WritePNG encodes Image(recs, scale) as PNG.
func WritePNG(w io.Writer, recs []packing.Record, scale int) error {
	return png.Encode(w, Image(recs, scale))
}
