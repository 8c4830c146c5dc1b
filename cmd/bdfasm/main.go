// This tool converts the glyphs of a 5x8 bitmap font (.bdf or .pcf)
// into `defb` directives, one per character, for the framebuffer
// text routine. Each glyph column is packed in one byte, the top
// row in bit 0.
//
//	bdfasm -font spleen/spleen-5x8.bdf -o spleen-5x8.asm
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/McHogardty/z80/fonts/bitmap"
	"github.com/McHogardty/z80/fonts/packing"
	"github.com/McHogardty/z80/fonts/specimen"
	"github.com/pdfcpu/pdfcpu/pkg/log"
)

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal error:", err)
		os.Exit(1)
	}
}

func main() {
	log.SetDefaultCLILogger()
	check(loadEnv(".env"))

	err := run(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	check(err)
}

func run(args []string, stderr io.Writer) error {
	cfg, err := parseConfig(args, stderr)
	if err != nil {
		return err
	}
	if cfg.verbose {
		log.SetDefaultReadLogger()
		log.SetDefaultWriteLogger()
	}

	// the font is loaded and every glyph packed before touching the output
	font, err := bitmap.Load(cfg.font)
	if err != nil {
		return err
	}
	recs, err := packing.Convert(font, cfg.opts)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if rec.Missing {
			log.CLI.Printf("warning: blank glyph emitted for 0x%02x: %s\n", rec.Code, rec.Err)
		}
	}

	if err := writeFile(cfg.output, func(w io.Writer) error { return packing.WriteASM(w, recs) }); err != nil {
		return err
	}
	log.CLI.Printf("%d glyphs written in %s\n", len(recs), cfg.output)

	if cfg.pdf != "" {
		opts := specimen.DefaultOptions()
		opts.Title = cfg.font
		if err := writeFile(cfg.pdf, func(w io.Writer) error { return specimen.WritePDF(w, recs, opts) }); err != nil {
			return err
		}
	}
	if cfg.png != "" {
		if err := writeFile(cfg.png, func(w io.Writer) error { return specimen.WritePNG(w, recs, cfg.scale) }); err != nil {
			return err
		}
	}
	return nil
}

// writeFile replaces the content of `path` by the output of `write`.
// Nothing is created if `write` fails, and a partially written file
// is removed.
func writeFile(path string, write func(w io.Writer) error) (err error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return err
	}
	log.Write.Printf("%s: %d bytes\n", path, buf.Len())
	return nil
}
