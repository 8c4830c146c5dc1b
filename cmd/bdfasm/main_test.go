package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/McHogardty/z80/fonts/bitmap"
)

// writeBDF writes a font with a 5x8 glyph for every printable
// ASCII character: 'A' is drawn, the others are blank.
func writeBDF(t *testing.T, skip rune) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("STARTFONT 2.1\nFONT test\nSIZE 8 72 72\nFONTBOUNDINGBOX 5 8 0 -1\n")
	sb.WriteString("STARTPROPERTIES 2\nFONT_ASCENT 7\nFONT_DESCENT 1\nENDPROPERTIES\n")
	n := 0
	var chars strings.Builder
	for r := ' '; r <= '~'; r++ {
		if r == skip {
			continue
		}
		n++
		rows := "00\n00\n00\n00\n00\n00\n00\n00\n"
		if r == 'A' {
			rows = "70\n88\n88\nF8\n88\n88\n88\n00\n"
		}
		fmt.Fprintf(&chars, "STARTCHAR U+%04X\nENCODING %d\nSWIDTH 500 0\nDWIDTH 5 0\nBBX 5 8 0 -1\nBITMAP\n%sENDCHAR\n", r, r, rows)
	}
	fmt.Fprintf(&sb, "CHARS %d\n%sENDFONT\n", n, chars.String())

	path := filepath.Join(t.TempDir(), "font.bdf")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	font := writeBDF(t, 0)
	dir := t.TempDir()
	out := filepath.Join(dir, "font.asm")
	pdf := filepath.Join(dir, "font.pdf")
	png := filepath.Join(dir, "font.png")

	// a previous, longer output is replaced
	if err := os.WriteFile(out, bytes.Repeat([]byte("x"), 10000), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := run([]string{"-font", font, "-o", out, "-pdf", pdf, "-png", png}, io.Discard); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	if len(lines) != 95 {
		t.Fatalf("expected 95 lines, got %d", len(lines))
	}
	if lines[0] != "    defb 0x00, 0x00, 0x00, 0x00, 0x00  ;  " {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if lines['A'-' '] != "    defb 0x7e, 0x09, 0x09, 0x09, 0x7e  ; A" {
		t.Errorf("unexpected line for A %q", lines['A'-' '])
	}
	if lines[94] != "    defb 0x00, 0x00, 0x00, 0x00, 0x00  ; ~" {
		t.Errorf("unexpected last line %q", lines[94])
	}

	for _, path := range []string{pdf, png} {
		if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
			t.Errorf("missing proof file %s", path)
		}
	}
}

func TestRunRange(t *testing.T) {
	font := writeBDF(t, 0)
	out := filepath.Join(t.TempDir(), "font.asm")
	if err := run([]string{"-font", font, "-o", out, "-first", "A", "-last", "0x42"}, io.Discard); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	exp := "    defb 0x7e, 0x09, 0x09, 0x09, 0x7e  ; A\n    defb 0x00, 0x00, 0x00, 0x00, 0x00  ; B\n"
	if string(b) != exp {
		t.Errorf("expected %q, got %q", exp, b)
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "font.asm")

	err := run([]string{"-font", filepath.Join(dir, "missing.bdf"), "-o", out}, io.Discard)
	var loadErr *bitmap.ResourceLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected a ResourceLoadError, got %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no output expected after a load error")
	}

	font := writeBDF(t, 'z')
	err = run([]string{"-font", font, "-o", out}, io.Discard)
	var lookupErr *bitmap.GlyphLookupError
	if !errors.As(err, &lookupErr) || lookupErr.Code != 'z' {
		t.Fatalf("expected a GlyphLookupError for z, got %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no output expected after a lookup error")
	}

	if err := run([]string{"-font", font, "-o", out, "-skip-missing"}, io.Discard); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "    defb 0x00, 0x00, 0x00, 0x00, 0x00  ; z\n") {
		t.Error("expected a blank glyph for z")
	}
}

func TestParseConfig(t *testing.T) {
	t.Setenv(envFont, "env.bdf")
	t.Setenv(envOutput, "")

	cfg, err := parseConfig(nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.font != "env.bdf" || cfg.output != "spleen-5x8.asm" {
		t.Errorf("unexpected defaults %q %q", cfg.font, cfg.output)
	}
	if cfg.opts.First != ' ' || cfg.opts.Last != '~' || cfg.opts.Charset != nil {
		t.Errorf("unexpected options %+v", cfg.opts)
	}

	cfg, err = parseConfig([]string{"-font", "flag.bdf", "-first", "32", "-last", "0xff", "-charset", "ISO-8859-15"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.font != "flag.bdf" || cfg.opts.First != 32 || cfg.opts.Last != 0xff || cfg.opts.Charset == nil {
		t.Errorf("unexpected config %+v", cfg)
	}

	for _, args := range [][]string{
		{"-first", "256"},
		{"-first", "b", "-last", "a"},
		{"-charset", "nope"},
		{"extra"},
	} {
		if _, err := parseConfig(args, io.Discard); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}

func TestLoadEnv(t *testing.T) {
	if err := loadEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("a missing .env file should be ignored: %s", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(envCharset+"=KOI8-R\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(envCharset, "") // restored after the test
	os.Unsetenv(envCharset)
	if err := loadEnv(path); err != nil {
		t.Fatal(err)
	}
	if os.Getenv(envCharset) != "KOI8-R" {
		t.Errorf("unexpected %s: %q", envCharset, os.Getenv(envCharset))
	}
}
