package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/McHogardty/z80/fonts/packing"
	"github.com/joho/godotenv"
)

// environment variables used as defaults for the flags
const (
	envFont    = "BDFASM_FONT"
	envOutput  = "BDFASM_OUTPUT"
	envCharset = "BDFASM_CHARSET"
)

type config struct {
	font, output string
	pdf, png     string
	scale        int
	charset      string
	verbose      bool
	opts         packing.Options
}

// loadEnv reads the optional .env file of the working directory.
func loadEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// byteValue accepts decimal, 0x prefixed hexadecimal or a one character literal.
type byteValue struct{ b *byte }

func (v byteValue) String() string {
	if v.b == nil {
		return ""
	}
	return fmt.Sprintf("0x%02x", *v.b)
}

func (v byteValue) Set(s string) error {
	if len(s) == 1 && (s[0] < '0' || s[0] > '9') {
		*v.b = s[0]
		return nil
	}
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return fmt.Errorf("invalid character code %q", s)
	}
	*v.b = byte(n)
	return nil
}

func parseConfig(args []string, output io.Writer) (config, error) {
	cfg := config{opts: packing.DefaultOptions()}

	fs := flag.NewFlagSet("bdfasm", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.font, "font", getenv(envFont, "spleen/spleen-5x8.bdf"), "BDF or PCF font file (optionally .gz or .zst compressed)")
	fs.StringVar(&cfg.output, "o", getenv(envOutput, "spleen-5x8.asm"), "assembly file to write")
	fs.Var(byteValue{&cfg.opts.First}, "first", "first character code")
	fs.Var(byteValue{&cfg.opts.Last}, "last", "last character code")
	fs.StringVar(&cfg.charset, "charset", getenv(envCharset, ""), "IANA charset of the target codes (default: codes are Unicode points)")
	fs.BoolVar(&cfg.opts.SkipMissing, "skip-missing", false, "emit blank glyphs for missing characters instead of failing")
	fs.StringVar(&cfg.pdf, "pdf", "", "also write a PDF proof sheet")
	fs.StringVar(&cfg.png, "png", "", "also write a PNG strip")
	fs.IntVar(&cfg.scale, "scale", 4, "pixel size of the PNG strip")
	fs.BoolVar(&cfg.verbose, "v", false, "log font loading and file writing")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if fs.NArg() != 0 {
		return config{}, fmt.Errorf("unexpected arguments %v", fs.Args())
	}

	if cfg.charset != "" {
		cm, err := packing.LookupCharset(cfg.charset)
		if err != nil {
			return config{}, err
		}
		cfg.opts.Charset = cm
	}
	if cfg.opts.First > cfg.opts.Last {
		return config{}, fmt.Errorf("invalid character range 0x%02x-0x%02x", cfg.opts.First, cfg.opts.Last)
	}
	return cfg, nil
}
