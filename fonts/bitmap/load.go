package bitmap

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pdfcpu/pdfcpu/pkg/log"
)

const bdfHeader = "STARTFONT"

// Load reads the font file at `path`. Files ending with .gz or .zst
// are decompressed first. The format (BDF or PCF) is deduced from the content.
// The returned error, if any, is a *ResourceLoadError.
func Load(path string) (*Font, error) {
	data, err := readResource(path)
	if err != nil {
		return nil, &ResourceLoadError{Path: path, Err: err}
	}
	font, err := Parse(data)
	if err != nil {
		return nil, &ResourceLoadError{Path: path, Err: err}
	}
	log.Read.Printf("loaded %s: %q, %d glyphs, ascent %d, descent %d\n",
		path, font.Name, len(font.Glyphs), font.Ascent, font.Descent)
	return font, nil
}

// Parse deduces the font format from its content and parses it.
func Parse(data []byte) (*Font, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	switch {
	case bytes.HasPrefix(data, []byte(HEADER)):
		return ParsePCF(data)
	case bytes.HasPrefix(trimmed, []byte(bdfHeader)):
		return ParseBDF(trimmed)
	default:
		return nil, errors.New("unsupported font format (expected BDF or PCF)")
	}
}

func readResource(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	switch filepath.Ext(path) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	case ".zst":
		zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}
	return io.ReadAll(r)
}
