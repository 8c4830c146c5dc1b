package bitmap

import (
	"bytes"
	"encoding/binary"
	"errors"

	"golang.org/x/exp/errors/fmt"
)

// parser for .pcf bitmap fonts
// https://fontforge.org/docs/techref/pcf-format.html

const (
	properties = 1 << iota
	accelerators
	metrics
	bitmaps
	inkMetrics
	bdfEncodings
	sWidths
	glyphNames
	bdfAccelerators
)

const (
	PCF_DEFAULT_FORMAT     = 0x00000000
	PCF_INKBOUNDS          = 0x00000200
	PCF_ACCEL_W_INKBOUNDS  = 0x00000100
	PCF_COMPRESSED_METRICS = 0x00000100

	// modifiers
	PCF_GLYPH_PAD_MASK = 3 << 0 /* See the bitmap table for explanation */
	PCF_BYTE_MASK      = 1 << 2 /* If set then Most Sig Byte First */
	PCF_BIT_MASK       = 1 << 3 /* If set then Most Sig Bit First */
	PCF_SCAN_UNIT_MASK = 3 << 4 /* See the bitmap table for explanation */

	formatMask = ^uint32(0xFF) // keep the higher bits
)

const HEADER = "\x01fcp"

// noGlyph marks an undefined code in the encoding table
const noGlyph = 0xffff

type pcfFont struct {
	properties propertiesTable
	bitmap     bitmapTable
	metrics    metricsTable
	encoding   encodingTable
}

type tocEntry struct {
	kind, format, size, offset uint32
}

type prop struct {
	nameOffset   uint32
	isStringProp bool
	value        uint32
}

type propertiesTable struct {
	props   []prop
	rawData []byte
}

type bitmapTable struct {
	format  uint32
	offsets []uint32
	data    []byte
}

// we use int16 even for compressed for simplicity
type metric struct {
	leftSidedBearing    int16
	rightSidedBearing   int16
	characterWidth      int16
	characterAscent     int16
	characterDescent    int16
	characterAttributes uint16
}

type metricsTable []metric

// encodingTable maps character codes to glyph indices.
// Undefined codes are not stored.
type encodingTable map[uint16]uint16

func getOrder(format uint32) binary.ByteOrder {
	if format&PCF_BYTE_MASK != 0 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

type parser struct {
	data []byte
	pos  int
}

func (p *parser) u32(order binary.ByteOrder) (uint32, error) {
	if len(p.data) < p.pos+4 {
		return 0, errors.New("corrupted font file")
	}
	out := order.Uint32(p.data[p.pos:])
	p.pos += 4
	return out, nil
}

func (p *parser) u16(order binary.ByteOrder) (uint16, error) {
	if len(p.data) < p.pos+2 {
		return 0, errors.New("corrupted font file")
	}
	out := order.Uint16(p.data[p.pos:])
	p.pos += 2
	return out, nil
}

func (p *parser) tocEntry() (out tocEntry, err error) {
	if len(p.data) < p.pos+16 {
		return out, errors.New("corrupted toc entry")
	}
	out.kind = binary.LittleEndian.Uint32(p.data[p.pos:])
	out.format = binary.LittleEndian.Uint32(p.data[p.pos+4:])
	out.size = binary.LittleEndian.Uint32(p.data[p.pos+8:])
	out.offset = binary.LittleEndian.Uint32(p.data[p.pos+12:])
	p.pos += 16
	return out, nil
}

const propSize = 9

func (pr *parser) prop(order binary.ByteOrder) (prop, error) {
	if len(pr.data) < pr.pos+propSize {
		return prop{}, errors.New("invalid property")
	}
	var out prop
	out.nameOffset = order.Uint32(pr.data[pr.pos:])
	out.isStringProp = pr.data[pr.pos+4] == 1
	out.value = order.Uint32(pr.data[pr.pos+5:])
	pr.pos += propSize
	return out, nil
}

func (pr *parser) propertiesTable() (propertiesTable, error) {
	format, err := pr.u32(binary.LittleEndian)
	if err != nil {
		return propertiesTable{}, err
	}

	order := getOrder(format)

	nprops, err := pr.u32(order)
	if err != nil {
		return propertiesTable{}, err
	}
	var out propertiesTable

	if len(pr.data) < pr.pos+int(nprops)*propSize {
		return propertiesTable{}, errors.New("invalid properties table")
	}
	out.props = make([]prop, nprops)
	for i := range out.props {
		out.props[i], err = pr.prop(order)
		if err != nil {
			return propertiesTable{}, err
		}
	}

	if padding := int(nprops & 3); padding != 0 {
		pr.pos += 4 - padding // padding
	}

	stringsLength, err := pr.u32(order)
	if err != nil {
		return propertiesTable{}, err
	}

	if len(pr.data) < pr.pos+int(stringsLength) {
		return propertiesTable{}, errors.New("invalid properties table")
	}

	out.rawData = pr.data[pr.pos : pr.pos+int(stringsLength)]
	return out, nil
}

// cString reads a null terminated string in the strings pool
func (pt propertiesTable) cString(offset uint32) (string, error) {
	if int(offset) >= len(pt.rawData) {
		return "", fmt.Errorf("invalid string offset %d in properties", offset)
	}
	s := pt.rawData[offset:]
	if end := bytes.IndexByte(s, 0); end != -1 {
		s = s[:end]
	}
	return string(s), nil
}

func (pt propertiesTable) resolve() (map[string]Property, error) {
	out := make(map[string]Property, len(pt.props))
	for _, p := range pt.props {
		name, err := pt.cString(p.nameOffset)
		if err != nil {
			return nil, err
		}
		if p.isStringProp {
			value, err := pt.cString(p.value)
			if err != nil {
				return nil, err
			}
			out[name] = Atom(value)
		} else {
			out[name] = Int(int32(p.value))
		}
	}
	return out, nil
}

func (p *parser) bitmap() (bitmapTable, error) {
	format, err := p.u32(binary.LittleEndian)
	if err != nil {
		return bitmapTable{}, err
	}
	if format&formatMask != PCF_DEFAULT_FORMAT {
		return bitmapTable{}, fmt.Errorf("invalid bitmap format: %d", format)
	}

	order := getOrder(format)

	count, err := p.u32(order)
	if err != nil {
		return bitmapTable{}, err
	}

	if len(p.data) < p.pos+int(count)*4 {
		return bitmapTable{}, fmt.Errorf("invalid bitmap table")
	}
	offsets := make([]uint32, count)
	for i := range offsets {
		offsets[i] = order.Uint32(p.data[p.pos+i*4:])
	}
	p.pos += int(count) * 4

	var sizes [4]uint32
	if len(p.data) < p.pos+16 {
		return bitmapTable{}, fmt.Errorf("invalid bitmap table")
	}
	sizes[0] = order.Uint32(p.data[p.pos:])
	sizes[1] = order.Uint32(p.data[p.pos+4:])
	sizes[2] = order.Uint32(p.data[p.pos+8:])
	sizes[3] = order.Uint32(p.data[p.pos+12:])
	p.pos += 16

	bitmapLength := int(sizes[format&3])
	if len(p.data) < p.pos+bitmapLength {
		return bitmapTable{}, fmt.Errorf("invalid bitmap table")
	}
	data := p.data[p.pos : p.pos+bitmapLength]
	p.pos += bitmapLength

	return bitmapTable{format: format, offsets: offsets, data: data}, nil
}

// rowStride returns the number of bytes used by one row of `width` pixels
func (bt bitmapTable) rowStride(width int) int {
	pad := 1 << (bt.format & PCF_GLYPH_PAD_MASK)
	return (width + 8*pad - 1) / (8 * pad) * pad
}

func (bt bitmapTable) scanUnit() int {
	return 1 << ((bt.format & PCF_SCAN_UNIT_MASK) >> 4)
}

// isSet returns the pixel at column x of the row starting at `row`
func (bt bitmapTable) isSet(row []byte, x int) bool {
	unit := bt.scanUnit()
	start := (x / (8 * unit)) * unit
	if start+unit > len(row) {
		return false
	}
	var v uint64
	if order := getOrder(bt.format); order == binary.BigEndian {
		for i := 0; i < unit; i++ {
			v = v<<8 | uint64(row[start+i])
		}
	} else {
		for i := unit - 1; i >= 0; i-- {
			v = v<<8 | uint64(row[start+i])
		}
	}
	bit := x % (8 * unit)
	if bt.format&PCF_BIT_MASK != 0 {
		bit = 8*unit - 1 - bit
	}
	return v>>bit&1 == 1
}

// glyph draws the glyph at `index` into `c`
func (bt bitmapTable) glyph(index int, m metric, c cell) error {
	if index >= len(bt.offsets) {
		return fmt.Errorf("glyph index %d out of bitmap table", index)
	}
	width := int(m.rightSidedBearing - m.leftSidedBearing)
	height := int(m.characterAscent + m.characterDescent)
	if width <= 0 || height <= 0 {
		return nil // blank glyph, such as space
	}
	stride := bt.rowStride(width)
	start := int(bt.offsets[index])
	if start+stride*height > len(bt.data) {
		return fmt.Errorf("bitmap data for glyph %d is truncated", index)
	}
	for y := 0; y < height; y++ {
		row := bt.data[start+y*stride : start+(y+1)*stride]
		for x := 0; x < width; x++ {
			if bt.isSet(row, x) {
				c.setInk(x, y, height, int(m.leftSidedBearing), -int(m.characterDescent))
			}
		}
	}
	return nil
}

func (pr *parser) metric(compressed bool, order binary.ByteOrder) (metric, error) {
	var out metric
	if compressed {
		if len(pr.data) < pr.pos+5 {
			return out, fmt.Errorf("invalid compressed metric data")
		}
		out.leftSidedBearing = int16(pr.data[pr.pos]) - 0x80
		out.rightSidedBearing = int16(pr.data[pr.pos+1]) - 0x80
		out.characterWidth = int16(pr.data[pr.pos+2]) - 0x80
		out.characterAscent = int16(pr.data[pr.pos+3]) - 0x80
		out.characterDescent = int16(pr.data[pr.pos+4]) - 0x80
		pr.pos += 5
	} else {
		if len(pr.data) < pr.pos+12 {
			return out, fmt.Errorf("invalid uncompressed metric data")
		}
		out.leftSidedBearing = int16(order.Uint16(pr.data[pr.pos:]))
		out.rightSidedBearing = int16(order.Uint16(pr.data[pr.pos+2:]))
		out.characterWidth = int16(order.Uint16(pr.data[pr.pos+4:]))
		out.characterAscent = int16(order.Uint16(pr.data[pr.pos+6:]))
		out.characterDescent = int16(order.Uint16(pr.data[pr.pos+8:]))
		out.characterAttributes = order.Uint16(pr.data[pr.pos+10:])
		pr.pos += 12
	}
	return out, nil
}

func (pr *parser) metricTable() (metricsTable, error) {
	format, err := pr.u32(binary.LittleEndian)
	if err != nil {
		return nil, err
	}

	order := getOrder(format)

	compressed := format&formatMask == PCF_COMPRESSED_METRICS&formatMask
	var count int
	if compressed {
		c, er := pr.u16(order)
		count, err = int(c), er
	} else {
		c, er := pr.u32(order)
		count, err = int(c), er
	}
	if err != nil {
		return nil, err
	}

	size := 12
	if compressed {
		size = 5
	}
	if len(pr.data) < pr.pos+count*size {
		return nil, fmt.Errorf("invalid metrics table")
	}
	out := make(metricsTable, count)
	for i := range out {
		out[i], err = pr.metric(compressed, order)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (pr *parser) encodingTable() (encodingTable, error) {
	format, err := pr.u32(binary.LittleEndian)
	if err != nil {
		return nil, err
	}

	if format&formatMask != PCF_DEFAULT_FORMAT {
		return nil, fmt.Errorf("invalid encoding table format: %d", format)
	}

	order := getOrder(format)

	if len(pr.data) < pr.pos+10 {
		return nil, fmt.Errorf("invalid encoding table")
	}

	minChar := order.Uint16(pr.data[pr.pos:])
	maxChar := order.Uint16(pr.data[pr.pos+2:])
	minByte := order.Uint16(pr.data[pr.pos+4:])
	maxByte := order.Uint16(pr.data[pr.pos+6:])
	pr.pos += 10 // default char is not used: undefined codes are reported

	if minChar > maxChar || minByte > maxByte || maxChar > 0xff || maxByte > 0xff {
		return nil, fmt.Errorf("invalid encoding table range")
	}

	count := int(maxByte-minByte+1) * int(maxChar-minChar+1)
	if len(pr.data) < pr.pos+2*count {
		return nil, fmt.Errorf("invalid encoding table")
	}
	out := make(encodingTable, count)

	for ma := minByte; ma <= maxByte; ma++ {
		for mi := minChar; mi <= maxChar; mi++ {
			value := order.Uint16(pr.data[pr.pos:])
			pr.pos += 2

			if value != noGlyph {
				out[mi|ma<<8] = value
			}
		}
	}

	return out, nil
}

func parsePCF(data []byte) (*pcfFont, error) {
	if len(data) < 4 || string(data[0:4]) != HEADER {
		return nil, errors.New("not a PCF file")
	}

	pr := parser{data: data, pos: 4}
	tableCount, err := pr.u32(binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	if len(data) < pr.pos+int(tableCount)*16 {
		return nil, errors.New("corrupted toc")
	}
	tocEntries := make([]tocEntry, tableCount)
	for i := range tocEntries {
		tocEntries[i], err = pr.tocEntry()
		if err != nil {
			return nil, err
		}
	}
	var out pcfFont
	for _, tc := range tocEntries {
		if int(tc.offset) > len(data) {
			return nil, fmt.Errorf("table %d starts after end of file", tc.kind)
		}
		pr.pos = int(tc.offset) // seek
		switch tc.kind {
		case properties:
			out.properties, err = pr.propertiesTable()
		case bitmaps:
			out.bitmap, err = pr.bitmap()
		case metrics:
			out.metrics, err = pr.metricTable()
		case bdfEncodings:
			out.encoding, err = pr.encodingTable()
		}
		if err != nil {
			return nil, err
		}
	}

	return &out, nil
}

// ParsePCF parses a .pcf file content and rasterizes every
// encoded glyph.
func ParsePCF(data []byte) (*Font, error) {
	pf, err := parsePCF(data)
	if err != nil {
		return nil, err
	}
	if len(pf.metrics) == 0 {
		return nil, errors.New("missing metrics table")
	}
	if len(pf.bitmap.offsets) != len(pf.metrics) {
		return nil, fmt.Errorf("bitmap and metrics tables are not of the same size (%d, %d)",
			len(pf.bitmap.offsets), len(pf.metrics))
	}

	props, err := pf.properties.resolve()
	if err != nil {
		return nil, err
	}

	out := &Font{Properties: props, Glyphs: make(map[rune]Bitmap, len(pf.encoding))}
	if name, ok := props["FONT"].(Atom); ok {
		out.Name = string(name)
	}
	asc, okA := props["FONT_ASCENT"].(Int)
	desc, okD := props["FONT_DESCENT"].(Int)
	if okA && okD {
		out.Ascent, out.Descent = int(asc), int(desc)
	} else {
		for _, m := range pf.metrics {
			if a := int(m.characterAscent); a > out.Ascent {
				out.Ascent = a
			}
			if d := int(m.characterDescent); d > out.Descent {
				out.Descent = d
			}
		}
	}

	registry, _ := props["CHARSET_REGISTRY"].(Atom)
	encoding, _ := props["CHARSET_ENCODING"].(Atom)
	cm := registryCharmap(string(registry), string(encoding))

	for code, index := range pf.encoding {
		if int(index) >= len(pf.metrics) {
			return nil, fmt.Errorf("encoding of %d refers to invalid glyph %d", code, index)
		}
		m := pf.metrics[index]
		c := newCell(int(m.characterWidth), out.Ascent, out.Descent)
		if err := pf.bitmap.glyph(int(index), m, c); err != nil {
			return nil, err
		}
		out.Glyphs[decodeCode(cm, code)] = c.Bitmap
	}
	return out, nil
}
