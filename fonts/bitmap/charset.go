package bitmap

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// registryCharmap returns the single byte charset named by the
// CHARSET_REGISTRY and CHARSET_ENCODING font properties, or nil
// when codes are Unicode points (ISO10646) or the charset is unknown.
func registryCharmap(registry, encoding string) *charmap.Charmap {
	var name string
	switch reg := strings.ToUpper(registry); {
	case strings.HasPrefix(reg, "ISO8859"):
		name = "ISO-8859-" + encoding
	case strings.HasPrefix(reg, "KOI8"):
		name = "KOI8-" + encoding
	default:
		return nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil
	}
	cm, _ := enc.(*charmap.Charmap)
	return cm
}

// decodeCode maps a font character code to a rune.
func decodeCode(cm *charmap.Charmap, code uint16) rune {
	if cm == nil || code > 0xff {
		return rune(code)
	}
	return cm.DecodeByte(byte(code))
}
