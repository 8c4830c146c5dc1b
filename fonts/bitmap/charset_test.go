package bitmap

import "testing"

func TestDecodeCode(t *testing.T) {
	for _, test := range []struct {
		registry, encoding string
		code               uint16
		want               rune
	}{
		{"ISO10646", "1", 0x105, 0x105},
		{"ISO8859", "1", 0xe9, 'é'},
		{"iso8859", "2", 0xb1, 'ą'},
		{"KOI8", "R", 0xc1, 'а'},
		{"ISO8859", "2", 'A', 'A'},
		{"unknown", "", 0xb1, 0xb1},
	} {
		cm := registryCharmap(test.registry, test.encoding)
		if got := decodeCode(cm, test.code); got != test.want {
			t.Errorf("%s-%s %#x: expected %U, got %U", test.registry, test.encoding, test.code, test.want, got)
		}
	}
}
