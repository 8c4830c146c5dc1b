package packing

import (
	"bufio"
	"fmt"
	"io"
)

// AppendDirective appends the `defb` line for one record, such as
//
//	    defb 0x7e, 0x09, 0x09, 0x09, 0x7e  ; A
func AppendDirective(dst []byte, rec Record) []byte {
	dst = append(dst, "    defb "...)
	for i, col := range rec.Columns {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = append(dst, fmt.Sprintf("0x%02x", col)...)
	}
	dst = append(dst, "  ; "...)
	dst = append(dst, string(rec.Rune)...)
	return append(dst, '\n')
}

// WriteASM writes one directive per record, in the given order.
func WriteASM(w io.Writer, recs []Record) error {
	bw := bufio.NewWriter(w)
	var line []byte
	for _, rec := range recs {
		line = AppendDirective(line[:0], rec)
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}
