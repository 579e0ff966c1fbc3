package analysis

import "fmt"

// HexBytes formats an encoding the way listings show it: "b8 01 00".
func HexBytes(raw []byte) string {
	return fmt.Sprintf("% x", raw)
}

// ASCIIColumn renders raw as a hexdump-style character column, one byte per
// character, with non-printable ASCII shown as '.'.
func ASCIIColumn(raw []byte) string {
	out := make([]byte, len(raw))
	for i, b := range raw {
		if b >= 0x20 && b < 0x7f {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}
