package decoder

// Register tables indexed by the 3-bit reg/rm field.
var (
	regs8  = [8]string{"al", "cl", "dl", "bl", "ah", "ch", "dh", "bh"}
	regs16 = [8]string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di"}
)

// Segment identifies a segment register or a segment override.
type Segment uint8

const (
	SegmentNone Segment = iota
	SegmentES
	SegmentCS
	SegmentSS
	SegmentDS
)

// segmentFromField maps the 2-bit sr field (es, cs, ss, ds) to a Segment.
func segmentFromField(sr byte) Segment { return Segment(sr&0x3) + SegmentES }

func (s Segment) String() string {
	switch s {
	case SegmentES:
		return "es"
	case SegmentCS:
		return "cs"
	case SegmentSS:
		return "ss"
	case SegmentDS:
		return "ds"
	}
	return ""
}

// effective-address base/index combinations for mod != 3. rm=6 with mod=0
// is the direct-address form and never reaches this table.
var eaBases = [8]string{"bx + si", "bx + di", "bp + si", "bp + di", "si", "di", "bp", "bx"}

func register(wide bool, id byte) string {
	if wide {
		return regs16[id&0x7]
	}
	return regs8[id&0x7]
}
