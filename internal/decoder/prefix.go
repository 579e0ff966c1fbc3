package decoder

// RepeatMode is the pending state of a rep/repne prefix.
type RepeatMode uint8

const (
	RepeatNone RepeatMode = iota
	RepeatWhileZero
	RepeatWhileNotZero
)

func (r RepeatMode) String() string {
	switch r {
	case RepeatWhileZero:
		return "WhenZeroFlagSet"
	case RepeatWhileNotZero:
		return "WhenZeroFlagClear"
	}
	return "None"
}

// PrefixState carries prefixes across opcode boundaries. Only prefix opcodes
// set fields; the next non-prefix opcode consumes them and resets the state.
type PrefixState struct {
	Segment     Segment
	Repeat      RepeatMode
	Lock        bool
	NoLineBreak bool // a prefix is pending and the current line is still open

	start  int  // offset of the first pending prefix byte
	last   byte // most recent prefix opcode
	lastAt int
}

// Pending reports whether any prefix is waiting for its instruction.
func (p *PrefixState) Pending() bool { return p.NoLineBreak }

// Start returns the offset of the first pending prefix byte.
func (p *PrefixState) Start() int { return p.start }

func (p *PrefixState) open(offset int, opcode byte) {
	if !p.NoLineBreak {
		p.start = offset
	}
	p.NoLineBreak = true
	p.last = opcode
	p.lastAt = offset
}

// takeSegment returns the pending segment override and clears it. Memory
// operand resolution is the only caller.
func (p *PrefixState) takeSegment() Segment {
	s := p.Segment
	p.Segment = SegmentNone
	return s
}

func (p *PrefixState) reset() {
	*p = PrefixState{}
}

// repeatMnemonic picks the prefix text for a string instruction. movs, stos
// and lods only have the unconditional form.
func repeatMnemonic(mode RepeatMode, op byte) (string, bool) {
	kind := op & 0x0e
	switch mode {
	case RepeatNone:
		return "", true
	case RepeatWhileZero:
		switch kind {
		case 0x06: // cmps
			return "repe", true
		case 0x0e: // scas
			return "repz", true
		}
		return "rep", true
	case RepeatWhileNotZero:
		switch kind {
		case 0x06:
			return "repne", true
		case 0x0e:
			return "repnz", true
		}
	}
	return "", false
}
