package decoder

import (
	"errors"

	"dis86/internal/bytestream"
)

// Extent is what Measure learns about one opcode without rendering it.
type Extent struct {
	Size      int  // bytes consumed, opcode included
	Prefix    bool // the opcode was a prefix and the line continues
	Target    int
	HasTarget bool
}

// Measure advances s past the opcode at its cursor and reports its size and
// branch target. It shares the opcode table with Next but checks no operand
// fields and renders nothing, so it is suitable for a first pass that only
// needs line boundaries.
func Measure(s *bytestream.Stream) (Extent, error) {
	start := s.Offset()
	op, err := s.Byte()
	if err != nil {
		return Extent{}, measureError(start, 0, err)
	}
	ext, err := measure(s, op)
	if err != nil {
		return Extent{}, measureError(start, op, err)
	}
	ext.Size = s.Offset() - start
	return ext, nil
}

func measure(s *bytestream.Stream, op byte) (Extent, error) {
	var ext Extent
	var err error
	width := func(wide bool) int {
		if wide {
			return 2
		}
		return 1
	}

	switch opcodeTable[op] {
	case opNotUsed, opReserved, opUnassigned:
		return ext, ErrUnsupportedOpcode
	case opSegmentPrefix, opLock, opRepeat:
		ext.Prefix = true
	case opImplied, opPushPopSeg, opDecimalAdjust, opIncDecPushPopReg, opXchgAcc, opString, opInOutVariable:
	case opAluAccImm, opTestAccImm:
		err = s.Skip(width(op&0x01 != 0))
	case opMovRegImm:
		err = s.Skip(width(op&0x08 != 0))
	case opAluRegMem, opTestXchg, opMovRegMem, opMovSegReg, opLoadAddress, opPopRegMem,
		opShiftRotate, opEscape, opGroup4, opGroup5:
		_, err = skipModRM(s)
	case opAluImm:
		if _, err = skipModRM(s); err == nil {
			err = s.Skip(width(op&0x03 == 0x01))
		}
	case opMovMemImm:
		if _, err = skipModRM(s); err == nil {
			err = s.Skip(width(op&0x01 != 0))
		}
	case opGroup3:
		var m modRM
		if m, err = skipModRM(s); err == nil && m.reg == 0 {
			err = s.Skip(width(op&0x01 != 0))
		}
	case opFarDirect:
		err = s.Skip(4)
	case opMovAccMem:
		err = s.Skip(2)
	case opReturn:
		if op&0x01 == 0 {
			err = s.Skip(2)
		}
	case opInterrupt, opAsciiAdjust, opInOutFixed:
		err = s.Skip(1)
	case opJumpCond, opLoop, opJmpShort:
		var d int8
		if d, err = s.Int8(); err == nil {
			ext.Target, ext.HasTarget = s.Offset()+int(d), true
		}
	case opNearBranch:
		var d int16
		if d, err = s.Int16(); err == nil {
			ext.Target, ext.HasTarget = s.Offset()+int(d), true
		}
	}
	return ext, err
}

// skipModRM steps over a mod/reg/rm byte and its displacement.
func skipModRM(s *bytestream.Stream) (modRM, error) {
	b, err := s.Byte()
	if err != nil {
		return modRM{}, err
	}
	m := splitModRM(b)
	switch {
	case m.mod == 0 && m.rm == 6, m.mod == 2:
		err = s.Skip(2)
	case m.mod == 1:
		err = s.Skip(1)
	}
	return m, err
}

func measureError(offset int, op byte, err error) error {
	if errors.Is(err, bytestream.ErrEndOfStream) {
		err = ErrTruncatedInput
	}
	return &DecodeError{Offset: offset, Opcode: op, Err: err}
}
