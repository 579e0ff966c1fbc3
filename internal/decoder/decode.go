// Package decoder turns 8086 machine code into NASM-syntax instruction text,
// one opcode at a time.
package decoder

import (
	"errors"
	"fmt"

	"dis86/internal/bytestream"
	"dis86/internal/scratch"
)

// Context is the state shared by every opcode handler of a session.
type Context struct {
	Stream  *bytestream.Stream
	Prefix  PrefixState
	Scratch *scratch.Pad

	opOffset int
	opcode   byte
}

// NewContext starts a decoding session over src. Rendered text lives in pad
// until the caller restores it.
func NewContext(src []byte, pad *scratch.Pad) *Context {
	if pad == nil {
		pad = scratch.New(128)
	}
	return &Context{Stream: bytestream.New(src), Scratch: pad}
}

// Step is the result of decoding one opcode.
type Step struct {
	Offset int  // offset of the opcode byte
	Opcode byte // its value
	Prefix bool // the opcode was a prefix; Inst is empty

	// Text is the complete instruction line without its newline, or for a
	// prefix the fragment to emit ahead of the line (possibly empty). It
	// points into the scratch pad.
	Text []byte
	Inst Instruction
}

// Next decodes the opcode at the cursor and everything it consumes.
func (c *Context) Next() (Step, error) {
	c.opOffset = c.Stream.Offset()
	op, err := c.Stream.Byte()
	if err != nil {
		return Step{}, c.wrap(err)
	}
	c.opcode = op
	step := Step{Offset: c.opOffset, Opcode: op}

	kind := opcodeTable[op]
	if c.Prefix.Repeat != RepeatNone && kind != opString {
		return step, c.fail(ErrUndefinedPrefix, "repeat prefix must be followed by a string instruction")
	}

	switch kind {
	case opSegmentPrefix:
		if c.Prefix.Segment != SegmentNone {
			return step, c.fail(ErrUndefinedPrefix, "second segment override")
		}
		c.Prefix.open(c.opOffset, op)
		c.Prefix.Segment = segmentFromField(op >> 3)
		step.Prefix = true
		return step, nil
	case opLock:
		if c.Prefix.Lock {
			return step, c.fail(ErrUndefinedPrefix, "second lock prefix")
		}
		c.Prefix.open(c.opOffset, op)
		c.Prefix.Lock = true
		step.Prefix = true
		step.Text = c.Scratch.AppendString("lock ")
		return step, nil
	case opRepeat:
		c.Prefix.open(c.opOffset, op)
		c.Prefix.Repeat = RepeatWhileNotZero
		if op == 0xf3 {
			c.Prefix.Repeat = RepeatWhileZero
		}
		step.Prefix = true
		return step, nil
	}

	in := Instruction{Opcode: op, Offset: c.opOffset}
	if c.Prefix.Pending() {
		in.Offset = c.Prefix.Start()
	}
	if err := c.decode(kind, op, &in); err != nil {
		return step, c.wrap(err)
	}
	if c.Prefix.Segment != SegmentNone {
		if kind != opString {
			return step, c.fail(ErrUndefinedPrefix, "segment override on an instruction without a memory operand")
		}
		in.SegmentPrefix = c.Prefix.takeSegment()
	}
	in.Lock = c.Prefix.Lock
	c.Prefix.reset()

	in.Size = c.Stream.Offset() - in.Offset
	step.Inst = in
	step.Text = c.render(&in)
	return step, nil
}

// Finish reports a prefix left dangling at the end of the stream.
func (c *Context) Finish() error {
	if !c.Prefix.Pending() {
		return nil
	}
	return &DecodeError{
		Offset: c.Prefix.lastAt,
		Opcode: c.Prefix.last,
		Err:    ErrTruncatedInput,
		Detail: "prefix at end of input",
	}
}

func (c *Context) fail(kind error, format string, args ...any) error {
	return &DecodeError{Offset: c.opOffset, Opcode: c.opcode, Err: kind, Detail: fmt.Sprintf(format, args...)}
}

// wrap turns a stream error into a DecodeError for the current opcode.
func (c *Context) wrap(err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, bytestream.ErrEndOfStream) {
		return &DecodeError{Offset: c.opOffset, Opcode: c.opcode, Err: ErrTruncatedInput, Detail: "operand runs past end of input"}
	}
	return &DecodeError{Offset: c.opOffset, Opcode: c.opcode, Err: fmt.Errorf("%w: %w", ErrIOFailure, err)}
}

// decode dispatches on the opcode family and fills in.
func (c *Context) decode(kind opKind, op byte, in *Instruction) error {
	switch kind {
	case opNotUsed:
		return c.fail(ErrUnsupportedOpcode, "opcode is not used on the 8086")
	case opReserved:
		return c.fail(ErrUnsupportedOpcode, "opcode is reserved")
	case opAluRegMem:
		return c.regMem(aluMnemonics[op>>3&7], op, in)
	case opMovRegMem:
		return c.regMem("mov", op, in)
	case opAluAccImm:
		return c.accImm(aluMnemonics[op>>3&7], op, in)
	case opTestAccImm:
		return c.accImm("test", op, in)
	case opPushPopSeg:
		name := "push"
		if op&1 == 1 {
			name = "pop"
		}
		in.set(name, segOperand(segmentFromField(op>>3)))
	case opDecimalAdjust:
		in.set(adjustMnemonics[op>>3&3])
	case opIncDecPushPopReg:
		in.set(regOpMnemonics[op>>3&3], regOperand(true, op))
	case opXchgAcc:
		in.set("xchg", regOperand(true, 0), regOperand(true, op))
	case opImplied:
		in.set(impliedMnemonics[op])
	case opJumpCond:
		return c.shortBranch(jccMnemonics[op&0x0f], TargetRelative, in)
	case opLoop:
		return c.shortBranch(loopMnemonics[op&3], TargetRelative, in)
	case opJmpShort:
		in.Qualifier = "short"
		return c.shortBranch("jmp", TargetAbsolute, in)
	case opNearBranch:
		disp, err := c.Stream.Int16()
		if err != nil {
			return err
		}
		name := "call"
		if op == 0xe9 {
			name = "jmp"
		}
		in.setTarget(name, c.Stream.Offset(), int(disp), TargetAbsolute)
	case opFarDirect:
		return c.farDirect(op, in)
	case opAluImm:
		return c.aluImm(op, in)
	case opTestXchg:
		return c.testXchg(op, in)
	case opMovSegReg:
		return c.movSegReg(op, in)
	case opLoadAddress:
		return c.loadAddress(op, in)
	case opPopRegMem:
		return c.popRegMem(in)
	case opMovAccMem:
		return c.movAccMem(op, in)
	case opString:
		rep, ok := repeatMnemonic(c.Prefix.Repeat, op)
		if !ok {
			return c.fail(ErrUndefinedPrefix, "repne is only defined for cmps and scas")
		}
		in.Repeat = rep
		in.set(stringMnemonics[op])
	case opMovRegImm:
		wide := op&0x08 != 0
		imm, err := c.immediate(wide)
		if err != nil {
			return err
		}
		in.set("mov", regOperand(wide, op), imm)
	case opReturn:
		name := "ret"
		if op&0x08 != 0 {
			name = "retf"
		}
		if op&1 == 1 {
			in.set(name)
			return nil
		}
		n, err := c.Stream.Uint16()
		if err != nil {
			return err
		}
		in.set(name, unsignedOperand(int(n)))
	case opMovMemImm:
		return c.movMemImm(op, in)
	case opInterrupt:
		n, err := c.Stream.Byte()
		if err != nil {
			return err
		}
		in.set("int", unsignedOperand(int(n)))
	case opShiftRotate:
		return c.shiftRotate(op, in)
	case opAsciiAdjust:
		base, err := c.Stream.Byte()
		if err != nil {
			return err
		}
		if base != 0x0a {
			return c.fail(ErrMalformedOperand, "second byte %#04x, want 0x0a", base)
		}
		name := "aam"
		if op == 0xd5 {
			name = "aad"
		}
		in.set(name)
	case opEscape:
		return c.escape(op, in)
	case opInOutFixed:
		port, err := c.Stream.Byte()
		if err != nil {
			return err
		}
		c.inOut(op, unsignedOperand(int(port)), in)
	case opInOutVariable:
		c.inOut(op, regOperand(true, 2), in)
	case opGroup3:
		return c.group3(op, in)
	case opGroup4:
		return c.group4(in)
	case opGroup5:
		return c.group5(in)
	default:
		return c.fail(ErrUnsupportedOpcode, "no decoder for opcode")
	}
	return nil
}
