package decoder

// OperandKind selects which fields of an Operand are meaningful.
type OperandKind uint8

const (
	OperandNone OperandKind = iota
	OperandRegister
	OperandSegment
	OperandMemory
	OperandImmediate // signed data rendered in decimal
	OperandUnsigned  // ports, interrupt types, stack adjustments
	OperandTarget    // relative branch target
	OperandFar       // segment:offset pointer
)

// SizeKeyword is the explicit width written before an ambiguous memory operand.
type SizeKeyword uint8

const (
	SizeNone SizeKeyword = iota
	SizeByte
	SizeWord
)

func (s SizeKeyword) String() string {
	switch s {
	case SizeByte:
		return "byte"
	case SizeWord:
		return "word"
	}
	return ""
}

func sizeFor(wide bool) SizeKeyword {
	if wide {
		return SizeWord
	}
	return SizeByte
}

// TargetForm decides how an out-of-range branch target is written.
type TargetForm uint8

const (
	TargetAbsolute TargetForm = iota // plain number: jmp short 7
	TargetRelative                   // NASM $-relative: jne $+2-10
)

// Operand is one decoded operand.
type Operand struct {
	Kind    OperandKind
	Wide    bool
	Reg     byte
	Segment Segment // segment register, or override attached to a memory operand
	Size    SizeKeyword

	Base   byte // index into eaBases
	Direct bool // mod=0 rm=6: Disp holds the 16-bit address
	Disp   int

	Value  int // immediate, unsigned value, far offset or absolute target
	Value2 int // far segment, or displacement of a relative target
	Form   TargetForm
}

func regOperand(wide bool, id byte) Operand {
	return Operand{Kind: OperandRegister, Wide: wide, Reg: id & 0x7}
}

func segOperand(s Segment) Operand {
	return Operand{Kind: OperandSegment, Segment: s}
}

func immOperand(v int, wide bool) Operand {
	return Operand{Kind: OperandImmediate, Value: v, Wide: wide}
}

func unsignedOperand(v int) Operand {
	return Operand{Kind: OperandUnsigned, Value: v}
}

// modRM is the split second byte of most instructions.
type modRM struct {
	mod, reg, rm byte
}

func splitModRM(b byte) modRM {
	return modRM{mod: b >> 6 & 0x3, reg: b >> 3 & 0x7, rm: b & 0x7}
}

func (c *Context) readModRM() (modRM, error) {
	b, err := c.Stream.Byte()
	if err != nil {
		return modRM{}, err
	}
	return splitModRM(b), nil
}

// rmOperand resolves the rm side of a mod/reg/rm byte: a register when
// mod=3, otherwise a memory operand with its displacement bytes consumed.
func (c *Context) rmOperand(m modRM, wide bool) (Operand, error) {
	if m.mod == 3 {
		return regOperand(wide, m.rm), nil
	}
	return c.memory(m)
}

// memory builds an effective-address operand. It is the single point where
// a pending segment override is consumed.
func (c *Context) memory(m modRM) (Operand, error) {
	op := Operand{Kind: OperandMemory, Base: m.rm, Segment: c.Prefix.takeSegment()}
	switch m.mod {
	case 0:
		if m.rm == 6 {
			addr, err := c.Stream.Uint16()
			if err != nil {
				return Operand{}, err
			}
			op.Direct = true
			op.Disp = int(addr)
		}
	case 1:
		d, err := c.Stream.Int8()
		if err != nil {
			return Operand{}, err
		}
		op.Disp = int(d)
	case 2:
		d, err := c.Stream.Int16()
		if err != nil {
			return Operand{}, err
		}
		op.Disp = int(d)
	}
	return op, nil
}

// directMemory is the [addr] operand of the accumulator move forms.
func (c *Context) directMemory(addr uint16) Operand {
	return Operand{Kind: OperandMemory, Direct: true, Disp: int(addr), Segment: c.Prefix.takeSegment()}
}

// immediate reads data of the given width and keeps its signed value.
func (c *Context) immediate(wide bool) (Operand, error) {
	if wide {
		v, err := c.Stream.Int16()
		return immOperand(int(v), true), err
	}
	v, err := c.Stream.Int8()
	return immOperand(int(v), false), err
}

// appendOperand renders op into the scratch pad.
func (c *Context) appendOperand(in *Instruction, op Operand) {
	pad := c.Scratch
	switch op.Kind {
	case OperandRegister:
		pad.AppendString(register(op.Wide, op.Reg))
	case OperandSegment:
		pad.AppendString(op.Segment.String())
	case OperandMemory:
		if op.Size != SizeNone {
			pad.Appendf("%s ", op.Size)
		}
		if op.Segment != SegmentNone {
			pad.Appendf("%s:", op.Segment)
		}
		switch {
		case op.Direct:
			pad.Appendf("[%d]", op.Disp)
		case op.Disp > 0:
			pad.Appendf("[%s + %d]", eaBases[op.Base], op.Disp)
		case op.Disp < 0:
			pad.Appendf("[%s - %d]", eaBases[op.Base], -op.Disp)
		default:
			pad.Appendf("[%s]", eaBases[op.Base])
		}
	case OperandImmediate, OperandUnsigned:
		pad.Appendf("%d", op.Value)
	case OperandFar:
		pad.Appendf("%d:%d", op.Value2, op.Value)
	case OperandTarget:
		switch {
		case op.Value >= 0 && op.Value < c.Stream.Len():
			pad.AppendString(LabelName(op.Value))
		case op.Form == TargetRelative:
			pad.Appendf("$+%d%+d", in.Size, op.Value2)
		default:
			pad.Appendf("%d", op.Value)
		}
	}
}
