package decoder

// Instruction is one fully decoded line.
type Instruction struct {
	Offset    int  // first byte of the line, prefixes included
	Opcode    byte // the non-prefix opcode
	Size      int  // bytes from Offset to the end of the last operand
	Mnemonic  string
	Qualifier string // "short" or "far", written between mnemonic and operands
	Operands  [2]Operand

	Lock          bool
	Repeat        string  // rep, repe, repz, repne or repnz
	SegmentPrefix Segment // override written as a leading word on string instructions

	Target    int // absolute branch target, when HasTarget
	HasTarget bool
}

// OperandCount returns the number of populated operands.
func (in *Instruction) OperandCount() int {
	n := 0
	for _, op := range in.Operands {
		if op.Kind != OperandNone {
			n++
		}
	}
	return n
}

// InRange reports whether the branch target lies inside a stream of n bytes.
func (in *Instruction) InRange(n int) bool {
	return in.HasTarget && in.Target >= 0 && in.Target < n
}

func (in *Instruction) set(mnemonic string, ops ...Operand) {
	in.Mnemonic = mnemonic
	copy(in.Operands[:], ops)
}

// setTarget records a relative branch. end is the cursor after the whole
// instruction, the base the displacement is measured from.
func (in *Instruction) setTarget(mnemonic string, end, disp int, form TargetForm) {
	in.Target = end + disp
	in.HasTarget = true
	in.set(mnemonic, Operand{Kind: OperandTarget, Value: in.Target, Value2: disp, Form: form})
}

// render writes the instruction text into the scratch pad and returns it.
// The lock prefix is not included; it was emitted as its own fragment.
func (c *Context) render(in *Instruction) []byte {
	m := c.Scratch.Checkpoint()
	if in.SegmentPrefix != SegmentNone {
		c.Scratch.Appendf("%s ", in.SegmentPrefix)
	}
	if in.Repeat != "" {
		c.Scratch.Appendf("%s ", in.Repeat)
	}
	c.Scratch.AppendString(in.Mnemonic)
	if in.Qualifier != "" {
		c.Scratch.Appendf(" %s", in.Qualifier)
	}
	for i, op := range in.Operands {
		if op.Kind == OperandNone {
			break
		}
		if i == 0 {
			c.Scratch.AppendString(" ")
		} else {
			c.Scratch.AppendString(", ")
		}
		c.appendOperand(in, op)
	}
	return c.Scratch.Since(m)
}
