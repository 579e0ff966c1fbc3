package decoder

// regMem handles the d/w reg,rm forms: ALU 00-3B and mov 88-8B.
func (c *Context) regMem(name string, op byte, in *Instruction) error {
	toReg := op&0x02 != 0
	wide := op&0x01 != 0
	m, err := c.readModRM()
	if err != nil {
		return err
	}
	rm, err := c.rmOperand(m, wide)
	if err != nil {
		return err
	}
	reg := regOperand(wide, m.reg)
	if toReg {
		in.set(name, reg, rm)
	} else {
		in.set(name, rm, reg)
	}
	return nil
}

func (c *Context) accImm(name string, op byte, in *Instruction) error {
	wide := op&0x01 != 0
	imm, err := c.immediate(wide)
	if err != nil {
		return err
	}
	in.set(name, regOperand(wide, 0), imm)
	return nil
}

func (c *Context) shortBranch(name string, form TargetForm, in *Instruction) error {
	disp, err := c.Stream.Int8()
	if err != nil {
		return err
	}
	in.setTarget(name, c.Stream.Offset(), int(disp), form)
	return nil
}

func (c *Context) farDirect(op byte, in *Instruction) error {
	off, err := c.Stream.Uint16()
	if err != nil {
		return err
	}
	seg, err := c.Stream.Uint16()
	if err != nil {
		return err
	}
	name := "call"
	if op == 0xea {
		name = "jmp"
	}
	in.set(name, Operand{Kind: OperandFar, Value: int(off), Value2: int(seg)})
	return nil
}

// aluImm handles 80-83. With s=1 the immediate is one byte sign-extended to
// the operand width; only add, adc, sbb, sub and cmp define that form.
func (c *Context) aluImm(op byte, in *Instruction) error {
	signExtend := op&0x02 != 0
	wide := op&0x01 != 0
	m, err := c.readModRM()
	if err != nil {
		return err
	}
	if signExtend && (m.reg == 1 || m.reg == 4 || m.reg == 6) {
		return c.fail(ErrMalformedOperand, "%s has no sign-extended immediate form", aluMnemonics[m.reg])
	}
	dst, err := c.sizedRM(m, wide)
	if err != nil {
		return err
	}
	imm, err := c.immediate(wide && !signExtend)
	if err != nil {
		return err
	}
	imm.Wide = wide
	in.set(aluMnemonics[m.reg], dst, imm)
	return nil
}

// sizedRM is rmOperand with a size keyword on memory operands, for forms
// where nothing else fixes the operand width.
func (c *Context) sizedRM(m modRM, wide bool) (Operand, error) {
	op, err := c.rmOperand(m, wide)
	if err == nil && op.Kind == OperandMemory {
		op.Size = sizeFor(wide)
	}
	return op, err
}

func (c *Context) testXchg(op byte, in *Instruction) error {
	wide := op&0x01 != 0
	m, err := c.readModRM()
	if err != nil {
		return err
	}
	rm, err := c.rmOperand(m, wide)
	if err != nil {
		return err
	}
	reg := regOperand(wide, m.reg)
	if op&0x02 != 0 {
		in.set("xchg", reg, rm)
	} else {
		in.set("test", rm, reg)
	}
	return nil
}

func (c *Context) movSegReg(op byte, in *Instruction) error {
	m, err := c.readModRM()
	if err != nil {
		return err
	}
	if m.reg > 3 {
		return c.fail(ErrMalformedOperand, "segment register field %d", m.reg)
	}
	rm, err := c.rmOperand(m, true)
	if err != nil {
		return err
	}
	seg := segOperand(segmentFromField(m.reg))
	if op == 0x8e {
		in.set("mov", seg, rm)
	} else {
		in.set("mov", rm, seg)
	}
	return nil
}

func (c *Context) loadAddress(op byte, in *Instruction) error {
	m, err := c.readModRM()
	if err != nil {
		return err
	}
	name := map[byte]string{0x8d: "lea", 0xc4: "les", 0xc5: "lds"}[op]
	if m.mod == 3 {
		return c.fail(ErrMalformedOperand, "%s needs a memory operand", name)
	}
	mem, err := c.memory(m)
	if err != nil {
		return err
	}
	in.set(name, regOperand(true, m.reg), mem)
	return nil
}

func (c *Context) popRegMem(in *Instruction) error {
	m, err := c.readModRM()
	if err != nil {
		return err
	}
	if m.reg != 0 {
		return c.fail(ErrMalformedOperand, "reg field %d, want 0", m.reg)
	}
	dst, err := c.sizedRM(m, true)
	if err != nil {
		return err
	}
	in.set("pop", dst)
	return nil
}

func (c *Context) movAccMem(op byte, in *Instruction) error {
	wide := op&0x01 != 0
	addr, err := c.Stream.Uint16()
	if err != nil {
		return err
	}
	mem := c.directMemory(addr)
	acc := regOperand(wide, 0)
	if op&0x02 != 0 {
		in.set("mov", mem, acc)
	} else {
		in.set("mov", acc, mem)
	}
	return nil
}

func (c *Context) movMemImm(op byte, in *Instruction) error {
	wide := op&0x01 != 0
	m, err := c.readModRM()
	if err != nil {
		return err
	}
	if m.reg != 0 {
		return c.fail(ErrMalformedOperand, "reg field %d, want 0", m.reg)
	}
	dst, err := c.sizedRM(m, wide)
	if err != nil {
		return err
	}
	imm, err := c.immediate(wide)
	if err != nil {
		return err
	}
	in.set("mov", dst, imm)
	return nil
}

func (c *Context) shiftRotate(op byte, in *Instruction) error {
	wide := op&0x01 != 0
	m, err := c.readModRM()
	if err != nil {
		return err
	}
	if m.reg == 6 {
		return c.fail(ErrMalformedOperand, "shift group has no operation 6")
	}
	dst, err := c.sizedRM(m, wide)
	if err != nil {
		return err
	}
	count := immOperand(1, false)
	if op&0x02 != 0 {
		count = regOperand(false, 1)
	}
	in.set(shiftMnemonics[m.reg], dst, count)
	return nil
}

// escape hands an opcode to a coprocessor. The 6-bit code is the low three
// opcode bits followed by the reg field.
func (c *Context) escape(op byte, in *Instruction) error {
	m, err := c.readModRM()
	if err != nil {
		return err
	}
	rm, err := c.rmOperand(m, true)
	if err != nil {
		return err
	}
	code := int(op&0x07)<<3 | int(m.reg)
	in.set("esc", unsignedOperand(code), rm)
	return nil
}

func (c *Context) inOut(op byte, port Operand, in *Instruction) {
	acc := regOperand(op&0x01 != 0, 0)
	if op&0x02 != 0 {
		in.set("out", port, acc)
	} else {
		in.set("in", acc, port)
	}
}

func (c *Context) group3(op byte, in *Instruction) error {
	wide := op&0x01 != 0
	m, err := c.readModRM()
	if err != nil {
		return err
	}
	if m.reg == 1 {
		return c.fail(ErrMalformedOperand, "group 3 has no operation 1")
	}
	dst, err := c.sizedRM(m, wide)
	if err != nil {
		return err
	}
	if m.reg != 0 {
		in.set(group3Mnemonics[m.reg], dst)
		return nil
	}
	imm, err := c.immediate(wide)
	if err != nil {
		return err
	}
	in.set("test", dst, imm)
	return nil
}

func (c *Context) group4(in *Instruction) error {
	m, err := c.readModRM()
	if err != nil {
		return err
	}
	if m.reg >= 2 {
		return c.fail(ErrMalformedOperand, "group 4 has no operation %d", m.reg)
	}
	dst, err := c.sizedRM(m, false)
	if err != nil {
		return err
	}
	in.set(regOpMnemonics[m.reg], dst)
	return nil
}

func (c *Context) group5(in *Instruction) error {
	m, err := c.readModRM()
	if err != nil {
		return err
	}
	if m.reg == 7 {
		return c.fail(ErrMalformedOperand, "group 5 has no operation 7")
	}
	far := m.reg == 3 || m.reg == 5
	if far && m.mod == 3 {
		return c.fail(ErrMalformedOperand, "far %s needs a memory operand", group5Mnemonics[m.reg])
	}
	var dst Operand
	if far {
		in.Qualifier = "far"
		dst, err = c.memory(m)
	} else {
		dst, err = c.sizedRM(m, true)
	}
	if err != nil {
		return err
	}
	in.set(group5Mnemonics[m.reg], dst)
	return nil
}
