package decoder

import "strconv"

// opKind is the decoding family of a one-byte opcode.
type opKind uint8

const (
	opUnassigned opKind = iota
	opNotUsed
	opReserved

	opAluRegMem
	opAluAccImm
	opPushPopSeg
	opSegmentPrefix
	opDecimalAdjust
	opIncDecPushPopReg
	opJumpCond
	opAluImm
	opTestXchg
	opMovRegMem
	opMovSegReg
	opLoadAddress
	opPopRegMem
	opXchgAcc
	opImplied
	opFarDirect
	opMovAccMem
	opString
	opTestAccImm
	opMovRegImm
	opReturn
	opMovMemImm
	opInterrupt
	opShiftRotate
	opAsciiAdjust
	opEscape
	opLoop
	opInOutFixed
	opNearBranch
	opJmpShort
	opInOutVariable
	opLock
	opRepeat
	opGroup3
	opGroup4
	opGroup5
)

// opcodeTable maps every byte value to its family. It is filled once at
// package init and never written afterwards.
var opcodeTable = buildOpcodeTable()

func buildOpcodeTable() [256]opKind {
	var t [256]opKind
	span := func(from, to int, k opKind) {
		for i := from; i <= to; i++ {
			t[i] = k
		}
	}

	// 00-3F: eight ALU rows, each with six arithmetic forms and two
	// row-specific opcodes in columns 6 and 7.
	for row := 0; row < 8; row++ {
		base := row << 3
		span(base, base+3, opAluRegMem)
		span(base+4, base+5, opAluAccImm)
	}
	for _, op := range []int{0x06, 0x07, 0x0e, 0x16, 0x17, 0x1e, 0x1f} {
		t[op] = opPushPopSeg
	}
	t[0x0f] = opReserved
	for _, op := range []int{0x26, 0x2e, 0x36, 0x3e} {
		t[op] = opSegmentPrefix
	}
	for _, op := range []int{0x27, 0x2f, 0x37, 0x3f} {
		t[op] = opDecimalAdjust
	}

	span(0x40, 0x5f, opIncDecPushPopReg)
	span(0x60, 0x6f, opNotUsed)
	span(0x70, 0x7f, opJumpCond)
	span(0x80, 0x83, opAluImm)
	span(0x84, 0x87, opTestXchg)
	span(0x88, 0x8b, opMovRegMem)
	t[0x8c] = opMovSegReg
	t[0x8d] = opLoadAddress
	t[0x8e] = opMovSegReg
	t[0x8f] = opPopRegMem
	t[0x90] = opImplied
	span(0x91, 0x97, opXchgAcc)
	span(0x98, 0x99, opImplied)
	t[0x9a] = opFarDirect
	span(0x9b, 0x9f, opImplied)

	span(0xa0, 0xa3, opMovAccMem)
	span(0xa4, 0xa7, opString)
	span(0xa8, 0xa9, opTestAccImm)
	span(0xaa, 0xaf, opString)
	span(0xb0, 0xbf, opMovRegImm)

	span(0xc0, 0xc1, opNotUsed)
	span(0xc2, 0xc3, opReturn)
	span(0xc4, 0xc5, opLoadAddress)
	span(0xc6, 0xc7, opMovMemImm)
	span(0xc8, 0xc9, opNotUsed)
	span(0xca, 0xcb, opReturn)
	t[0xcc] = opImplied
	t[0xcd] = opInterrupt
	span(0xce, 0xcf, opImplied)

	span(0xd0, 0xd3, opShiftRotate)
	span(0xd4, 0xd5, opAsciiAdjust)
	t[0xd6] = opReserved
	t[0xd7] = opImplied
	span(0xd8, 0xdf, opEscape)

	span(0xe0, 0xe3, opLoop)
	span(0xe4, 0xe7, opInOutFixed)
	span(0xe8, 0xe9, opNearBranch)
	t[0xea] = opFarDirect
	t[0xeb] = opJmpShort
	span(0xec, 0xef, opInOutVariable)

	t[0xf0] = opLock
	t[0xf1] = opReserved
	span(0xf2, 0xf3, opRepeat)
	span(0xf4, 0xf5, opImplied)
	span(0xf6, 0xf7, opGroup3)
	span(0xf8, 0xfd, opImplied)
	t[0xfe] = opGroup4
	t[0xff] = opGroup5
	return t
}

func (k opKind) isPrefix() bool {
	return k == opSegmentPrefix || k == opLock || k == opRepeat
}

var (
	aluMnemonics    = [8]string{"add", "or", "adc", "sbb", "and", "sub", "xor", "cmp"}
	jccMnemonics    = [16]string{"jo", "jno", "jb", "jnb", "je", "jne", "jbe", "ja", "js", "jns", "jp", "jnp", "jl", "jnl", "jle", "jg"}
	shiftMnemonics  = [8]string{"rol", "ror", "rcl", "rcr", "shl", "shr", "", "sar"}
	group3Mnemonics = [8]string{"test", "", "not", "neg", "mul", "imul", "div", "idiv"}
	group5Mnemonics = [8]string{"inc", "dec", "call", "call", "jmp", "jmp", "push", ""}
	loopMnemonics   = [4]string{"loopne", "loope", "loop", "jcxz"}
	adjustMnemonics = [4]string{"daa", "das", "aaa", "aas"}
	regOpMnemonics  = [4]string{"inc", "dec", "push", "pop"}
	stringMnemonics = map[byte]string{
		0xa4: "movsb", 0xa5: "movsw", 0xa6: "cmpsb", 0xa7: "cmpsw",
		0xaa: "stosb", 0xab: "stosw", 0xac: "lodsb", 0xad: "lodsw",
		0xae: "scasb", 0xaf: "scasw",
	}
	impliedMnemonics = map[byte]string{
		0x90: "nop", 0x98: "cbw", 0x99: "cwd", 0x9b: "wait", 0x9c: "pushf",
		0x9d: "popf", 0x9e: "sahf", 0x9f: "lahf", 0xcc: "int3", 0xce: "into",
		0xcf: "iret", 0xd7: "xlat", 0xf4: "hlt", 0xf5: "cmc", 0xf8: "clc",
		0xf9: "stc", 0xfa: "cli", 0xfb: "sti", 0xfc: "cld", 0xfd: "std",
	}
)

// LabelName is the label text for a branch target offset.
func LabelName(offset int) string {
	return "label__" + strconv.Itoa(offset)
}
