package decoder

import (
	"math/rand/v2"
	"testing"

	"golang.org/x/arch/x86/x86asm"

	"dis86/internal/bytestream"
)

// randomWindows returns n deterministic byte windows long enough for any
// single 8086 instruction.
func randomWindows(n int) [][]byte {
	r := rand.New(rand.NewPCG(8086, 1978))
	out := make([][]byte, n)
	for i := range out {
		w := make([]byte, 8)
		for j := range w {
			w[j] = byte(r.UintN(256))
		}
		out[i] = w
	}
	return out
}

// decodeOne decodes the first instruction of src, skipping no prefixes.
func decodeOne(src []byte) (Step, error) {
	return NewContext(src, nil).Next()
}

func TestMeasureMatchesDecode(t *testing.T) {
	for _, w := range randomWindows(20000) {
		step, err := decodeOne(w)
		if err != nil {
			continue
		}
		ext, err := Measure(bytestream.New(w))
		if err != nil {
			t.Fatalf("Measure(% x) failed where Next succeeded: %v", w, err)
		}
		if step.Prefix != ext.Prefix {
			t.Fatalf("Measure(% x).Prefix = %v, Next says %v", w, ext.Prefix, step.Prefix)
		}
		if step.Prefix {
			continue
		}
		if ext.Size != step.Inst.Size {
			t.Errorf("Measure(% x).Size = %d, Next consumed %d (%s)", w, ext.Size, step.Inst.Size, step.Text)
		}
		if ext.HasTarget != step.Inst.HasTarget || ext.Target != step.Inst.Target {
			t.Errorf("Measure(% x) target = %d/%v, Next = %d/%v", w, ext.Target, ext.HasTarget, step.Inst.Target, step.Inst.HasTarget)
		}
	}
}

func TestMeasureErrors(t *testing.T) {
	tests := []struct {
		name string
		src  []byte
	}{
		{"not used", []byte{0x66, 0x90}},
		{"reserved", []byte{0xd6}},
		{"truncated", []byte{0xe8, 0x01}},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Measure(bytestream.New(tt.src)); err == nil {
				t.Errorf("Measure(% x) succeeded", tt.src)
			}
		})
	}
}

// TestLengthsAgreeWithX86asm cross-checks instruction lengths against an
// independent decoder running in 16-bit mode.
func TestLengthsAgreeWithX86asm(t *testing.T) {
	checked := 0
	for _, w := range randomWindows(20000) {
		k := opcodeTable[w[0]]
		if k.isPrefix() || w[0] == 0x9b {
			continue
		}
		step, err := decodeOne(w)
		if err != nil {
			continue
		}
		inst, err := x86asm.Decode(w, 16)
		if err != nil {
			continue
		}
		checked++
		if inst.Len != step.Inst.Size {
			t.Errorf("% x: length %d (%s), x86asm says %d (%s)",
				w, step.Inst.Size, step.Text, inst.Len, x86asm.IntelSyntax(inst, 0, nil))
		}
	}
	if checked < 1000 {
		t.Errorf("only %d windows cross-checked", checked)
	}
}
