package disasm

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"regexp"
	"strings"
	"testing"

	"dis86/internal/decoder"
	"dis86/internal/labels"
)

// loopProgram counts cx down and then jumps forward over nothing.
var loopProgram = []byte{
	0xb9, 0x03, 0x00, // 0: mov cx, 3
	0x49,       // 3: dec cx
	0x75, 0xfd, // 4: jne label__3
	0xeb, 0x00, // 6: jmp short label__8
	0x90, // 8: nop
}

const loopListing = `bits 16
mov cx, 3
label__3:
dec cx
jne label__3
jmp short label__8
label__8:
nop
`

func TestDisassembleStrategies(t *testing.T) {
	for _, strategy := range labels.Strategies {
		t.Run(strategy, func(t *testing.T) {
			res, err := Disassemble(loopProgram, Options{Labels: strategy, Listing: true})
			if err != nil {
				t.Fatal(err)
			}
			if string(res.Text) != loopListing {
				t.Errorf("text =\n%s\nwant\n%s", res.Text, loopListing)
			}
			if want := []int{3, 8}; !equalInts(res.Labels, want) {
				t.Errorf("Labels = %v, want %v", res.Labels, want)
			}
			if len(res.Listing) != 5 {
				t.Fatalf("listing has %d entries, want 5", len(res.Listing))
			}
			if !res.Listing[1].Label || res.Listing[0].Label {
				t.Errorf("label flags = %v, %v", res.Listing[0].Label, res.Listing[1].Label)
			}
		})
	}
}

func TestDisassembleEmpty(t *testing.T) {
	res, err := Disassemble(nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Text) != "bits 16\n" {
		t.Errorf("text = %q", res.Text)
	}
}

func TestPrefixStaysOnItsLine(t *testing.T) {
	src := []byte{0xf0, 0x26, 0xfe, 0x07, 0xf3, 0xa4}
	res, err := Disassemble(src, Options{Listing: true})
	if err != nil {
		t.Fatal(err)
	}
	want := "bits 16\nlock inc byte es:[bx]\nrep movsb\n"
	if string(res.Text) != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}
	if got := res.Listing[0].Raw; !bytes.Equal(got, src[:4]) {
		t.Errorf("Raw = % x, want % x", got, src[:4])
	}
	if res.Prefixes != 3 {
		t.Errorf("Prefixes = %d, want 3", res.Prefixes)
	}
}

func TestMisalignedTarget(t *testing.T) {
	src := []byte{
		0xeb, 0x01, // 0: jmp short 3
		0xb8, 0x00, 0x00, // 2: mov ax, 0
	}
	for _, strategy := range labels.Strategies {
		t.Run(strategy, func(t *testing.T) {
			_, err := Disassemble(src, Options{Labels: strategy})
			var te *labels.TargetError
			if !errors.As(err, &te) {
				t.Fatalf("err = %v, want *labels.TargetError", err)
			}
			if te.Target != 3 || te.Referrer != 0 {
				t.Errorf("TargetError = %+v", te)
			}
			if !errors.Is(err, labels.ErrMisalignedTarget) {
				t.Error("error does not wrap ErrMisalignedTarget")
			}
		})
	}
}

func TestDecodeErrorWinsOverLabels(t *testing.T) {
	src := []byte{0xeb, 0x01, 0xb8, 0x00, 0x00, 0x0f}
	_, err := Disassemble(src, Options{})
	if !errors.Is(err, decoder.ErrUnsupportedOpcode) {
		t.Fatalf("err = %v", err)
	}
	if off, ok := ErrorOffset(err); !ok || off != 5 {
		t.Errorf("ErrorOffset = %d, %v", off, ok)
	}
}

func TestUnknownStrategy(t *testing.T) {
	if _, err := Disassemble(loopProgram, Options{Labels: "three-pass"}); err == nil {
		t.Error("unknown strategy accepted")
	}
}

var labelDef = regexp.MustCompile(`(?m)^(label__\d+):$`)
var labelUse = regexp.MustCompile(`\b(label__\d+)$`)

// TestStrategiesAgree feeds random byte streams through both strategies.
// Whatever the outcome, it must be the same for both.
func TestStrategiesAgree(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	succeeded := 0
	for i := 0; i < 3000; i++ {
		src := make([]byte, 4+r.IntN(60))
		for j := range src {
			// bias toward short branches so labels actually occur
			if r.IntN(4) == 0 {
				src[j] = 0x70 + byte(r.IntN(16))
			} else {
				src[j] = byte(r.IntN(256))
			}
		}

		a, errA := Disassemble(src, Options{Labels: labels.TwoPass})
		b, errB := Disassemble(src, Options{Labels: labels.Padded})
		if (errA == nil) != (errB == nil) {
			t.Fatalf("% x: two-pass err %v, padded err %v", src, errA, errB)
		}
		if errA != nil {
			if errA.Error() != errB.Error() {
				t.Fatalf("% x: errors differ:\n%v\n%v", src, errA, errB)
			}
			continue
		}
		succeeded++
		if !bytes.Equal(a.Text, b.Text) {
			t.Fatalf("% x: outputs differ:\n%s\n---\n%s", src, a.Text, b.Text)
		}
		checkLabelBijection(t, src, string(a.Text))
	}
	if succeeded == 0 {
		t.Error("no random stream decoded")
	}
}

// checkLabelBijection verifies every label is defined once and every
// definition is used.
func checkLabelBijection(t *testing.T, src []byte, text string) {
	t.Helper()
	defined := map[string]int{}
	for _, m := range labelDef.FindAllStringSubmatch(text, -1) {
		defined[m[1]]++
	}
	used := map[string]bool{}
	for _, line := range strings.Split(text, "\n") {
		if m := labelUse.FindStringSubmatch(line); m != nil {
			used[m[1]] = true
		}
	}
	for name, n := range defined {
		if n != 1 {
			t.Errorf("% x: %s defined %d times", src, name, n)
		}
		if !used[name] {
			t.Errorf("% x: %s defined but never referenced", src, name)
		}
	}
	for name := range used {
		if defined[name] == 0 {
			t.Errorf("% x: %s referenced but not defined", src, name)
		}
	}
}

func TestDeterministic(t *testing.T) {
	first, err := Disassemble(loopProgram, Options{Labels: labels.Padded})
	if err != nil {
		t.Fatal(err)
	}
	for range 5 {
		again, err := Disassemble(loopProgram, Options{Labels: labels.Padded})
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first.Text, again.Text) {
			t.Fatal("output changed between runs")
		}
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
