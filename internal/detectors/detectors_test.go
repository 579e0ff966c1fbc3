package detectors

import (
	"testing"

	"dis86/internal/analysis"
	"dis86/internal/disasm"
)

var dosProgram = []byte{
	0xb4, 0x09, // 0: mov ah, 9
	0xba, 0x00, 0x01, // 2: mov dx, 256
	0xcd, 0x21, // 5: int 33
	0xb8, 0x00, 0x4c, // 7: mov ax, 19456
	0xcd, 0x21, // 10: int 33
	0xf3, 0xa4, // 12: rep movsb
	0xeb, 0xfe, // 14: jmp short label__14
	0xe8, 0x00, 0x10, // 16: call 4115
}

func listing(t *testing.T, src []byte) disasm.Stream {
	t.Helper()
	res, err := disasm.Disassemble(src, disasm.Options{Listing: true})
	if err != nil {
		t.Fatal(err)
	}
	return res.Listing
}

func TestDefaultChain(t *testing.T) {
	got := Default().Detect(listing(t, dosProgram), nil)
	want := []struct {
		offset  int
		kind    string
		level   string
		comment string
	}{
		{5, "dos-call", "info", "int 21h ah=09h: write $-terminated string"},
		{10, "dos-call", "notice", "int 21h ah=4ch: exit with return code"},
		{12, "string-op", "info", "block copy (bytes, count in cx)"},
		{14, "self-branch", "warning", "jmp to itself"},
		{16, "external-target", "notice", "branch target outside the input"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d findings, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		f := got[i]
		if f.Offset != w.offset || f.Kind != w.kind || f.Level != w.level || f.Comment != w.comment {
			t.Errorf("finding %d = %+v, want %+v", i, f, w)
		}
	}
}

func TestDOSCallStopsAtLabel(t *testing.T) {
	src := []byte{
		0xb4, 0x4c, // 0: mov ah, 76
		0x90,       // 2: nop, jumped to below
		0xcd, 0x21, // 3: int 33
		0xeb, 0xfb, // 5: jmp short label__2
	}
	got := NewDOSCallDetector().Detect(listing(t, src), nil)
	if len(got) != 1 {
		t.Fatalf("got %+v", got)
	}
	if got[0].Comment != "int 21h with unknown function" {
		t.Errorf("Comment = %q", got[0].Comment)
	}
}

func TestDetectKeepsExistingFindings(t *testing.T) {
	seed := []analysis.Finding{{Offset: 0, Kind: "seed"}}
	got := NewFlowDetector().Detect(listing(t, []byte{0x90}), seed)
	if len(got) != 1 || got[0].Kind != "seed" {
		t.Errorf("got %+v", got)
	}
}
