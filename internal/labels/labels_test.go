package labels

import (
	"errors"
	"slices"
	"testing"

	"dis86/internal/emit"
)

// line is one decoded instruction as the disassembly loop sees it.
type line struct {
	offset int
	text   string
	target int // -1 when there is none
}

// drive runs a resolver over pre-decoded lines the way disasm does.
func drive(t *testing.T, name string, src []byte, lines []line) ([]byte, Resolver, error) {
	t.Helper()
	r, err := New(name)
	if err != nil {
		t.Fatal(err)
	}
	out := emit.New(64)
	if err := r.Begin(src, out); err != nil {
		t.Fatal(err)
	}
	for _, l := range lines {
		if err := r.LineStart(l.offset); err != nil {
			return nil, r, err
		}
		out.LineString(l.text)
		if l.target >= 0 && l.target < len(src) {
			r.Reference(l.target, l.offset)
		}
	}
	text, err := r.Finish()
	return text, r, err
}

func TestResolversPlaceLabels(t *testing.T) {
	src := []byte{0xb9, 0x03, 0x00, 0x49, 0x75, 0xfd, 0xeb, 0x00, 0x75, 0xf9, 0x90}
	lines := []line{
		{0, "mov cx, 3", -1},
		{3, "dec cx", -1},
		{4, "jne label__3", 3},
		{6, "jmp short label__8", 8},
		{8, "jne label__3", 3},
		{10, "nop", -1},
	}
	want := "mov cx, 3\nlabel__3:\ndec cx\njne label__3\njmp short label__8\nlabel__8:\njne label__3\nnop\n"

	for _, name := range Strategies {
		t.Run(name, func(t *testing.T) {
			text, r, err := drive(t, name, src, lines)
			if err != nil {
				t.Fatal(err)
			}
			if string(text) != want {
				t.Errorf("text =\n%s\nwant\n%s", text, want)
			}
			if got := r.Labels(); !slices.Equal(got, []int{3, 8}) {
				t.Errorf("Labels = %v", got)
			}
			if r.Name() != name {
				t.Errorf("Name = %q", r.Name())
			}
		})
	}
}

func TestResolversReportMisalignedTarget(t *testing.T) {
	tests := []struct {
		name  string
		src   []byte
		lines []line
		want  TargetError
	}{
		{
			name: "forward targets, smallest wins",
			src:  []byte{0xeb, 0x03, 0xeb, 0x02, 0xb8, 0x00, 0x00, 0x90},
			lines: []line{
				{0, "jmp short label__5", 5},
				{2, "jmp short label__6", 6},
				{4, "mov ax, 0", -1},
				{7, "nop", -1},
			},
			want: TargetError{Target: 5, Referrer: 0},
		},
		{
			name: "backward target",
			src:  []byte{0xb8, 0x00, 0x00, 0xeb, 0xfc},
			lines: []line{
				{0, "mov ax, 0", -1},
				{3, "jmp short label__1", 1},
			},
			want: TargetError{Target: 1, Referrer: 3},
		},
	}

	for _, tt := range tests {
		for _, name := range Strategies {
			t.Run(tt.name+"/"+name, func(t *testing.T) {
				text, _, err := drive(t, name, tt.src, tt.lines)
				if text != nil {
					t.Errorf("text returned with error: %q", text)
				}
				var te *TargetError
				if !errors.As(err, &te) {
					t.Fatalf("err = %v, want *TargetError", err)
				}
				if *te != tt.want {
					t.Errorf("TargetError = %+v, want %+v", *te, tt.want)
				}
				if !errors.Is(err, ErrMisalignedTarget) {
					t.Error("error does not wrap ErrMisalignedTarget")
				}
			})
		}
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "", want: TwoPass},
		{name: TwoPass, want: TwoPass},
		{name: Padded, want: Padded},
		{name: "one-pass", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if r.Name() != tt.want {
				t.Errorf("Name = %q, want %q", r.Name(), tt.want)
			}
		})
	}
}

func TestLine(t *testing.T) {
	if got := Line(42); got != "label__42:" {
		t.Errorf("Line(42) = %q", got)
	}
}
