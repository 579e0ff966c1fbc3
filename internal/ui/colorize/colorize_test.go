package colorize

import "testing"

const sample = "bits 16\nlabel__3:\nmov ax, [bx + si - 4]\njne label__3\n"

func TestColorizeDisabled(t *testing.T) {
	t.Setenv("DIS86_NO_COLOR", "1")
	got, err := ColorizeAssembly(sample)
	if err != nil {
		t.Fatal(err)
	}
	if got != sample {
		t.Errorf("ColorizeAssembly changed text with colour disabled: %q", got)
	}
}

func TestColorizeKeepsText(t *testing.T) {
	t.Setenv("DIS86_NO_COLOR", "")
	t.Setenv("NO_COLOR", "")
	got, err := ColorizeAssembly(sample)
	if err != nil {
		t.Fatal(err)
	}
	if StripANSI(got) != sample {
		t.Errorf("stripped output = %q, want %q", StripANSI(got), sample)
	}
}

func TestVisibleWidth(t *testing.T) {
	if n := VisibleWidth("\x1b[38;2;1;2;3mmov\x1b[0m ax"); n != 6 {
		t.Errorf("VisibleWidth = %d, want 6", n)
	}
}
