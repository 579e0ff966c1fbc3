package scratch

import (
	"errors"
	"testing"
)

func TestCheckpointRestore(t *testing.T) {
	p := New(8)
	p.AppendString("bits")
	m := p.Checkpoint()

	got := p.Appendf("%s %d", "mov ax,", 1)
	if string(got) != "mov ax, 1" {
		t.Fatalf("Appendf = %q", got)
	}
	if string(p.Since(m)) != "mov ax, 1" {
		t.Fatalf("Since = %q", p.Since(m))
	}

	p.RestoreTo(m)
	if p.Used() != 4 {
		t.Errorf("Used() = %d after restore, want 4", p.Used())
	}
	if p.Peak() != 13 {
		t.Errorf("Peak() = %d, want 13", p.Peak())
	}
}

func TestScopeRestoresOnError(t *testing.T) {
	p := New(0)
	want := errors.New("boom")

	err := p.Scope(func() error {
		p.AppendString("partial line")
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("Scope err = %v", err)
	}
	if p.Used() != 0 {
		t.Errorf("Used() = %d after failed scope", p.Used())
	}
}

func TestScopeRestoresOnPanic(t *testing.T) {
	p := New(0)
	func() {
		defer func() { _ = recover() }()
		_ = p.Scope(func() error {
			p.AppendString("x")
			panic("unexpected")
		})
	}()
	if p.Used() != 0 {
		t.Errorf("Used() = %d after panic", p.Used())
	}
}

func TestSpansSurviveGrowth(t *testing.T) {
	p := New(1)
	first := p.AppendString("es:")
	p.AppendString("[bx + si]")
	if string(first) != "es:" {
		t.Errorf("first span = %q after growth", first)
	}
}
