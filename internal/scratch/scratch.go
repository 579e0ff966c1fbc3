// Package scratch implements the per-instruction scratch pad: a bump buffer
// that is checkpointed before an instruction is decoded and restored once its
// text has been copied to the output.
package scratch

import "fmt"

// Mark is a checkpoint returned by Checkpoint.
type Mark int

// Pad is a single-owner bump buffer for transient text.
type Pad struct {
	buf  []byte
	peak int
}

// New returns a pad with the given initial capacity.
func New(capacity int) *Pad {
	return &Pad{buf: make([]byte, 0, capacity)}
}

// Checkpoint records the current fill level.
func (p *Pad) Checkpoint() Mark { return Mark(len(p.buf)) }

// RestoreTo releases everything written after m.
func (p *Pad) RestoreTo(m Mark) {
	if int(m) > len(p.buf) || m < 0 {
		panic(fmt.Sprintf("scratch: restore to %d beyond fill level %d", m, len(p.buf)))
	}
	clear(p.buf[m:])
	p.buf = p.buf[:m]
}

// Scope runs fn between a checkpoint and its restore. The restore happens on
// every exit path, including a panic inside fn.
func (p *Pad) Scope(fn func() error) error {
	m := p.Checkpoint()
	defer p.RestoreTo(m)
	return fn()
}

// Appendf formats into the pad and returns the span that was written.
func (p *Pad) Appendf(format string, args ...any) []byte {
	start := len(p.buf)
	p.buf = fmt.Appendf(p.buf, format, args...)
	p.track()
	return p.buf[start:len(p.buf):len(p.buf)]
}

// AppendString copies s into the pad and returns the written span.
func (p *Pad) AppendString(s string) []byte {
	start := len(p.buf)
	p.buf = append(p.buf, s...)
	p.track()
	return p.buf[start:len(p.buf):len(p.buf)]
}

// Since returns everything written after m as one contiguous span.
func (p *Pad) Since(m Mark) []byte {
	return p.buf[m:len(p.buf):len(p.buf)]
}

// Used returns the current fill level in bytes.
func (p *Pad) Used() int { return len(p.buf) }

// Peak returns the highest fill level seen so far.
func (p *Pad) Peak() int { return p.peak }

func (p *Pad) track() {
	if len(p.buf) > p.peak {
		p.peak = len(p.buf)
	}
}
