// Package emit holds the append-only output buffer of a disassembly session.
package emit

import "fmt"

// Slot identifies a placeholder span reserved with Reserve.
type Slot int

type placeholder struct {
	pos   int
	width int
	used  int // bytes of real text written by Patch; 0 while blank
}

// Emitter collects rendered lines. Text is only ever appended, except for
// placeholder spans which may be overwritten in place with Patch.
type Emitter struct {
	buf    []byte
	slots  []placeholder
	midRow bool
}

// New returns an emitter with room for sizeHint bytes.
func New(sizeHint int) *Emitter {
	return &Emitter{buf: make([]byte, 0, sizeHint)}
}

// Line appends text followed by a newline.
func (e *Emitter) Line(text []byte) {
	e.buf = append(e.buf, text...)
	e.buf = append(e.buf, '\n')
	e.midRow = false
}

// LineString is Line for string input.
func (e *Emitter) LineString(text string) {
	e.buf = append(e.buf, text...)
	e.buf = append(e.buf, '\n')
	e.midRow = false
}

// Fragment appends text without terminating the line. The next call must
// continue the same line.
func (e *Emitter) Fragment(text []byte) {
	e.buf = append(e.buf, text...)
	e.midRow = true
}

// MidLine reports whether the last write was a fragment.
func (e *Emitter) MidLine() bool { return e.midRow }

// Reserve appends width blank bytes and returns a handle for later patching.
func (e *Emitter) Reserve(width int) Slot {
	e.slots = append(e.slots, placeholder{pos: len(e.buf), width: width})
	for range width {
		e.buf = append(e.buf, ' ')
	}
	return Slot(len(e.slots) - 1)
}

// Patch overwrites a reserved span with text, padding the remainder with
// spaces. Patching an already filled slot replaces its text.
func (e *Emitter) Patch(s Slot, text []byte) error {
	if int(s) < 0 || int(s) >= len(e.slots) {
		return fmt.Errorf("emit: unknown slot %d", s)
	}
	ph := &e.slots[s]
	if len(text) > ph.width {
		return fmt.Errorf("emit: %d bytes do not fit slot of width %d", len(text), ph.width)
	}
	n := copy(e.buf[ph.pos:ph.pos+ph.width], text)
	for i := ph.pos + n; i < ph.pos+ph.width; i++ {
		e.buf[i] = ' '
	}
	ph.used = n
	return nil
}

// Filled reports whether Patch has written to the slot.
func (e *Emitter) Filled(s Slot) bool {
	return int(s) >= 0 && int(s) < len(e.slots) && e.slots[s].used > 0
}

// Bytes returns the raw buffer, placeholders included.
func (e *Emitter) Bytes() []byte { return e.buf }

// Len returns the raw buffer size.
func (e *Emitter) Len() int { return len(e.buf) }

// Compact returns the final text: every filled slot keeps its text, and all
// blank padding (unused slots and the tail of filled ones) is dropped.
func (e *Emitter) Compact() []byte {
	if len(e.slots) == 0 {
		return e.buf
	}
	out := make([]byte, 0, len(e.buf))
	from := 0
	for _, ph := range e.slots {
		out = append(out, e.buf[from:ph.pos+ph.used]...)
		from = ph.pos + ph.width
	}
	return append(out, e.buf[from:]...)
}
