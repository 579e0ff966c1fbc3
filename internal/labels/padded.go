package labels

import (
	"slices"

	"dis86/internal/emit"
)

// padded decodes once. Every line gets a blank placeholder wide enough for
// the longest possible label; a reference fills the placeholder of its target
// immediately when the target is behind, or on arrival when it is ahead.
// Unused padding is dropped at the end.
type padded struct {
	out     *emit.Emitter
	width   int
	slots   []emit.Slot // by offset; -1 where no line starts
	pending map[int]int // forward target -> first referrer
	lost    misaligned
	emitted []int
	err     error
}

func (r *padded) Name() string { return Padded }

func (r *padded) Begin(src []byte, out *emit.Emitter) error {
	r.out = out
	r.width = len(Line(max(len(src)-1, 0))) + 1
	r.slots = make([]emit.Slot, len(src))
	for i := range r.slots {
		r.slots[i] = -1
	}
	r.pending = make(map[int]int)
	r.lost = make(misaligned)
	return nil
}

func (r *padded) LineStart(offset int) error {
	r.slots[offset] = r.out.Reserve(r.width)
	if _, ok := r.pending[offset]; ok {
		delete(r.pending, offset)
		r.fill(offset)
	}
	return r.err
}

func (r *padded) Reference(target, referrer int) {
	if target < 0 || target >= len(r.slots) {
		return
	}
	switch {
	case r.slots[target] >= 0:
		r.fill(target)
	case target > referrer:
		if _, ok := r.pending[target]; !ok {
			r.pending[target] = referrer
		}
	default:
		r.lost.add(target, referrer)
	}
}

func (r *padded) fill(offset int) {
	slot := r.slots[offset]
	if r.out.Filled(slot) {
		return
	}
	if err := r.out.Patch(slot, []byte(Line(offset)+"\n")); err != nil && r.err == nil {
		r.err = err
	}
	r.emitted = append(r.emitted, offset)
}

func (r *padded) Finish() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	for t, ref := range r.pending {
		r.lost.add(t, ref)
	}
	if err := r.lost.err(); err != nil {
		return nil, err
	}
	slices.Sort(r.emitted)
	return r.out.Compact(), nil
}

func (r *padded) Labels() []int { return r.emitted }
