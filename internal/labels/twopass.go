package labels

import (
	"sort"

	"dis86/internal/bytestream"
	"dis86/internal/decoder"
	"dis86/internal/emit"
)

// twoPass measures the whole stream first to learn every target, then
// writes each label line just before the instruction it names.
type twoPass struct {
	out      *emit.Emitter
	targets  []int       // ascending, no duplicates
	referrer map[int]int // first line jumping to each target
	next     int
	lost     misaligned
	emitted  []int
}

func (r *twoPass) Name() string { return TwoPass }

func (r *twoPass) Begin(src []byte, out *emit.Emitter) error {
	r.out = out
	r.referrer = make(map[int]int)
	r.lost = make(misaligned)

	s := bytestream.New(src)
	line, open := 0, false
	for s.More() {
		if !open {
			line = s.Offset()
		}
		ext, err := decoder.Measure(s)
		if err != nil {
			// The rendering pass fails at this offset or earlier and
			// reports it with full detail.
			break
		}
		open = ext.Prefix
		if !ext.HasTarget || ext.Target < 0 || ext.Target >= len(src) {
			continue
		}
		if _, seen := r.referrer[ext.Target]; !seen {
			r.referrer[ext.Target] = line
			r.targets = append(r.targets, ext.Target)
		}
	}
	sort.Ints(r.targets)
	return nil
}

func (r *twoPass) LineStart(offset int) error {
	for r.next < len(r.targets) && r.targets[r.next] <= offset {
		t := r.targets[r.next]
		r.next++
		if t != offset {
			r.lost.add(t, r.referrer[t])
			continue
		}
		r.out.LineString(Line(t))
		r.emitted = append(r.emitted, t)
	}
	return nil
}

// Reference is a no-op: every target is already known from the first pass.
func (r *twoPass) Reference(target, referrer int) {}

func (r *twoPass) Finish() ([]byte, error) {
	for _, t := range r.targets[r.next:] {
		r.lost.add(t, r.referrer[t])
	}
	if err := r.lost.err(); err != nil {
		return nil, err
	}
	return r.out.Compact(), nil
}

func (r *twoPass) Labels() []int { return r.emitted }
