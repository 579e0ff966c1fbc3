// Package labels places label lines ahead of the instructions that branch
// targets point at. Two interchangeable strategies are provided; both must
// produce byte-identical text for the same input.
package labels

import (
	"errors"
	"fmt"
	"sort"

	"dis86/internal/decoder"
	"dis86/internal/emit"
)

// ErrMisalignedTarget is returned when an in-range branch target does not
// fall on the first byte of an instruction line.
var ErrMisalignedTarget = errors.New("branch target is not at an instruction boundary")

// TargetError names the offending target and the first line that jumps to it.
type TargetError struct {
	Target   int
	Referrer int
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("target %d referenced at offset %d: %v", e.Target, e.Referrer, ErrMisalignedTarget)
}

func (e *TargetError) Unwrap() error { return ErrMisalignedTarget }

// Strategy names accepted by New.
const (
	TwoPass = "two-pass"
	Padded  = "padded"
)

// Strategies lists the accepted strategy names, default first.
var Strategies = []string{TwoPass, Padded}

// Resolver is driven by the disassembly loop. Begin is called once before any
// output, LineStart before each line (prefixes included) is decoded, and
// Reference after an instruction with an in-range target has been emitted.
type Resolver interface {
	Name() string
	Begin(src []byte, out *emit.Emitter) error
	LineStart(offset int) error
	Reference(target, referrer int)
	Finish() ([]byte, error)
	// Labels returns the offsets that received a label, ascending.
	Labels() []int
}

// New returns the resolver for the named strategy. An empty name selects the
// default.
func New(name string) (Resolver, error) {
	switch name {
	case "", TwoPass:
		return &twoPass{}, nil
	case Padded:
		return &padded{}, nil
	}
	return nil, fmt.Errorf("unknown label strategy %q (want one of %v)", name, Strategies)
}

// Line returns the label line written before the instruction at offset.
func Line(offset int) string {
	return decoder.LabelName(offset) + ":"
}

// misaligned collects targets that never lined up with a line start, keeping
// the first referrer of each.
type misaligned map[int]int

func (m misaligned) add(target, referrer int) {
	if prev, ok := m[target]; !ok || referrer < prev {
		m[target] = referrer
	}
}

// err reports the smallest misaligned target, or nil.
func (m misaligned) err() error {
	if len(m) == 0 {
		return nil
	}
	targets := make([]int, 0, len(m))
	for t := range m {
		targets = append(targets, t)
	}
	sort.Ints(targets)
	return &TargetError{Target: targets[0], Referrer: m[targets[0]]}
}
