// Package disasm runs a complete disassembly session: it drives the decoder
// over a byte stream, writes lines through the emitter and lets a label
// strategy place label lines.
package disasm

import (
	"errors"
	"fmt"

	"dis86/internal/bytestream"
	"dis86/internal/decoder"
	"dis86/internal/emit"
	"dis86/internal/labels"
	"dis86/internal/logging"
	"dis86/internal/scratch"
)

// Header is the first line of every listing.
const Header = "bits 16"

// Inst is one emitted line with the bytes it came from.
type Inst struct {
	Offset    int    // first byte, prefixes included
	Raw       []byte // encoding, prefixes included
	Text      string // full line as emitted, lock prefix included
	Op        string // mnemonic in lowercase
	Target    int
	HasTarget bool
	InRange   bool // Target names a byte of the stream
	Label     bool // a label line precedes this instruction
}

// Stream is a linear sequence of instructions.
type Stream []Inst

// Options selects how a session runs.
type Options struct {
	Labels  string // label strategy name; empty selects the default
	Listing bool   // collect a Stream alongside the text
}

// Result is the output of a successful session.
type Result struct {
	Text     []byte
	Listing  Stream
	Labels   []int // offsets that received a label
	Strategy string
	Prefixes int // prefix bytes consumed
	PadPeak  int // high-water mark of the scratch pad
}

// Disassemble decodes src and returns the NASM text. Either the whole input
// decodes and labels resolve, or an error is returned and no text is.
func Disassemble(src []byte, opts Options) (*Result, error) {
	res, err := labels.New(opts.Labels)
	if err != nil {
		return nil, err
	}
	pad := scratch.New(256)
	ctx := decoder.NewContext(src, pad)
	out := emit.New(len(src)*12 + len(Header) + 1)
	out.LineString(Header)
	if err := res.Begin(src, out); err != nil {
		return nil, err
	}

	result := &Result{Strategy: res.Name()}
	for ctx.Stream.More() {
		err := pad.Scope(func() error {
			if !ctx.Prefix.NoLineBreak {
				if err := res.LineStart(ctx.Stream.Offset()); err != nil {
					return err
				}
			}
			step, err := ctx.Next()
			if err != nil {
				return err
			}
			if step.Prefix {
				result.Prefixes++
				if len(step.Text) > 0 {
					out.Fragment(step.Text)
				}
				return nil
			}
			out.Line(step.Text)
			in := &step.Inst
			if in.InRange(len(src)) {
				res.Reference(in.Target, in.Offset)
			}
			if opts.Listing {
				result.Listing = append(result.Listing, newInst(ctx.Stream, in, step.Text))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if err := ctx.Finish(); err != nil {
		return nil, err
	}

	text, err := res.Finish()
	if err != nil {
		return nil, err
	}
	result.Text = text
	result.Labels = res.Labels()
	result.PadPeak = pad.Peak()
	markLabels(result.Listing, result.Labels)

	if logging.IsDebug() {
		lg := logging.NewLogger()
		lg.Debug("disassembled",
			"bytes", len(src),
			"strategy", result.Strategy,
			"labels", len(result.Labels),
			"prefixes", result.Prefixes,
			"pad_peak", result.PadPeak)
	}
	return result, nil
}

func newInst(s *bytestream.Stream, in *decoder.Instruction, text []byte) Inst {
	line := string(text)
	if in.Lock {
		line = "lock " + line
	}
	return Inst{
		Offset:    in.Offset,
		Raw:       s.Slice(in.Offset, in.Offset+in.Size),
		Text:      line,
		Op:        in.Mnemonic,
		Target:    in.Target,
		HasTarget: in.HasTarget,
		InRange:   in.InRange(s.Len()),
	}
}

func markLabels(list Stream, offsets []int) {
	j := 0
	for i := range list {
		for j < len(offsets) && offsets[j] < list[i].Offset {
			j++
		}
		list[i].Label = j < len(offsets) && offsets[j] == list[i].Offset
	}
}

// ErrorOffset extracts the stream offset from a session error, if any.
func ErrorOffset(err error) (int, bool) {
	var de *decoder.DecodeError
	if errors.As(err, &de) {
		return de.Offset, true
	}
	var te *labels.TargetError
	if errors.As(err, &te) {
		return te.Target, true
	}
	return 0, false
}

// Describe renders a session error as a one-line diagnostic.
func Describe(err error) string {
	var de *decoder.DecodeError
	if errors.As(err, &de) {
		return fmt.Sprintf("%s: %v", de.Kind(), err)
	}
	if errors.Is(err, labels.ErrMisalignedTarget) {
		return fmt.Sprintf("MisalignedTarget: %v", err)
	}
	return err.Error()
}
