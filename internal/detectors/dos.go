// Package detectors finds recognizable patterns in 8086 listings.
// Each detector appends analysis.Findings anchored at instruction offsets.
package detectors

import (
	"fmt"

	"dis86/internal/analysis"
	"dis86/internal/disasm"
)

// DOSCallDetector names MS-DOS services invoked through int 21h. The
// function number is taken from the nearest preceding load of ah.
type DOSCallDetector struct {
	// Window is how many instructions back to look for the ah load.
	Window int
}

// NewDOSCallDetector creates a detector with the default look-back window.
func NewDOSCallDetector() *DOSCallDetector {
	return &DOSCallDetector{Window: 4}
}

var dosFunctions = map[byte]string{
	0x00: "terminate program",
	0x01: "read character with echo",
	0x02: "write character",
	0x06: "direct console i/o",
	0x08: "read character without echo",
	0x09: "write $-terminated string",
	0x0a: "buffered keyboard input",
	0x25: "set interrupt vector",
	0x2a: "get date",
	0x2c: "get time",
	0x30: "get DOS version",
	0x35: "get interrupt vector",
	0x3c: "create file",
	0x3d: "open file",
	0x3e: "close file",
	0x3f: "read file",
	0x40: "write file",
	0x41: "delete file",
	0x42: "seek",
	0x48: "allocate memory",
	0x49: "free memory",
	0x4c: "exit with return code",
}

func (d *DOSCallDetector) Detect(code disasm.Stream, findings []analysis.Finding) []analysis.Finding {
	for i, in := range code {
		switch {
		case isInt(in, 0x20):
			findings = append(findings, analysis.Finding{
				Offset:   in.Offset,
				Kind:     "dos-call",
				Severity: analysis.Notice,
				Comment:  "int 20h: terminate program",
			})
		case isInt(in, 0x21):
			fn, ok := d.loadAH(code, i)
			f := analysis.Finding{
				Offset:   in.Offset,
				Kind:     "dos-call",
				Severity: analysis.Info,
				Comment:  "int 21h with unknown function",
			}
			if ok {
				name, known := dosFunctions[fn]
				if !known {
					name = "undocumented function"
				}
				f.Comment = fmt.Sprintf("int 21h ah=%02xh: %s", fn, name)
				f.Metadata = map[string]any{"function": int(fn)}
				if fn == 0x00 || fn == 0x4c {
					f.Severity = analysis.Notice
				}
			}
			findings = append(findings, f)
		}
	}
	return findings
}

// loadAH walks back from idx looking for mov ah, imm8 or mov ax, imm16.
func (d *DOSCallDetector) loadAH(code disasm.Stream, idx int) (byte, bool) {
	for i := idx - 1; i >= 0 && idx-i <= d.Window; i-- {
		raw := code[i].Raw
		switch {
		case len(raw) == 2 && raw[0] == 0xb4:
			return raw[1], true
		case len(raw) == 3 && raw[0] == 0xb8:
			return raw[2], true
		}
		if code[i].HasTarget || code[i].Label {
			// control flow joins or leaves here; the value is unknown
			return 0, false
		}
	}
	return 0, false
}

func isInt(in disasm.Inst, n byte) bool {
	return len(in.Raw) == 2 && in.Raw[0] == 0xcd && in.Raw[1] == n
}
