package detectors

import (
	"strings"

	"dis86/internal/analysis"
	"dis86/internal/disasm"
)

// StringOpDetector reports repeated string instructions, which are block
// copies, fills and scans.
type StringOpDetector struct{}

func NewStringOpDetector() *StringOpDetector {
	return &StringOpDetector{}
}

var stringOpMeaning = map[string]string{
	"movs": "block copy",
	"stos": "block fill",
	"cmps": "block compare",
	"scas": "block scan",
	"lods": "repeated load",
}

func (d *StringOpDetector) Detect(code disasm.Stream, findings []analysis.Finding) []analysis.Finding {
	for _, in := range code {
		if !strings.HasPrefix(in.Text, "rep") && !strings.Contains(in.Text, " rep") {
			continue
		}
		meaning, ok := stringOpMeaning[strings.TrimRight(in.Op, "bw")]
		if !ok {
			continue
		}
		width := "byte"
		if strings.HasSuffix(in.Op, "w") {
			width = "word"
		}
		findings = append(findings, analysis.Finding{
			Offset:   in.Offset,
			Kind:     "string-op",
			Severity: analysis.Info,
			Comment:  meaning + " (" + width + "s, count in cx)",
		})
	}
	return findings
}

// FlowDetector reports branches to themselves and branches whose target lies
// outside the input.
type FlowDetector struct{}

func NewFlowDetector() *FlowDetector {
	return &FlowDetector{}
}

func (d *FlowDetector) Detect(code disasm.Stream, findings []analysis.Finding) []analysis.Finding {
	for _, in := range code {
		if !in.HasTarget {
			continue
		}
		switch {
		case in.Target == in.Offset:
			findings = append(findings, analysis.Finding{
				Offset:   in.Offset,
				Kind:     "self-branch",
				Severity: analysis.Warning,
				Comment:  in.Op + " to itself",
			})
		case !in.InRange:
			findings = append(findings, analysis.Finding{
				Offset:   in.Offset,
				Kind:     "external-target",
				Severity: analysis.Notice,
				Comment:  "branch target outside the input",
				Metadata: map[string]any{"target": in.Target},
			})
		}
	}
	return findings
}

// Default returns the chain used by reports and the viewer.
func Default() *analysis.DetectorChain {
	return analysis.NewDetectorChain(
		NewDOSCallDetector(),
		NewStringOpDetector(),
		NewFlowDetector(),
	)
}
