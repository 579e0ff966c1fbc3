package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"dis86/internal/disasm"
)

// MaxHistogramRows caps the mnemonic table in markdown reports.
const MaxHistogramRows = 16

// Summarize builds a report for a finished disassembly and runs chain over
// its listing. res must have been produced with a listing.
func Summarize(file string, src []byte, res *disasm.Result, chain *DetectorChain) Summary {
	sum := sha256.Sum256(src)
	s := Summary{
		File:         file,
		SHA256:       hex.EncodeToString(sum[:]),
		Bytes:        len(src),
		Instructions: len(res.Listing),
		Labels:       res.Labels,
		Prefixes:     res.Prefixes,
		Strategy:     res.Strategy,
		Mnemonics:    Histogram(res.Listing),
		Findings:     []Finding{},
	}
	if s.Labels == nil {
		s.Labels = []int{}
	}
	if chain != nil {
		s.Findings = chain.Detect(res.Listing, s.Findings)
	}
	return s
}

// Histogram counts mnemonics, most frequent first and alphabetical on ties.
func Histogram(code disasm.Stream) []MnemonicCount {
	counts := make(map[string]int)
	for _, in := range code {
		counts[in.Op]++
	}
	out := make([]MnemonicCount, 0, len(counts))
	for m, n := range counts {
		out = append(out, MnemonicCount{Mnemonic: m, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Mnemonic < out[j].Mnemonic
	})
	return out
}

// Markdown renders the summary as a markdown document.
func (s Summary) Markdown() string {
	var b strings.Builder
	title := s.File
	if title == "" {
		title = "input"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| bytes | %d |\n", s.Bytes)
	fmt.Fprintf(&b, "| instructions | %d |\n", s.Instructions)
	fmt.Fprintf(&b, "| labels | %d |\n", len(s.Labels))
	fmt.Fprintf(&b, "| prefixes | %d |\n", s.Prefixes)
	fmt.Fprintf(&b, "| strategy | `%s` |\n", s.Strategy)
	fmt.Fprintf(&b, "| sha256 | `%s` |\n\n", s.SHA256)

	if len(s.Mnemonics) > 0 {
		b.WriteString("## Mnemonics\n\n| mnemonic | count |\n|---|---:|\n")
		for i, m := range s.Mnemonics {
			if i == MaxHistogramRows {
				fmt.Fprintf(&b, "| ... | %d more |\n", len(s.Mnemonics)-i)
				break
			}
			fmt.Fprintf(&b, "| `%s` | %d |\n", m.Mnemonic, m.Count)
		}
		b.WriteString("\n")
	}

	if len(s.Findings) > 0 {
		b.WriteString("## Findings\n\n")
		for _, f := range s.Findings {
			fmt.Fprintf(&b, "- **%s** at %d (%s): %s\n", f.Kind, f.Offset, f.Severity, f.Comment)
		}
	}
	return b.String()
}
