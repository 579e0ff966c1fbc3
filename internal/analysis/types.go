package analysis

// Severity orders findings in reports.
type Severity int

const (
	Info Severity = iota
	Notice
	Warning
)

func (s Severity) String() string {
	switch s {
	case Notice:
		return "notice"
	case Warning:
		return "warning"
	}
	return "info"
}

// Finding is one observation about a listing, anchored at an instruction.
type Finding struct {
	Offset   int            `json:"offset"`
	Kind     string         `json:"kind"`
	Severity Severity       `json:"-"`
	Level    string         `json:"severity"`
	Comment  string         `json:"comment"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MnemonicCount is one row of the mnemonic histogram.
type MnemonicCount struct {
	Mnemonic string `json:"mnemonic"`
	Count    int    `json:"count"`
}

// Summary describes a finished disassembly.
type Summary struct {
	File         string          `json:"file,omitempty"`
	SHA256       string          `json:"sha256"`
	Bytes        int             `json:"bytes"`
	Instructions int             `json:"instructions"`
	Labels       []int           `json:"labels"`
	Prefixes     int             `json:"prefixes"`
	Strategy     string          `json:"label_strategy"`
	Mnemonics    []MnemonicCount `json:"mnemonics"`
	Findings     []Finding       `json:"findings"`
}
