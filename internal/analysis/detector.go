package analysis

import "dis86/internal/disasm"

// Detector interface for pattern detection on a finished listing
type Detector interface {
	// Detect inspects code and returns findings, extending the ones it was
	// given. It must not reorder or drop existing findings.
	Detect(code disasm.Stream, findings []Finding) []Finding
}

// DetectorChain runs multiple detectors in sequence
type DetectorChain struct {
	detectors []Detector
}

// NewDetectorChain creates a new detector chain
func NewDetectorChain(detectors ...Detector) *DetectorChain {
	return &DetectorChain{
		detectors: detectors,
	}
}

// Detect runs all detectors in sequence
func (dc *DetectorChain) Detect(code disasm.Stream, findings []Finding) []Finding {
	result := findings
	for _, detector := range dc.detectors {
		result = detector.Detect(code, result)
	}
	for i := range result {
		result[i].Level = result[i].Severity.String()
	}
	return result
}
