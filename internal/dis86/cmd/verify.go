package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/arch/x86/x86asm"

	"dis86/internal/analysis"
	"dis86/internal/disasm"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [file]",
	Short: "Cross-check instruction lengths against x86asm",
	Long: `Decode the file and compare every instruction length with the
golang.org/x/arch x86 decoder running in 16-bit mode. Instructions that
decoder rejects are counted as unchecked.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		setupLogging(cfg)

		src, err := readInput(cfg.Input)
		if err != nil {
			return err
		}
		res, err := disasm.Disassemble(src, disasm.Options{Labels: cfg.Labels, Listing: true})
		if err != nil {
			reportFailure(cfg.Input, err)
			return err
		}
		report := verifyListing(src, res.Listing)
		report.print(cmd.OutOrStdout())
		if strict && len(report.Mismatches) > 0 {
			return fmt.Errorf("%d instructions disagree with x86asm", len(report.Mismatches))
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().Bool("strict", false, "Fail when any length disagrees")
}

// lengthMismatch is one instruction the two decoders split differently.
type lengthMismatch struct {
	Offset int
	Ours   disasm.Inst
	Theirs string
	Len    int
}

type verifyReport struct {
	Agreed     int
	Unchecked  int
	Mismatches []lengthMismatch
}

// verifyListing decodes each listing line's bytes with x86asm and compares
// lengths. Prefixes are part of both decoders' instructions.
func verifyListing(src []byte, code disasm.Stream) verifyReport {
	var r verifyReport
	for _, in := range code {
		inst, err := x86asm.Decode(src[in.Offset:], 16)
		if err != nil {
			r.Unchecked++
			continue
		}
		if inst.Len == len(in.Raw) {
			r.Agreed++
			continue
		}
		r.Mismatches = append(r.Mismatches, lengthMismatch{
			Offset: in.Offset,
			Ours:   in,
			Theirs: x86asm.IntelSyntax(inst, uint64(in.Offset), nil),
			Len:    inst.Len,
		})
	}
	return r
}

func (r verifyReport) print(w io.Writer) {
	fmt.Fprintf(w, "agreed: %d\nunchecked: %d\nmismatched: %d\n", r.Agreed, r.Unchecked, len(r.Mismatches))
	for _, m := range r.Mismatches {
		fmt.Fprintf(w, "%6d  %-18s %-28s x86asm %d bytes: %s\n",
			m.Offset, analysis.HexBytes(m.Ours.Raw), m.Ours.Text, m.Len, m.Theirs)
	}
}
