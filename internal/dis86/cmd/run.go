package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [file...]",
	Short: "Disassemble several files non-interactively",
	Long: `Disassemble each file into <file>.asm and exit.
Files are processed one after another; a failure is reported and the
remaining files are still processed.`,
	Example: `
# Decode every listing in the directory
dis86 run listing_*

# Quiet batch run with the padded label strategy
dis86 run -q -l padded a.bin b.bin
  `,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")

		base, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		setupLogging(base)

		var failed []error
		for _, file := range args {
			cfg := base
			cfg.Input = file
			cfg.Output = ""
			if !quiet {
				slog.Info("Running disassembly", "file", file, "labels", cfg.Labels)
			}
			if err := runDisassemble(cmd.OutOrStdout(), cfg, modeListing); err != nil {
				failed = append(failed, fmt.Errorf("%s: %w", file, err))
				continue
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", file, cfg.OutputPath())
			}
		}
		if len(failed) > 0 {
			return fmt.Errorf("%d of %d files failed: %w", len(failed), len(args), errors.Join(failed...))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolP("quiet", "q", false, "Only report failures")
}
