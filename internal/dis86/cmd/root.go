package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/pprof"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"dis86/internal/analysis"
	"dis86/internal/config"
	"dis86/internal/decoder"
	"dis86/internal/detectors"
	"dis86/internal/disasm"
	dislog "dis86/internal/dis86/log"
	"dis86/internal/dis86/styles"
	"dis86/internal/labels"
	"dis86/internal/logging"
	"dis86/internal/ui/colorize"
)

// outputMode selects what the root command prints.
type outputMode int

const (
	modeListing outputMode = iota // write the listing
	modeJSON                      // print a JSON summary, write nothing
	modeSummary                   // write the listing and print a markdown summary
)

func init() {
	rootCmd.PersistentFlags().StringP("cwd", "c", "", "Current working directory")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")
	rootCmd.PersistentFlags().String("config", "", "JSON config file")
	rootCmd.PersistentFlags().StringP("labels", "l", "", "Label strategy: two-pass or padded (default two-pass)")

	rootCmd.Flags().BoolP("help", "h", false, "Help")
	rootCmd.Flags().BoolP("json", "j", false, "Print a JSON summary instead of writing the listing")
	rootCmd.Flags().BoolP("summary", "s", false, "Print a markdown summary after writing the listing")
	rootCmd.Flags().String("cpuprofile", "", "Write CPU profile to file")
	rootCmd.Flags().String("memprofile", "", "Write memory profile to file")

	rootCmd.AddCommand(runCmd, schemaCmd, viewCmd, verifyCmd, logsCmd)
}

var rootCmd = &cobra.Command{
	Use:   "dis86 [input] [output]",
	Short: "8086 machine code to NASM disassembler",
	Long: `dis86 decodes a raw 8086 binary from its first byte and writes NASM
source that reassembles to the same bytes. Branch targets inside the input
get label__<offset> labels.`,
	Example: `
# Decode the default input into listing_0042_completionist_decode.asm
dis86

# Decode to stdout with the single-pass label strategy
dis86 -l padded prog.bin -

# Summarize as JSON for regression testing
dis86 -j prog.bin
  `,
	Args:          cobra.MaximumNArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := ResolveCwd(cmd); err != nil {
			return err
		}
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		setupLogging(cfg)

		cpuprofile, _ := cmd.Flags().GetString("cpuprofile")
		if cpuprofile == "" {
			cpuprofile = cfg.ProfilePath
		}
		if cpuprofile != "" {
			f, err := os.Create(cpuprofile)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %v", err)
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %v", err)
			}
			defer pprof.StopCPUProfile()
		}

		memprofile, _ := cmd.Flags().GetString("memprofile")
		if memprofile != "" {
			defer func() {
				f, err := os.Create(memprofile)
				if err != nil {
					fmt.Fprintf(os.Stderr, "could not create memory profile: %v\n", err)
					return
				}
				defer f.Close()
				if err := pprof.WriteHeapProfile(f); err != nil {
					fmt.Fprintf(os.Stderr, "could not write memory profile: %v\n", err)
				}
			}()
		}

		mode := modeListing
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			mode = modeJSON
		} else if summary, _ := cmd.Flags().GetBool("summary"); summary {
			mode = modeSummary
		}
		return runDisassemble(cmd.OutOrStdout(), cfg, mode)
	},
}

// loadConfig layers defaults, the --config file, the environment and then
// positional arguments and flags.
func loadConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if len(args) > 0 {
		cfg.Input = args[0]
	}
	if len(args) > 1 {
		cfg.Output = args[1]
	}
	if cmd.Flags().Changed("labels") {
		cfg.Labels, _ = cmd.Flags().GetString("labels")
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}
	return cfg, cfg.Validate()
}

// setupLogging applies the logging part of cfg to both loggers.
func setupLogging(cfg config.Config) {
	if cfg.LogDir != "" {
		os.Setenv("DIS86_LOG_DIR", cfg.LogDir)
	}
	if cfg.Debug {
		os.Setenv("DIS86_LOG_LEVEL", "debug")
	}
	if cfg.NoColor {
		os.Setenv("DIS86_NO_COLOR", "1")
	}
	dislog.Setup("", cfg.Debug)
}

// runDisassemble decodes cfg.Input and delivers the result according to mode.
// On failure nothing is written.
func runDisassemble(w io.Writer, cfg config.Config, mode outputMode) error {
	src, err := readInput(cfg.Input)
	if err != nil {
		reportFailure(cfg.Input, err)
		return err
	}
	slog.Debug("Decoding", "file", cfg.Input, "bytes", len(src), "labels", cfg.Labels)

	res, err := disasm.Disassemble(src, disasm.Options{
		Labels:  cfg.Labels,
		Listing: mode != modeListing,
	})
	if err != nil {
		reportFailure(cfg.Input, err)
		return err
	}

	if mode == modeJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis.Summarize(cfg.Input, src, res, detectors.Default()))
	}

	out := cfg.OutputPath()
	if err := writeListing(w, out, res.Text); err != nil {
		reportFailure(cfg.Input, err)
		return err
	}
	if out != config.Stdout {
		lg := logging.NewLogger()
		lg.Info("wrote listing", "input", cfg.Input, "output", out, "labels", len(res.Labels), "strategy", res.Strategy)
	}

	if mode == modeSummary {
		return printSummary(w, analysis.Summarize(cfg.Input, src, res, detectors.Default()))
	}
	return nil
}

// writeListing writes text to path, or to w when path is "-". Listings sent
// to a terminal are coloured.
func writeListing(w io.Writer, path string, text []byte) error {
	if path != config.Stdout {
		return writeOutput(path, text)
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(f.Fd()) && colorize.Enabled() {
		colored, err := colorize.ColorizeAssembly(string(text))
		if err == nil {
			_, err = io.WriteString(w, colored)
			return err
		}
	}
	_, err := w.Write(text)
	return err
}

func printSummary(w io.Writer, s analysis.Summary) error {
	md := s.Markdown()
	if f, ok := w.(*os.File); ok && term.IsTerminal(f.Fd()) && colorize.Enabled() {
		width, _, err := term.GetSize(f.Fd())
		if err != nil || width <= 0 {
			width = 80
		}
		if rendered, err := styles.RenderMarkdown(md, width-2); err == nil {
			md = rendered
		}
	}
	_, err := io.WriteString(w, md)
	return err
}

// readInput loads the whole input file.
func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", decoder.ErrIOFailure, path, err)
	}
	return data, nil
}

// writeOutput stores the whole listing in one write.
func writeOutput(path string, text []byte) error {
	if err := os.WriteFile(path, text, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", decoder.ErrIOFailure, path, err)
	}
	return nil
}

// reportFailure logs a failed session with its kind and position.
func reportFailure(input string, err error) {
	lg := logging.NewLogger()
	var de *decoder.DecodeError
	var te *labels.TargetError
	switch {
	case errors.As(err, &de):
		lg.Error("decode failed",
			"input", input,
			"kind", de.Kind(),
			"offset", de.Offset,
			"opcode", fmt.Sprintf("%#04x", de.Opcode),
			"detail", de.Detail)
	case errors.As(err, &te):
		lg.Error("label resolution failed",
			"input", input,
			"kind", "MisalignedTarget",
			"target", te.Target,
			"referrer", te.Referrer)
	case errors.Is(err, decoder.ErrIOFailure):
		lg.Error("i/o failed", "input", input, "kind", "IOFailure", "error", err)
	default:
		lg.Error("failed", "input", input, "error", err)
	}
}

func Execute() {
	// Bypass fang's styled output when the result is meant for another program.
	plain := false
	for _, arg := range os.Args[1:] {
		if arg == "--json" || arg == "-j" || arg == "-" {
			plain = true
			break
		}
	}
	if !plain && !term.IsTerminal(os.Stdout.Fd()) {
		plain = true
	}

	if plain {
		if err := rootCmd.Execute(); err != nil {
			fmt.Fprintln(os.Stderr, disasm.Describe(err))
			os.Exit(1)
		}
		return
	}
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

func ResolveCwd(cmd *cobra.Command) (string, error) {
	cwd, _ := cmd.Flags().GetString("cwd")
	if cwd != "" {
		err := os.Chdir(cwd)
		if err != nil {
			return "", fmt.Errorf("failed to change directory: %v", err)
		}
		return cwd, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %v", err)
	}
	return cwd, nil
}
