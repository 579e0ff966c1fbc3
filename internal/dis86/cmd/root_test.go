package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dis86/internal/analysis"
	"dis86/internal/config"
	"dis86/internal/decoder"
	"dis86/internal/disasm"
)

var loopProgram = []byte{
	0xb9, 0x03, 0x00, // mov cx, 3
	0x49,       // dec cx
	0x75, 0xfd, // jne label__3
	0xeb, 0x00, // jmp short label__8
	0x90, // nop
}

const loopListing = `bits 16
mov cx, 3
label__3:
dec cx
jne label__3
jmp short label__8
label__8:
nop
`

func writeInput(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunDisassemble(t *testing.T) {
	tests := []struct {
		name     string
		labels   string
		output   string
		mode     outputMode
		wantFile bool
		wantOut  func(t *testing.T, out string)
	}{
		{
			name:     "listing to default file",
			mode:     modeListing,
			wantFile: true,
			wantOut: func(t *testing.T, out string) {
				if out != "" {
					t.Errorf("unexpected output %q", out)
				}
			},
		},
		{
			name:   "listing to stdout",
			labels: "padded",
			output: config.Stdout,
			mode:   modeListing,
			wantOut: func(t *testing.T, out string) {
				if out != loopListing {
					t.Errorf("output =\n%s\nwant\n%s", out, loopListing)
				}
			},
		},
		{
			name: "json summary",
			mode: modeJSON,
			wantOut: func(t *testing.T, out string) {
				var s analysis.Summary
				if err := json.Unmarshal([]byte(out), &s); err != nil {
					t.Fatalf("invalid json: %v\n%s", err, out)
				}
				if s.Instructions != 5 || s.Bytes != len(loopProgram) {
					t.Errorf("summary = %+v", s)
				}
				if len(s.Labels) != 2 || s.Labels[0] != 3 || s.Labels[1] != 8 {
					t.Errorf("Labels = %v", s.Labels)
				}
			},
		},
		{
			name:     "markdown summary",
			mode:     modeSummary,
			wantFile: true,
			wantOut: func(t *testing.T, out string) {
				if !strings.Contains(out, "| instructions | 5 |") {
					t.Errorf("summary missing instruction count:\n%s", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := writeInput(t, "loop.bin", loopProgram)
			cfg := config.Default()
			cfg.Input = input
			cfg.Output = tt.output
			if tt.labels != "" {
				cfg.Labels = tt.labels
			}

			var buf bytes.Buffer
			if err := runDisassemble(&buf, cfg, tt.mode); err != nil {
				t.Fatal(err)
			}
			tt.wantOut(t, buf.String())

			got, err := os.ReadFile(input + ".asm")
			if !tt.wantFile {
				if err == nil {
					t.Error("listing file written")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != loopListing {
				t.Errorf("file =\n%s\nwant\n%s", got, loopListing)
			}
		})
	}
}

func TestRunDisassembleFailureWritesNothing(t *testing.T) {
	tests := []struct {
		name    string
		src     []byte
		missing bool
		want    error
	}{
		{name: "unsupported opcode", src: []byte{0x90, 0x0f}, want: decoder.ErrUnsupportedOpcode},
		{name: "truncated", src: []byte{0xb8, 0x01}, want: decoder.ErrTruncatedInput},
		{name: "missing input", missing: true, want: decoder.ErrIOFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := filepath.Join(t.TempDir(), "prog.bin")
			if !tt.missing {
				input = writeInput(t, "prog.bin", tt.src)
			}
			cfg := config.Default()
			cfg.Input = input

			var buf bytes.Buffer
			err := runDisassemble(&buf, cfg, modeListing)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if _, statErr := os.Stat(input + ".asm"); !os.IsNotExist(statErr) {
				t.Error("listing file exists after failure")
			}
			if buf.Len() != 0 {
				t.Errorf("unexpected output %q", buf.String())
			}
		})
	}
}

func TestVerifyListing(t *testing.T) {
	res, err := disasm.Disassemble(loopProgram, disasm.Options{Listing: true})
	if err != nil {
		t.Fatal(err)
	}
	report := verifyListing(loopProgram, res.Listing)
	if len(report.Mismatches) != 0 {
		t.Errorf("mismatches: %+v", report.Mismatches)
	}
	if report.Agreed+report.Unchecked != len(res.Listing) {
		t.Errorf("report covers %d of %d instructions", report.Agreed+report.Unchecked, len(res.Listing))
	}

	var buf bytes.Buffer
	report.print(&buf)
	if !strings.HasPrefix(buf.String(), "agreed: ") {
		t.Errorf("report = %q", buf.String())
	}
}

func TestConfigSchema(t *testing.T) {
	bts, err := configSchema()
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"labels"`, `"input"`, `"two-pass"`} {
		if !bytes.Contains(bts, []byte(field)) {
			t.Errorf("schema missing %s", field)
		}
	}
}

func TestPrintFile(t *testing.T) {
	path := writeInput(t, "dis86-20260101-000000-debug.log", []byte("line one\nline two\n"))
	var buf bytes.Buffer
	if err := printFile(&buf, path); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "line one\nline two\n" {
		t.Errorf("output = %q", buf.String())
	}
	if err := printFile(&buf, path+".missing"); err == nil {
		t.Error("missing file accepted")
	}
}

func TestListingRows(t *testing.T) {
	res, err := disasm.Disassemble(loopProgram, disasm.Options{Listing: true})
	if err != nil {
		t.Fatal(err)
	}
	rows := listingRows(res.Listing)
	// bits 16, mov, label__3 -> row 2; dec, jne, jmp, label__8 -> row 6
	if rows[3] != 2 || rows[8] != 6 {
		t.Errorf("rows = %v", rows)
	}
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.bin")
	bad := filepath.Join(dir, "bad.bin")
	if err := os.WriteFile(good, loopProgram, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte{0xf3, 0x90}, 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"run", "-q", good, bad})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("batch with a bad file succeeded")
	}
	if !errors.Is(err, decoder.ErrUndefinedPrefix) {
		t.Errorf("err = %v, want ErrUndefinedPrefix in chain", err)
	}
	got, readErr := os.ReadFile(good + ".asm")
	if readErr != nil {
		t.Fatal(readErr)
	}
	if string(got) != loopListing {
		t.Errorf("good.bin.asm =\n%s", got)
	}
	if _, statErr := os.Stat(bad + ".asm"); !os.IsNotExist(statErr) {
		t.Error("bad.bin.asm written")
	}
}
