// Package colorize applies NASM syntax highlighting to listings for
// terminal display.
package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Enabled reports whether colouring is on. DIS86_NO_COLOR or NO_COLOR turn
// it off.
func Enabled() bool {
	return os.Getenv("DIS86_NO_COLOR") == "" && os.Getenv("NO_COLOR") == ""
}

// getAssemblyLexer returns the NASM lexer, falling back to any x86 lexer
func getAssemblyLexer() chroma.Lexer {
	for _, name := range []string{"nasm", "NASM", "gas"} {
		if lexer := lexers.Get(name); lexer != nil {
			return chroma.Coalesce(lexer)
		}
	}
	return nil
}

// getDisasmStyle returns the listing style with fallbacks
func getDisasmStyle() *chroma.Style {
	_ = Dis86Dark // force registration
	for _, name := range []string{StyleName, "dracula", "monokai"} {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	for _, name := range []string{"terminal16m", "terminal256"} {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// ColorizeAssembly highlights a whole listing. The input is returned
// unchanged when colouring is disabled or no lexer is available.
func ColorizeAssembly(code string) (string, error) {
	if !Enabled() {
		return code, nil
	}
	lexer := getAssemblyLexer()
	if lexer == nil {
		return code, nil
	}
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code, err
	}
	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getDisasmStyle(), iterator); err != nil {
		return code, err
	}
	return buf.String(), nil
}

// ColorizeLine highlights one listing line, keeping the plain text on any
// failure.
func ColorizeLine(line string) string {
	out, err := ColorizeAssembly(line)
	if err != nil {
		return line
	}
	return strings.TrimSuffix(out, "\n")
}

// StripANSI removes ANSI colour sequences.
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		default:
			result.WriteRune(r)
		}
	}
	return result.String()
}

// VisibleWidth counts the characters of s that are not part of an escape
// sequence.
func VisibleWidth(s string) int {
	return len([]rune(StripANSI(s)))
}
