package styles

import (
	"strings"
	"testing"
)

func TestCurrentPalette(t *testing.T) {
	t.Setenv("DIS86_THEME", "Editor")
	if Current() != Editor {
		t.Error("DIS86_THEME=Editor did not select the editor palette")
	}
	t.Setenv("DIS86_THEME", "")
	if Current() != Charm {
		t.Error("default palette is not Charm")
	}
}

func TestRenderMarkdownKeepsText(t *testing.T) {
	out, err := RenderMarkdown("# prog\n\n| a | b |\n|---|---|\n| bytes | 42 |\n", 80)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"prog", "bytes", "42"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output lacks %q:\n%s", want, out)
		}
	}
}
