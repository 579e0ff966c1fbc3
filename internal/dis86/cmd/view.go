package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"

	"dis86/internal/analysis"
	"dis86/internal/detectors"
	"dis86/internal/disasm"
	"dis86/internal/dis86/styles"
	"dis86/internal/labels"
	"dis86/internal/ui/colorize"
)

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Browse a disassembly interactively",
	Long: `Open the listing of a file in a terminal viewer with three panes:
the listing, the label index and a details report.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		setupLogging(cfg)

		program := tea.NewProgram(
			NewModel(cfg.Input, cfg.Labels),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
		)
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %v", err)
		}
		return nil
	},
}

type viewMode int

const (
	viewListing viewMode = iota
	viewLabels
	viewDetails
)

// labelItem is one entry of the label index.
type labelItem struct {
	offset int
	line   string // instruction at the label
	row    int    // row of the label line in the listing pane
}

func (i labelItem) FilterValue() string {
	return fmt.Sprintf("%s %d %s", labels.Line(i.offset), i.offset, i.line)
}

type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(labelItem)
	if !ok {
		return
	}

	var nameStyle lipgloss.Style
	indicator := " "
	if index == m.Index() {
		indicator = ">"
		nameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	} else {
		nameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	}

	fmt.Fprintf(w, " %s  %s  %s",
		indicator,
		nameStyle.Render(fmt.Sprintf("%-14s", labels.Line(i.offset))),
		colorize.ColorizeLine(i.line))
}

type model struct {
	viewport    viewport.Model
	labelsList  list.Model
	detailsView viewport.Model
	spinner     spinner.Model
	mode        viewMode
	filepath    string
	strategy    string
	loading     bool
	err         error
	result      *disasm.Result
	summary     analysis.Summary
	width       int
	height      int
}

// disassembledMsg carries the finished session back to the model.
type disassembledMsg struct {
	src     []byte
	result  *disasm.Result
	summary analysis.Summary
	err     error
}

func disassembleCmd(path, strategy string) tea.Cmd {
	return func() tea.Msg {
		src, err := readInput(path)
		if err != nil {
			return disassembledMsg{err: err}
		}
		res, err := disasm.Disassemble(src, disasm.Options{Labels: strategy, Listing: true})
		if err != nil {
			return disassembledMsg{src: src, err: err}
		}
		return disassembledMsg{
			src:     src,
			result:  res,
			summary: analysis.Summarize(path, src, res, detectors.Default()),
		}
	}
}

func NewModel(filepath, strategy string) model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(24)

	labelsList := list.New([]list.Item{}, itemDelegate{}, 80, 24)
	labelsList.SetShowStatusBar(false)
	labelsList.SetFilteringEnabled(true)
	labelsList.Title = "Labels"
	labelsList.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		MarginLeft(2)
	labelsList.SetShowHelp(true)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	dvp := viewport.New()
	dvp.SetWidth(80)
	dvp.SetHeight(24)

	m := model{
		viewport:    vp,
		labelsList:  labelsList,
		detailsView: dvp,
		spinner:     s,
		mode:        viewListing,
		filepath:    filepath,
		strategy:    strategy,
		loading:     true,
		width:       80,
		height:      24,
	}
	m.updateContent()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		disassembleCmd(m.filepath, m.strategy),
		m.spinner.Tick,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case disassembledMsg:
		m.loading = false
		m.err = msg.err
		m.result = msg.result
		m.summary = msg.summary
		if m.err == nil {
			m.updateLabelsList()
		}
		m.updateContent()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.loading {
			m.updateContent()
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			m.viewport.SetWidth(msg.Width)
			m.viewport.SetHeight(msg.Height - 2)
			m.labelsList.SetWidth(msg.Width)
			m.labelsList.SetHeight(msg.Height - 2)
			m.detailsView.SetWidth(msg.Width)
			m.detailsView.SetHeight(msg.Height - 2)
			m.updateContent()
		}

	case tea.KeyMsg:
		// While the label list is filtering, it gets every key but quit.
		if m.mode == viewLabels && m.labelsList.FilterState() == list.Filtering {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			break
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "l":
			m.mode = viewListing
			return m, nil
		case "b":
			if m.hasLabels() {
				m.mode = viewLabels
			}
			return m, nil
		case "d":
			if m.result != nil {
				m.mode = viewDetails
			}
			return m, nil
		case "enter":
			if m.mode == viewLabels {
				if item, ok := m.labelsList.SelectedItem().(labelItem); ok {
					m.mode = viewListing
					m.viewport.SetYOffset(item.row)
				}
			}
			return m, nil
		case "tab":
			m.mode = m.nextMode(1)
			return m, nil
		case "shift+tab":
			m.mode = m.nextMode(-1)
			return m, nil
		}
	}

	switch m.mode {
	case viewLabels:
		m.labelsList, cmd = m.labelsList.Update(msg)
	case viewDetails:
		m.detailsView, cmd = m.detailsView.Update(msg)
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// nextMode cycles through the panes that have content.
func (m model) nextMode(step int) viewMode {
	if m.result == nil {
		return viewListing
	}
	modes := []viewMode{viewListing, viewDetails}
	if m.hasLabels() {
		modes = []viewMode{viewListing, viewLabels, viewDetails}
	}
	for i, mode := range modes {
		if mode == m.mode {
			return modes[(i+step+len(modes))%len(modes)]
		}
	}
	return viewListing
}

func (m model) hasLabels() bool {
	return m.result != nil && len(m.result.Labels) > 0
}

func (m model) View() string {
	var content string
	switch m.mode {
	case viewLabels:
		content = m.labelsList.View()
	case viewDetails:
		content = m.detailsView.View()
	default:
		content = m.viewport.View()
	}

	var menu string
	switch m.mode {
	case viewLabels:
		menu = " Enter: jump to label • L: listing • D: details • Tab: cycle • Q: quit "
	case viewDetails:
		menu = " L: listing • B: labels • Tab: cycle • Q: quit "
	default:
		if m.hasLabels() {
			menu = " B: labels • D: details • Tab: cycle • Q: quit "
		} else if m.result != nil {
			menu = " D: details • Tab: cycle • Q: quit "
		} else {
			menu = " Q: quit "
		}
	}

	menuStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1).
		Width(m.width)

	return content + "\n" + menuStyle.Render(menu)
}

// updateContent refreshes the listing and details panes.
func (m *model) updateContent() {
	width := m.width
	if width == 0 {
		width = 80
	}

	switch {
	case m.loading:
		m.viewport.SetContent(fmt.Sprintf("%s Decoding %s...", m.spinner.View(), m.filepath))
		return
	case m.err != nil:
		md := fmt.Sprintf("# %s\n\n**%s**\n", m.filepath, disasm.Describe(m.err))
		rendered, _ := styles.RenderMarkdown(md, width-2)
		m.viewport.SetContent(strings.TrimSuffix(rendered, "\n"))
		return
	}

	m.viewport.SetContent(renderListing(m.result.Listing))

	md := m.summary.Markdown()
	rendered, err := styles.RenderMarkdown(md, width-2)
	if err != nil {
		rendered = md
	}
	m.detailsView.SetContent(strings.TrimSuffix(rendered, "\n"))
}

// renderListing lays out one row per line: offset, encoding, characters, text. Label
// lines take a row of their own, as in the written listing.
func renderListing(code disasm.Stream) string {
	offStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	hexStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	var b strings.Builder
	b.WriteString(colorize.ColorizeLine(disasm.Header))
	b.WriteString("\n")
	for _, in := range code {
		if in.Label {
			b.WriteString(colorize.ColorizeLine(labels.Line(in.Offset)))
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  %s %s  %s\n",
			offStyle.Render(fmt.Sprintf("%05d", in.Offset)),
			hexStyle.Render(fmt.Sprintf("%-18s", analysis.HexBytes(in.Raw))),
			offStyle.Render(fmt.Sprintf("%-6s", analysis.ASCIIColumn(in.Raw))),
			colorize.ColorizeLine(in.Text))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// listingRows maps each label offset to its row in renderListing output.
func listingRows(code disasm.Stream) map[int]int {
	rows := make(map[int]int)
	row := 1 // header
	for _, in := range code {
		if in.Label {
			rows[in.Offset] = row
			row++
		}
		row++
	}
	return rows
}

func (m *model) updateLabelsList() {
	rows := listingRows(m.result.Listing)
	items := make([]list.Item, 0, len(m.result.Labels))
	for _, in := range m.result.Listing {
		if !in.Label {
			continue
		}
		items = append(items, labelItem{offset: in.Offset, line: in.Text, row: rows[in.Offset]})
	}
	m.labelsList.SetItems(items)
	m.labelsList.Title = fmt.Sprintf("Labels (%d total)", len(items))
}
