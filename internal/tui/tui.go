// Package tui is the interactive port list.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/productdevbook/port-manager/internal/config"
	"github.com/productdevbook/port-manager/internal/scanner"
)

// PortService is the subset of scanner.Manager the UI needs
type PortService interface {
	ScanPorts(ctx context.Context) (scanner.ScanResult, error)
	KillPort(ctx context.Context, port uint16) (bool, error)
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
)

const helpText = "↑/↓ move • / filter • d dev only • f favorite • r rescan • x kill • q quit"

type scanDoneMsg struct {
	result scanner.ScanResult
	err    error
}

type killDoneMsg struct {
	port   scanner.Port
	killed bool
	err    error
}

type model struct {
	ctx   context.Context
	svc   PortService
	store config.Store
	cfg   *config.Config

	result   scanner.ScanResult
	visible  []scanner.Port
	scanning bool
	err      error
	status   string

	devOnly   bool
	filtering bool
	confirm   *scanner.Port

	table   table.Model
	filter  textinput.Model
	spinner spinner.Model
}

func newModel(ctx context.Context, svc PortService, store config.Store, cfg *config.Config) model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "★", Width: 1},
			{Title: "PORT", Width: 6},
			{Title: "PID", Width: 7},
			{Title: "PROCESS", Width: 22},
			{Title: "ADDRESS", Width: 24},
			{Title: "CATEGORY", Width: 16},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	t.SetStyles(styles)

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "port, process or address"

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		ctx:      ctx,
		svc:      svc,
		store:    store,
		cfg:      cfg,
		devOnly:  cfg.ShowOnlyDevelopmentPorts,
		scanning: true,
		table:    t,
		filter:   ti,
		spinner:  sp,
	}
}

// Run starts the interactive UI and blocks until the user quits
func Run(ctx context.Context, svc PortService, store config.Store, cfg *config.Config) error {
	p := tea.NewProgram(newModel(ctx, svc, store, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.scan())
}

func (m model) scan() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		result, err := svc.ScanPorts(ctx)
		return scanDoneMsg{result: result, err: err}
	}
}

func (m model) kill(p scanner.Port) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		killed, err := svc.KillPort(ctx, p.Port)
		return killDoneMsg{port: p, killed: killed, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-6, 3))
		return m, nil

	case scanDoneMsg:
		m.scanning = false
		m.err = msg.err
		if msg.err == nil {
			m.result = msg.result
			m.status = fmt.Sprintf("%d ports, %d development", msg.result.TotalCount, msg.result.DevelopmentCount)
		}
		m.refreshRows()
		return m, nil

	case killDoneMsg:
		switch {
		case msg.err != nil:
			m.status = fmt.Sprintf("kill %d failed: %v", msg.port.Port, msg.err)
			return m, nil
		case !msg.killed:
			m.status = fmt.Sprintf("no process killed on port %d", msg.port.Port)
			return m, nil
		}
		m.status = fmt.Sprintf("killed %s on port %d", processLabel(msg.port), msg.port.Port)
		m.scanning = true
		return m, m.scan()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.confirm != nil {
		target := *m.confirm
		m.confirm = nil
		if msg.String() == "y" {
			m.status = fmt.Sprintf("killing port %d...", target.Port)
			return m, m.kill(target)
		}
		m.status = "kill cancelled"
		return m, nil
	}

	if m.filtering {
		switch msg.String() {
		case "esc":
			m.filtering = false
			m.filter.Blur()
			m.filter.SetValue("")
			m.refreshRows()
			return m, nil
		case "enter":
			m.filtering = false
			m.filter.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.refreshRows()
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.filtering = true
		return m, m.filter.Focus()
	case "esc":
		m.filter.SetValue("")
		m.refreshRows()
		return m, nil
	case "r":
		m.scanning = true
		return m, m.scan()
	case "d":
		m.devOnly = !m.devOnly
		m.cfg.ShowOnlyDevelopmentPorts = m.devOnly
		if err := m.store.Save(m.cfg); err != nil {
			m.status = fmt.Sprintf("saving settings: %v", err)
		}
		m.refreshRows()
		return m, nil
	case "f":
		if p, ok := m.selected(); ok {
			on := m.cfg.ToggleFavorite(p.Port)
			if err := m.store.Save(m.cfg); err != nil {
				m.status = fmt.Sprintf("saving favorites: %v", err)
			} else if on {
				m.status = fmt.Sprintf("port %d added to favorites", p.Port)
			} else {
				m.status = fmt.Sprintf("port %d removed from favorites", p.Port)
			}
			m.refreshRows()
		}
		return m, nil
	case "x":
		if p, ok := m.selected(); ok {
			m.confirm = &p
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) selected() (scanner.Port, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return scanner.Port{}, false
	}
	return m.visible[i], true
}

// portSource feeds ports to the fuzzy matcher
type portSource []scanner.Port

func (s portSource) String(i int) string {
	p := s[i]
	return fmt.Sprintf("%d %s %s", p.Port, p.Process, p.Address)
}

func (s portSource) Len() int {
	return len(s)
}

// filterPorts applies the dev-only toggle and the fuzzy query, favorites
// first, then ascending by port
func filterPorts(ports []scanner.Port, devOnly bool, query string, cfg *config.Config) []scanner.Port {
	var candidates []scanner.Port
	for _, p := range ports {
		if devOnly && !p.IsDevelopment {
			continue
		}
		candidates = append(candidates, p)
	}

	if query = strings.TrimSpace(query); query != "" {
		matches := fuzzy.FindFrom(query, portSource(candidates))
		idx := make([]int, 0, len(matches))
		for _, match := range matches {
			idx = append(idx, match.Index)
		}
		sort.Ints(idx)

		matched := make([]scanner.Port, 0, len(idx))
		for _, i := range idx {
			matched = append(matched, candidates[i])
		}
		candidates = matched
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return cfg.IsFavorite(candidates[i].Port) && !cfg.IsFavorite(candidates[j].Port)
	})
	return candidates
}

func (m *model) refreshRows() {
	m.visible = filterPorts(m.result.Ports, m.devOnly, m.filter.Value(), m.cfg)

	rows := make([]table.Row, 0, len(m.visible))
	for _, p := range m.visible {
		fav := ""
		if m.cfg.IsFavorite(p.Port) {
			fav = "★"
		}
		pid := "-"
		if p.PID > 0 {
			pid = strconv.Itoa(p.PID)
		}
		rows = append(rows, table.Row{
			fav,
			strconv.Itoa(int(p.Port)),
			pid,
			processLabel(p),
			p.Address,
			scanner.Category(p.Port),
		})
	}
	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func processLabel(p scanner.Port) string {
	if p.Process == "" {
		return scanner.UnknownProcess
	}
	return p.Process
}

func (m model) View() string {
	var b strings.Builder

	title := "Listening ports"
	if m.devOnly {
		title += " (development only)"
	}
	b.WriteString(titleStyle.Render(title))
	if m.scanning {
		b.WriteString(" " + m.spinner.View())
	}
	b.WriteString("\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View() + "\n")
	}

	b.WriteString(m.table.View() + "\n")

	switch {
	case m.confirm != nil:
		b.WriteString(warnStyle.Render(fmt.Sprintf("Kill %s (PID %d) on port %d? [y/N]",
			processLabel(*m.confirm), m.confirm.PID, m.confirm.Port)))
	case m.err != nil:
		b.WriteString(errorStyle.Render("scan failed: " + m.err.Error()))
	default:
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n" + statusStyle.Render(helpText) + "\n")

	return b.String()
}
