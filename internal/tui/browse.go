// Package tui is the interactive browser: a Home tab showing the image
// timeline and a Search tab for keyword search.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/blacktop/skyframe/internal/render"
	"github.com/blacktop/skyframe/internal/skyframe"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Tab identifies a screen.
type Tab int

const (
	TabHome Tab = iota
	TabSearch
)

func (t Tab) String() string {
	if t == TabSearch {
		return "Search"
	}
	return "Home"
}

// FetchTimelineFn loads the image timeline.
type FetchTimelineFn func(ctx context.Context) ([]skyframe.Post, error)

// SearchFn runs an image search.
type SearchFn func(ctx context.Context, query string) ([]skyframe.Post, error)

// resultMsg carries a finished fetch. seq identifies the request so that a
// result superseded by a newer request is dropped.
type resultMsg struct {
	tab   Tab
	seq   int
	posts []skyframe.Post
	err   error
}

// cancelHolder shares the program context across model copies.
type cancelHolder struct {
	ctx    context.Context
	cancel context.CancelFunc
}

type screen struct {
	posts   []skyframe.Post
	err     error
	loading bool
	seq     int
	offset  int
}

// linesPerCard is the rendered height of one post, separator included.
const linesPerCard = 5

// Model is the bubbletea model for the browser.
type Model struct {
	source   string
	tab      Tab
	home     screen
	search   screen
	input    textinput.Model
	spinner  spinner.Model
	timeline FetchTimelineFn
	find     SearchFn
	ctx      *cancelHolder
	width    int
	height   int
	quitting bool
}

var (
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1DA1F2")).Underline(true)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	brandStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	authorStyle      = lipgloss.NewStyle().Bold(true)
	handleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	textStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	imageStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	infoStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// New creates the browser. The Home tab starts loading as soon as the
// program runs.
func New(source string, timeline FetchTimelineFn, search SearchFn) Model {
	input := textinput.New()
	input.Placeholder = "Search " + render.SourceTitle(source) + "..."
	input.Width = 50

	s := spinner.New()
	s.Spinner = spinner.Dot

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		source:   source,
		tab:      TabHome,
		home:     screen{loading: true, seq: 1},
		input:    input,
		spinner:  s,
		timeline: timeline,
		find:     search,
		ctx:      &cancelHolder{ctx: ctx, cancel: cancel},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchTimeline(m.home.seq), m.spinner.Tick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if msg.Width > 10 {
			m.input.Width = msg.Width - 10
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case resultMsg:
		s := m.screen(msg.tab)
		if msg.seq != s.seq {
			return m, nil
		}
		s.loading = false
		s.err = msg.err
		s.offset = 0
		if msg.err == nil {
			s.posts = msg.posts
		}
		return m, nil

	case spinner.TickMsg:
		if !m.home.loading && !m.search.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.tab == TabSearch {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEscape:
		return m.quit()
	case tea.KeyTab, tea.KeyShiftTab:
		return m.switchTab()
	case tea.KeyUp:
		m.scroll(-1)
		return m, nil
	case tea.KeyDown:
		m.scroll(1)
		return m, nil
	}

	if m.tab == TabSearch {
		if msg.Type == tea.KeyEnter {
			return m.submitSearch()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "r":
		return m.refreshHome()
	case "k":
		m.scroll(-1)
	case "j":
		m.scroll(1)
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.ctx.cancel()
	return m, tea.Quit
}

func (m Model) switchTab() (tea.Model, tea.Cmd) {
	if m.tab == TabHome {
		m.tab = TabSearch
		return m, m.input.Focus()
	}
	m.tab = TabHome
	m.input.Blur()
	return m, nil
}

func (m Model) refreshHome() (tea.Model, tea.Cmd) {
	m.home.seq++
	m.home.loading = true
	m.home.err = nil
	return m, tea.Batch(m.fetchTimeline(m.home.seq), m.spinner.Tick)
}

// submitSearch starts a search. Blank input is ignored without a request.
func (m Model) submitSearch() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return m, nil
	}
	m.search.seq++
	m.search.loading = true
	m.search.err = nil
	return m, tea.Batch(m.runSearch(m.search.seq, query), m.spinner.Tick)
}

func (m Model) fetchTimeline(seq int) tea.Cmd {
	fetch, ctx := m.timeline, m.ctx.ctx
	return func() tea.Msg {
		posts, err := fetch(ctx)
		return resultMsg{tab: TabHome, seq: seq, posts: posts, err: err}
	}
}

func (m Model) runSearch(seq int, query string) tea.Cmd {
	find, ctx := m.find, m.ctx.ctx
	return func() tea.Msg {
		posts, err := find(ctx, query)
		return resultMsg{tab: TabSearch, seq: seq, posts: posts, err: err}
	}
}

func (m *Model) screen(tab Tab) *screen {
	if tab == TabSearch {
		return &m.search
	}
	return &m.home
}

func (m *Model) scroll(delta int) {
	s := m.screen(m.tab)
	s.offset += delta
	if s.offset > len(s.posts)-1 {
		s.offset = len(s.posts) - 1
	}
	if s.offset < 0 {
		s.offset = 0
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(brandStyle.Render("SkyFrame") + "  " + m.tabBar() + "\n\n")

	if m.tab == TabSearch {
		b.WriteString(m.input.View() + "\n\n")
	}

	s := m.screen(m.tab)
	switch {
	case s.err != nil:
		b.WriteString(errorStyle.Render("Error: "+s.err.Error()) + "\n")
	case s.loading:
		b.WriteString(m.spinner.View() + " Loading...\n")
	case len(s.posts) == 0:
		b.WriteString(infoStyle.Render(m.emptyMessage()) + "\n")
	default:
		b.WriteString(m.list(s))
	}

	b.WriteString("\n" + helpStyle.Render(m.help()))
	return b.String()
}

func (m Model) tabBar() string {
	tabs := make([]string, 0, 2)
	for _, t := range []Tab{TabHome, TabSearch} {
		if t == m.tab {
			tabs = append(tabs, activeTabStyle.Render(t.String()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(t.String()))
		}
	}
	return strings.Join(tabs, "  ")
}

func (m Model) emptyMessage() string {
	if m.tab == TabSearch {
		return render.SearchPrompt(m.source)
	}
	return render.EmptyTimelineMessage
}

func (m Model) list(s *screen) string {
	visible := len(s.posts)
	if m.height > 0 {
		// header, help and (on Search) the input take about 8 lines
		visible = max(1, (m.height-8)/linesPerCard)
	}
	end := min(len(s.posts), s.offset+visible)

	var b strings.Builder
	for _, post := range s.posts[s.offset:end] {
		b.WriteString(card(post))
		b.WriteString("\n")
	}
	if len(s.posts) > visible {
		b.WriteString(infoStyle.Render(fmt.Sprintf("%d-%d of %d", s.offset+1, end, len(s.posts))) + "\n")
	}
	return b.String()
}

func card(post skyframe.Post) string {
	var b strings.Builder
	b.WriteString(authorStyle.Render(post.Author.Name()))
	if post.Author.DisplayName != "" {
		b.WriteString(" " + handleStyle.Render(render.Handle(post.Author)))
	}
	b.WriteByte('\n')

	preview := render.Preview(post.Text, 2)
	lines := strings.Split(preview, "\n")
	for len(lines) < 2 {
		lines = append(lines, "")
	}
	for _, line := range lines {
		b.WriteString("  " + textStyle.Render(line) + "\n")
	}

	if len(post.Images) > 0 {
		img := post.Images[0]
		b.WriteString("  " + imageStyle.Render(fmt.Sprintf("[img %.2f] %s", img.AspectRatio(), img.Thumb)) + "\n")
	}
	return b.String()
}

func (m Model) help() string {
	if m.tab == TabSearch {
		return "tab home • enter search • ↑/↓ scroll • esc quit"
	}
	return "tab search • r refresh • ↑/↓ scroll • q quit"
}
