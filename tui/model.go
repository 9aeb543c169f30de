// Package tui implements the interactive browse UI. It wires the search
// debouncer, the paginated query caches and the view coordinator into a
// bubbletea program: user input drives coordinator transitions, live query
// keys are fetched through the caches, and cached state is re-rendered
// after every fetch completes.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/archlens/archlens"
	"github.com/archlens/archlens/cache"
	"github.com/archlens/archlens/debounce"
	"github.com/archlens/archlens/view"
)

// visibleRows is how many list rows are rendered at once.
const visibleRows = 12

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	badgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	commandStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	confidenceHi  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	confidenceMed = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	confidenceLow = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

// settledMsg delivers a debounce-settled search term into the update loop.
type settledMsg string

// refreshMsg reports that a cache fetch for a key finished; the model
// re-renders from the cache's current state.
type refreshMsg struct {
	key archlens.QueryKey
}

// diagDoneMsg reports that a diagnostic submission finished.
type diagDoneMsg struct{}

// Model is the bubbletea model for the browse UI.
type Model struct {
	cfg         archlens.Config
	catalog     archlens.CatalogService
	coordinator *view.Coordinator
	categories  *cache.Cache[archlens.Category]
	packages    *cache.Cache[archlens.Package]
	diagnostic  *cache.Diagnostic
	debouncer   *debounce.Debouncer
	settled     chan string

	searchInput  textinput.Model
	problemInput textinput.Model
	spin         spinner.Model

	cursor int
	offset int
	width  int
	quit   bool
}

// Option configures a Model.
type Option func(*Model)

// WithStore attaches a persistent page store to the model's caches.
func WithStore(store archlens.PageStore) Option {
	return func(m *Model) {
		m.categories = cache.New(m.cfg, cache.CategoriesFetch(m.catalog), cache.WithStore[archlens.Category](store))
		m.packages = cache.New(m.cfg, cache.PackagesFetch(m.catalog, m.cfg.PageSize), cache.WithStore[archlens.Package](store))
	}
}

// NewModel creates the browse model over the given services.
func NewModel(cfg archlens.Config, catalog archlens.CatalogService, diagnostic archlens.DiagnosticService, opts ...Option) *Model {
	search := textinput.New()
	search.Placeholder = "Search packages..."
	search.Prompt = "/ "
	search.CharLimit = 120

	problem := textinput.New()
	problem.Placeholder = "e.g., My bluetooth headphones won't connect"
	problem.Prompt = "> "
	problem.CharLimit = 300

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &Model{
		cfg:          cfg,
		catalog:      catalog,
		coordinator:  view.NewCoordinator(),
		diagnostic:   cache.NewDiagnostic(diagnostic),
		settled:      make(chan string, 1),
		searchInput:  search,
		problemInput: problem,
		spin:         spin,
	}
	m.categories = cache.New(cfg, cache.CategoriesFetch(catalog))
	m.packages = cache.New(cfg, cache.PackagesFetch(catalog, cfg.PageSize))
	m.debouncer = debounce.New(cfg.SearchDebounce, func(term string) {
		m.settled <- term
	})
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Close tears down the model's debouncer. No emission happens after Close.
func (m *Model) Close() {
	m.debouncer.Stop()
}

// Init starts the spinner, arms the settle listener and fetches the
// initial categories view.
func (m *Model) Init() tea.Cmd {
	cmds := append([]tea.Cmd{m.spin.Tick, m.waitSettled()}, m.ensureLive()...)
	return tea.Batch(cmds...)
}

// waitSettled delivers the next debounce emission as a message.
func (m *Model) waitSettled() tea.Cmd {
	return func() tea.Msg {
		return settledMsg(<-m.settled)
	}
}

// ensureLive returns fetch commands for every live query key.
func (m *Model) ensureLive() []tea.Cmd {
	var cmds []tea.Cmd
	for _, key := range m.coordinator.LiveKeys() {
		key := key
		if key.Op == archlens.OpCategories {
			cmds = append(cmds, func() tea.Msg {
				_ = m.categories.Ensure(context.Background(), key)
				return refreshMsg{key: key}
			})
			continue
		}
		cmds = append(cmds, func() tea.Msg {
			_ = m.packages.Ensure(context.Background(), key)
			return refreshMsg{key: key}
		})
	}
	return cmds
}

// fetchNext appends the next page for the active package stream.
func (m *Model) fetchNext(key archlens.QueryKey) tea.Cmd {
	return func() tea.Msg {
		_ = m.packages.FetchNext(context.Background(), key)
		return refreshMsg{key: key}
	}
}

// submit runs the diagnostic submission.
func (m *Model) submit(problem string) tea.Cmd {
	return func() tea.Msg {
		_ = m.diagnostic.Submit(context.Background(), problem)
		return diagDoneMsg{}
	}
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case settledMsg:
		m.coordinator.SettleSearch(string(msg))
		cmds := append(m.ensureLive(), m.waitSettled())
		return m, tea.Batch(cmds...)

	case refreshMsg:
		// Results for keys that are no longer live were still written
		// into the cache; nothing to surface here.
		return m, nil

	case diagDoneMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quit = true
		return m, tea.Quit
	}

	if m.coordinator.State() == view.Diagnostic {
		return m.handleDiagnosticKey(msg)
	}
	if m.searchInput.Focused() {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "q":
		m.quit = true
		return m, tea.Quit
	case "/":
		m.searchInput.Focus()
		return m, textinput.Blink
	case "d":
		m.coordinator.OpenDiagnostic()
		m.problemInput.Focus()
		return m, textinput.Blink
	case "esc":
		m.coordinator.GoBack()
		m.resetCursor()
		return m, tea.Batch(m.ensureLive()...)
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	case "enter":
		return m.selectCurrent()
	case "m":
		return m.loadMore()
	case "r":
		for _, key := range m.coordinator.LiveKeys() {
			if key.Op == archlens.OpCategories {
				m.categories.Invalidate(context.Background(), key)
			} else {
				m.packages.Invalidate(context.Background(), key)
			}
		}
		return m, tea.Batch(m.ensureLive()...)
	}
	return m, nil
}

// handleSearchKey routes keystrokes to the search input and drives the
// debouncer. The request itself is gated on the debounce emission.
func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.debouncer.Cancel()
		m.coordinator.ChangeSearchText("")
		m.resetCursor()
		return m, tea.Batch(m.ensureLive()...)
	case "enter":
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	text := m.searchInput.Value()
	m.coordinator.ChangeSearchText(text)
	if text == "" {
		m.debouncer.Cancel()
	} else {
		m.debouncer.Set(text)
	}
	m.resetCursor()
	return m, cmd
}

func (m *Model) handleDiagnosticKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.problemInput.Blur()
		m.coordinator.CloseDiagnostic()
		return m, tea.Batch(m.ensureLive()...)
	case "enter":
		// The submit trigger is disabled while a submission is pending.
		if m.diagnostic.Pending() {
			return m, nil
		}
		problem := strings.TrimSpace(m.problemInput.Value())
		if problem == "" {
			return m, nil
		}
		return m, m.submit(problem)
	}

	var cmd tea.Cmd
	m.problemInput, cmd = m.problemInput.Update(msg)
	return m, cmd
}

func (m *Model) selectCurrent() (tea.Model, tea.Cmd) {
	if m.coordinator.State() != view.Categories {
		return m, nil
	}
	state := m.categories.State(archlens.CategoriesKey())
	if m.cursor >= len(state.Items) {
		return m, nil
	}
	m.coordinator.SelectCategory(state.Items[m.cursor].Name)
	m.searchInput.SetValue("")
	m.debouncer.Cancel()
	m.resetCursor()
	return m, tea.Batch(m.ensureLive()...)
}

func (m *Model) loadMore() (tea.Model, tea.Cmd) {
	for _, key := range m.coordinator.LiveKeys() {
		if key.Op == archlens.OpCategories {
			continue
		}
		if m.packages.State(key).HasNext {
			return m, m.fetchNext(key)
		}
	}
	return m, nil
}

func (m *Model) resetCursor() {
	m.cursor = 0
	m.offset = 0
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if max := m.listLen() - 1; m.cursor > max && max >= 0 {
		m.cursor = max
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visibleRows {
		m.offset = m.cursor - visibleRows + 1
	}
}

func (m *Model) listLen() int {
	switch m.coordinator.State() {
	case view.Categories:
		return len(m.categories.State(archlens.CategoriesKey()).Items)
	case view.PackagesForCategory:
		return len(m.packages.State(archlens.PackagesKey(m.coordinator.Category())).Items)
	case view.SearchResults:
		if term := m.coordinator.SettledSearch(); term != "" {
			return len(m.packages.State(archlens.SearchKey(term)).Items)
		}
	}
	return 0
}

// View renders the active view from cached state.
func (m *Model) View() string {
	if m.quit {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ArchLens"))
	b.WriteString(dimStyle.Render("  demystifying your Arch Linux system"))
	b.WriteString("\n\n")

	if m.coordinator.State() != view.Diagnostic {
		b.WriteString(m.searchInput.View())
		b.WriteString("\n\n")
	}

	switch m.coordinator.State() {
	case view.Categories:
		b.WriteString(m.viewCategories())
	case view.PackagesForCategory:
		b.WriteString(m.viewPackages(archlens.PackagesKey(m.coordinator.Category()), m.coordinator.Category()))
	case view.SearchResults:
		b.WriteString(m.viewSearch())
	case view.Diagnostic:
		b.WriteString(m.viewDiagnostic())
	}

	b.WriteString("\n")
	b.WriteString(m.helpLine())
	return b.String()
}

func (m *Model) viewCategories() string {
	state := m.categories.State(archlens.CategoriesKey())

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Package Categories (%d groups)", len(state.Items))))
	b.WriteString("\n")

	if state.Loading {
		return b.String() + m.spin.View() + " Loading categories...\n"
	}
	if state.Err != nil && len(state.Items) == 0 {
		return b.String() + errorStyle.Render("error: "+archlens.ErrorMessage(state.Err)) + "\n"
	}

	end := min(m.offset+visibleRows, len(state.Items))
	for i := m.offset; i < end; i++ {
		category := state.Items[i]
		line := fmt.Sprintf("%s (%d packages)", category.Name, category.Count)
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) viewPackages(key archlens.QueryKey, title string) string {
	state := m.packages.State(key)

	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")

	if state.Loading {
		return b.String() + m.spin.View() + " Loading packages...\n"
	}
	if state.Err != nil && len(state.Items) == 0 {
		return b.String() + errorStyle.Render("error: "+archlens.ErrorMessage(state.Err)) + "\n"
	}

	end := min(m.offset+visibleRows, len(state.Items))
	for i := m.offset; i < end; i++ {
		pkg := state.Items[i]
		name := pkg.Name
		if pkg.Category != "" {
			name += " " + badgeStyle.Render("["+pkg.Category+"]")
		}
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> ") + name)
		} else {
			b.WriteString("  " + name)
		}
		b.WriteString(dimStyle.Render("  " + truncate(pkg.Description, 60)))
		b.WriteString("\n")
	}

	// A failed fetch-more leaves the list intact with a retryable error.
	if state.Err != nil && len(state.Items) > 0 {
		b.WriteString(errorStyle.Render("load more failed: " + archlens.ErrorMessage(state.Err)))
		b.WriteString("\n")
	}
	switch {
	case state.FetchingMore:
		b.WriteString(m.spin.View() + " Loading more...\n")
	case state.HasNext:
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d loaded · press m for more", len(state.Items))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) viewSearch() string {
	term := m.coordinator.SettledSearch()
	if term == "" {
		// Debounce has not settled yet; show the raw text as the label.
		return headerStyle.Render(fmt.Sprintf("Search Results for %q", m.coordinator.SearchText())) +
			"\n" + m.spin.View() + " Waiting for input to settle...\n"
	}

	body := m.viewPackages(archlens.SearchKey(term), fmt.Sprintf("Search Results for %q", term))
	state := m.packages.State(archlens.SearchKey(term))
	if !state.Loading && state.Err == nil && len(state.Items) == 0 {
		body += dimStyle.Render("No packages found matching your search.") + "\n"
	}
	return body
}

func (m *Model) viewDiagnostic() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("System Diagnostic Tool"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Describe your problem in plain English."))
	b.WriteString("\n\n")
	b.WriteString(m.problemInput.View())
	b.WriteString("\n\n")

	if m.diagnostic.Pending() {
		b.WriteString(m.spin.View() + " Analyzing...\n")
		return b.String()
	}
	if err := m.diagnostic.Err(); err != nil {
		b.WriteString(errorStyle.Render("Analysis failed: " + archlens.ErrorMessage(err)))
		b.WriteString("\n")
		return b.String()
	}

	result := m.diagnostic.Result()
	if result == nil {
		for _, q := range archlens.ExampleProblems() {
			b.WriteString(dimStyle.Render("• " + q))
			b.WriteString("\n")
		}
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Found %d relevant packages", result.TotalFound))
	if len(result.MatchedKeywords) > 0 {
		b.WriteString(dimStyle.Render(" · matched: " + strings.Join(result.MatchedKeywords, ", ")))
	}
	b.WriteString("\n\n")

	if len(result.Suggestions) == 0 {
		msg := result.Message
		if msg == "" {
			msg = "No specific packages identified. Try different keywords."
		}
		b.WriteString(dimStyle.Render(msg))
		b.WriteString("\n")
		return b.String()
	}

	for _, s := range result.Suggestions {
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			cursorStyle.Render(s.Package.Name),
			badgeStyle.Render("["+s.Package.Category+"]"),
			confidenceStyle(s.Confidence).Render(fmt.Sprintf("%d%%", s.Confidence)),
		))
		b.WriteString(dimStyle.Render("  " + s.Reason))
		b.WriteString("\n")
		b.WriteString(commandStyle.Render("  $ " + s.Command))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) helpLine() string {
	switch m.coordinator.State() {
	case view.Diagnostic:
		return dimStyle.Render("enter analyze · esc back · ctrl+c quit")
	case view.Categories:
		return dimStyle.Render("↑/↓ navigate · enter open · / search · d diagnose · q quit")
	default:
		return dimStyle.Render("↑/↓ navigate · m load more · esc back · d diagnose · q quit")
	}
}

func confidenceStyle(confidence int) lipgloss.Style {
	switch archlens.ConfidenceBucket(confidence) {
	case archlens.ConfidenceHigh:
		return confidenceHi
	case archlens.ConfidenceMedium:
		return confidenceMed
	default:
		return confidenceLow
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
