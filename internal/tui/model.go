package tui

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fathomdive/fathom/internal/auth"
	"github.com/fathomdive/fathom/internal/config"
	"github.com/fathomdive/fathom/internal/database"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ────────────────────────────────────────────────────────────
// Views
// ────────────────────────────────────────────────────────────

// View represents which screen currently has keyboard focus.
type View int

const (
	ViewSites View = iota
	ViewPlanner
	ViewLogbook
	ViewFeedback
)

const viewCount = 4

// ────────────────────────────────────────────────────────────
// Model
// ────────────────────────────────────────────────────────────

// Model is the root BubbleTea model for the Fathom TUI.
// State is organized by concern; rendering is delegated
// to component functions in separate files.
type Model struct {
	store   database.Store
	cfg     *config.Config
	session *auth.Session // nil when not logged in

	// Data
	sites    []*database.Site
	dives    []*database.Dive
	stats    *database.LogStats
	feedback []*database.Feedback

	// UI state
	activeView   View
	selectedSite int
	selectedDive int
	kindFilter   string
	levelFilter  string
	minRating    float64
	searchMode   bool
	searchInput  textinput.Model
	fbTable      table.Model
	planner      PlannerState
	width        int
	height       int

	// Status
	statusMsg string
	err       error
}

// NewModel creates a new TUI model backed by the given store.
// The session may be nil; feedback moderation stays read-only then.
func NewModel(store database.Store, cfg *config.Config, session *auth.Session) Model {
	ti := textinput.New()
	ti.Placeholder = "site, region, or keyword"
	ti.Prompt = "/ "
	ti.CharLimit = 80

	fbt := table.New(
		table.WithColumns(feedbackColumns(80)),
		table.WithFocused(false),
		table.WithHeight(10),
	)
	fbt.SetStyles(feedbackTableStyles())

	return Model{
		store:       store,
		cfg:         cfg,
		session:     session,
		searchInput: ti,
		fbTable:     fbt,
		planner:     NewPlannerState(cfg.Planner),
		statusMsg:   "Loading sites...",
	}
}

// ────────────────────────────────────────────────────────────
// Messages
// ────────────────────────────────────────────────────────────

type sitesLoadedMsg []*database.Site
type logbookLoadedMsg struct {
	dives []*database.Dive
	stats *database.LogStats
}
type feedbackLoadedMsg []*database.Feedback
type feedbackResolvedMsg struct{ status string }
type divePlannedMsg struct {
	label string
	depth float64
}
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// ────────────────────────────────────────────────────────────
// Init
// ────────────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadSites(""), m.loadLogbook(), m.loadFeedback())
}

func (m Model) loadSites(query string) tea.Cmd {
	filter := database.SiteFilter{Limit: 100}
	if m.kindFilter != "" {
		kind := m.kindFilter
		filter.Kind = &kind
	}
	if m.levelFilter != "" {
		level := m.levelFilter
		filter.Level = &level
	}
	if m.minRating > 0 {
		min := m.minRating
		filter.MinRating = &min
	}
	return func() tea.Msg {
		if query != "" {
			sites, err := m.store.SearchSites(query, 100)
			if err != nil {
				return errMsg{err}
			}
			return sitesLoadedMsg(sites)
		}
		sites, err := m.store.QuerySites(filter)
		if err != nil {
			return errMsg{err}
		}
		return sitesLoadedMsg(sites)
	}
}

func (m Model) loadLogbook() tea.Cmd {
	diver := m.cfg.Diver
	return func() tea.Msg {
		dives, err := m.store.QueryDives(database.DiveFilter{Diver: &diver, Limit: 200})
		if err != nil {
			return errMsg{err}
		}
		stats, err := m.store.GetLogStats(diver)
		if err != nil {
			return errMsg{err}
		}
		return logbookLoadedMsg{dives: dives, stats: stats}
	}
}

func (m Model) loadFeedback() tea.Cmd {
	return func() tea.Msg {
		records, err := m.store.QueryFeedback(database.FeedbackFilter{Limit: 200})
		if err != nil {
			return errMsg{err}
		}
		return feedbackLoadedMsg(records)
	}
}

func (m Model) logPlannedDive() tea.Cmd {
	if m.planner.Err != nil {
		return nil
	}
	dive := &database.Dive{
		DiveID:      uuid.NewString(),
		Diver:       m.cfg.Diver,
		DiveTime:    time.Now().UnixNano(),
		MaxDepth:    m.planner.Depth,
		DurationMin: m.planner.Duration,
		FO2:         m.planner.Mix.FO2,
		FHe:         m.planner.Mix.FHe,
		MixLabel:    m.planner.Mix.Label(),
		Rating:      3,
	}
	if m.selectedSite < len(m.sites) {
		siteID := m.sites[m.selectedSite].SiteID
		dive.SiteID = &siteID
	}
	return func() tea.Msg {
		if err := m.store.InsertDive(dive); err != nil {
			return errMsg{err}
		}
		return divePlannedMsg{label: dive.MixLabel, depth: dive.MaxDepth}
	}
}

func (m Model) resolveFeedback(feedbackID, status string) tea.Cmd {
	return func() tea.Msg {
		if err := m.store.ResolveFeedback(feedbackID, status); err != nil {
			return errMsg{err}
		}
		return feedbackResolvedMsg{status: status}
	}
}

// ────────────────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.fbTable.SetColumns(feedbackColumns(m.width - 6))
		m.fbTable.SetHeight(maxInt(m.height-8, 4))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case sitesLoadedMsg:
		m.sites = []*database.Site(msg)
		m.selectedSite = clamp(m.selectedSite, 0, maxInt(len(m.sites)-1, 0))
		if len(m.sites) > 0 {
			m.statusMsg = fmt.Sprintf("%d sites", len(m.sites))
		} else {
			m.statusMsg = "No sites match"
		}
		return m, nil

	case logbookLoadedMsg:
		m.dives = msg.dives
		m.stats = msg.stats
		m.selectedDive = clamp(m.selectedDive, 0, maxInt(len(m.dives)-1, 0))
		return m, nil

	case feedbackLoadedMsg:
		m.feedback = []*database.Feedback(msg)
		m.fbTable.SetRows(feedbackRows(m.feedback))
		return m, nil

	case feedbackResolvedMsg:
		m.statusMsg = fmt.Sprintf("Feedback marked %s", msg.status)
		return m, m.loadFeedback()

	case divePlannedMsg:
		m.statusMsg = fmt.Sprintf("Logged %s at %.0fm", msg.label, msg.depth)
		return m, m.loadLogbook()

	case errMsg:
		m.err = msg.err
		m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		return m, nil
	}

	return m, nil
}

// handleKey routes keyboard input based on current mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// ── Search mode captures nearly everything ──

	if m.searchMode {
		switch key {
		case "enter":
			m.searchMode = false
			m.searchInput.Blur()
			return m, m.loadSites(m.searchInput.Value())
		case "esc":
			m.searchMode = false
			m.searchInput.Blur()
			m.searchInput.SetValue("")
			return m, m.loadSites("")
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}
	}

	// ── Global ──

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		m.setView(View((int(m.activeView) + 1) % viewCount))
		return m, nil

	case "shift+tab":
		m.setView(View((int(m.activeView) + viewCount - 1) % viewCount))
		return m, nil

	case "1":
		m.setView(ViewSites)
		return m, nil
	case "2":
		m.setView(ViewPlanner)
		return m, nil
	case "3":
		m.setView(ViewLogbook)
		return m, nil
	case "4":
		m.setView(ViewFeedback)
		return m, nil

	case "/":
		if m.activeView == ViewSites {
			m.searchMode = true
			m.searchInput.Focus()
		}
		return m, nil
	}

	// ── View-specific ──

	switch m.activeView {
	case ViewSites:
		switch key {
		case "j", "down":
			if m.selectedSite < len(m.sites)-1 {
				m.selectedSite++
			}
		case "k", "up":
			if m.selectedSite > 0 {
				m.selectedSite--
			}
		case "enter":
			// Plan a dive at the selected site's maximum depth.
			if m.selectedSite < len(m.sites) {
				m.planner.SetDepth(m.sites[m.selectedSite].MaxDepth)
				m.setView(ViewPlanner)
				m.statusMsg = fmt.Sprintf("Planning %s", m.sites[m.selectedSite].Name)
			}
		case "f":
			m.kindFilter = cycleOption(m.kindFilter, siteKinds)
			return m, m.loadSites(m.searchInput.Value())
		case "g":
			m.levelFilter = cycleOption(m.levelFilter, siteLevels)
			return m, m.loadSites(m.searchInput.Value())
		case "m":
			m.minRating = cycleRating(m.minRating)
			return m, m.loadSites(m.searchInput.Value())
		case "c":
			m.kindFilter, m.levelFilter, m.minRating = "", "", 0
			m.searchInput.SetValue("")
			return m, m.loadSites("")
		}

	case ViewPlanner:
		if key == "enter" {
			return m, m.logPlannedDive()
		}
		m.planner.HandleKey(key)

	case ViewLogbook:
		switch key {
		case "j", "down":
			if m.selectedDive < len(m.dives)-1 {
				m.selectedDive++
			}
		case "k", "up":
			if m.selectedDive > 0 {
				m.selectedDive--
			}
		case "r":
			return m, m.loadLogbook()
		}

	case ViewFeedback:
		switch key {
		case "a":
			if m.canModerate() {
				if id := m.selectedFeedbackID(); id != "" {
					return m, m.resolveFeedback(id, "resolved")
				}
			} else {
				m.statusMsg = "Admin login required to moderate feedback"
			}
		case "x":
			if m.canModerate() {
				if id := m.selectedFeedbackID(); id != "" {
					return m, m.resolveFeedback(id, "dismissed")
				}
			} else {
				m.statusMsg = "Admin login required to moderate feedback"
			}
		default:
			var cmd tea.Cmd
			m.fbTable, cmd = m.fbTable.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

var siteKinds = []string{"reef", "wreck", "cave", "wall", "drift"}
var siteLevels = []string{"beginner", "intermediate", "advanced", "technical"}

// cycleOption advances through options, with "" (no filter) after the last.
func cycleOption(current string, options []string) string {
	for i, opt := range options {
		if opt == current {
			if i == len(options)-1 {
				return ""
			}
			return options[i+1]
		}
	}
	return options[0]
}

// cycleRating steps the minimum-rating filter: off → 3 → 3.5 → 4 → 4.5 → off.
func cycleRating(current float64) float64 {
	switch {
	case current == 0:
		return 3
	case current >= 4.5:
		return 0
	default:
		return current + 0.5
	}
}

// setView switches the active screen, keeping the feedback table's
// focus state in sync so it only consumes keys when visible.
func (m *Model) setView(v View) {
	m.activeView = v
	if v == ViewFeedback {
		m.fbTable.Focus()
	} else {
		m.fbTable.Blur()
	}
}

// canModerate reports whether the current session allows feedback review.
func (m Model) canModerate() bool {
	return m.session != nil && m.session.IsAdmin() && !m.session.Expired()
}

// selectedFeedbackID returns the ID of the highlighted feedback row.
func (m Model) selectedFeedbackID() string {
	row := m.fbTable.SelectedRow()
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

// ────────────────────────────────────────────────────────────
// View
// ────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	header := renderHeader(&m)
	footer := renderFooter(&m)

	bodyHeight := m.height - 2 // header + footer

	var body string
	switch m.activeView {
	case ViewSites:
		body = renderSitePanel(&m, m.width, bodyHeight)
	case ViewPlanner:
		body = renderPlannerPanel(&m, m.width, bodyHeight)
	case ViewLogbook:
		body = renderLogbookPanel(&m, m.width, bodyHeight)
	case ViewFeedback:
		body = renderFeedbackPanel(&m, m.width, bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
