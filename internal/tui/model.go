package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/contractdesk/internal/api"
	"github.com/Veraticus/contractdesk/internal/app"
	"github.com/Veraticus/contractdesk/internal/common"
	"github.com/Veraticus/contractdesk/internal/listview"
	"github.com/Veraticus/contractdesk/internal/model"
	"github.com/Veraticus/contractdesk/internal/monitor"
	"github.com/Veraticus/contractdesk/internal/tui/themes"
)

// Screen is a top-level page of the dashboard.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenDashboard
	ScreenContracts
	ScreenClients
	ScreenSystem
)

// navScreens are the screens reachable from the tab bar.
var navScreens = []Screen{ScreenDashboard, ScreenContracts, ScreenClients, ScreenSystem}

func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "Login"
	case ScreenDashboard:
		return "Dashboard"
	case ScreenContracts:
		return "Contracts"
	case ScreenClients:
		return "Clients"
	case ScreenSystem:
		return "System"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// overlay is whatever currently captures input above the screen.
type overlay int

const (
	overlayNone overlay = iota
	overlaySearch
	overlayForm
	overlayConfirm
	overlayMenu
	overlayAnalysis
	overlayClientDetail
	overlayHelp
)

// Menu actions.
const (
	actionView      = "View"
	actionAnalysis  = "View analysis"
	actionClauses   = "Extract clauses"
	actionEdit      = "Edit"
	actionReanalyze = "Reanalyze"
	actionDelete    = "Delete"
)

var (
	contractActions = []string{actionAnalysis, actionClauses, actionEdit, actionReanalyze, actionDelete}
	clientActions   = []string{actionView, actionEdit, actionDelete}
)

const (
	menuWidth     = 22
	toastDuration = 4 * time.Second
	// tableTop is the screen row of the first table row on list screens.
	tableTop = 6
)

type confirmation struct {
	action tea.Cmd
	prompt string
}

type toast struct {
	text    string
	id      int
	isError bool
}

// Model holds the main TUI state.
type Model struct {
	ctx          context.Context
	app          *app.App
	contracts    *listview.ContractsController
	clients      *listview.ClientsController
	logs         *monitor.LogsController
	health       *monitor.StatusMonitor
	ready        *monitor.StatusMonitor
	notifier     *programNotifier
	contractMenu *listview.Menu
	clientMenu   *listview.Menu
	form         *form
	confirm      *confirmation
	toast        *toast
	analysis     *listview.AnalysisView
	clauses      *listview.ClauseResult
	detail       *listview.ClientDetail
	user         *model.User
	now          func() time.Time
	healthSnap   monitor.Snapshot
	readySnap    monitor.Snapshot
	logsState    monitor.LogsState
	theme        themes.Theme
	keymap       KeyMap
	help         help.Model
	spinner      spinner.Model
	table        table.Model
	search       textinput.Model
	viewport     viewport.Model
	overlay      overlay
	screen       Screen
	menuCursor   int
	toastSeq     int
	inflight     int
	width        int
	height       int
	monitoring   bool
	quitting     bool
}

// newModel creates a new model with the given configuration.
func newModel(cfg Config) Model {
	notifier := &programNotifier{}
	a := cfg.App

	m := Model{
		ctx:          cfg.Context,
		app:          a,
		notifier:     notifier,
		contracts:    a.Contracts(notifier),
		clients:      a.Clients(notifier),
		logs:         a.Logs(),
		health:       a.HealthMonitor(),
		ready:        a.ReadinessMonitor(),
		contractMenu: listview.NewMenu(menuWidth, len(contractActions)+2),
		clientMenu:   listview.NewMenu(menuWidth, len(clientActions)+2),
		now:          cfg.Now,
		theme:        cfg.Theme,
		keymap:       DefaultKeyMap(),
		help:         help.New(),
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		table:        table.New(table.WithFocused(true)),
		search:       textinput.New(),
		viewport:     viewport.New(cfg.Width, cfg.Height),
		width:        cfg.Width,
		height:       cfg.Height,
	}
	m.contracts.SetClock(cfg.Now)
	m.search.Prompt = "/ "
	m.search.Placeholder = "search"
	m.table.SetStyles(tableStyles(cfg.Theme))

	a.Policy.OnRedirect(func() { notifier.emit(sessionExpiredMsg{}) })
	m.health.OnUpdate(func(s monitor.Snapshot) { notifier.emit(statusMsg{snap: s}) })
	m.ready.OnUpdate(func(s monitor.Snapshot) { notifier.emit(statusMsg{snap: s}) })
	m.logs.OnChange(func(s monitor.LogsState) { notifier.emit(logsMsg{state: s}) })

	m.user = a.Session.User()
	if m.user == nil {
		m.screen = ScreenLogin
		m.form = loginForm()
		m.overlay = overlayForm
	} else {
		m.screen = ScreenDashboard
		m.inflight = 2
	}
	m.logsState = m.logs.State()
	m.resize()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, textinput.Blink}
	if m.screen != ScreenLogin {
		cmds = append(cmds, m.loadContracts(), m.loadClients())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)

	case tea.MouseMsg:
		m, cmd = m.handleMouse(msg)

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)

	case toastMsg:
		m.toastSeq++
		m.toast = &toast{text: msg.text, isError: msg.isError, id: m.toastSeq}
		id := m.toastSeq
		cmd = tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })

	case toastExpiredMsg:
		if m.toast != nil && m.toast.id == msg.id {
			m.toast = nil
		}

	case sessionExpiredMsg:
		m, cmd = m.toLogin()

	case authResultMsg:
		m, cmd = m.handleAuthResult(msg)

	case contractsLoadedMsg, clientsLoadedMsg:
		m.done()

	case logsFetchedMsg:
		m.done()
		m.logsState = m.logs.State()
		if api.IsUnauthorized(msg.err) {
			m.notifier.Error(m.app.Policy.Expired(msg.err))
		}

	case contractSavedMsg:
		m.done()
		m.handleSaved(msg.err, msg.op)

	case clientSavedMsg:
		m.done()
		m.handleSaved(msg.err, msg.op)

	case analysisMsg:
		m.done()
		if msg.err == nil && msg.view != nil {
			m.analysis = msg.view
			if cached, ok := m.contracts.Clauses(msg.view.Contract.ID); ok {
				m.clauses = &cached
			} else {
				m.clauses = nil
			}
			m.overlay = overlayAnalysis
			m.refreshViewport()
			m.viewport.GotoTop()
		}

	case clausesMsg:
		m.done()
		if msg.err == nil && m.analysis != nil && m.analysis.Contract.ID == msg.id {
			result := msg.result
			m.clauses = &result
			m.refreshViewport()
		}

	case clientDetailMsg:
		m.done()
		if msg.err == nil && msg.detail != nil {
			m.detail = msg.detail
			m.overlay = overlayClientDetail
		}

	case statusMsg:
		switch msg.snap.Name {
		case "health":
			m.healthSnap = msg.snap
		case "readiness":
			m.readySnap = msg.snap
		}

	case logsMsg:
		m.logsState = msg.state
	}

	m.syncTable()
	return m, cmd
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

func (m *Model) busy() tea.Cmd {
	m.inflight++
	return m.spinner.Tick
}

func (m *Model) done() {
	m.inflight = max(m.inflight-1, 0)
}

// enterScreen switches screens and starts the loads the screen needs.
// Without a stored user it routes to login instead.
func (m Model) enterScreen(s Screen) (Model, tea.Cmd) {
	if m.app.Session.User() == nil {
		return m.toLogin()
	}

	var cmds []tea.Cmd
	if m.screen == ScreenSystem && s != ScreenSystem && m.monitoring {
		m.monitoring = false
		m.stopMonitors()
	}

	m.screen = s
	m.overlay = overlayNone
	m.contractMenu.Close()
	m.clientMenu.Close()
	m.table.SetCursor(0)

	switch s {
	case ScreenDashboard:
		m.inflight += 2
		cmds = append(cmds, m.loadContracts(), m.loadClients())
	case ScreenContracts:
		m.inflight++
		cmds = append(cmds, m.loadContracts())
	case ScreenClients:
		m.inflight++
		cmds = append(cmds, m.loadClients())
	case ScreenSystem:
		if !m.monitoring {
			m.monitoring = true
			m.startMonitors()
		}
		m.inflight++
		cmds = append(cmds, m.fetchLogs())
	}
	cmds = append(cmds, m.spinner.Tick)
	return m, tea.Batch(cmds...)
}

// toLogin drops any open dialog and shows the login form.
func (m Model) toLogin() (Model, tea.Cmd) {
	if m.monitoring {
		m.monitoring = false
		m.stopMonitors()
	}
	m.user = nil
	m.screen = ScreenLogin
	m.form = loginForm()
	m.overlay = overlayForm
	m.analysis = nil
	m.detail = nil
	m.confirm = nil
	m.contractMenu.Close()
	m.clientMenu.Close()
	return m, nil
}

func (m Model) handleAuthResult(msg authResultMsg) (Model, tea.Cmd) {
	m.done()
	if msg.err != nil {
		if m.form != nil {
			m.form.errMsg = common.Message(msg.err)
		}
		return m, nil
	}
	m.user = m.app.Session.User()
	m.form = nil
	name := "back"
	if m.user != nil {
		name = m.user.Username
	}
	m, cmd := m.enterScreen(ScreenDashboard)
	welcome := func() tea.Msg { return toastMsg{text: "Welcome, " + name + "!"} }
	return m, tea.Batch(cmd, welcome)
}

// handleSaved closes the dialog that started a successful mutation, or
// shows the failure inside it.
func (m *Model) handleSaved(err error, op string) {
	if err != nil {
		if m.overlay == overlayForm && m.form != nil {
			m.form.errMsg = common.Message(err)
		}
		return
	}
	if op == "delete" {
		m.table.SetCursor(0)
	}
	if m.overlay == overlayForm || m.overlay == overlayConfirm {
		m.overlay = overlayNone
		m.form = nil
		m.confirm = nil
	}
}

func (m *Model) resize() {
	m.help.Width = m.width
	m.table.SetWidth(max(m.width-2, 20))
	m.table.SetHeight(max(m.height-tableTop-4, 3))
	m.viewport.Width = max(m.width-6, 20)
	m.viewport.Height = max(m.height-8, 5)
	if m.overlay == overlayAnalysis {
		m.refreshViewport()
	}
}
