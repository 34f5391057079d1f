package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/contractdesk/internal/common"
	"github.com/Veraticus/contractdesk/internal/listview"
	"github.com/Veraticus/contractdesk/internal/model"
	"github.com/Veraticus/contractdesk/internal/monitor"
	"github.com/Veraticus/contractdesk/internal/tui/viewmodel"
)

// handleKey routes a key press to the active overlay or screen.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.overlay {
	case overlayForm:
		return m.handleFormKey(msg)
	case overlaySearch:
		return m.handleSearchKey(msg)
	case overlayConfirm:
		return m.handleConfirmKey(msg)
	case overlayMenu:
		return m.handleMenuKey(msg)
	case overlayAnalysis:
		return m.handleAnalysisKey(msg)
	case overlayClientDetail, overlayHelp:
		if key.Matches(msg, m.keymap.Cancel, m.keymap.Help, m.keymap.Quit) {
			m.overlay = overlayNone
			m.detail = nil
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.overlay = overlayHelp
		return m, nil
	case key.Matches(msg, m.keymap.Dashboard):
		return m.enterScreen(ScreenDashboard)
	case key.Matches(msg, m.keymap.Contracts):
		return m.enterScreen(ScreenContracts)
	case key.Matches(msg, m.keymap.Clients):
		return m.enterScreen(ScreenClients)
	case key.Matches(msg, m.keymap.System):
		return m.enterScreen(ScreenSystem)
	case key.Matches(msg, m.keymap.NextTab):
		return m.enterScreen(m.cycleScreen(1))
	case key.Matches(msg, m.keymap.PrevTab):
		return m.enterScreen(m.cycleScreen(-1))
	case key.Matches(msg, m.keymap.Refresh):
		return m.refresh()
	case key.Matches(msg, m.keymap.Logout):
		return m.logout()
	}

	switch m.screen {
	case ScreenDashboard:
		if key.Matches(msg, m.keymap.New) {
			m, cmd := m.enterScreen(ScreenContracts)
			m.openForm(uploadForm(""))
			return m, cmd
		}
	case ScreenContracts:
		return m.handleContractsKey(msg)
	case ScreenClients:
		return m.handleClientsKey(msg)
	case ScreenSystem:
		return m.handleSystemKey(msg)
	}
	return m, nil
}

func (m Model) cycleScreen(step int) Screen {
	i := slices.Index(navScreens, m.screen)
	if i < 0 {
		return ScreenDashboard
	}
	n := len(navScreens)
	return navScreens[((i+step)%n+n)%n]
}

func (m Model) refresh() (Model, tea.Cmd) {
	switch m.screen {
	case ScreenSystem:
		m.inflight++
		health, ready := m.health, m.ready
		check := func() tea.Msg {
			health.Check(m.ctx)
			ready.Check(m.ctx)
			return nil
		}
		return m, tea.Batch(check, m.fetchLogs(), m.spinner.Tick)
	case ScreenLogin:
		return m, nil
	default:
		return m.enterScreen(m.screen)
	}
}

func (m Model) logout() (Model, tea.Cmd) {
	if err := m.app.Logout(); err != nil {
		m.notifier.Error(common.NewUserError("Failed to log out", err))
	}
	m, cmd := m.toLogin()
	bye := func() tea.Msg { return toastMsg{text: "Logged out"} }
	return m, tea.Batch(cmd, bye)
}

func (m *Model) openForm(f *form) {
	m.form = f
	m.overlay = overlayForm
}

func (m *Model) closeOverlay() {
	m.overlay = overlayNone
	m.form = nil
	m.confirm = nil
}

// handleFormKey drives the open form.
func (m Model) handleFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	f := m.form
	if f == nil {
		m.overlay = overlayNone
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Cancel):
		if m.screen != ScreenLogin {
			m.closeOverlay()
		}
		return m, nil
	case key.Matches(msg, m.keymap.ToggleSignup) && m.screen == ScreenLogin:
		if f.kind == formLogin {
			m.form = registerForm()
		} else {
			m.form = loginForm()
		}
		return m, nil
	case key.Matches(msg, m.keymap.NextField):
		f.next()
		return m, nil
	case key.Matches(msg, m.keymap.PrevField):
		f.prev()
		return m, nil
	case key.Matches(msg, m.keymap.Submit):
		return m.submitForm(f)
	}

	var before string
	if fld := f.focused(); fld != nil {
		before = fld.input.Value()
	}
	changed, cmd := f.update(msg)
	if f.kind == formLogFilters && changed != "" {
		if err := m.setLogFilter(monitor.LogFilter(changed), f.value(changed)); err != nil {
			f.setValue(changed, before)
			f.errMsg = common.Message(err)
		}
	}
	return m, cmd
}

func (m Model) submitForm(f *form) (Model, tea.Cmd) {
	switch f.kind {
	case formLogin:
		return m, tea.Batch(m.busy(), m.login(f))
	case formRegister:
		return m, tea.Batch(m.busy(), m.register(f))
	case formClientCreate, formClientEdit:
		return m, tea.Batch(m.busy(), m.saveClient(f))
	case formContractUpload:
		// The placeholder row shows progress, so the dialog closes now.
		m.closeOverlay()
		return m, tea.Batch(m.busy(), m.uploadContract(f))
	case formContractEdit:
		return m, tea.Batch(m.busy(), m.updateContract(f))
	case formReanalyze:
		return m, tea.Batch(m.busy(), m.reanalyzeContract(f))
	case formLogFilters:
		m.closeOverlay()
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.search.Blur()
		m.overlay = overlayNone
		return m, nil
	}

	var cmd tea.Cmd
	before := m.search.Value()
	m.search, cmd = m.search.Update(msg)
	if q := m.search.Value(); q != before {
		switch m.screen {
		case ScreenContracts:
			m.contracts.SetSearch(q)
		case ScreenClients:
			m.clients.SetSearch(q)
		}
		m.table.SetCursor(0)
	}
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Confirm):
		action := m.confirm.action
		m.closeOverlay()
		return m, tea.Batch(m.busy(), action)
	case key.Matches(msg, m.keymap.Cancel), msg.String() == "n":
		m.closeOverlay()
	}
	return m, nil
}

func (m Model) handleAnalysisKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Cancel, m.keymap.Quit):
		m.overlay = overlayNone
		m.analysis = nil
		m.clauses = nil
		return m, nil
	case key.Matches(msg, m.keymap.Clauses):
		if m.analysis == nil {
			return m, nil
		}
		return m, tea.Batch(m.busy(), m.extractClauses(m.analysis.Contract.ID))
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// Contracts screen.

func (m Model) selectedContract() (model.Contract, bool) {
	visible := m.contracts.Visible(m.now())
	i := m.table.Cursor()
	if i < 0 || i >= len(visible) {
		return model.Contract{}, false
	}
	return visible[i], true
}

func (m Model) handleContractsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	now := m.now()
	switch {
	case key.Matches(msg, m.keymap.Search):
		return m.openSearch(m.contracts.Filters().Search)
	case key.Matches(msg, m.keymap.PrevPage):
		m.contracts.SetPage(m.contracts.Page()-1, now)
		m.table.SetCursor(0)
		return m, nil
	case key.Matches(msg, m.keymap.NextPage):
		m.contracts.SetPage(m.contracts.Page()+1, now)
		m.table.SetCursor(0)
		return m, nil
	case key.Matches(msg, m.keymap.CycleStatus):
		options := []string{listview.FilterAll}
		for _, s := range model.AllStatuses {
			options = append(options, string(s))
		}
		_ = m.contracts.SetStatusFilter(cycle(options, m.contracts.Filters().Status))
		m.table.SetCursor(0)
		return m, nil
	case key.Matches(msg, m.keymap.CycleClient):
		options := append([]string{listview.FilterAll}, m.contracts.UniqueClients()...)
		m.contracts.SetClientFilter(cycle(options, m.contracts.Filters().Client))
		m.table.SetCursor(0)
		return m, nil
	case key.Matches(msg, m.keymap.CycleDate):
		options := make([]string, 0, len(listview.DateFilters))
		for _, d := range listview.DateFilters {
			options = append(options, string(d))
		}
		_ = m.contracts.SetDateFilter(listview.DateFilter(cycle(options, string(m.contracts.Filters().Date))))
		m.table.SetCursor(0)
		return m, nil
	case key.Matches(msg, m.keymap.ClearAll):
		m.contracts.SetSearch("")
		_ = m.contracts.SetStatusFilter(listview.FilterAll)
		m.contracts.SetClientFilter(listview.FilterAll)
		_ = m.contracts.SetDateFilter(listview.DateAll)
		m.search.SetValue("")
		m.table.SetCursor(0)
		return m, nil
	case key.Matches(msg, m.keymap.New):
		client := m.contracts.Filters().Client
		if client == listview.FilterAll {
			client = ""
		}
		m.openForm(uploadForm(client))
		return m, nil
	}

	c, ok := m.selectedContract()
	if !ok {
		return m.updateTable(msg)
	}
	switch {
	case key.Matches(msg, m.keymap.Menu), key.Matches(msg, m.keymap.Select):
		m.openMenu(c.ID)
		return m, nil
	default:
		if action := contractActionForKey(m.keymap, msg); action != "" {
			return m.runContractAction(action, c)
		}
	}
	return m.updateTable(msg)
}

func contractActionForKey(k KeyMap, msg tea.KeyMsg) string {
	switch {
	case key.Matches(msg, k.Analysis):
		return actionAnalysis
	case key.Matches(msg, k.Clauses):
		return actionClauses
	case key.Matches(msg, k.Edit):
		return actionEdit
	case key.Matches(msg, k.Reanalyze):
		return actionReanalyze
	case key.Matches(msg, k.Delete):
		return actionDelete
	}
	return ""
}

func (m Model) runContractAction(action string, c model.Contract) (Model, tea.Cmd) {
	switch action {
	case actionAnalysis:
		return m, tea.Batch(m.busy(), m.viewAnalysis(c.ID))
	case actionClauses:
		m.inflight++
		return m, tea.Batch(m.busy(), m.viewAnalysis(c.ID), m.extractClauses(c.ID))
	case actionEdit:
		m.openForm(contractEditForm(c))
	case actionReanalyze:
		m.openForm(reanalyzeForm(c))
	case actionDelete:
		m.confirm = &confirmation{
			prompt: fmt.Sprintf("Delete contract %q? This cannot be undone.", c.Title),
			action: m.deleteContract(c.ID),
		}
		m.overlay = overlayConfirm
	}
	return m, nil
}

// Clients screen.

func (m Model) selectedClient() (model.Client, bool) {
	visible := m.clients.Visible()
	i := m.table.Cursor()
	if i < 0 || i >= len(visible) {
		return model.Client{}, false
	}
	return visible[i], true
}

func (m Model) handleClientsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Search):
		return m.openSearch(m.clients.Search())
	case key.Matches(msg, m.keymap.PrevPage):
		m.clients.SetPage(m.clients.Page() - 1)
		m.table.SetCursor(0)
		return m, nil
	case key.Matches(msg, m.keymap.NextPage):
		m.clients.SetPage(m.clients.Page() + 1)
		m.table.SetCursor(0)
		return m, nil
	case key.Matches(msg, m.keymap.New):
		m.openForm(clientForm(nil))
		return m, nil
	}

	c, ok := m.selectedClient()
	if !ok {
		return m.updateTable(msg)
	}
	switch {
	case key.Matches(msg, m.keymap.Menu):
		m.openMenu(c.ID)
		return m, nil
	case key.Matches(msg, m.keymap.Select):
		return m.runClientAction(actionView, c)
	case key.Matches(msg, m.keymap.Edit):
		return m.runClientAction(actionEdit, c)
	case key.Matches(msg, m.keymap.Delete):
		return m.runClientAction(actionDelete, c)
	}
	return m.updateTable(msg)
}

func (m Model) runClientAction(action string, c model.Client) (Model, tea.Cmd) {
	switch action {
	case actionView:
		return m, tea.Batch(m.busy(), m.viewClient(c.ID))
	case actionEdit:
		m.openForm(clientForm(&c))
	case actionDelete:
		m.confirm = &confirmation{
			prompt: fmt.Sprintf("Delete client %q? This cannot be undone.", c.Name),
			action: m.deleteClient(c.ID),
		}
		m.overlay = overlayConfirm
	}
	return m, nil
}

// System screen.

func (m Model) handleSystemKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Filters), key.Matches(msg, m.keymap.Search):
		m.openForm(logFiltersForm(m.logs.State().Filters))
		return m, nil
	case key.Matches(msg, m.keymap.ClearAll):
		m.logs.ClearAll(m.ctx)
		m.logsState = m.logs.State()
		return m, nil
	case key.Matches(msg, m.keymap.PrevPage):
		if m.logsState.Page <= 1 {
			return m, nil
		}
		return m, tea.Batch(m.busy(), m.setLogsPage(m.logsState.Page-1))
	case key.Matches(msg, m.keymap.NextPage):
		if m.logsState.Page >= m.logsState.TotalPages {
			return m, nil
		}
		return m, tea.Batch(m.busy(), m.setLogsPage(m.logsState.Page+1))
	}
	return m.updateTable(msg)
}

func (m Model) openSearch(current string) (Model, tea.Cmd) {
	m.search.SetValue(current)
	m.search.CursorEnd()
	m.overlay = overlaySearch
	return m, m.search.Focus()
}

func (m Model) updateTable(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Row action menu.

func (m *Model) activeMenu() (*listview.Menu, []string) {
	if m.screen == ScreenClients {
		return m.clientMenu, clientActions
	}
	return m.contractMenu, contractActions
}

// rowRect is the screen area of the row under the table cursor.
func (m Model) rowRect(row int) listview.Rect {
	top := tableTop + min(row, max(m.table.Height()-1, 0))
	return listview.Rect{Top: top, Left: 0, Right: m.width, Bottom: top + 1}
}

func (m *Model) openMenu(id string) {
	menu, _ := m.activeMenu()
	if menu.Toggle(id, m.rowRect(m.table.Cursor())) {
		m.menuCursor = 0
		m.overlay = overlayMenu
		return
	}
	m.overlay = overlayNone
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	menu, items := m.activeMenu()
	switch {
	case key.Matches(msg, m.keymap.Cancel), key.Matches(msg, m.keymap.Menu):
		menu.HandleEscape()
		m.overlay = overlayNone
	case key.Matches(msg, m.keymap.Up):
		m.menuCursor = (m.menuCursor - 1 + len(items)) % len(items)
	case key.Matches(msg, m.keymap.Down):
		m.menuCursor = (m.menuCursor + 1) % len(items)
	case key.Matches(msg, m.keymap.Select):
		return m.runMenuItem(m.menuCursor)
	}
	return m, nil
}

func (m Model) runMenuItem(i int) (Model, tea.Cmd) {
	menu, items := m.activeMenu()
	id := menu.OpenID()
	menu.Close()
	m.overlay = overlayNone
	if i < 0 || i >= len(items) {
		return m, nil
	}

	if m.screen == ScreenClients {
		c, ok := m.clients.Get(id)
		if !ok {
			return m, nil
		}
		return m.runClientAction(items[i], c)
	}
	c, ok := m.contracts.Get(id)
	if !ok {
		return m, nil
	}
	return m.runContractAction(items[i], c)
}

// handleMouse implements click-to-open row menus and click-outside to
// dismiss them.
func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	pt := listview.Point{X: msg.X, Y: msg.Y}

	if m.overlay == overlayMenu {
		menu, _ := m.activeMenu()
		if menu.HandleOutsideClick(pt) {
			m.overlay = overlayNone
			return m, nil
		}
		// Rows inside the border map to items.
		return m.runMenuItem(pt.Y - menu.Position().Top - 1)
	}

	if m.overlay != overlayNone || (m.screen != ScreenContracts && m.screen != ScreenClients) {
		return m, nil
	}
	row := pt.Y - tableTop
	if row < 0 || row >= len(m.table.Rows()) || row >= m.table.Height() {
		return m, nil
	}
	m.table.SetCursor(row)
	var id string
	if m.screen == ScreenClients {
		if c, ok := m.selectedClient(); ok {
			id = c.ID
		}
	} else if c, ok := m.selectedContract(); ok {
		id = c.ID
	}
	if id != "" {
		m.openMenu(id)
	}
	return m, nil
}

// syncTable loads the rows for the current screen into the table.
func (m *Model) syncTable() {
	var (
		headers []string
		weights []int
		rows    []table.Row
	)

	switch m.screen {
	case ScreenContracts:
		headers, weights = viewmodel.ContractColumns, []int{5, 3, 2, 2, 1, 1}
		for _, c := range m.contracts.Visible(m.now()) {
			rows = append(rows, viewmodel.NewContractRow(c).Cells())
		}
	case ScreenClients:
		headers, weights = viewmodel.ClientColumns, []int{3, 3, 2, 2, 1}
		for _, c := range m.clients.Visible() {
			rows = append(rows, viewmodel.NewClientRow(c).Cells())
		}
	case ScreenSystem:
		headers, weights = viewmodel.LogColumns, []int{3, 2, 1, 5, 1}
		for _, e := range m.logsState.Entries {
			rows = append(rows, viewmodel.NewLogRow(e).Cells())
		}
	default:
		m.table.SetRows(nil)
		return
	}

	m.table.SetRows(nil)
	m.table.SetColumns(columns(headers, weights, max(m.width-4, 20)))
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// columns splits width between headers in proportion to weights.
func columns(headers []string, weights []int, width int) []table.Column {
	total := 0
	for _, w := range weights {
		total += w
	}
	// Each cell carries two columns of padding.
	usable := max(width-2*len(headers), len(headers))
	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		w := max(usable*weights[i]/total, len(h))
		cols[i] = table.Column{Title: h, Width: w}
	}
	return cols
}

// cycle returns the option after current, wrapping around.
func cycle(options []string, current string) string {
	if len(options) == 0 {
		return current
	}
	for i, o := range options {
		if strings.EqualFold(o, current) {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}
