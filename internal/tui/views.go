package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Veraticus/contractdesk/internal/common"
	"github.com/Veraticus/contractdesk/internal/listview"
	"github.com/Veraticus/contractdesk/internal/model"
	"github.com/Veraticus/contractdesk/internal/monitor"
	"github.com/Veraticus/contractdesk/internal/tui/themes"
	"github.com/Veraticus/contractdesk/internal/tui/viewmodel"
)

func tableStyles(theme themes.Theme) table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(true)
	s.Selected = theme.Selected
	return s
}

// render draws the whole screen.
func (m Model) render() string {
	if m.screen == ScreenLogin {
		return m.renderLogin()
	}

	var body string
	switch m.overlay {
	case overlayForm:
		body = m.centered(m.form.view(m.theme, min(70, m.width-4)))
	case overlayConfirm:
		body = m.centered(m.renderConfirm())
	case overlayAnalysis:
		body = m.renderAnalysis()
	case overlayClientDetail:
		body = m.renderClientDetail()
	case overlayHelp:
		body = m.renderHelp()
	default:
		body = m.renderScreen()
	}

	view := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		"",
		body,
	)
	view = m.fitHeight(view, m.height-2)
	view = lipgloss.JoinVertical(lipgloss.Left, view, m.renderStatusBar(), m.renderFooter())

	if m.overlay == overlayMenu {
		view = m.drawMenu(view)
	}
	return view
}

func (m Model) renderScreen() string {
	switch m.screen {
	case ScreenDashboard:
		return m.renderDashboard()
	case ScreenContracts:
		return m.renderContracts()
	case ScreenClients:
		return m.renderClients()
	case ScreenSystem:
		return m.renderSystem()
	}
	return ""
}

// renderHeader renders the tab bar and the signed-in user.
func (m Model) renderHeader() string {
	tabs := make([]string, 0, len(navScreens))
	for i, s := range navScreens {
		label := fmt.Sprintf("%d %s", i+1, s)
		if s == m.screen {
			tabs = append(tabs, m.theme.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, m.theme.Tab.Render(label))
		}
	}
	left := m.theme.Bold.Render("contractdesk") + "  " + strings.Join(tabs, "")

	right := ""
	if m.user != nil {
		right = m.theme.Faint.Render(fmt.Sprintf("[%s] %s", m.user.Initial(), m.user.Username))
	}
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderLogin() string {
	box := m.form.view(m.theme, min(60, m.width-4))
	title := m.theme.Title.Render("contractdesk")
	subtitle := m.theme.Subtitle.Render("Contract analysis dashboard")
	content := lipgloss.JoinVertical(lipgloss.Center, title, subtitle, "", box)
	if m.inflight > 0 {
		content = lipgloss.JoinVertical(lipgloss.Center, content, "", m.spinner.View()+" Signing in...")
	}
	if m.toast != nil {
		content = lipgloss.JoinVertical(lipgloss.Center, content, "", m.renderToast())
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderDashboard() string {
	contracts := m.contracts.All()
	counts := viewmodel.StatusCounts(contracts)

	cards := []string{
		m.card("Contracts", fmt.Sprintf("%d", len(contracts)), themes.ToneInfo),
		m.card("Approved", fmt.Sprintf("%d", counts[model.StatusApproved]), themes.ToneSuccess),
		m.card("Not approved", fmt.Sprintf("%d", counts[model.StatusRejected]+counts[model.StatusCompleted]), themes.ToneError),
		m.card("Analyzing", fmt.Sprintf("%d", counts[model.StatusAnalyzing]), themes.ToneInfo),
		m.card("Clients", fmt.Sprintf("%d", len(m.clients.All())), themes.ToneNeutral),
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)

	greeting := "Welcome"
	if m.user != nil {
		greeting = "Welcome, " + m.user.Username
	}

	lines := []string{m.theme.Title.Render(greeting), row, "", m.theme.Bold.Render("Recent contracts")}
	if len(contracts) == 0 {
		lines = append(lines, m.theme.Faint.Render("No contracts yet. Press n to upload one."))
	}
	for i, c := range contracts {
		if i == 5 {
			break
		}
		r := viewmodel.NewContractRow(c)
		lines = append(lines, fmt.Sprintf("  %-40s %-20s %s",
			viewmodel.TruncateString(r.Title, 40),
			viewmodel.TruncateString(r.Client, 20),
			m.theme.StyleFor(r.Tone).Render(r.StatusLabel),
		))
	}
	lines = append(lines, "", m.theme.Faint.Render("2 contracts · 3 clients · 4 system health · n upload"))
	return strings.Join(lines, "\n")
}

func (m Model) card(label, value string, tone themes.Tone) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Faint.Render(label),
		m.theme.StyleFor(tone).Render(value),
	)
	return m.theme.BorderedBox.Width(16).MarginRight(1).Render(content)
}

func (m Model) renderContracts() string {
	now := m.now()
	f := m.contracts.Filters()
	filters := fmt.Sprintf("%s  status: %s  client: %s  date: %s",
		m.searchLabel(f.Search), f.Status, f.Client, f.Date)

	body := m.table.View()
	if !m.contracts.Loaded() {
		body = m.spinner.View() + " Loading contracts..."
	} else if len(m.contracts.Filtered(now)) == 0 {
		body = m.theme.Faint.Render("No contracts match the current filters.")
	}

	footer := viewmodel.PageSummary(m.contracts.Page(), m.contracts.TotalPages(now))
	if c, ok := m.selectedContract(); ok && len(m.table.Rows()) > 0 {
		footer = strings.TrimSpace(footer + "  " + m.contractSummary(c))
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.theme.Faint.Render(filters), "", body, "", footer)
}

func (m Model) contractSummary(c model.Contract) string {
	r := viewmodel.NewContractRow(c)
	status := m.theme.StyleFor(r.Tone).Render(r.StatusLabel)
	if r.Pending {
		return m.spinner.View() + " " + status
	}
	if c.ModelUsed != "" {
		return status + m.theme.Faint.Render(" · "+c.ModelUsed)
	}
	return status
}

func (m Model) renderClients() string {
	filters := m.searchLabel(m.clients.Search())

	body := m.table.View()
	if !m.clients.Loaded() {
		body = m.spinner.View() + " Loading clients..."
	} else if len(m.clients.Filtered()) == 0 {
		body = m.theme.Faint.Render("No clients found.")
	}
	footer := viewmodel.PageSummary(m.clients.Page(), m.clients.TotalPages())
	return lipgloss.JoinVertical(lipgloss.Left, m.theme.Faint.Render(filters), "", body, "", footer)
}

func (m Model) searchLabel(q string) string {
	if m.overlay == overlaySearch {
		return m.search.View()
	}
	if q == "" {
		return "/ search"
	}
	return "/ " + q
}

func (m Model) renderSystem() string {
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		m.statusCard("Health", m.healthSnap),
		m.statusCard("Readiness", m.readySnap),
	)

	state := m.logsState
	var active []string
	for _, f := range state.Active {
		active = append(active, fmt.Sprintf("%s=%s", f, state.Filters[f]))
	}
	filters := "no filters (f to filter)"
	if len(active) > 0 {
		filters = "filters: " + strings.Join(active, " ") + "  (X clear)"
	}

	body := m.table.View()
	switch {
	case state.Err != nil:
		body = m.theme.StatusError.Render(errorText(state.Err))
	case state.Count == 0 && !state.Loading:
		body = m.theme.Faint.Render("No request logs.")
	}

	footer := viewmodel.PageSummary(state.Page, state.TotalPages)
	if state.Count > 0 {
		footer = strings.TrimSpace(fmt.Sprintf("%s  %d requests", footer, state.Count))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		cards,
		m.theme.Bold.Render("Request logs")+"  "+m.theme.Faint.Render(filters),
		body,
		footer,
	)
}

func (m Model) statusCard(title string, snap monitor.Snapshot) string {
	var status string
	switch {
	case !snap.Checked():
		status = m.spinner.View() + " checking..."
	case snap.Err != nil:
		status = m.theme.StatusError.Render("Error: " + errorText(snap.Err))
	case snap.Healthy:
		status = m.theme.StatusSuccess.Render("● " + snap.Status)
	default:
		status = m.theme.StatusError.Render("● " + snap.Status)
	}

	lines := []string{m.theme.Bold.Render(title), status}
	if snap.Detail != "" {
		lines = append(lines, m.theme.Faint.Render(snap.Detail))
	}
	lines = append(lines, m.theme.Faint.Render("checked "+viewmodel.FormatTime(snap.LastChecked)))
	return m.theme.BorderedBox.Width(max(m.width/2-2, 20)).Render(strings.Join(lines, "\n"))
}

func (m Model) renderConfirm() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Bold.Render(m.confirm.prompt),
		"",
		m.theme.Faint.Render("y confirm · n cancel"),
	)
	return m.theme.RoundedBox.Render(content)
}

// analysisContent is the scrollable body of the analysis panel.
func (m Model) analysisContent() string {
	a := m.analysis
	if a == nil {
		return ""
	}
	c := a.Contract
	row := viewmodel.NewContractRow(c)

	lines := []string{
		m.theme.Title.Render(c.Title),
		fmt.Sprintf("Client: %s   Uploaded: %s   Signed: %s", row.Client, row.Date, row.Signed),
		"Status: " + m.theme.StyleFor(row.Tone).Render(row.StatusLabel),
	}
	if a.Approved != nil {
		verdict := m.theme.StatusError.Render("Not approved")
		if *a.Approved {
			verdict = m.theme.StatusSuccess.Render("Approved")
		}
		lines = append(lines, "Verdict: "+verdict)
	}
	if a.ModelUsed != "" {
		lines = append(lines, m.theme.Faint.Render("Model: "+a.ModelUsed))
	}
	if a.AnalysisDate != "" {
		lines = append(lines, m.theme.Faint.Render("Analyzed: "+viewmodel.FormatUploadDate(a.AnalysisDate)))
	}

	lines = append(lines, "")
	if rendered := renderMarkdown(a.Reasoning, m.theme.MarkdownStyle, m.viewport.Width-2); rendered != "" {
		lines = append(lines, rendered)
	} else {
		lines = append(lines, m.theme.Faint.Render("No analysis available."))
	}

	lines = append(lines, "", m.theme.Bold.Render("Clauses"))
	lines = append(lines, m.clausesContent()...)
	return strings.Join(lines, "\n")
}

func (m Model) clausesContent() []string {
	switch {
	case m.clauses == nil:
		return []string{m.theme.Faint.Render("Press c to extract clauses.")}
	case m.clauses.Error != "":
		return []string{m.theme.StatusError.Render(m.clauses.Error)}
	case len(m.clauses.Clauses) == 0:
		return []string{m.theme.Faint.Render("No clauses found.")}
	}
	lines := make([]string, 0, len(m.clauses.Clauses))
	for i, cl := range m.clauses.Clauses {
		text := viewmodel.SanitizeForDisplay(cl.Text)
		if cl.Type != "" {
			text = m.theme.Bold.Render(cl.Type+": ") + text
		}
		lines = append(lines, fmt.Sprintf("%2d. %s", i+1, text))
	}
	return lines
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.analysisContent())
}

func (m Model) renderAnalysis() string {
	hint := m.theme.Faint.Render("↑/↓ scroll · c extract clauses · Esc close")
	return m.theme.RoundedBox.Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), hint))
}

func (m Model) renderClientDetail() string {
	d := m.detail
	if d == nil {
		return ""
	}
	r := viewmodel.NewClientRow(d.Client)
	lines := []string{
		m.theme.Title.Render(fmt.Sprintf("[%s] %s", viewmodel.Initials(d.Client.Name), r.Name)),
		fmt.Sprintf("Email: %s   Company: %s   Status: %s", r.Email, r.CompanyID, m.theme.StyleFor(r.Tone).Render(r.Status)),
		fmt.Sprintf("Contracts: %d", d.Client.ContractCount),
		"",
	}
	if len(d.Contracts) == 0 {
		lines = append(lines, m.theme.Faint.Render("No contracts for this client."))
	}
	for _, c := range d.Contracts {
		cr := viewmodel.NewContractRow(c)
		lines = append(lines, fmt.Sprintf("  %-40s %-14s %s",
			viewmodel.TruncateString(cr.Title, 40), cr.Date, m.theme.StyleFor(cr.Tone).Render(cr.StatusLabel)))
	}
	lines = append(lines, "", m.theme.Faint.Render("Esc close"))
	return m.theme.RoundedBox.Width(min(90, m.width-4)).Render(strings.Join(lines, "\n"))
}

func (m Model) renderHelp() string {
	h := m.help
	h.ShowAll = true
	return m.theme.RoundedBox.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render("Keys"),
		h.View(m.keymap),
		"",
		m.theme.Faint.Render("Press ? or Esc to close help"),
	))
}

// renderStatusBar shows in-flight work and the latest notification.
func (m Model) renderStatusBar() string {
	var parts []string
	if m.inflight > 0 {
		parts = append(parts, m.spinner.View()+" working")
	}
	if m.toast != nil {
		parts = append(parts, m.renderToast())
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderToast() string {
	style := m.theme.StatusSuccess
	if m.toast.isError {
		style = m.theme.StatusError
	}
	return style.Render(m.toast.text)
}

func (m Model) renderFooter() string {
	return m.help.ShortHelpView(m.keymap.ShortHelp())
}

func (m Model) centered(s string) string {
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, s)
}

// fitHeight pads or clips view to exactly h lines.
func (m Model) fitHeight(view string, h int) string {
	if h <= 0 {
		return view
	}
	lines := strings.Split(view, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// drawMenu paints the open row menu over view at its recorded position.
func (m Model) drawMenu(view string) string {
	menu, items := m.activeMenu()
	if !menu.IsOpen() {
		return view
	}
	pos := menu.Position()

	rows := make([]string, len(items))
	for i, item := range items {
		label := " " + item
		if i == m.menuCursor {
			rows[i] = m.theme.Selected.Width(menuWidth - 2).Render(label)
		} else {
			rows[i] = m.theme.Normal.Width(menuWidth - 2).Render(label)
		}
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Primary).
		Render(strings.Join(rows, "\n"))

	return overlayAt(view, box, pos)
}

// overlayAt replaces the cells of base under box, starting at pos.
func overlayAt(base, box string, pos listview.Rect) string {
	lines := strings.Split(base, "\n")
	for i, boxLine := range strings.Split(box, "\n") {
		y := pos.Top + i
		for y >= len(lines) {
			lines = append(lines, "")
		}
		line := lines[y]
		if pad := pos.Left - ansi.StringWidth(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		left := ansi.Truncate(line, pos.Left, "")
		right := ansi.TruncateLeft(line, pos.Left+ansi.StringWidth(boxLine), "")
		lines[y] = left + boxLine + right
	}
	return strings.Join(lines, "\n")
}

func errorText(err error) string {
	return viewmodel.TruncateString(viewmodel.SanitizeForDisplay(common.Message(err)), 80)
}
