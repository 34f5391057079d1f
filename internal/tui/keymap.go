package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding

	// Screens
	Dashboard key.Binding
	Contracts key.Binding
	Clients   key.Binding
	System    key.Binding

	// Actions
	Select    key.Binding
	Menu      key.Binding
	New       key.Binding
	Edit      key.Binding
	Delete    key.Binding
	Analysis  key.Binding
	Reanalyze key.Binding
	Clauses   key.Binding
	Search    key.Binding
	Filters   key.Binding

	// Contract filters
	CycleStatus key.Binding
	CycleClient key.Binding
	CycleDate   key.Binding
	ClearAll    key.Binding

	// Forms
	Submit       key.Binding
	NextField    key.Binding
	PrevField    key.Binding
	ToggleSignup key.Binding
	Cancel       key.Binding
	Confirm      key.Binding

	// Application
	Refresh   key.Binding
	Logout    key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("[", "pgup", "left"),
			key.WithHelp("[", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]", "pgdown", "right"),
			key.WithHelp("]", "next page"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next screen"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("Shift+Tab", "previous screen"),
		),

		Dashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "dashboard"),
		),
		Contracts: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "contracts"),
		),
		Clients: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "clients"),
		),
		System: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "system"),
		),

		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "view"),
		),
		Menu: key.NewBinding(
			key.WithKeys("m", "."),
			key.WithHelp("m", "actions"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete"),
		),
		Analysis: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "analysis"),
		),
		Reanalyze: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reanalyze"),
		),
		Clauses: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clauses"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Filters: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filters"),
		),

		CycleStatus: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "status filter"),
		),
		CycleClient: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "client filter"),
		),
		CycleDate: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "date filter"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "clear filters"),
		),

		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "submit"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("Tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("Shift+Tab", "previous field"),
		),
		ToggleSignup: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("Ctrl+T", "login/register"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "close"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "confirm"),
		),

		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("Ctrl+R", "refresh"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "log out"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("Ctrl+C", "force quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Menu, k.Search, k.New, k.Help, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevPage, k.NextPage},
		{k.Dashboard, k.Contracts, k.Clients, k.System},
		{k.Select, k.Menu, k.New, k.Edit, k.Delete},
		{k.Analysis, k.Reanalyze, k.Clauses, k.Search, k.Filters},
		{k.CycleStatus, k.CycleClient, k.CycleDate, k.ClearAll},
		{k.Refresh, k.Logout, k.Help, k.Quit},
	}
}
