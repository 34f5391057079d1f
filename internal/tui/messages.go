package tui

import (
	"github.com/Veraticus/contractdesk/internal/listview"
	"github.com/Veraticus/contractdesk/internal/model"
	"github.com/Veraticus/contractdesk/internal/monitor"
)

// Session messages.
type authResultMsg struct {
	err  error
	user *model.User
}

type sessionExpiredMsg struct{}

// Data loading messages.
type contractsLoadedMsg struct {
	err error
}

type clientsLoadedMsg struct {
	err error
}

type logsFetchedMsg struct {
	err error
}

// Mutation results. The controllers have already notified the user; these
// only drive dialog state.
type contractSavedMsg struct {
	err error
	op  string
}

type clientSavedMsg struct {
	err error
	op  string
}

// Detail panels.
type analysisMsg struct {
	err  error
	view *listview.AnalysisView
}

type clausesMsg struct {
	err    error
	id     string
	result listview.ClauseResult
}

type clientDetailMsg struct {
	err    error
	detail *listview.ClientDetail
}

// Background updates.
type statusMsg struct {
	snap monitor.Snapshot
}

type logsMsg struct {
	state monitor.LogsState
}

// Notifications.
type toastMsg struct {
	text    string
	isError bool
}

type toastExpiredMsg struct {
	id int
}
