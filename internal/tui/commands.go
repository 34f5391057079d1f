package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/contractdesk/internal/config"
	"github.com/Veraticus/contractdesk/internal/listview"
	"github.com/Veraticus/contractdesk/internal/model"
	"github.com/Veraticus/contractdesk/internal/monitor"
)

// login authenticates with the login form values.
func (m Model) login(f *form) tea.Cmd {
	creds := model.LoginCredentials{
		Username: f.value(fieldUsername),
		Password: f.value(fieldPassword),
	}
	return func() tea.Msg {
		resp, err := m.app.Login(m.ctx, creds)
		if err != nil {
			return authResultMsg{err: err}
		}
		return authResultMsg{user: resp.User}
	}
}

// register creates an account with the register form values.
func (m Model) register(f *form) tea.Cmd {
	creds := model.RegisterCredentials{
		Username: f.value(fieldUsername),
		Email:    f.value(fieldEmail),
		Password: f.value(fieldPassword),
	}
	return func() tea.Msg {
		resp, err := m.app.Register(m.ctx, creds)
		if err != nil {
			return authResultMsg{err: err}
		}
		return authResultMsg{user: resp.User}
	}
}

// loadContracts fetches the contracts list.
func (m Model) loadContracts() tea.Cmd {
	return func() tea.Msg {
		return contractsLoadedMsg{err: m.contracts.Load(m.ctx)}
	}
}

// loadClients fetches the clients list.
func (m Model) loadClients() tea.Cmd {
	return func() tea.Msg {
		return clientsLoadedMsg{err: m.clients.Load(m.ctx)}
	}
}

// fetchLogs loads the current logs page immediately.
func (m Model) fetchLogs() tea.Cmd {
	return func() tea.Msg {
		return logsFetchedMsg{err: m.logs.ApplyNow(m.ctx)}
	}
}

func (m Model) setLogsPage(page int) tea.Cmd {
	return func() tea.Msg {
		return logsFetchedMsg{err: m.logs.SetPage(m.ctx, page)}
	}
}

// startMonitors begins health and readiness polling.
func (m Model) startMonitors() {
	m.health.Start(m.ctx)
	m.ready.Start(m.ctx)
}

// stopMonitors stops polling and drops any pending logs fetch. Snapshots
// are delivered to the program asynchronously, so this never waits on the
// event loop.
func (m Model) stopMonitors() {
	m.health.Stop()
	m.ready.Stop()
	m.logs.Close()
}

// openDocument opens a contract file for upload.
func openDocument(path string) (*os.File, int64, error) {
	path = config.ExpandPath(strings.TrimSpace(path))
	if path == "" {
		return nil, 0, nil
	}
	f, err := os.Open(path) //nolint:gosec // user-selected upload
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("failed to stat %s: %w", filepath.Base(path), err)
	}
	return f, info.Size(), nil
}

// uploadContract uploads the document named in the upload form.
func (m Model) uploadContract(f *form) tea.Cmd {
	path := f.value(fieldFile)
	in := listview.UploadForm{
		Title:  f.value(fieldTitle),
		Client: f.value(fieldClient),
		Signed: f.toggled(fieldSigned),
	}
	return func() tea.Msg {
		file, size, err := openDocument(path)
		if err != nil {
			m.notifier.Error(err)
			return contractSavedMsg{op: "upload", err: err}
		}
		if file != nil {
			defer func() { _ = file.Close() }()
			in.File = file
			in.FileName = file.Name()
			in.Size = size
		}
		_, err = m.contracts.Upload(m.ctx, in)
		return contractSavedMsg{op: "upload", err: err}
	}
}

func (m Model) updateContract(f *form) tea.Cmd {
	id := f.target
	in := listview.ContractForm{
		Title:  f.value(fieldTitle),
		Client: f.value(fieldClient),
		Signed: f.toggled(fieldSigned),
	}
	return func() tea.Msg {
		return contractSavedMsg{op: "update", err: m.contracts.Update(m.ctx, id, in)}
	}
}

func (m Model) reanalyzeContract(f *form) tea.Cmd {
	id := f.target
	path := f.value(fieldFile)
	title := f.value(fieldTitle)
	return func() tea.Msg {
		file, _, err := openDocument(path)
		if err != nil {
			m.notifier.Error(err)
			return contractSavedMsg{op: "reanalyze", err: err}
		}
		in := listview.ReanalyzeForm{Title: title}
		if file != nil {
			defer func() { _ = file.Close() }()
			in.File = file
			in.FileName = file.Name()
		}
		_, err = m.contracts.Reanalyze(m.ctx, id, in)
		return contractSavedMsg{op: "reanalyze", err: err}
	}
}

func (m Model) deleteContract(id string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.contracts.Delete(m.ctx, id, nil)
		return contractSavedMsg{op: "delete", err: err}
	}
}

func (m Model) viewAnalysis(id string) tea.Cmd {
	return func() tea.Msg {
		view, err := m.contracts.ViewAnalysis(m.ctx, id)
		return analysisMsg{view: view, err: err}
	}
}

func (m Model) extractClauses(id string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.contracts.ExtractClauses(m.ctx, id)
		return clausesMsg{id: id, result: result, err: err}
	}
}

func (m Model) saveClient(f *form) tea.Cmd {
	active := f.toggled(fieldActive)
	in := listview.ClientForm{
		Name:      f.value(fieldName),
		Email:     f.value(fieldEmail),
		CompanyID: f.value(fieldCompanyID),
		Active:    &active,
	}
	id := f.target
	if f.kind == formClientCreate {
		return func() tea.Msg {
			_, err := m.clients.Create(m.ctx, in)
			return clientSavedMsg{op: "create", err: err}
		}
	}
	return func() tea.Msg {
		_, err := m.clients.Update(m.ctx, id, in)
		return clientSavedMsg{op: "update", err: err}
	}
}

func (m Model) deleteClient(id string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.clients.Delete(m.ctx, id, nil)
		return clientSavedMsg{op: "delete", err: err}
	}
}

func (m Model) viewClient(id string) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.clients.View(m.ctx, id)
		return clientDetailMsg{detail: detail, err: err}
	}
}

// setLogFilter applies one filter edit. Rejected edits are reported back
// so the input can be reverted.
func (m Model) setLogFilter(key monitor.LogFilter, value string) error {
	return m.logs.SetFilter(m.ctx, key, value)
}
