package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/contractdesk/internal/app"
	"github.com/Veraticus/contractdesk/internal/config"
	"github.com/Veraticus/contractdesk/internal/listview"
	"github.com/Veraticus/contractdesk/internal/model"
	"github.com/Veraticus/contractdesk/internal/monitor"
	"github.com/Veraticus/contractdesk/internal/session"
	tuitest "github.com/Veraticus/contractdesk/internal/tui/testing"
	"github.com/Veraticus/contractdesk/internal/tui/themes"
)

const goodToken = "good-token"

var testNow = time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+goodToken {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"Invalid token"}`))
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		var creds model.LoginCredentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Password != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"` + goodToken + `","user":{"id":7,"username":"` + creds.Username + `"}}`))
	})
	mux.HandleFunc("GET /api/contracts/", authed(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"_id":"c1","title":"MSA","client":"Acme","analysis":"The contract is approved.","analysis_date":"2024-05-02T09:00:00Z","date":"2024-05-02T08:00:00Z"},
			{"_id":"c2","title":"NDA","client":"Globex","date":"2024-03-01"}
		]`))
	}))
	mux.HandleFunc("GET /api/clients/", authed(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"_id":"k1","name":"Acme","email":"ops@acme.test","active":true}]`))
	}))
	mux.HandleFunc("GET /api/logs/", authed(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"count":1,"results":[{"_id":"l1","user":"ana","endpoint":"/api/contracts/","method":"GET","date":"2024-05-01T10:00:00Z","status":200}]}`))
	}))
	mux.HandleFunc("GET /api/health/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("GET /api/ready/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type harness struct {
	rec   *tuitest.Recorder
	app   *app.App
	model Model
}

// newHarness builds a model against the fake backend. A non-empty token
// seeds the session as if a user had logged in earlier.
func newHarness(t *testing.T, token string) *harness {
	t.Helper()
	srv := newBackend(t)

	backend := session.NewMemoryBackend()
	if token != "" {
		require.NoError(t, backend.Set(map[string]string{
			session.TokenKey: token,
			session.UserKey:  `{"id":"7","username":"ana"}`,
		}))
	}
	cfg := &config.Config{
		API:     config.APIConfig{URL: srv.URL, Timeout: 5 * time.Second},
		UI:      config.UIConfig{PageSize: config.DefaultListPageSize},
		Logs:    config.LogsConfig{PageSize: config.DefaultLogsPageSize, Debounce: time.Millisecond},
		Monitor: config.MonitorConfig{Interval: time.Hour},
	}
	a, err := app.New(cfg, backend)
	require.NoError(t, err)

	c := defaultConfig()
	c.App = a
	for _, opt := range []Option{WithTheme(themes.Plain), WithSize(100, 30), WithClock(func() time.Time { return testNow })} {
		opt(&c)
	}

	h := &harness{rec: &tuitest.Recorder{}, app: a}
	h.model = newModel(c)
	h.model.notifier.bind(func(msg tea.Msg) { h.rec.Send(msg) })
	t.Cleanup(func() {
		h.model.stopMonitors()
		a.Policy.OnRedirect(nil)
	})
	return h
}

// send feeds msg to the model and then settles the commands it returns.
func (h *harness) send(t *testing.T, msgs ...tea.Msg) {
	t.Helper()
	for _, msg := range msgs {
		next, cmd := h.model.Update(msg)
		h.model = next.(Model)
		h.settle(t, cmd, 0)
	}
}

// settle runs cmd and feeds back whatever it produces promptly. Timer
// commands such as cursor blink and toast expiry do not finish inside the
// window and are dropped.
func (h *harness) settle(t *testing.T, cmd tea.Cmd, depth int) {
	t.Helper()
	if cmd == nil || depth > 4 {
		return
	}
	for _, msg := range collect(cmd, 150*time.Millisecond) {
		if _, ok := msg.(spinner.TickMsg); ok {
			continue
		}
		next, more := h.model.Update(msg)
		h.model = next.(Model)
		h.settle(t, more, depth+1)
	}
}

func collect(cmd tea.Cmd, window time.Duration) []tea.Msg {
	out := make(chan tea.Msg, 64)
	var launch func(tea.Cmd)
	launch = func(c tea.Cmd) {
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, inner := range batch {
					if inner != nil {
						launch(inner)
					}
				}
				return
			}
			if msg != nil {
				out <- msg
			}
		}()
	}
	launch(cmd)

	var msgs []tea.Msg
	deadline := time.After(window)
	for {
		select {
		case msg := <-out:
			msgs = append(msgs, msg)
		case <-deadline:
			return msgs
		}
	}
}

func (h *harness) view() string {
	return tuitest.StripANSI(h.model.View())
}

func (h *harness) typeText(t *testing.T, text string) {
	t.Helper()
	h.send(t, tuitest.Type(text)...)
}

func toasts(rec *tuitest.Recorder) []toastMsg {
	var out []toastMsg
	for _, msg := range rec.Messages() {
		if m, ok := msg.(toastMsg); ok {
			out = append(out, m)
		}
	}
	return out
}

func TestModel_StartsOnLoginWithoutUser(t *testing.T) {
	h := newHarness(t, "")

	assert.Equal(t, ScreenLogin, h.model.screen)
	assert.Equal(t, overlayForm, h.model.overlay)
	require.NotNil(t, h.model.form)
	assert.Equal(t, formLogin, h.model.form.kind)
	assert.Contains(t, h.view(), "Log in")

	// Navigation keys are swallowed by the login form.
	h.send(t, tuitest.Keys("2"))
	assert.Equal(t, ScreenLogin, h.model.screen)
}

func TestModel_LoginFlow(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		wantScreen Screen
		wantError  bool
	}{
		{name: "valid credentials", password: "secret", wantScreen: ScreenDashboard},
		{name: "bad password", password: "wrong", wantScreen: ScreenLogin, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "")

			h.typeText(t, "ana")
			h.send(t, tuitest.Key(tea.KeyTab))
			h.typeText(t, tt.password)
			h.send(t, tuitest.Key(tea.KeyEnter))

			assert.Equal(t, tt.wantScreen, h.model.screen)
			if tt.wantError {
				require.NotNil(t, h.model.form)
				assert.NotEmpty(t, h.model.form.errMsg)
				assert.False(t, h.app.Session.Authenticated())
				return
			}
			require.NotNil(t, h.model.user)
			assert.Equal(t, "ana", h.model.user.Username)
			assert.Len(t, h.model.contracts.All(), 2)
			assert.Contains(t, h.view(), "Welcome, ana")
			require.NotNil(t, h.model.toast)
			assert.Equal(t, "Welcome, ana!", h.model.toast.text)
		})
	}
}

func TestModel_ToggleSignup(t *testing.T) {
	h := newHarness(t, "")

	h.send(t, tuitest.Key(tea.KeyCtrlT))
	require.NotNil(t, h.model.form)
	assert.Equal(t, formRegister, h.model.form.kind)

	h.send(t, tuitest.Key(tea.KeyCtrlT))
	assert.Equal(t, formLogin, h.model.form.kind)

	// Esc never leaves the login screen.
	h.send(t, tuitest.Key(tea.KeyEsc))
	assert.Equal(t, overlayForm, h.model.overlay)
}

func TestModel_ScreenNavigation(t *testing.T) {
	h := newHarness(t, goodToken)
	h.settle(t, h.model.Init(), 0)
	require.Equal(t, ScreenDashboard, h.model.screen)

	tests := []struct {
		msg  tea.Msg
		want Screen
	}{
		{msg: tuitest.Keys("2"), want: ScreenContracts},
		{msg: tuitest.Keys("3"), want: ScreenClients},
		{msg: tuitest.Key(tea.KeyTab), want: ScreenSystem},
		{msg: tuitest.Key(tea.KeyTab), want: ScreenDashboard},
		{msg: tuitest.Key(tea.KeyShiftTab), want: ScreenSystem},
		{msg: tuitest.Keys("1"), want: ScreenDashboard},
	}
	for _, tt := range tests {
		h.send(t, tt.msg)
		assert.Equal(t, tt.want, h.model.screen, "after %v", tt.msg)
	}
	assert.False(t, h.model.monitoring)
	assert.False(t, h.model.health.Running())
}

func TestModel_ContractFilters(t *testing.T) {
	h := newHarness(t, goodToken)
	h.send(t, tuitest.Keys("2"))
	require.Len(t, h.model.table.Rows(), 2)

	// all -> pending
	h.send(t, tuitest.Keys("s"))
	assert.Equal(t, string(model.StatusPending), h.model.contracts.Filters().Status)
	assert.Len(t, h.model.table.Rows(), 1)

	// all -> Acme
	h.send(t, tuitest.Keys("l"))
	assert.Equal(t, "Acme", h.model.contracts.Filters().Client)
	assert.Empty(t, h.model.table.Rows())
	assert.Contains(t, h.view(), "No contracts match the current filters.")

	// all -> today; MSA was uploaded yesterday
	h.send(t, tuitest.Keys("X"), tuitest.Keys("d"))
	assert.Equal(t, listview.DateToday, h.model.contracts.Filters().Date)
	assert.Empty(t, h.model.table.Rows())

	// today -> week
	h.send(t, tuitest.Keys("d"))
	assert.Equal(t, listview.DateWeek, h.model.contracts.Filters().Date)
	assert.Len(t, h.model.table.Rows(), 1)

	h.send(t, tuitest.Keys("X"))
	assert.Equal(t, listview.FilterAll, h.model.contracts.Filters().Status)
	assert.Len(t, h.model.table.Rows(), 2)
}

func TestModel_Search(t *testing.T) {
	h := newHarness(t, goodToken)
	h.send(t, tuitest.Keys("2"), tuitest.Keys("/"))
	require.Equal(t, overlaySearch, h.model.overlay)

	h.typeText(t, "glob")
	assert.Equal(t, "glob", h.model.contracts.Filters().Search)
	require.Len(t, h.model.table.Rows(), 1)
	assert.Equal(t, "NDA", h.model.table.Rows()[0][0])

	h.send(t, tuitest.Key(tea.KeyEnter))
	assert.Equal(t, overlayNone, h.model.overlay)
}

func TestModel_RowMenu(t *testing.T) {
	h := newHarness(t, goodToken)
	h.send(t, tuitest.Keys("2"))
	require.NotEmpty(t, h.model.table.Rows())

	h.send(t, tuitest.Keys("m"))
	assert.Equal(t, overlayMenu, h.model.overlay)
	assert.True(t, h.model.contractMenu.IsOpen())
	assert.Contains(t, h.view(), actionReanalyze)

	h.send(t, tuitest.Key(tea.KeyEsc))
	assert.Equal(t, overlayNone, h.model.overlay)
	assert.False(t, h.model.contractMenu.IsOpen())

	// Clicking a row opens its menu, clicking elsewhere dismisses it.
	h.send(t, tuitest.Click(2, tableTop+1))
	assert.Equal(t, 1, h.model.table.Cursor())
	assert.Equal(t, "c2", h.model.contractMenu.OpenID())

	h.send(t, tuitest.Click(0, 0))
	assert.False(t, h.model.contractMenu.IsOpen())
	assert.Equal(t, overlayNone, h.model.overlay)

	// Picking Delete from the menu asks for confirmation.
	h.send(t, tuitest.Keys("m"), tuitest.Key(tea.KeyUp), tuitest.Key(tea.KeyEnter))
	assert.Equal(t, overlayConfirm, h.model.overlay)
	require.NotNil(t, h.model.confirm)
	assert.Contains(t, h.model.confirm.prompt, "NDA")

	h.send(t, tuitest.Keys("n"))
	assert.Equal(t, overlayNone, h.model.overlay)
	assert.Len(t, h.model.contracts.All(), 2)
}

func TestModel_SystemScreen(t *testing.T) {
	h := newHarness(t, goodToken)
	h.send(t, tuitest.Keys("4"))
	require.Equal(t, ScreenSystem, h.model.screen)
	assert.True(t, h.model.monitoring)
	assert.True(t, h.model.health.Running())

	require.Eventually(t, func() bool {
		for _, msg := range h.rec.Messages() {
			if s, ok := msg.(statusMsg); ok && s.snap.Name == "readiness" && s.snap.Checked() {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	for _, msg := range h.rec.Messages() {
		if s, ok := msg.(statusMsg); ok {
			h.send(t, s)
		}
	}
	assert.True(t, h.model.healthSnap.Healthy)
	assert.Len(t, h.model.table.Rows(), 1)

	view := h.view()
	assert.True(t, tuitest.ContainsInOrder(view, "Health", "Readiness", "Request logs"))

	h.send(t, tuitest.Keys("2"))
	assert.False(t, h.model.monitoring)
	assert.False(t, h.model.health.Running())
	assert.False(t, h.model.ready.Running())
}

func TestModel_LogFilterRejectsMalformedDate(t *testing.T) {
	h := newHarness(t, goodToken)
	h.send(t, tuitest.Keys("4"), tuitest.Keys("f"))
	require.Equal(t, overlayForm, h.model.overlay)
	require.Equal(t, formLogFilters, h.model.form.kind)

	// user -> endpoint -> date
	h.send(t, tuitest.Key(tea.KeyTab), tuitest.Key(tea.KeyTab))
	h.typeText(t, "2024-05-0x")

	date := string(monitor.FilterDate)
	assert.Equal(t, "2024-05-0", h.model.form.value(date))
	assert.NotEmpty(t, h.model.form.errMsg)
	_, applied := h.model.logs.State().Filters[monitor.FilterDate]
	assert.True(t, applied)
}

func TestModel_SessionExpiryReturnsToLogin(t *testing.T) {
	h := newHarness(t, "stale-token")
	require.Equal(t, ScreenDashboard, h.model.screen)

	h.send(t, tuitest.Keys("2"))

	var expired bool
	for _, msg := range h.rec.Messages() {
		if _, ok := msg.(sessionExpiredMsg); ok {
			expired = true
		}
	}
	require.True(t, expired)
	assert.False(t, h.app.Session.Authenticated())

	var texts []string
	for _, ts := range toasts(h.rec) {
		texts = append(texts, ts.text)
	}
	assert.Contains(t, texts, app.SessionExpiredMessage)

	h.send(t, sessionExpiredMsg{})
	assert.Equal(t, ScreenLogin, h.model.screen)
	assert.Nil(t, h.model.user)

	// Navigation without a user routes back to login.
	h.model.overlay = overlayNone
	h.send(t, tuitest.Keys("3"))
	assert.Equal(t, ScreenLogin, h.model.screen)
}

func TestModel_SessionExpiryFromLogsFetch(t *testing.T) {
	h := newHarness(t, "stale-token")
	h.send(t, tuitest.Keys("4"))
	require.Equal(t, ScreenSystem, h.model.screen)

	var expired bool
	for _, msg := range h.rec.Messages() {
		if _, ok := msg.(sessionExpiredMsg); ok {
			expired = true
		}
	}
	require.True(t, expired)
	assert.False(t, h.app.Session.Authenticated())

	var texts []string
	for _, ts := range toasts(h.rec) {
		texts = append(texts, ts.text)
	}
	assert.Contains(t, texts, app.SessionExpiredMessage)

	h.send(t, sessionExpiredMsg{})
	assert.Equal(t, ScreenLogin, h.model.screen)
	assert.False(t, h.model.monitoring)
}

func TestModel_Logout(t *testing.T) {
	h := newHarness(t, goodToken)
	h.send(t, tuitest.Keys("L"))

	assert.Equal(t, ScreenLogin, h.model.screen)
	assert.False(t, h.app.Session.Authenticated())
	require.NotNil(t, h.model.toast)
	assert.Equal(t, "Logged out", h.model.toast.text)
}

func TestModel_ToastExpiry(t *testing.T) {
	h := newHarness(t, goodToken)
	h.send(t, toastMsg{text: "first"})
	h.send(t, toastMsg{text: "second", isError: true})
	require.NotNil(t, h.model.toast)

	// A stale expiry leaves the newer toast in place.
	h.send(t, toastExpiredMsg{id: h.model.toast.id - 1})
	require.NotNil(t, h.model.toast)
	assert.Equal(t, "second", h.model.toast.text)

	h.send(t, toastExpiredMsg{id: h.model.toast.id})
	assert.Nil(t, h.model.toast)
}

func TestModel_Resize(t *testing.T) {
	h := newHarness(t, goodToken)
	h.send(t, tuitest.WindowSize(140, 40))
	assert.Equal(t, 140, h.model.width)
	assert.Equal(t, 40, h.model.height)
	assert.Equal(t, 40-tableTop-4, h.model.table.Height())
}

func TestOverlayAt(t *testing.T) {
	tests := []struct {
		name string
		base string
		box  string
		pos  listview.Rect
		want string
	}{
		{
			name: "inside",
			base: "abcdef\nghijkl",
			box:  "XY",
			pos:  listview.Rect{Top: 1, Left: 2},
			want: "abcdef\nghXYkl",
		},
		{
			name: "pads short lines",
			base: "ab",
			box:  "XY",
			pos:  listview.Rect{Top: 0, Left: 4},
			want: "ab  XY",
		},
		{
			name: "extends below",
			base: "ab",
			box:  "X\nY",
			pos:  listview.Rect{Top: 2, Left: 0},
			want: "ab\n\nX\nY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, overlayAt(tt.base, tt.box, tt.pos))
		})
	}
}

func TestColumns(t *testing.T) {
	cols := columns([]string{"Title", "Client"}, []int{3, 1}, 44)
	require.Len(t, cols, 2)
	assert.Equal(t, 30, cols[0].Width)
	assert.Equal(t, 10, cols[1].Width)

	// Never narrower than the header.
	cols = columns([]string{"Title", "Client"}, []int{1, 1}, 4)
	assert.GreaterOrEqual(t, cols[0].Width, len("Title"))
	assert.GreaterOrEqual(t, cols[1].Width, len("Client"))
}

func TestCycle(t *testing.T) {
	tests := []struct {
		current string
		want    string
	}{
		{current: "all", want: "a"},
		{current: "a", want: "b"},
		{current: "B", want: "all"},
		{current: "unknown", want: "all"},
	}
	options := []string{"all", "a", "b"}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cycle(options, tt.current), tt.current)
	}
	assert.Equal(t, "x", cycle(nil, "x"))
}

func TestScreen_String(t *testing.T) {
	for _, s := range navScreens {
		assert.NotContains(t, s.String(), "Unknown")
	}
	assert.True(t, strings.HasPrefix(Screen(42).String(), "Unknown"))
}

func TestRun_NilApp(t *testing.T) {
	err := Run(context.Background(), nil)
	require.Error(t, err)
}
