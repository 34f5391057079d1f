package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/contractdesk/internal/model"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL + "/"}, staticToken(token))
	require.NoError(t, err)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
		wantErr bool
	}{
		{name: "trims trailing slash", baseURL: "http://localhost:8000/", want: "http://localhost:8000"},
		{name: "empty", baseURL: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(Config{BaseURL: tt.baseURL}, nil)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, client.BaseURL())
		})
	}
}

func TestAuthorizationHeader(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "token present", token: "abc123", want: "Bearer abc123"},
		{name: "no token", token: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				writeJSON(t, w, http.StatusOK, []model.BackendClient{})
			}, tt.token)

			_, err := client.ListClients(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
		status      int
		wantUnauth  bool
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"detail":"Invalid token."}`, wantMessage: "Invalid token.", wantUnauth: true},
		{name: "error field preferred", status: http.StatusBadRequest, body: `{"error":"Title is required","message":"x"}`, wantMessage: "Title is required"},
		{name: "plain text body", status: http.StatusInternalServerError, body: "boom"},
		{name: "not found", status: http.StatusNotFound, body: `{"message":"Contract not found"}`, wantMessage: "Contract not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, "tok")

			_, err := client.GetContract(context.Background(), "c1")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.body, apiErr.Body)
			assert.Equal(t, tt.wantUnauth, IsUnauthorized(err))
			assert.Equal(t, tt.status, StatusCode(err))
		})
	}
}

func TestOnUnauthorized(t *testing.T) {
	tests := []struct {
		name   string
		status int
		calls  int
	}{
		{name: "401 calls the hook", status: http.StatusUnauthorized, calls: 1},
		{name: "403 does not", status: http.StatusForbidden},
		{name: "500 does not", status: http.StatusInternalServerError},
		{name: "success does not", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"results":[],"count":0}`)
			}))
			t.Cleanup(server.Close)

			var seen []error
			client, err := New(Config{
				BaseURL:        server.URL,
				OnUnauthorized: func(err error) { seen = append(seen, err) },
			}, staticToken("stale"))
			require.NoError(t, err)

			_, err = client.Logs(context.Background(), url.Values{})
			require.Len(t, seen, tt.calls)
			if tt.calls > 0 {
				assert.True(t, IsUnauthorized(seen[0]))
				assert.Equal(t, seen[0], err)
			}
		})
	}
}

func TestRequestFailed(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client, err := New(Config{BaseURL: server.URL}, nil)
	require.NoError(t, err)

	_, err = client.Health(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.False(t, IsUnauthorized(err))
}

func TestEndpoints(t *testing.T) {
	type call struct {
		method string
		path   string
		query  string
	}

	var got call
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = call{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery}
		gotBody = nil
		if r.Header.Get("Content-Type") == "application/json" {
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
		}
		switch {
		case r.URL.Path == "/api/contracts/" && r.Method == http.MethodGet,
			r.URL.Path == "/api/clients/c9/contracts/":
			writeJSON(t, w, http.StatusOK, []model.BackendContract{{ID: "k1", Title: "NDA"}})
		case r.URL.Path == "/api/clients/" && r.Method == http.MethodGet:
			writeJSON(t, w, http.StatusOK, []model.BackendClient{{ID: "c1", Name: "Acme"}})
		case r.URL.Path == "/api/logs/":
			writeJSON(t, w, http.StatusOK, map[string]any{"count": 0})
		default:
			writeJSON(t, w, http.StatusOK, map[string]any{"message": "ok", "_id": "c2", "name": "Globex", "status": "ok"})
		}
	}, "tok")

	ctx := context.Background()

	tests := []struct {
		invoke   func() error
		wantBody map[string]any
		want     call
		name     string
	}{
		{
			name: "login",
			invoke: func() error {
				_, err := client.Login(ctx, model.LoginCredentials{Username: "a", Password: "b"})
				return err
			},
			want:     call{method: http.MethodPost, path: "/api/auth/login/"},
			wantBody: map[string]any{"username": "a", "password": "b"},
		},
		{
			name: "register",
			invoke: func() error {
				_, err := client.Register(ctx, model.RegisterCredentials{Username: "a", Password: "b"})
				return err
			},
			want:     call{method: http.MethodPost, path: "/api/auth/register/"},
			wantBody: map[string]any{"username": "a", "password": "b"},
		},
		{
			name: "list contracts",
			invoke: func() error {
				contracts, err := client.ListContracts(ctx)
				if err == nil && len(contracts) != 1 {
					return errors.New("expected one contract")
				}
				return err
			},
			want: call{method: http.MethodGet, path: "/api/contracts/"},
		},
		{
			name: "get contract escapes id",
			invoke: func() error {
				_, err := client.GetContract(ctx, "a/b")
				return err
			},
			want: call{method: http.MethodGet, path: "/api/contracts/a/b/"},
		},
		{
			name: "create contract",
			invoke: func() error {
				_, err := client.CreateContract(ctx, model.ContractCreate{Title: "T", Client: "C", Text: "body"})
				return err
			},
			want:     call{method: http.MethodPost, path: "/api/contracts/"},
			wantBody: map[string]any{"title": "T", "client": "C", "text": "body", "signed": false},
		},
		{
			name: "update contract",
			invoke: func() error {
				_, err := client.UpdateContract(ctx, "k1", model.ContractUpdate{Title: "T", Client: "C", Signed: true})
				return err
			},
			want:     call{method: http.MethodPut, path: "/api/contracts/k1/"},
			wantBody: map[string]any{"title": "T", "client": "C", "signed": true},
		},
		{
			name:   "delete contract",
			invoke: func() error { return client.DeleteContract(ctx, "k1") },
			want:   call{method: http.MethodDelete, path: "/api/contracts/k1/"},
		},
		{
			name: "analysis",
			invoke: func() error {
				_, err := client.GetContractAnalysis(ctx, "k1")
				return err
			},
			want: call{method: http.MethodGet, path: "/api/contracts/k1/analysis/"},
		},
		{
			name: "clauses",
			invoke: func() error {
				_, err := client.ExtractClauses(ctx, "k1")
				return err
			},
			want: call{method: http.MethodPost, path: "/api/contracts/k1/clauses/"},
		},
		{
			name: "list clients",
			invoke: func() error {
				_, err := client.ListClients(ctx)
				return err
			},
			want: call{method: http.MethodGet, path: "/api/clients/"},
		},
		{
			name: "create client",
			invoke: func() error {
				created, err := client.CreateClient(ctx, model.ClientInput{Name: "Globex"})
				if err == nil && created.ID != "c2" {
					return errors.New("unexpected id")
				}
				return err
			},
			want:     call{method: http.MethodPost, path: "/api/clients/"},
			wantBody: map[string]any{"name": "Globex"},
		},
		{
			name: "update client",
			invoke: func() error {
				_, err := client.UpdateClient(ctx, "c2", model.ClientInput{Name: "Globex", Email: "g@x.io"})
				return err
			},
			want:     call{method: http.MethodPut, path: "/api/clients/c2/"},
			wantBody: map[string]any{"name": "Globex", "email": "g@x.io"},
		},
		{
			name:   "delete client",
			invoke: func() error { return client.DeleteClient(ctx, "c2") },
			want:   call{method: http.MethodDelete, path: "/api/clients/c2/"},
		},
		{
			name: "client contracts",
			invoke: func() error {
				_, err := client.ListClientContracts(ctx, "c9")
				return err
			},
			want: call{method: http.MethodGet, path: "/api/clients/c9/contracts/"},
		},
		{
			name: "health",
			invoke: func() error {
				status, err := client.Health(ctx)
				if err == nil && !status.Healthy() {
					return errors.New("expected healthy")
				}
				return err
			},
			want: call{method: http.MethodGet, path: "/api/health/"},
		},
		{
			name: "logs",
			invoke: func() error {
				page, err := client.Logs(ctx, url.Values{"page": {"2"}, "status": {"404"}})
				if err == nil && page.Results == nil {
					return errors.New("results must not be nil")
				}
				return err
			},
			want: call{method: http.MethodGet, path: "/api/logs/", query: "page=2&status=404"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.invoke())
			assert.Equal(t, tt.want, got)
			if tt.wantBody != nil {
				assert.Equal(t, tt.wantBody, gotBody)
			}
		})
	}
}

func TestEmptyID(t *testing.T) {
	client, err := New(Config{BaseURL: "http://localhost:1"}, nil)
	require.NoError(t, err)

	_, err = client.GetContract(context.Background(), "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRequestFailed)

	err = client.DeleteClient(context.Background(), "")
	require.Error(t, err)
}

func TestReadyNotReady(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": "database unavailable"})
	}, "")

	status, err := client.Ready(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Ready())
	assert.Equal(t, "database unavailable", status.Error)
}

func TestUploadContract(t *testing.T) {
	var fields map[string]string
	var fileName, fileBody string
	var contentLength int64

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/contracts/", r.URL.Path)
		contentLength = r.ContentLength

		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = map[string]string{
			"title":  r.FormValue("title"),
			"client": r.FormValue("client"),
			"signed": r.FormValue("signed"),
		}
		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		data, err := io.ReadAll(f)
		require.NoError(t, err)
		fileName = header.Filename
		fileBody = string(data)

		writeJSON(t, w, http.StatusCreated, map[string]any{
			"message":     "Contract created",
			"contract_id": "new-1",
			"analysis":    "approved",
			"approved":    true,
		})
	}, "tok")

	var progress bytes.Buffer
	var total int64
	resp, err := client.UploadContract(context.Background(), ContractUpload{
		Title:  "NDA",
		Client: "Acme",
		File: FileUpload{
			Name:   "/tmp/nda.txt",
			Reader: strings.NewReader("contract text"),
			Progress: func(size int64) io.Writer {
				total = size
				return &progress
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "new-1", resp.ContractID)
	require.NotNil(t, resp.Approved)
	assert.True(t, *resp.Approved)
	assert.Equal(t, map[string]string{"title": "NDA", "client": "Acme", "signed": "false"}, fields)
	assert.Equal(t, "nda.txt", fileName)
	assert.Equal(t, "contract text", fileBody)
	assert.Equal(t, total, contentLength)
	assert.Equal(t, total, int64(progress.Len()))
}

func TestReanalyzeContract(t *testing.T) {
	var title string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/contracts/k1/reanalyze/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		title = r.FormValue("title")
		writeJSON(t, w, http.StatusOK, map[string]any{"message": "done", "approved": false, "evaluation_reasoning": "cap too low"})
	}, "tok")

	resp, err := client.ReanalyzeContract(context.Background(), "k1", ReanalyzeUpload{
		Title: "NDA v2",
		File:  FileUpload{Name: "v2.txt", Reader: strings.NewReader("new text")},
	})
	require.NoError(t, err)
	assert.Equal(t, "NDA v2", title)
	assert.False(t, resp.Approved)
	assert.Equal(t, "cap too low", resp.EvaluationReasoning)
}

func TestEvaluateContract(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/contracts/evaluate/", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{"approved": true, "reasoning": "fine"})
	}, "tok")

	resp, err := client.EvaluateContract(context.Background(), FileUpload{Name: "a.txt", Reader: strings.NewReader("x")})
	require.NoError(t, err)
	assert.True(t, resp.Approved)
	assert.Equal(t, "fine", resp.Reasoning)

	_, err = client.EvaluateContract(context.Background(), FileUpload{Name: "a.txt"})
	require.Error(t, err)
}
