package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/contractdesk/internal/common"
	"github.com/Veraticus/contractdesk/internal/model"
)

func newTestPrompter(input string) (*Prompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewPrompter(strings.NewReader(input), out), out
}

func TestPrompter_Ask(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   string
		want  string
	}{
		{name: "answer", input: "Acme\n", want: "Acme"},
		{name: "default on empty", input: "\n", def: "Globex", want: "Globex"},
		{name: "answer beats default", input: "Initech\n", def: "Globex", want: "Initech"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, out := newTestPrompter(tt.input)
			got, err := p.Ask(context.Background(), "Client", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Client")
		})
	}
}

func TestPrompter_AskRequired(t *testing.T) {
	p, out := newTestPrompter("\n\nana\n")
	got, err := p.AskRequired(context.Background(), "Username")
	require.NoError(t, err)
	assert.Equal(t, "ana", got)
	assert.Equal(t, 2, strings.Count(out.String(), "Username is required."))
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "maybe\n", want: false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			p, _ := newTestPrompter(tt.input)
			got, err := p.Confirm(context.Background(), "Delete?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompter_Choose(t *testing.T) {
	p, out := newTestPrompter("maybe\nAPPROVED\n")
	got, err := p.Choose(context.Background(), "Status", []string{"approved", "rejected"})
	require.NoError(t, err)
	assert.Equal(t, "approved", got)
	assert.Contains(t, out.String(), "Invalid choice")
}

func TestPrompter_InputClosed(t *testing.T) {
	p, _ := newTestPrompter("")
	_, err := p.AskRequired(context.Background(), "Username")
	assert.ErrorIs(t, err, ErrInputClosed)
}

func TestPrompter_Credentials(t *testing.T) {
	t.Run("login asks only for missing parts", func(t *testing.T) {
		p, out := newTestPrompter("hunter2\n")
		creds, err := p.LoginCredentials(context.Background(), "ana", "")
		require.NoError(t, err)
		assert.Equal(t, model.LoginCredentials{Username: "ana", Password: "hunter2"}, creds)
		assert.NotContains(t, out.String(), "Username")
	})

	t.Run("register", func(t *testing.T) {
		p, _ := newTestPrompter("ana\nhunter2\nana@example.test\n")
		creds, err := p.RegisterCredentials(context.Background(), "", "", "")
		require.NoError(t, err)
		assert.Equal(t, model.RegisterCredentials{Username: "ana", Email: "ana@example.test", Password: "hunter2"}, creds)
	})
}

func TestNotifier(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	n := NewNotifier(out, errOut)

	n.Success("Contract deleted")
	n.Error(common.NewUserError("Failed to delete contract", errors.New("boom")))

	assert.Contains(t, out.String(), "Contract deleted")
	assert.Contains(t, errOut.String(), "Failed to delete contract")
	assert.NotContains(t, errOut.String(), "boom")
}

func TestUploadProgress(t *testing.T) {
	out := &bytes.Buffer{}
	w := UploadProgress(out, "Uploading")(10)

	n, err := w.Write([]byte("0123456789"))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Contains(t, out.String(), "Uploading")
}

func TestRenderTable(t *testing.T) {
	got := RenderTable([]string{"Title", "Client"}, [][]string{{"MSA", "Acme"}, {"NDA", "Globex"}})
	for _, want := range []string{"Title", "Client", "MSA", "Acme", "NDA", "Globex"} {
		assert.Contains(t, got, want)
	}
	assert.Less(t, strings.Index(got, "MSA"), strings.Index(got, "NDA"))
}

func TestStyleStatus(t *testing.T) {
	for _, s := range model.AllStatuses {
		assert.Contains(t, StyleStatus(s), s.Label())
	}
	assert.Contains(t, StyleHTTPStatus(404), "404")
}
