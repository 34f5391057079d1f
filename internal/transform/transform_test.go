package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/contractdesk/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		approved     *bool
		name         string
		analysis     string
		analysisDate string
		want         model.ContractStatus
	}{
		{name: "flag true wins", approved: boolPtr(true), analysis: "Rejected outright", want: model.StatusApproved},
		{name: "flag false wins", approved: boolPtr(false), analysis: "Fully approved", want: model.StatusRejected},
		{name: "flag false without analysis", approved: boolPtr(false), want: model.StatusRejected},
		{name: "approved keyword", analysis: "The contract is approved.", want: model.StatusApproved},
		{name: "compliant keyword", analysis: "Terms are COMPLIANT with policy", want: model.StatusApproved},
		{name: "not approved still reads as approved", analysis: "This contract is not approved.", want: model.StatusApproved},
		{name: "approved wins over rejected", analysis: "Rejected at first, approved after revision", want: model.StatusApproved},
		{name: "rejected keyword", analysis: "Rejected due to liability cap", want: model.StatusRejected},
		{name: "non-compliant keyword", analysis: "Clause 4 is non-compliant", want: model.StatusRejected},
		{name: "not compliant keyword", analysis: "not compliant with GDPR", want: model.StatusRejected},
		{name: "analysis without verdict", analysis: "Summary of terms.", want: model.StatusCompleted},
		{name: "date without analysis", analysisDate: "2024-05-01T10:00:00Z", want: model.StatusAnalyzing},
		{name: "whitespace analysis with date", analysis: "   ", analysisDate: "2024-05-01", want: model.StatusAnalyzing},
		{name: "nothing", want: model.StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.approved, tt.analysis, tt.analysisDate))
		})
	}
}

func TestContract(t *testing.T) {
	t.Run("maps fields", func(t *testing.T) {
		in := model.BackendContract{
			ID:                  "abc",
			Title:               "NDA",
			Client:              "Acme",
			Date:                "2024-03-01",
			CreatedAt:           "2024-02-01",
			Analysis:            "Looks approved",
			ModelUsed:           "gpt",
			EvaluationReasoning: "ok",
			Clauses:             []string{"a", "b"},
			Text:                strings.Repeat("x", 2048),
			Signed:              true,
		}

		got := Contract(in)

		assert.Equal(t, "abc", got.ID)
		assert.Equal(t, "NDA", got.Title)
		assert.Equal(t, "Acme", got.Client)
		assert.True(t, got.Signed)
		assert.Equal(t, "2024-03-01", got.UploadDate)
		assert.Equal(t, model.StatusApproved, got.Status)
		assert.Equal(t, "2.0 KB", got.FileSize)
		require.NotNil(t, got.AnalysisResults)
		assert.Equal(t, "Looks approved", got.AnalysisResults.Reasoning)
		assert.Equal(t, 2, got.AnalysisResults.ClauseCount)
		assert.False(t, got.AnalysisResults.Approved)
		assert.Nil(t, got.Approved)
	})

	t.Run("falls back to created_at", func(t *testing.T) {
		got := Contract(model.BackendContract{ID: "1", CreatedAt: "2024-01-01"})
		assert.Equal(t, "2024-01-01", got.UploadDate)
	})

	t.Run("defaults for empty record", func(t *testing.T) {
		got := Contract(model.BackendContract{})
		assert.NotNil(t, got.Clauses)
		assert.Empty(t, got.Clauses)
		assert.Equal(t, "0.1 KB", got.FileSize)
		assert.Equal(t, model.StatusPending, got.Status)
		assert.Nil(t, got.AnalysisResults)
	})

	t.Run("approved flag is copied", func(t *testing.T) {
		flag := true
		in := model.BackendContract{Approved: &flag, Analysis: "fine"}
		got := Contract(in)
		flag = false
		require.NotNil(t, got.Approved)
		assert.True(t, *got.Approved)
		assert.True(t, got.AnalysisResults.Approved)
	})

	t.Run("known backend error is not an analysis", func(t *testing.T) {
		got := Contract(model.BackendContract{
			Analysis:     "Contract analysis failed: No analysis available.",
			AnalysisDate: "2024-01-01",
		})
		assert.Empty(t, got.Analysis)
		assert.Nil(t, got.AnalysisResults)
		assert.Equal(t, model.StatusAnalyzing, got.Status)
	})

	t.Run("idempotent", func(t *testing.T) {
		in := model.BackendContract{ID: "x", Analysis: "rejected", Text: "abc"}
		assert.Equal(t, Contract(in), Contract(in))
	})
}

func TestFormatKB(t *testing.T) {
	tests := []struct {
		name string
		want string
		size int64
	}{
		{name: "zero floors", size: 0, want: "0.1 KB"},
		{name: "tiny floors", size: 10, want: "0.1 KB"},
		{name: "one kb", size: 1024, want: "1.0 KB"},
		{name: "fractional", size: 1536, want: "1.5 KB"},
		{name: "large", size: 10 * 1024 * 1024, want: "10240.0 KB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatKB(tt.size))
		})
	}
}

func TestClient(t *testing.T) {
	inactive := false

	tests := []struct {
		name string
		in   model.BackendClient
		want model.Client
	}{
		{
			name: "absent active defaults true",
			in:   model.BackendClient{ID: "c1", Name: "Acme", Email: "a@acme.io", CompanyID: "AC-1", CreatedAt: "2024-01-01"},
			want: model.Client{ID: "c1", Name: "Acme", Email: "a@acme.io", CompanyID: "AC-1", CreatedAt: "2024-01-01", Active: true},
		},
		{
			name: "explicit inactive",
			in:   model.BackendClient{ID: "c2", Name: "Globex", Active: &inactive},
			want: model.Client{ID: "c2", Name: "Globex", Active: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Client(tt.in))
		})
	}
}

func TestSlices(t *testing.T) {
	assert.Empty(t, Contracts(nil))
	assert.NotNil(t, Contracts(nil))
	assert.Len(t, Clients([]model.BackendClient{{ID: "1"}, {ID: "2"}}), 2)
}

func TestIsKnownAnalysisError(t *testing.T) {
	assert.True(t, IsKnownAnalysisError("  Contract analysis failed: No successful chunk analyses.\n"))
	assert.False(t, IsKnownAnalysisError("Contract analysis failed: partially"))
	assert.False(t, IsKnownAnalysisError(""))
}

func TestCleanAnalysis(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "# Title\n\nBody", want: "# Title\n\nBody"},
		{name: "think block", in: "<think>\nreasoning\n</think>\n# Verdict", want: "# Verdict"},
		{name: "outer fence", in: "```markdown\n# A\n\nB\n```", want: "# A\n\nB"},
		{name: "crlf and blank lines", in: "A\r\n\r\n\r\n\r\nB", want: "A\n\nB"},
		{name: "trailing spaces", in: "A   \nB", want: "A\nB"},
		{name: "inner fence kept", in: "Intro\n```\ncode\n```", want: "Intro\n```\ncode\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanAnalysis(tt.in))
		})
	}
}
