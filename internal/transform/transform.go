// Package transform maps backend records onto view models.
//
// Every function here is pure: the same input always yields the same output,
// and missing optional fields fall back to safe defaults instead of failing.
package transform

import (
	"fmt"
	"strings"

	"github.com/Veraticus/contractdesk/internal/model"
)

// minFileSizeKB is the smallest size shown for a contract.
const minFileSizeKB = 0.1

// Analysis keywords, in the order DeriveStatus checks them. Any text
// containing "approved" is approved, even "not approved". The rejection
// phrases come before "compliant" so "non-compliant" still rejects.
const approvedKeyword = "approved"

var (
	rejectionKeywords = []string{"non-compliant", "not compliant", "rejected"}
	approvalKeywords  = []string{"compliant"}
)

// knownAnalysisErrors are messages the backend stores in place of an
// analysis when the AI call fails.
var knownAnalysisErrors = []string{
	"Contract analysis temporarily unavailable due to connection issues. Please try again later.",
	"Contract analysis temporarily unavailable due to network timeout. Please try again later.",
	"Contract analysis failed: No successful chunk analyses.",
	"Contract analysis failed: No analysis available.",
}

// Contract maps a backend contract onto its view model.
func Contract(c model.BackendContract) model.Contract {
	analysis := c.Analysis
	if IsKnownAnalysisError(analysis) {
		analysis = ""
	}

	clauses := c.Clauses
	if clauses == nil {
		clauses = []string{}
	}

	out := model.Contract{
		ID:                  c.ID,
		Title:               c.Title,
		Client:              c.Client,
		Signed:              c.Signed,
		UploadDate:          firstNonEmpty(c.Date, c.CreatedAt),
		Status:              DeriveStatus(c.Approved, analysis, c.AnalysisDate),
		FileSize:            EstimateFileSize(c.Text),
		Clauses:             clauses,
		Analysis:            analysis,
		EvaluationReasoning: c.EvaluationReasoning,
		ModelUsed:           c.ModelUsed,
		Approved:            copyBool(c.Approved),
	}

	if strings.TrimSpace(analysis) != "" {
		out.AnalysisResults = &model.AnalysisResults{
			Approved:    c.Approved != nil && *c.Approved,
			Reasoning:   analysis,
			ClauseCount: len(clauses),
		}
	}

	return out
}

// Contracts maps a slice of backend contracts.
func Contracts(in []model.BackendContract) []model.Contract {
	out := make([]model.Contract, 0, len(in))
	for _, c := range in {
		out = append(out, Contract(c))
	}
	return out
}

// DeriveStatus computes the display status. The explicit flag always wins;
// analysis keywords are only consulted when the flag is absent.
//
// The keyword fallback can disagree with the backend's own verdict, for
// example "not approved" reads as approved. Both paths are kept so older
// records without the flag still get a status.
func DeriveStatus(approved *bool, analysis, analysisDate string) model.ContractStatus {
	if approved != nil {
		if *approved {
			return model.StatusApproved
		}
		return model.StatusRejected
	}

	text := strings.ToLower(strings.TrimSpace(analysis))
	if text != "" {
		if strings.Contains(text, approvedKeyword) {
			return model.StatusApproved
		}
		for _, kw := range rejectionKeywords {
			if strings.Contains(text, kw) {
				return model.StatusRejected
			}
		}
		for _, kw := range approvalKeywords {
			if strings.Contains(text, kw) {
				return model.StatusApproved
			}
		}
		return model.StatusCompleted
	}

	if strings.TrimSpace(analysisDate) != "" {
		return model.StatusAnalyzing
	}

	return model.StatusPending
}

// EstimateFileSize estimates a document's size from its extracted text.
func EstimateFileSize(text string) string {
	return FormatKB(int64(len(text)))
}

// FormatKB renders a byte count in kilobytes with one decimal, floored at 0.1 KB.
func FormatKB(size int64) string {
	kb := float64(size) / 1024
	if kb < minFileSizeKB {
		kb = minFileSizeKB
	}
	return fmt.Sprintf("%.1f KB", kb)
}

// IsKnownAnalysisError reports whether text is one of the backend's
// analysis failure messages rather than an analysis.
func IsKnownAnalysisError(text string) bool {
	text = strings.TrimSpace(text)
	for _, known := range knownAnalysisErrors {
		if text == known {
			return true
		}
	}
	return false
}

// Client maps a backend client onto its view model.
func Client(c model.BackendClient) model.Client {
	return model.Client{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		CompanyID: c.CompanyID,
		CreatedAt: c.CreatedAt,
		Active:    c.Active == nil || *c.Active,
	}
}

// Clients maps a slice of backend clients.
func Clients(in []model.BackendClient) []model.Client {
	out := make([]model.Client, 0, len(in))
	for _, c := range in {
		out = append(out, Client(c))
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
