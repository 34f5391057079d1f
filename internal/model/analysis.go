package model

import (
	"encoding/json"
	"strings"
)

// AnalysisResponse is the body of GET /api/contracts/{id}/analysis/.
type AnalysisResponse struct {
	Analysis       string `json:"analysis"`
	ModelUsed      string `json:"model_used"`
	AnalysisDate   string `json:"analysis_date,omitempty"`
	ContractTitle  string `json:"contract_title,omitempty"`
	ContractClient string `json:"contract_client,omitempty"`
	Error          string `json:"error,omitempty"`
}

// UploadResponse is returned when a contract file is uploaded.
type UploadResponse struct {
	Approved            *bool  `json:"approved,omitempty"`
	Message             string `json:"message"`
	ContractID          string `json:"contract_id"`
	Analysis            string `json:"analysis,omitempty"`
	ModelUsed           string `json:"model_used,omitempty"`
	EvaluationReasoning string `json:"evaluation_reasoning,omitempty"`
	Error               string `json:"error,omitempty"`
}

// CreateResponse is returned when a contract is created from JSON.
type CreateResponse struct {
	Message    string `json:"message"`
	ContractID string `json:"contract_id"`
}

// MessageResponse is returned by update and delete calls.
type MessageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ReanalyzeResponse is returned when a contract is analysed again.
type ReanalyzeResponse struct {
	Message             string `json:"message"`
	Analysis            string `json:"analysis"`
	ModelUsed           string `json:"model_used"`
	EvaluationReasoning string `json:"evaluation_reasoning"`
	Error               string `json:"error,omitempty"`
	Approved            bool   `json:"approved"`
}

// EvaluationResponse is returned by the evaluate endpoint.
type EvaluationResponse struct {
	Reasoning string `json:"reasoning"`
	Error     string `json:"error,omitempty"`
	Approved  bool   `json:"approved"`
}

// Clause is a single extracted clause.
type Clause struct {
	Type string
	Text string
}

// UnmarshalJSON accepts either a bare string or an object.
func (c *Clause) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		return nil
	}

	var obj struct {
		Type    string `json:"type"`
		Title   string `json:"title"`
		Text    string `json:"text"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	c.Type = firstNonEmpty(obj.Type, obj.Title)
	c.Text = firstNonEmpty(obj.Text, obj.Content)
	return nil
}

// ClausesResponse is the body of POST /api/contracts/{id}/clauses/.
type ClausesResponse struct {
	Error       string   `json:"error,omitempty"`
	Clauses     []Clause `json:"clauses"`
	ClauseCount int      `json:"clause_count"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
