package model

// ContractStatus is the display status derived for a contract.
type ContractStatus string

const (
	// StatusPending means no analysis has been requested or recorded.
	StatusPending ContractStatus = "pending"
	// StatusAnalyzing means analysis is in progress.
	StatusAnalyzing ContractStatus = "analyzing"
	// StatusCompleted means analysis finished without an approval verdict.
	StatusCompleted ContractStatus = "completed"
	// StatusApproved means the contract was approved.
	StatusApproved ContractStatus = "approved"
	// StatusRejected means the contract was not approved.
	StatusRejected ContractStatus = "rejected"
)

// AllStatuses lists the statuses in filter-menu order.
var AllStatuses = []ContractStatus{
	StatusPending,
	StatusAnalyzing,
	StatusCompleted,
	StatusApproved,
	StatusRejected,
}

// Valid reports whether s is one of the known statuses.
func (s ContractStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Label returns the human label shown in lists.
func (s ContractStatus) Label() string {
	switch s {
	case StatusApproved:
		return "Approved"
	case StatusRejected, StatusCompleted:
		return "Not Approved"
	case StatusAnalyzing:
		return "Analyzing"
	case StatusPending:
		return "Pending"
	default:
		return "Unknown"
	}
}

// BackendContract is a contract record as the backend returns it.
type BackendContract struct {
	Approved            *bool    `json:"approved,omitempty"`
	ID                  string   `json:"_id"`
	Title               string   `json:"title"`
	Client              string   `json:"client,omitempty"`
	Date                string   `json:"date,omitempty"`
	CreatedAt           string   `json:"created_at"`
	UpdatedAt           string   `json:"updated_at,omitempty"`
	Analysis            string   `json:"analysis,omitempty"`
	ModelUsed           string   `json:"model_used,omitempty"`
	AnalysisDate        string   `json:"analysis_date,omitempty"`
	EvaluationReasoning string   `json:"evaluation_reasoning,omitempty"`
	Text                string   `json:"text,omitempty"`
	ClientID            string   `json:"client_id,omitempty"`
	Clauses             []string `json:"clauses,omitempty"`
	Signed              bool     `json:"signed"`
}

// AnalysisResults summarises an analysis verdict for display.
type AnalysisResults struct {
	Reasoning   string
	ClauseCount int
	Approved    bool
}

// Contract is the view model of a contract.
type Contract struct {
	AnalysisResults     *AnalysisResults
	Approved            *bool
	ID                  string
	Title               string
	Client              string
	UploadDate          string
	Status              ContractStatus
	FileSize            string
	Analysis            string
	EvaluationReasoning string
	ModelUsed           string
	Clauses             []string
	Signed              bool
}

// ContractUpdate is the body of a contract update.
type ContractUpdate struct {
	Title  string `json:"title"`
	Client string `json:"client"`
	Signed bool   `json:"signed"`
}

// ContractCreate is the JSON body for creating a contract from raw text.
type ContractCreate struct {
	Title  string `json:"title"`
	Client string `json:"client"`
	Text   string `json:"text"`
	Date   string `json:"date,omitempty"`
	Signed bool   `json:"signed"`
}
