package viewmodel

import (
	"strconv"
	"time"

	"github.com/Veraticus/contractdesk/internal/listview"
	"github.com/Veraticus/contractdesk/internal/model"
	"github.com/Veraticus/contractdesk/internal/optimistic"
	"github.com/Veraticus/contractdesk/internal/tui/themes"
)

// StatusTone maps a contract status to its colour.
func StatusTone(s model.ContractStatus) themes.Tone {
	switch s {
	case model.StatusApproved:
		return themes.ToneSuccess
	case model.StatusRejected, model.StatusCompleted:
		return themes.ToneError
	case model.StatusAnalyzing:
		return themes.ToneInfo
	case model.StatusPending:
		return themes.ToneWarning
	default:
		return themes.ToneNeutral
	}
}

// FormatUploadDate renders a backend timestamp as a calendar date, falling
// back to the raw text when it cannot be parsed.
func FormatUploadDate(s string) string {
	if s == "" {
		return "-"
	}
	t, ok := listview.ParseUploadDate(s, time.Local)
	if !ok {
		return s
	}
	return FormatDate(t)
}

// ContractRow is one line of the contracts table.
type ContractRow struct {
	ID          string
	Title       string
	Client      string
	Date        string
	StatusLabel string
	Size        string
	Signed      string
	Tone        themes.Tone
	Pending     bool
}

// NewContractRow builds the row for c.
func NewContractRow(c model.Contract) ContractRow {
	client := c.Client
	if client == "" {
		client = "-"
	}
	return ContractRow{
		ID:          c.ID,
		Title:       SanitizeForDisplay(c.Title),
		Client:      SanitizeForDisplay(client),
		Date:        FormatUploadDate(c.UploadDate),
		StatusLabel: c.Status.Label(),
		Size:        c.FileSize,
		Signed:      YesNo(c.Signed),
		Tone:        StatusTone(c.Status),
		Pending:     optimistic.IsTempID(c.ID),
	}
}

// Cells returns the table cells in column order.
func (r ContractRow) Cells() []string {
	return []string{r.Title, r.Client, r.Date, r.StatusLabel, r.Signed, r.Size}
}

// ContractColumns are the contracts table headers.
var ContractColumns = []string{"Title", "Client", "Uploaded", "Status", "Signed", "Size"}

// ClientRow is one line of the clients table.
type ClientRow struct {
	ID        string
	Name      string
	Email     string
	CompanyID string
	Created   string
	Status    string
	Tone      themes.Tone
}

// NewClientRow builds the row for c.
func NewClientRow(c model.Client) ClientRow {
	row := ClientRow{
		ID:        c.ID,
		Name:      SanitizeForDisplay(c.Name),
		Email:     orDash(c.Email),
		CompanyID: orDash(c.CompanyID),
		Created:   FormatUploadDate(c.CreatedAt),
		Status:    "Active",
		Tone:      themes.ToneSuccess,
	}
	if !c.Active {
		row.Status = "Inactive"
		row.Tone = themes.ToneNeutral
	}
	return row
}

// Cells returns the table cells in column order.
func (r ClientRow) Cells() []string {
	return []string{r.Name, r.Email, r.CompanyID, r.Created, r.Status}
}

// ClientColumns are the clients table headers.
var ClientColumns = []string{"Name", "Email", "Company", "Created", "Status"}

// LogRow is one line of the request log table.
type LogRow struct {
	User     string
	Method   string
	Endpoint string
	Status   string
	Date     string
	Tone     themes.Tone
}

// NewLogRow builds the row for e.
func NewLogRow(e model.LogEntry) LogRow {
	return LogRow{
		User:     e.UserName(),
		Method:   orDash(e.Method),
		Endpoint: e.Endpoint,
		Status:   strconv.Itoa(e.Status),
		Date:     formatLogDate(e.Date),
		Tone:     HTTPStatusTone(e.Status),
	}
}

// Cells returns the table cells in column order.
func (r LogRow) Cells() []string {
	return []string{r.Date, r.User, r.Method, r.Endpoint, r.Status}
}

// LogColumns are the request log table headers.
var LogColumns = []string{"Time", "User", "Method", "Endpoint", "Status"}

// HTTPStatusTone colours a response code.
func HTTPStatusTone(code int) themes.Tone {
	switch {
	case code >= 500:
		return themes.ToneError
	case code >= 400:
		return themes.ToneWarning
	case code >= 200 && code < 400:
		return themes.ToneSuccess
	default:
		return themes.ToneNeutral
	}
}

func formatLogDate(s string) string {
	t, ok := listview.ParseUploadDate(s, time.Local)
	if !ok {
		return orDash(s)
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// StatusCounts tallies contracts per status for the overview.
func StatusCounts(contracts []model.Contract) map[model.ContractStatus]int {
	counts := make(map[model.ContractStatus]int, len(model.AllStatuses))
	for _, c := range contracts {
		counts[c.Status]++
	}
	return counts
}
