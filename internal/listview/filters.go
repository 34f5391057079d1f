package listview

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/contractdesk/internal/common"
	"github.com/Veraticus/contractdesk/internal/model"
)

// FilterAll disables a filter.
const FilterAll = "all"

// DateFilter selects contracts by upload date.
type DateFilter string

// Date windows.
const (
	DateAll   DateFilter = FilterAll
	DateToday DateFilter = "today"
	DateWeek  DateFilter = "week"
	DateMonth DateFilter = "month"
)

// DateFilters lists the windows in menu order.
var DateFilters = []DateFilter{DateAll, DateToday, DateWeek, DateMonth}

// ParseDateFilter validates a date window name. "" means all.
func ParseDateFilter(s string) (DateFilter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DateAll, nil
	}
	for _, f := range DateFilters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown date filter %q (want all, today, week or month)", common.ErrValidation, s)
}

// ParseStatusFilter validates a status filter. "" means all.
func ParseStatusFilter(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == FilterAll {
		return FilterAll, nil
	}
	if !model.ContractStatus(s).Valid() {
		return "", fmt.Errorf("%w: unknown status %q", common.ErrValidation, s)
	}
	return s, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

func matchClientSearch(c model.Client, q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	return containsFold(c.Name, q) || containsFold(c.Email, q) || containsFold(c.CompanyID, q)
}

func matchContractSearch(c model.Contract, q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	return containsFold(c.Title, q) || containsFold(c.Client, q)
}

// matchStatus also lets "rejected" match entries whose verdict is an
// explicit false even when the derived status says otherwise.
func matchStatus(c model.Contract, status string) bool {
	if status == "" || status == FilterAll {
		return true
	}
	if model.ContractStatus(status) == c.Status {
		return true
	}
	if model.ContractStatus(status) == model.StatusRejected {
		return c.AnalysisResults != nil && c.Approved != nil && !*c.Approved
	}
	return false
}

// matchClient never excludes contracts that have no client.
func matchClient(c model.Contract, client string) bool {
	if client == "" || client == FilterAll || c.Client == "" {
		return true
	}
	return c.Client == client
}

var uploadDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseUploadDate parses the date formats the backend emits. Date-only
// values are taken as midnight in loc.
func ParseUploadDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range uploadDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

func matchDate(c model.Contract, filter DateFilter, now time.Time) bool {
	if filter == "" || filter == DateAll {
		return true
	}
	date, ok := ParseUploadDate(c.UploadDate, now.Location())
	if !ok {
		return false
	}

	switch filter {
	case DateToday:
		y1, m1, d1 := date.Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case DateWeek:
		weekAgo := now.AddDate(0, 0, -7)
		return !date.Before(weekAgo) && !date.After(now)
	case DateMonth:
		return date.Year() == now.Year() && date.Month() == now.Month()
	default:
		return true
	}
}
