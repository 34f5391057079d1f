package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/contractdesk/internal/common"
	"github.com/Veraticus/contractdesk/internal/model"
	"github.com/Veraticus/contractdesk/internal/timing"
)

// Logs viewer defaults.
const (
	DefaultLogsPageSize = 10
	DefaultDebounce     = 500 * time.Millisecond
)

// LogFilter names a request-log filter field.
type LogFilter string

// Filter fields in display order.
const (
	FilterUser     LogFilter = "user"
	FilterEndpoint LogFilter = "endpoint"
	FilterDate     LogFilter = "date"
	FilterStatus   LogFilter = "status"
)

// LogFilters lists every filter field.
var LogFilters = []LogFilter{FilterUser, FilterEndpoint, FilterDate, FilterStatus}

// dateShape only checks the shape; impossible dates such as 2024-13-40
// pass and are left to the backend.
var (
	dateShape    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	leadingInt   = regexp.MustCompile(`^[+-]?\d+`)
	dateShapeLen = len("2006-01-02")
)

// ParseLogFilter validates a filter name.
func ParseLogFilter(s string) (LogFilter, error) {
	key := LogFilter(strings.ToLower(strings.TrimSpace(s)))
	for _, f := range LogFilters {
		if f == key {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown log filter %q", common.ErrValidation, s)
}

// parseStatus reads the leading integer of s, ignoring surrounding space
// and trailing characters.
func parseStatus(s string) (int, bool) {
	m := leadingInt.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// LogsAPI is the backend call behind the logs viewer.
type LogsAPI interface {
	Logs(ctx context.Context, query url.Values) (*model.LogsPage, error)
}

// LogsState is what the logs table shows.
type LogsState struct {
	Err        error
	Filters    map[LogFilter]string
	Entries    []model.LogEntry
	Active     []LogFilter
	Page       int
	TotalPages int
	Count      int
	Loading    bool
}

// LogsController holds the request-log filters, page and last result.
// Filter edits are debounced; page changes fetch immediately.
type LogsController struct {
	api       LogsAPI
	debouncer *timing.Debouncer
	onChange  func(LogsState)
	logger    *slog.Logger
	filters   map[LogFilter]string
	applied   map[LogFilter]string
	result    *model.LogsPage
	err       error
	active    []LogFilter
	page      int
	pageSize  int
	seq       uint64
	mu        sync.Mutex
	loading   bool
}

// NewLogsController creates a controller on page 1 with no filters.
func NewLogsController(api LogsAPI, pageSize int, debounce time.Duration) *LogsController {
	if pageSize <= 0 {
		pageSize = DefaultLogsPageSize
	}
	return &LogsController{
		api:       api,
		debouncer: timing.NewDebouncer(debounce),
		logger:    slog.Default().With("component", "logs"),
		filters:   map[LogFilter]string{},
		applied:   map[LogFilter]string{},
		page:      1,
		pageSize:  pageSize,
	}
}

// OnChange registers fn to receive the state after every fetch.
func (c *LogsController) OnChange(fn func(LogsState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// SetFilter edits one filter. A complete-length date that is not shaped
// YYYY-MM-DD, or a status without a leading number, is rejected and the
// filter keeps its previous value. Accepted edits return to page 1 and
// schedule a debounced fetch.
func (c *LogsController) SetFilter(ctx context.Context, key LogFilter, value string) error {
	if _, err := ParseLogFilter(string(key)); err != nil {
		return err
	}
	if err := validateFilter(key, value); err != nil {
		return err
	}

	c.mu.Lock()
	if value == "" {
		delete(c.filters, key)
		c.active = removeFilter(c.active, key)
	} else {
		c.filters[key] = value
		if !containsFilter(c.active, key) {
			c.active = append(c.active, key)
		}
	}
	c.page = 1
	c.mu.Unlock()

	c.scheduleApply(ctx)
	return nil
}

func validateFilter(key LogFilter, value string) error {
	if value == "" {
		return nil
	}
	switch key {
	case FilterDate:
		if len(value) == dateShapeLen && !dateShape.MatchString(value) {
			return common.NewValidationError("date must be YYYY-MM-DD")
		}
	case FilterStatus:
		if _, ok := parseStatus(value); !ok {
			return common.NewValidationError("status must be a number")
		}
	}
	return nil
}

// ClearFilter removes one filter.
func (c *LogsController) ClearFilter(ctx context.Context, key LogFilter) error {
	return c.SetFilter(ctx, key, "")
}

// ClearAll removes every filter and returns to page 1.
func (c *LogsController) ClearAll(ctx context.Context) {
	c.mu.Lock()
	c.filters = map[LogFilter]string{}
	c.active = nil
	c.page = 1
	c.mu.Unlock()

	c.scheduleApply(ctx)
}

func (c *LogsController) scheduleApply(ctx context.Context) {
	c.debouncer.Schedule(func() {
		if ctx.Err() != nil {
			return
		}
		c.mu.Lock()
		c.applied = copyFilters(c.filters)
		c.mu.Unlock()
		_ = c.Fetch(ctx)
	})
}

// ApplyNow skips the debounce and fetches with the current filters.
func (c *LogsController) ApplyNow(ctx context.Context) error {
	c.debouncer.Cancel()
	c.mu.Lock()
	c.applied = copyFilters(c.filters)
	c.mu.Unlock()
	return c.Fetch(ctx)
}

// SetPage moves to page and fetches it immediately.
func (c *LogsController) SetPage(ctx context.Context, page int) error {
	c.mu.Lock()
	if page < 1 {
		page = 1
	}
	if total := c.totalPagesLocked(); total > 0 && page > total {
		page = total
	}
	c.page = page
	c.mu.Unlock()
	return c.Fetch(ctx)
}

// Query builds the request query from the applied filters: values are
// trimmed, the date is sent only when fully shaped and the status only
// when it has a leading number.
func (c *LogsController) Query() url.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return buildQuery(c.page, c.applied)
}

func buildQuery(page int, filters map[LogFilter]string) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	if v := strings.TrimSpace(filters[FilterUser]); v != "" {
		q.Set(string(FilterUser), v)
	}
	if v := strings.TrimSpace(filters[FilterEndpoint]); v != "" {
		q.Set(string(FilterEndpoint), v)
	}
	if v := strings.TrimSpace(filters[FilterDate]); v != "" && dateShape.MatchString(v) {
		q.Set(string(FilterDate), v)
	}
	if n, ok := parseStatus(filters[FilterStatus]); ok {
		q.Set(string(FilterStatus), strconv.Itoa(n))
	}
	return q
}

// Fetch loads the current page with the applied filters. Only the most
// recent fetch updates the state.
func (c *LogsController) Fetch(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	query := buildQuery(c.page, c.applied)
	c.loading = true
	c.mu.Unlock()

	page, err := c.api.Logs(ctx, query)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		return err
	}
	c.loading = false
	if err != nil {
		c.err = common.NewUserError("Failed to fetch logs", err)
		err = c.err
	} else {
		c.err = nil
		c.result = page
	}
	state := c.stateLocked()
	onChange := c.onChange
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug("Logs fetch failed", "error", err)
	}
	if onChange != nil {
		onChange(state)
	}
	return err
}

// TotalPages returns ceil(count / page size) of the last result.
func (c *LogsController) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPagesLocked()
}

func (c *LogsController) totalPagesLocked() int {
	if c.result == nil || c.result.Count <= 0 {
		return 0
	}
	return (c.result.Count + c.pageSize - 1) / c.pageSize
}

// State returns a copy of the viewer state.
func (c *LogsController) State() LogsState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *LogsController) stateLocked() LogsState {
	state := LogsState{
		Err:        c.err,
		Filters:    copyFilters(c.filters),
		Active:     append([]LogFilter(nil), c.active...),
		Page:       c.page,
		TotalPages: c.totalPagesLocked(),
		Loading:    c.loading,
	}
	if c.result != nil {
		state.Entries = append([]model.LogEntry(nil), c.result.Results...)
		state.Count = c.result.Count
	}
	return state
}

// Close drops any pending debounced fetch.
func (c *LogsController) Close() {
	c.debouncer.Cancel()
}

func copyFilters(in map[LogFilter]string) map[LogFilter]string {
	out := make(map[LogFilter]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func containsFilter(list []LogFilter, key LogFilter) bool {
	for _, f := range list {
		if f == key {
			return true
		}
	}
	return false
}

func removeFilter(list []LogFilter, key LogFilter) []LogFilter {
	out := list[:0:0]
	for _, f := range list {
		if f != key {
			out = append(out, f)
		}
	}
	return out
}
