package listview

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/contractdesk/internal/api"
	"github.com/Veraticus/contractdesk/internal/common"
	"github.com/Veraticus/contractdesk/internal/model"
	"github.com/Veraticus/contractdesk/internal/optimistic"
	"github.com/Veraticus/contractdesk/internal/transform"
)

// ContractsAPI is the backend surface the contracts list needs.
type ContractsAPI interface {
	ListContracts(ctx context.Context) ([]model.BackendContract, error)
	GetContract(ctx context.Context, id string) (*model.BackendContract, error)
	CreateContract(ctx context.Context, in model.ContractCreate) (*model.CreateResponse, error)
	UploadContract(ctx context.Context, in api.ContractUpload) (*model.UploadResponse, error)
	UpdateContract(ctx context.Context, id string, in model.ContractUpdate) (*model.MessageResponse, error)
	DeleteContract(ctx context.Context, id string) error
	GetContractAnalysis(ctx context.Context, id string) (*model.AnalysisResponse, error)
	ReanalyzeContract(ctx context.Context, id string, in api.ReanalyzeUpload) (*model.ReanalyzeResponse, error)
	ExtractClauses(ctx context.Context, id string) (*model.ClausesResponse, error)
}

// ContractFilters are the active list filters.
type ContractFilters struct {
	Search string
	Status string
	Client string
	Date   DateFilter
}

// AnalysisView is what the analysis panel shows for a contract.
type AnalysisView struct {
	Contract     model.Contract
	Reasoning    string
	ModelUsed    string
	AnalysisDate string
	Approved     *bool
}

// ClauseResult is the outcome of a clause extraction.
type ClauseResult struct {
	Error   string
	Clauses []model.Clause
	Count   int
}

// ContractsController owns the contracts list state.
type ContractsController struct {
	api     ContractsAPI
	notify  Notifier
	logger  *slog.Logger
	now     func() time.Time
	list    *optimistic.List[model.Contract]
	clauses map[string]ClauseResult
	filters ContractFilters
	pager   Paginator
	mu      sync.Mutex
	busy    bool
	loaded  bool
}

// NewContractsController creates a controller. notify may be nil.
func NewContractsController(api ContractsAPI, notify Notifier, pageSize int) *ContractsController {
	return &ContractsController{
		api:     api,
		notify:  notifierOrNop(notify),
		logger:  slog.Default().With("component", "contracts"),
		now:     time.Now,
		list:    optimistic.NewList[model.Contract](nil),
		clauses: map[string]ClauseResult{},
		filters: ContractFilters{Status: FilterAll, Client: FilterAll, Date: DateAll},
		pager:   NewPaginator(pageSize),
	}
}

// SetClock replaces the time source used for placeholders and date filters.
func (c *ContractsController) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Load fetches every contract, replacing the current list.
func (c *ContractsController) Load(ctx context.Context) error {
	raw, err := c.api.ListContracts(ctx)
	if err != nil {
		err = common.NewUserError("Failed to fetch contracts", err)
		c.notify.Error(err)
		return err
	}

	contracts := transform.Contracts(raw)
	c.list.Reset(contracts)
	items := c.list.Items()

	c.mu.Lock()
	c.loaded = true
	c.pager.SetPage(c.pager.Page(), len(filterContracts(items, c.filters, c.now())))
	c.mu.Unlock()

	c.logger.Debug("Loaded contracts", "count", len(contracts), "pending", c.list.PendingCount())
	return nil
}

// Loaded reports whether a load has completed.
func (c *ContractsController) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// All returns every contract, placeholders included, in display order.
func (c *ContractsController) All() []model.Contract {
	return c.list.Items()
}

// Get returns the contract with id.
func (c *ContractsController) Get(id string) (model.Contract, bool) {
	for _, ct := range c.list.Items() {
		if ct.ID == id {
			return ct, true
		}
	}
	return model.Contract{}, false
}

// Filters returns the active filters.
func (c *ContractsController) Filters() ContractFilters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// SetSearch changes the search text and returns to page 1.
func (c *ContractsController) SetSearch(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.Search = q
	c.pager.Reset()
}

// SetStatusFilter filters by status ("all" or a status name) and returns
// to page 1.
func (c *ContractsController) SetStatusFilter(status string) error {
	parsed, err := ParseStatusFilter(status)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.Status = parsed
	c.pager.Reset()
	return nil
}

// SetClientFilter filters by exact client name and returns to page 1.
func (c *ContractsController) SetClientFilter(client string) {
	client = strings.TrimSpace(client)
	if client == "" {
		client = FilterAll
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.Client = client
	c.pager.Reset()
}

// SetDateFilter filters by upload date window and returns to page 1.
func (c *ContractsController) SetDateFilter(filter DateFilter) error {
	parsed, err := ParseDateFilter(string(filter))
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.Date = parsed
	c.pager.Reset()
	return nil
}

// UniqueClients returns the sorted distinct non-empty client names.
func (c *ContractsController) UniqueClients() []string {
	seen := map[string]struct{}{}
	for _, ct := range c.list.Items() {
		if ct.Client != "" {
			seen[ct.Client] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Filtered returns the contracts matching every active filter, evaluated
// against now.
func (c *ContractsController) Filtered(now time.Time) []model.Contract {
	c.mu.Lock()
	filters := c.filters
	c.mu.Unlock()
	return filterContracts(c.list.Items(), filters, now)
}

func filterContracts(items []model.Contract, f ContractFilters, now time.Time) []model.Contract {
	out := make([]model.Contract, 0, len(items))
	for _, ct := range items {
		if !matchContractSearch(ct, f.Search) {
			continue
		}
		if !matchStatus(ct, f.Status) {
			continue
		}
		if !matchClient(ct, f.Client) {
			continue
		}
		if !matchDate(ct, f.Date, now) {
			continue
		}
		out = append(out, ct)
	}
	return out
}

// Visible returns the filtered contracts on the current page.
func (c *ContractsController) Visible(now time.Time) []model.Contract {
	filtered := c.Filtered(now)
	c.mu.Lock()
	defer c.mu.Unlock()
	return Paginate(&c.pager, filtered)
}

// Page returns the current page.
func (c *ContractsController) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.Page()
}

// TotalPages returns the number of pages of filtered contracts.
func (c *ContractsController) TotalPages(now time.Time) int {
	n := len(c.Filtered(now))
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.TotalPages(n)
}

// SetPage moves to page, clamped to the available pages.
func (c *ContractsController) SetPage(page int, now time.Time) {
	n := len(c.Filtered(now))
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pager.SetPage(page, n)
}

// Upload shows a placeholder at the head of the list while the document is
// uploaded and analysed. On success the placeholder becomes the stored
// contract; on failure it is removed.
func (c *ContractsController) Upload(ctx context.Context, form UploadForm) (*model.Contract, error) {
	form = form.trimmed()
	if err := common.ValidateStruct(form); err != nil {
		err = common.NewUserError("Please fill all fields and select a file.", err)
		c.notify.Error(err)
		return nil, err
	}
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	now := c.clock()
	tempID := optimistic.NewTempID(now)
	c.list.Insert(model.Contract{
		ID:         tempID,
		Title:      form.Title,
		Client:     form.Client,
		Status:     model.StatusAnalyzing,
		UploadDate: now.Format(time.DateOnly),
		FileSize:   transform.FormatKB(form.Size),
		Clauses:    []string{},
	}, tempID)

	resp, err := c.api.UploadContract(ctx, api.ContractUpload{
		Title:  form.Title,
		Client: form.Client,
		Signed: form.Signed,
		File: api.FileUpload{
			Name:     form.FileName,
			Reader:   form.File,
			Progress: form.Progress,
		},
	})
	if err == nil && resp.Error != "" {
		err = common.NewSoftError(resp.Error)
	}
	if err != nil {
		c.list.Discard(tempID)
		if !common.IsSoft(err) {
			err = common.NewUserError("Failed to upload contract.", err)
		}
		c.notify.Error(err)
		return nil, err
	}

	stamp := now.UTC().Format(time.RFC3339)
	contract := transform.Contract(model.BackendContract{
		ID:                  resp.ContractID,
		Title:               form.Title,
		Client:              form.Client,
		Signed:              false,
		Date:                now.Format(time.DateOnly),
		CreatedAt:           stamp,
		UpdatedAt:           stamp,
		Analysis:            resp.Analysis,
		ModelUsed:           resp.ModelUsed,
		AnalysisDate:        stamp,
		Approved:            resp.Approved,
		EvaluationReasoning: resp.EvaluationReasoning,
	})
	// A reload during the upload may already have listed the new contract.
	c.list.Remove(func(ct model.Contract) bool { return ct.ID == contract.ID })
	c.list.Confirm(tempID, contract)

	c.notify.Success("Contract uploaded and analyzed successfully!")
	return &contract, nil
}

// Create stores a contract from plain text and reloads the list. The
// backend does not analyse it; the new contract starts pending.
func (c *ContractsController) Create(ctx context.Context, form TextForm) (string, error) {
	form = form.trimmed()
	if err := common.ValidateStruct(form); err != nil {
		err = common.NewUserError("Title, client and text are required.", err)
		c.notify.Error(err)
		return "", err
	}
	if err := c.begin(); err != nil {
		return "", err
	}
	defer c.end()

	resp, err := c.api.CreateContract(ctx, model.ContractCreate{
		Title:  form.Title,
		Client: form.Client,
		Text:   form.Text,
		Date:   c.clock().Format(time.DateOnly),
		Signed: form.Signed,
	})
	if err != nil {
		err = common.NewUserError("Failed to create contract.", err)
		c.notify.Error(err)
		return "", err
	}

	c.notify.Success("Contract created successfully!")
	return resp.ContractID, c.Load(ctx)
}

// Update validates form, saves the contract and reloads the list.
func (c *ContractsController) Update(ctx context.Context, id string, form ContractForm) error {
	form = form.trimmed()
	if err := common.ValidateStruct(form); err != nil {
		err = common.NewUserError("Title and client are required.", err)
		c.notify.Error(err)
		return err
	}
	if err := validContractID(id); err != nil {
		c.notify.Error(err)
		return err
	}
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	if _, err := c.api.UpdateContract(ctx, id, model.ContractUpdate{
		Title:  form.Title,
		Client: form.Client,
		Signed: form.Signed,
	}); err != nil {
		err = common.NewUserError("Failed to update contract.", err)
		c.notify.Error(err)
		return err
	}

	c.notify.Success("Contract updated successfully!")
	return c.Load(ctx)
}

// Delete removes the contract after confirm approves it, then reloads the
// list. A declined confirmation returns false with no error.
func (c *ContractsController) Delete(ctx context.Context, id string, confirm func(model.Contract) bool) (bool, error) {
	if err := validContractID(id); err != nil {
		c.notify.Error(err)
		return false, err
	}
	contract, ok := c.Get(id)
	if !ok {
		contract = model.Contract{ID: id}
	}
	if confirm != nil && !confirm(contract) {
		return false, nil
	}
	if err := c.begin(); err != nil {
		return false, err
	}
	defer c.end()

	if err := c.api.DeleteContract(ctx, id); err != nil {
		err = common.NewUserError("Failed to delete contract.", err)
		c.notify.Error(err)
		return false, err
	}

	c.mu.Lock()
	delete(c.clauses, id)
	c.mu.Unlock()

	c.notify.Success("Contract deleted successfully!")
	if err := c.Load(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// ViewAnalysis returns the analysis of a stored contract. The contract's
// own analysis is used when it carries both analysis and reasoning;
// otherwise the analysis endpoint is consulted.
func (c *ContractsController) ViewAnalysis(ctx context.Context, id string) (*AnalysisView, error) {
	if err := validContractID(id); err != nil {
		c.notify.Error(err)
		return nil, err
	}

	raw, err := c.api.GetContract(ctx, id)
	if err != nil {
		err = common.NewUserError("Failed to fetch analysis details", err)
		c.notify.Error(err)
		return nil, err
	}
	contract := transform.Contract(*raw)

	view := &AnalysisView{
		Contract:     contract,
		ModelUsed:    raw.ModelUsed,
		AnalysisDate: raw.AnalysisDate,
		Approved:     contract.Approved,
	}

	if contract.Analysis != "" && raw.EvaluationReasoning != "" {
		view.Reasoning = contract.Analysis
		return view, nil
	}

	analysis, err := c.api.GetContractAnalysis(ctx, id)
	if err != nil {
		err = common.NewUserError("Failed to fetch analysis details", err)
		c.notify.Error(err)
		return nil, err
	}
	if analysis.Error != "" {
		err = common.NewSoftError(analysis.Error)
		c.notify.Error(err)
		return nil, err
	}
	if transform.IsKnownAnalysisError(analysis.Analysis) {
		err = common.NewSoftError(strings.TrimSpace(analysis.Analysis))
		c.notify.Error(err)
		return nil, err
	}

	view.Reasoning = analysis.Analysis
	if analysis.ModelUsed != "" {
		view.ModelUsed = analysis.ModelUsed
	}
	if analysis.AnalysisDate != "" {
		view.AnalysisDate = analysis.AnalysisDate
	}
	return view, nil
}

// Reanalyze uploads a new document for a stored contract and updates the
// entry in place with the new verdict.
func (c *ContractsController) Reanalyze(ctx context.Context, id string, form ReanalyzeForm) (*model.Contract, error) {
	if err := validContractID(id); err != nil {
		c.notify.Error(err)
		return nil, err
	}
	form.Title = strings.TrimSpace(form.Title)
	if err := common.ValidateStruct(form); err != nil {
		err = common.NewUserError("Please select a file to reanalyze.", err)
		c.notify.Error(err)
		return nil, err
	}
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	current, _ := c.Get(id)
	title := form.Title
	if title == "" {
		title = current.Title
	}

	resp, err := c.api.ReanalyzeContract(ctx, id, api.ReanalyzeUpload{
		Title:  title,
		Client: current.Client,
		File: api.FileUpload{
			Name:     form.FileName,
			Reader:   form.File,
			Progress: form.Progress,
		},
	})
	if err == nil && resp.Error != "" {
		err = common.NewSoftError(resp.Error)
	}
	if err != nil {
		if !common.IsSoft(err) {
			err = common.NewUserError("Failed to reanalyze contract.", err)
		}
		c.notify.Error(err)
		return nil, err
	}

	apply := func(ct model.Contract) model.Contract {
		approved := resp.Approved
		if title != "" {
			ct.Title = title
		}
		ct.Approved = &approved
		if approved {
			ct.Status = model.StatusApproved
		} else {
			ct.Status = model.StatusRejected
		}
		reasoning := resp.EvaluationReasoning
		if reasoning == "" {
			reasoning = resp.Analysis
		}
		ct.AnalysisResults = &model.AnalysisResults{Approved: approved, Reasoning: reasoning}
		if resp.Analysis != "" {
			ct.Analysis = resp.Analysis
		}
		ct.EvaluationReasoning = resp.EvaluationReasoning
		if resp.ModelUsed != "" {
			ct.ModelUsed = resp.ModelUsed
		}
		return ct
	}

	updated := apply(current)
	if current.ID == "" {
		updated.ID = id
	}
	c.list.Update(func(ct model.Contract) bool { return ct.ID == id }, apply)

	c.notify.Success("Contract reanalyzed successfully!")
	return &updated, nil
}

// ExtractClauses extracts clauses for a contract and caches the result.
// The contract's status is not affected.
func (c *ContractsController) ExtractClauses(ctx context.Context, id string) (ClauseResult, error) {
	if err := validContractID(id); err != nil {
		c.notify.Error(err)
		return ClauseResult{}, err
	}

	resp, err := c.api.ExtractClauses(ctx, id)
	if err != nil {
		result := ClauseResult{Error: "Failed to extract clauses", Clauses: []model.Clause{}}
		c.storeClauses(id, result)
		err = common.NewUserError(result.Error, err)
		c.notify.Error(err)
		return result, err
	}

	if resp.Error != "" {
		result := ClauseResult{Error: resp.Error, Clauses: []model.Clause{}}
		c.storeClauses(id, result)
		err = common.NewSoftError(resp.Error)
		c.notify.Error(err)
		return result, err
	}

	clauses := resp.Clauses
	if clauses == nil {
		clauses = []model.Clause{}
	}
	count := resp.ClauseCount
	if count == 0 {
		count = len(clauses)
	}
	result := ClauseResult{Clauses: clauses, Count: count}
	c.storeClauses(id, result)

	c.notify.Success(fmt.Sprintf("%d clauses extracted successfully", count))
	return result, nil
}

// Clauses returns the cached extraction result for id.
func (c *ContractsController) Clauses(id string) (ClauseResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.clauses[id]
	return r, ok
}

func (c *ContractsController) storeClauses(id string, r ClauseResult) {
	c.mu.Lock()
	c.clauses[id] = r
	c.mu.Unlock()
}

// Busy reports whether a mutating request is in flight.
func (c *ContractsController) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *ContractsController) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return common.ErrBusy
	}
	c.busy = true
	return nil
}

func (c *ContractsController) end() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

func (c *ContractsController) clock() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}

// validContractID rejects ids that cannot name a stored contract.
func validContractID(id string) error {
	switch {
	case id == "", id == "undefined", id == "null":
		return common.NewUserError("Invalid contract ID", fmt.Errorf("%w: %q", common.ErrInvalidID, id))
	case optimistic.IsTempID(id):
		return common.NewUserError("Contract is still being analyzed", fmt.Errorf("%w: %q is a placeholder", common.ErrInvalidID, id))
	default:
		return nil
	}
}
