package listview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/contractdesk/internal/common"
	"github.com/Veraticus/contractdesk/internal/model"
	"github.com/Veraticus/contractdesk/internal/transform"
)

// ClientsAPI is the backend surface the clients list needs.
type ClientsAPI interface {
	ListClients(ctx context.Context) ([]model.BackendClient, error)
	CreateClient(ctx context.Context, in model.ClientInput) (*model.BackendClient, error)
	UpdateClient(ctx context.Context, id string, in model.ClientInput) (*model.BackendClient, error)
	DeleteClient(ctx context.Context, id string) error
	ListClientContracts(ctx context.Context, id string) ([]model.BackendContract, error)
}

// ClientDetail is a client together with its contracts.
type ClientDetail struct {
	Contracts []model.Contract
	Client    model.Client
}

// ClientsController owns the clients list state.
type ClientsController struct {
	api     ClientsAPI
	notify  Notifier
	logger  *slog.Logger
	search  string
	clients []model.Client
	pager   Paginator
	mu      sync.Mutex
	busy    bool
	loaded  bool
}

// NewClientsController creates a controller. notify may be nil.
func NewClientsController(api ClientsAPI, notify Notifier, pageSize int) *ClientsController {
	return &ClientsController{
		api:    api,
		notify: notifierOrNop(notify),
		logger: slog.Default().With("component", "clients"),
		pager:  NewPaginator(pageSize),
	}
}

// Load fetches every client, replacing the current list.
func (c *ClientsController) Load(ctx context.Context) error {
	raw, err := c.api.ListClients(ctx)
	if err != nil {
		err = common.NewUserError("Failed to fetch clients", err)
		c.notify.Error(err)
		return err
	}

	clients := transform.Clients(raw)

	c.mu.Lock()
	c.clients = clients
	c.loaded = true
	c.pager.SetPage(c.pager.Page(), len(c.filteredLocked()))
	c.mu.Unlock()

	c.logger.Debug("Loaded clients", "count", len(clients))
	return nil
}

// Loaded reports whether a load has completed.
func (c *ClientsController) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// All returns every loaded client.
func (c *ClientsController) All() []model.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Client, len(c.clients))
	copy(out, c.clients)
	return out
}

// Get returns the client with id.
func (c *ClientsController) Get(id string) (model.Client, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cl := range c.clients {
		if cl.ID == id {
			return cl, true
		}
	}
	return model.Client{}, false
}

// Search returns the current search text.
func (c *ClientsController) Search() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}

// SetSearch changes the search text and returns to page 1.
func (c *ClientsController) SetSearch(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = q
	c.pager.Reset()
}

// Filtered returns the clients matching the search, in list order.
func (c *ClientsController) Filtered() []model.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filteredLocked()
}

func (c *ClientsController) filteredLocked() []model.Client {
	out := make([]model.Client, 0, len(c.clients))
	for _, cl := range c.clients {
		if matchClientSearch(cl, c.search) {
			out = append(out, cl)
		}
	}
	return out
}

// Visible returns the filtered clients on the current page.
func (c *ClientsController) Visible() []model.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Paginate(&c.pager, c.filteredLocked())
}

// Page returns the current page.
func (c *ClientsController) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.Page()
}

// TotalPages returns the number of pages of filtered clients.
func (c *ClientsController) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.TotalPages(len(c.filteredLocked()))
}

// SetPage moves to page, clamped to the available pages.
func (c *ClientsController) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pager.SetPage(page, len(c.filteredLocked()))
}

// Create validates form, creates the client and puts it first in the list.
func (c *ClientsController) Create(ctx context.Context, form ClientForm) (*model.Client, error) {
	form = form.trimmed()
	if err := common.ValidateStruct(form); err != nil {
		c.notify.Error(err)
		return nil, err
	}
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	created, err := c.api.CreateClient(ctx, clientInput(form))
	if err != nil {
		err = common.NewUserError("Failed to create client", err)
		c.notify.Error(err)
		return nil, err
	}

	client := transform.Client(*created)
	if client.Name == "" {
		client.Name = form.Name
	}

	c.mu.Lock()
	c.clients = append([]model.Client{client}, c.clients...)
	c.mu.Unlock()

	c.notify.Success("Client created successfully!")
	return &client, nil
}

// Update validates form and replaces the client in place.
func (c *ClientsController) Update(ctx context.Context, id string, form ClientForm) (*model.Client, error) {
	form = form.trimmed()
	if err := common.ValidateStruct(form); err != nil {
		c.notify.Error(err)
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: client id is empty", common.ErrInvalidID)
	}
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	updated, err := c.api.UpdateClient(ctx, id, clientInput(form))
	if err != nil {
		err = common.NewUserError("Failed to update client", err)
		c.notify.Error(err)
		return nil, err
	}

	c.mu.Lock()
	result := model.Client{ID: id, Active: true}
	index := -1
	for i, cl := range c.clients {
		if cl.ID == id {
			result, index = cl, i
			break
		}
	}
	if updated != nil && updated.ID != "" {
		result = transform.Client(*updated)
	} else {
		result.Name = form.Name
		result.Email = form.Email
		result.CompanyID = form.CompanyID
		if form.Active != nil {
			result.Active = *form.Active
		}
	}
	if index >= 0 {
		c.clients[index] = result
	}
	c.mu.Unlock()

	c.notify.Success("Client updated successfully!")
	return &result, nil
}

// Delete removes the client after confirm approves it, then reloads the
// list. A declined confirmation returns false with no error.
func (c *ClientsController) Delete(ctx context.Context, id string, confirm func(model.Client) bool) (bool, error) {
	client, ok := c.Get(id)
	if !ok {
		client = model.Client{ID: id}
	}
	if confirm != nil && !confirm(client) {
		return false, nil
	}
	if err := c.begin(); err != nil {
		return false, err
	}
	defer c.end()

	if err := c.api.DeleteClient(ctx, id); err != nil {
		err = common.NewUserError("Failed to delete client.", err)
		c.notify.Error(err)
		return false, err
	}

	c.notify.Success("Client deleted successfully!")
	if err := c.Load(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// View loads a client's contracts.
func (c *ClientsController) View(ctx context.Context, id string) (*ClientDetail, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: client id is empty", common.ErrInvalidID)
	}

	raw, err := c.api.ListClientContracts(ctx, id)
	if err != nil {
		err = common.NewUserError("Failed to fetch client contracts", err)
		c.notify.Error(err)
		return nil, err
	}

	client, ok := c.Get(id)
	if !ok {
		client = model.Client{ID: id, Active: true}
	}
	contracts := transform.Contracts(raw)
	client.ContractCount = len(contracts)

	return &ClientDetail{Client: client, Contracts: contracts}, nil
}

// Busy reports whether a mutating request is in flight.
func (c *ClientsController) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *ClientsController) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return common.ErrBusy
	}
	c.busy = true
	return nil
}

func (c *ClientsController) end() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

func clientInput(f ClientForm) model.ClientInput {
	return model.ClientInput{
		Name:      f.Name,
		Email:     f.Email,
		CompanyID: f.CompanyID,
		Active:    f.Active,
	}
}
