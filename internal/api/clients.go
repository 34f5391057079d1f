package api

import (
	"context"
	"net/http"

	"github.com/Veraticus/contractdesk/internal/model"
)

const clientsPath = "/api/clients/"

func clientPath(id, suffix string) (string, error) {
	if id == "" {
		return "", errEmptyID
	}
	return clientsPath + escapeID(id) + "/" + suffix, nil
}

// ListClients returns every client.
func (c *Client) ListClients(ctx context.Context) ([]model.BackendClient, error) {
	var clients []model.BackendClient
	if err := c.getJSON(ctx, clientsPath, nil, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// CreateClient creates a client and returns the stored record.
func (c *Client) CreateClient(ctx context.Context, in model.ClientInput) (*model.BackendClient, error) {
	var created model.BackendClient
	if err := c.sendJSON(ctx, http.MethodPost, clientsPath, in, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateClient replaces a client's fields and returns the stored record.
func (c *Client) UpdateClient(ctx context.Context, id string, in model.ClientInput) (*model.BackendClient, error) {
	path, err := clientPath(id, "")
	if err != nil {
		return nil, err
	}
	var updated model.BackendClient
	if err := c.sendJSON(ctx, http.MethodPut, path, in, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteClient removes a client.
func (c *Client) DeleteClient(ctx context.Context, id string) error {
	path, err := clientPath(id, "")
	if err != nil {
		return err
	}
	return c.sendJSON(ctx, http.MethodDelete, path, nil, nil)
}

// ListClientContracts returns the contracts belonging to a client.
func (c *Client) ListClientContracts(ctx context.Context, id string) ([]model.BackendContract, error) {
	path, err := clientPath(id, "contracts/")
	if err != nil {
		return nil, err
	}
	var contracts []model.BackendContract
	if err := c.getJSON(ctx, path, nil, &contracts); err != nil {
		return nil, err
	}
	return contracts, nil
}
