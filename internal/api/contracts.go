package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Veraticus/contractdesk/internal/model"
)

const contractsPath = "/api/contracts/"

func contractPath(id, suffix string) (string, error) {
	if id == "" {
		return "", errEmptyID
	}
	return contractsPath + escapeID(id) + "/" + suffix, nil
}

// ListContracts returns every contract visible to the user.
func (c *Client) ListContracts(ctx context.Context) ([]model.BackendContract, error) {
	var contracts []model.BackendContract
	if err := c.getJSON(ctx, contractsPath, nil, &contracts); err != nil {
		return nil, err
	}
	return contracts, nil
}

// GetContract returns a single contract.
func (c *Client) GetContract(ctx context.Context, id string) (*model.BackendContract, error) {
	path, err := contractPath(id, "")
	if err != nil {
		return nil, err
	}
	var contract model.BackendContract
	if err := c.getJSON(ctx, path, nil, &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}

// CreateContract creates a contract from raw text.
func (c *Client) CreateContract(ctx context.Context, in model.ContractCreate) (*model.CreateResponse, error) {
	var resp model.CreateResponse
	if err := c.sendJSON(ctx, http.MethodPost, contractsPath, in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ContractUpload is the form for uploading a contract document.
type ContractUpload struct {
	File   FileUpload
	Title  string
	Client string
	Signed bool
}

// UploadContract uploads a document; the backend analyses it before replying.
func (c *Client) UploadContract(ctx context.Context, in ContractUpload) (*model.UploadResponse, error) {
	fields := []formField{
		{name: "title", value: in.Title},
		{name: "client", value: in.Client},
		{name: "signed", value: boolField(in.Signed)},
	}
	var resp model.UploadResponse
	if err := c.sendMultipart(ctx, contractsPath, fields, in.File, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateContract replaces a contract's editable fields.
func (c *Client) UpdateContract(ctx context.Context, id string, in model.ContractUpdate) (*model.MessageResponse, error) {
	path, err := contractPath(id, "")
	if err != nil {
		return nil, err
	}
	var resp model.MessageResponse
	if err := c.sendJSON(ctx, http.MethodPut, path, in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteContract removes a contract.
func (c *Client) DeleteContract(ctx context.Context, id string) error {
	path, err := contractPath(id, "")
	if err != nil {
		return err
	}
	return c.sendJSON(ctx, http.MethodDelete, path, nil, nil)
}

// GetContractAnalysis returns the stored analysis of a contract.
func (c *Client) GetContractAnalysis(ctx context.Context, id string) (*model.AnalysisResponse, error) {
	path, err := contractPath(id, "analysis/")
	if err != nil {
		return nil, err
	}
	var resp model.AnalysisResponse
	if err := c.getJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReanalyzeUpload is the form for analysing a contract again.
type ReanalyzeUpload struct {
	File   FileUpload
	Title  string
	Client string
}

// ReanalyzeContract uploads a new document for an existing contract.
func (c *Client) ReanalyzeContract(ctx context.Context, id string, in ReanalyzeUpload) (*model.ReanalyzeResponse, error) {
	path, err := contractPath(id, "reanalyze/")
	if err != nil {
		return nil, err
	}
	var fields []formField
	if in.Title != "" {
		fields = append(fields, formField{name: "title", value: in.Title})
	}
	if in.Client != "" {
		fields = append(fields, formField{name: "client", value: in.Client})
	}
	var resp model.ReanalyzeResponse
	if err := c.sendMultipart(ctx, path, fields, in.File, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExtractClauses asks the backend to extract clauses from a contract.
func (c *Client) ExtractClauses(ctx context.Context, id string) (*model.ClausesResponse, error) {
	path, err := contractPath(id, "clauses/")
	if err != nil {
		return nil, err
	}
	var resp model.ClausesResponse
	if err := c.sendJSON(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EvaluateContract evaluates a document against policy without storing it.
func (c *Client) EvaluateContract(ctx context.Context, file FileUpload) (*model.EvaluationResponse, error) {
	var resp model.EvaluationResponse
	if err := c.sendMultipart(ctx, contractsPath+"evaluate/", nil, file, &resp); err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}
	return &resp, nil
}
