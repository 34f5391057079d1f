package model

// BackendClient is a client record as the backend returns it.
type BackendClient struct {
	Active    *bool  `json:"active,omitempty"`
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Client is the view model of a client.
type Client struct {
	ID            string
	Name          string
	Email         string
	CompanyID     string
	CreatedAt     string
	ContractCount int
	Active        bool
}

// ClientInput is the body of a client create or update call.
type ClientInput struct {
	Active    *bool  `json:"active,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
}
