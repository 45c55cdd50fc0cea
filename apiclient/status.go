package apiclient

import (
	"context"

	"github.com/jrsteele09/go-mfe-bridge/credentials"
)

// ConnectionResult is the outcome of TestConnection.
type ConnectionResult struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Details credentials.Status `json:"details"`
}

// CredentialsStatus reports which parts of the credential bundle are present.
func (c *Client) CredentialsStatus(ctx context.Context) credentials.Status {
	return c.creds.Status(ctx)
}

// CheckCredentials reports whether a complete bundle can be resolved.
func (c *Client) CheckCredentials(ctx context.Context) bool {
	creds, err := c.creds.GetCredentials(ctx)
	return err == nil && creds.Complete()
}

// TestConnection checks that a complete bundle is available. No request is
// sent downstream.
func (c *Client) TestConnection(ctx context.Context) ConnectionResult {
	status := c.CredentialsStatus(ctx)
	switch {
	case !status.Available:
		return ConnectionResult{Message: "API credentials could not be obtained", Details: status}
	case !status.HasAccessToken || !status.HasXAPIKey || !status.HasBaseURL:
		return ConnectionResult{Message: "API credentials are incomplete", Details: status}
	}
	return ConnectionResult{Success: true, Message: "API credentials verified", Details: status}
}
