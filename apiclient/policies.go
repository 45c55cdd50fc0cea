package apiclient

import (
	"context"
	"net/http"
	"net/url"
)

// VerifyCertEligibility asks the BFF whether a certificate can be issued for
// the policy and returns the decoded response.
func (c *Client) VerifyCertEligibility(ctx context.Context, policyNo string) (map[string]any, error) {
	resp, err := c.Call(ctx, http.MethodGet, "/v2/policies/"+url.PathEscape(policyNo)+"/certificate", nil, nil)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
