package content

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Diagnosis is the outcome of a connection check against one locator.
type Diagnosis struct {
	URL        string `json:"url"`
	OK         bool   `json:"ok"`
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"message"`
}

// CheckConnection issues a cache-bypassing HEAD for locator and explains the
// outcome in words suitable for an operator.
func (r *Resolver) CheckConnection(ctx context.Context, locator string) Diagnosis {
	diag := Diagnosis{URL: locator}
	req, err := r.newRequest(ctx, http.MethodHead, locator)
	if err != nil {
		diag.Message = "❌ Invalid URL format"
		return diag
	}
	resp, err := r.transport.Do(req)
	if err != nil {
		diag.Message = "❌ Error: " + err.Error()
		return diag
	}
	if resp == nil {
		diag.Message = "❌ Invalid response from server"
		return diag
	}
	if resp.Body != nil {
		_ = resp.Body.Close()
	}
	diag.StatusCode = resp.StatusCode
	switch resp.StatusCode {
	case http.StatusOK:
		diag.OK = true
		diag.Message = fmt.Sprintf("✅ Connection successful! Status: %d", resp.StatusCode)
	case http.StatusForbidden:
		diag.Message = "❌ Access denied (403). S3 bucket may not be public."
	case http.StatusNotFound:
		diag.Message = "❌ File not found (404). Today's content may not exist yet."
	default:
		diag.Message = fmt.Sprintf("❌ HTTP %d: %s", resp.StatusCode, strings.ToLower(http.StatusText(resp.StatusCode)))
	}
	return diag
}
