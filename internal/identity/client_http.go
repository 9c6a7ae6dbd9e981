package identity

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"loanintake/internal/upstream"
)

const identityProviderID = "identity"

// HTTPVerifier calls the identity verification service.
type HTTPVerifier struct {
	client *resty.Client
}

func NewHTTPVerifier(baseURL string, timeout time.Duration, retries int) *HTTPVerifier {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")
	return &HTTPVerifier{client: client}
}

// Lookup posts the request to /customers/lookup. A 404 is a clean not-found.
func (v *HTTPVerifier) Lookup(ctx context.Context, req LookupRequest) (*LookupResponse, error) {
	var out LookupResponse
	resp, err := v.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/customers/lookup")
	if err != nil {
		return nil, upstream.FromTransport(identityProviderID, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return &LookupResponse{Found: false}, nil
	}
	if resp.IsError() {
		return nil, upstream.FromStatus(identityProviderID, resp.StatusCode(), "")
	}
	return &out, nil
}
