package reference

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"

	"loanintake/internal/upstream"
)

const referenceProviderID = "reference"

// HTTPProvider fetches catalogs from the reference data backend. Responses are
// either a bare JSON array or an envelope {"data": [...]}.
type HTTPProvider struct {
	client *resty.Client
}

// NewHTTPProvider builds a provider against baseURL.
func NewHTTPProvider(baseURL string, timeout time.Duration, retries int) *HTTPProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")
	return &HTTPProvider{client: client}
}

func (p *HTTPProvider) GetCountries(ctx context.Context) ([]RawEntry, error) {
	return p.get(ctx, "/countries", nil)
}

func (p *HTTPProvider) GetDzongkhags(ctx context.Context) ([]RawEntry, error) {
	return p.get(ctx, "/dzongkhags", nil)
}

func (p *HTTPProvider) GetGewogs(ctx context.Context, dzongkhagCode string) ([]RawEntry, error) {
	return p.get(ctx, "/dzongkhags/{code}/gewogs", map[string]string{"code": dzongkhagCode})
}

func (p *HTTPProvider) GetMaritalStatuses(ctx context.Context) ([]RawEntry, error) {
	return p.get(ctx, "/marital-statuses", nil)
}

func (p *HTTPProvider) GetNationalities(ctx context.Context) ([]RawEntry, error) {
	return p.get(ctx, "/nationalities", nil)
}

func (p *HTTPProvider) GetIdentificationTypes(ctx context.Context) ([]RawEntry, error) {
	return p.get(ctx, "/identification-types", nil)
}

func (p *HTTPProvider) GetBanks(ctx context.Context) ([]RawEntry, error) {
	return p.get(ctx, "/banks", nil)
}

func (p *HTTPProvider) GetOccupations(ctx context.Context) ([]RawEntry, error) {
	return p.get(ctx, "/occupations", nil)
}

func (p *HTTPProvider) GetOrganizationTypes(ctx context.Context) ([]RawEntry, error) {
	return p.get(ctx, "/organization-types", nil)
}

func (p *HTTPProvider) GetPEPCategories(ctx context.Context) ([]RawEntry, error) {
	return p.get(ctx, "/pep-categories", nil)
}

func (p *HTTPProvider) GetPEPSubCategories(ctx context.Context, categoryCode string) ([]RawEntry, error) {
	return p.get(ctx, "/pep-categories/{code}/sub-categories", map[string]string{"code": categoryCode})
}

func (p *HTTPProvider) get(ctx context.Context, path string, params map[string]string) ([]RawEntry, error) {
	req := p.client.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetPathParams(params)
	}
	resp, err := req.Get(path)
	if err != nil {
		return nil, upstream.FromTransport(referenceProviderID, err)
	}
	if resp.IsError() {
		return nil, upstream.FromStatus(referenceProviderID, resp.StatusCode(), "")
	}
	return parseEntries(resp.Body())
}

func parseEntries(body []byte) ([]RawEntry, error) {
	body = bytes.TrimSpace(body)
	var entries []RawEntry
	if len(body) > 0 && body[0] == '[' {
		if err := json.Unmarshal(body, &entries); err != nil {
			return nil, upstream.NewProviderError(upstream.ErrorBadData, referenceProviderID, "malformed catalog", err)
		}
		return entries, nil
	}
	var envelope struct {
		Data []RawEntry `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, upstream.NewProviderError(upstream.ErrorBadData, referenceProviderID, "malformed catalog", err)
	}
	return envelope.Data, nil
}
