package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"loanintake/internal/upstream"
)

const submissionProviderID = "submission"

// Receipt acknowledges an accepted submission.
type Receipt struct {
	Reference string `json:"reference"`
	Message   string `json:"message,omitempty"`
}

// HTTPEndpoint posts multipart payloads to the loan submission endpoint.
// Submissions are not retried.
type HTTPEndpoint struct {
	client *resty.Client
}

func NewHTTPEndpoint(baseURL string, timeout time.Duration) *HTTPEndpoint {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &HTTPEndpoint{client: client}
}

// Submit posts p to /loan-applications. A rejection carries the endpoint's
// own message.
func (e *HTTPEndpoint) Submit(ctx context.Context, p Payload) (*Receipt, error) {
	body, contentType, err := encode(p)
	if err != nil {
		return nil, upstream.NewProviderError(upstream.ErrorInternal, submissionProviderID, "encode payload", err)
	}

	var out Receipt
	resp, err := e.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(body).
		SetResult(&out).
		Post("/loan-applications")
	if err != nil {
		return nil, upstream.FromTransport(submissionProviderID, err)
	}
	if resp.IsError() {
		return nil, upstream.FromStatus(submissionProviderID, resp.StatusCode(), errorMessage(resp.Body()))
	}
	return &out, nil
}

// encode writes the scalars in payload order followed by the files.
func encode(p Payload) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range p.Fields {
		if err := w.WriteField(f.Key, f.Value); err != nil {
			return nil, "", err
		}
	}
	for _, f := range p.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Ref.Name))
		contentType := f.Ref.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Ref.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// errorMessage extracts the endpoint's message from a JSON error body, or
// returns the body text.
func errorMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return strings.TrimSpace(string(body))
}
