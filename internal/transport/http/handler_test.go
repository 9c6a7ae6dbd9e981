package httptransport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"loanintake/internal/application"
	"loanintake/internal/application/store"
	"loanintake/internal/files"
	"loanintake/internal/geo"
	"loanintake/internal/identity"
	identitymocks "loanintake/internal/identity/mocks"
	"loanintake/internal/platform/config"
	"loanintake/internal/reference"
	"loanintake/internal/reference/referencetest"
	"loanintake/internal/submission"
	submissionmocks "loanintake/internal/submission/mocks"
	httptransport "loanintake/internal/transport/http"
	"loanintake/internal/upstream"
	"loanintake/internal/validation"
)

type record struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	PassportPhoto *files.Ref        `json:"passportPhoto"`
	Errors        map[string]string `json:"errors"`
}

type snapshot struct {
	ID          string   `json:"id"`
	Primary     record   `json:"primary"`
	CoBorrowers []record `json:"coBorrowers"`
	Business    struct {
		Type string `json:"type"`
	} `json:"business"`
}

type errorBody struct {
	Error       string            `json:"error"`
	Description string            `json:"error_description"`
	Fields      map[string]string `json:"fields"`
}

type HandlerSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	verifier *identitymocks.MockVerifier
	endpoint *submissionmocks.MockEndpoint
	server   *httptest.Server
	app      snapshot
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.start(validation.New())
}

// start serves a fresh draft store whose submissions are checked by validator.
func (s *HandlerSuite) start(validator submission.Validator) {
	if s.server != nil {
		s.server.Close()
	}
	s.verifier = identitymocks.NewMockVerifier(s.ctrl)
	s.endpoint = submissionmocks.NewMockEndpoint(s.ctrl)

	provider := referencetest.New().
		WithGewogs("THI", reference.RawEntry{"code": "KAW", "gewog_name": "Kawang"})
	refs, err := reference.New(provider)
	s.Require().NoError(err)
	drafts, err := application.NewService(refs, s.verifier,
		files.NewGate(config.DefaultUploadMaxBytes, config.DefaultAllowedUploadTypes), store.NewInMemory())
	s.Require().NoError(err)
	submitter, err := submission.NewService(validator, s.endpoint)
	s.Require().NoError(err)

	r := chi.NewRouter()
	httptransport.New(drafts, submitter, config.DefaultUploadMaxBytes).Register(r)
	s.server = httptest.NewServer(r)

	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/applications", nil, &s.app))
}

func (s *HandlerSuite) TearDownTest() {
	s.server.Close()
	s.server = nil
}

func (s *HandlerSuite) acceptingValidator() submission.Validator {
	v := submissionmocks.NewMockValidator(s.ctrl)
	v.EXPECT().Validate(gomock.Any(), gomock.Any(), gomock.Any()).Return(validation.Result{})
	return v
}

func (s *HandlerSuite) do(method, path string, body any, out any) int {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	return s.send(method, path, reader, "application/json", out)
}

func (s *HandlerSuite) send(method, path string, body io.Reader, contentType string, out any) int {
	req, err := http.NewRequestWithContext(context.Background(), method, s.server.URL+path, body)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", contentType)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	if out != nil {
		raw, _ := io.ReadAll(resp.Body)
		if len(raw) > 0 {
			s.Require().NoError(json.Unmarshal(raw, out), string(raw))
		}
	}
	return resp.StatusCode
}

func (s *HandlerSuite) upload(path, name, contentType string, data []byte, out any) int {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	s.Require().NoError(err)
	_, _ = part.Write(data)
	s.Require().NoError(w.Close())
	return s.send(http.MethodPut, path, &buf, w.FormDataContentType(), out)
}

func (s *HandlerSuite) primaryPath() string {
	return "/applications/" + s.app.ID + "/lists/primary/" + s.app.Primary.ID
}

type update struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// =============================================================================
// Drafts
// =============================================================================

func (s *HandlerSuite) TestCreateAndGet() {
	s.NotEmpty(s.app.ID)
	s.Len(s.app.CoBorrowers, 1)
	s.Equal("individual", s.app.Business.Type)

	var got snapshot
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/applications/"+s.app.ID, nil, &got))
	s.Equal(s.app.Primary.ID, got.Primary.ID)
}

func (s *HandlerSuite) TestCreateWithSeed() {
	var got snapshot
	status := s.do(http.MethodPost, "/applications", application.Seed{
		VerifiedSession: map[string]string{application.FieldName: "Sonam Wangchuk"},
		PriorForm:       map[string]string{application.FieldName: "Old Name"},
	}, &got)

	s.Equal(http.StatusCreated, status)
	s.Equal("Sonam Wangchuk", got.Primary.Name)
}

func (s *HandlerSuite) TestGet_Errors() {
	var body errorBody
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/applications/not-a-uuid", nil, &body))
	s.Equal("invalid_input", body.Error)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/applications/6f1c8e3a-2b5d-4f4e-9a7e-0c1d2e3f4a5b", nil, &body))
}

func (s *HandlerSuite) TestDiscard() {
	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/applications/"+s.app.ID, nil, nil))
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/applications/"+s.app.ID, nil, nil))
}

// =============================================================================
// Records
// =============================================================================

func (s *HandlerSuite) TestUpdateRecord() {
	var rec record
	s.Equal(http.StatusOK, s.do(http.MethodPatch, s.primaryPath(), update{application.FieldName, "Karma Dorji"}, &rec))
	s.Equal("Karma Dorji", rec.Name)

	var body errorBody
	s.Equal(http.StatusBadRequest, s.do(http.MethodPatch, s.primaryPath(), update{"nickname", "KD"}, &body))
}

func (s *HandlerSuite) TestAddRemoveRecords() {
	base := "/applications/" + s.app.ID + "/lists/coBorrowers"
	var body errorBody
	s.Equal(http.StatusConflict, s.do(http.MethodDelete, base+"/"+s.app.CoBorrowers[0].ID, nil, &body))
	s.Equal("invariant_violation", body.Error)

	var created struct {
		ID string `json:"id"`
	}
	s.Equal(http.StatusCreated, s.do(http.MethodPost, base, nil, &created))
	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, base+"/"+s.app.CoBorrowers[0].ID, nil, nil))

	var got snapshot
	s.do(http.MethodGet, "/applications/"+s.app.ID, nil, &got)
	s.Require().Len(got.CoBorrowers, 1)
	s.Equal(created.ID, got.CoBorrowers[0].ID)

	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/applications/"+s.app.ID+"/lists/cousins", nil, nil))
}

func (s *HandlerSuite) TestGewogOptions() {
	country := application.AddressPath(geo.BlockPermanent, application.AddressCountry)
	dzongkhag := application.AddressPath(geo.BlockPermanent, application.AddressRegionPrimary)
	s.Equal(http.StatusOK, s.do(http.MethodPatch, s.primaryPath(), update{country, "BT"}, nil))
	s.Equal(http.StatusOK, s.do(http.MethodPatch, s.primaryPath(), update{dzongkhag, "THI"}, nil))

	var options struct {
		Options []reference.Option `json:"options"`
	}
	s.Equal(http.StatusOK, s.do(http.MethodGet, s.primaryPath()+"/gewogs?block=permanent", nil, &options))
	s.Equal([]reference.Option{{Code: "KAW", Label: "Kawang"}}, options.Options)

	s.Equal(http.StatusOK, s.do(http.MethodGet, s.primaryPath()+"/gewogs?block=current", nil, &options))
	s.Empty(options.Options)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, s.primaryPath()+"/gewogs?block=holiday", nil, nil))
}

func (s *HandlerSuite) TestRelatedPeps() {
	s.do(http.MethodPatch, s.primaryPath(), update{application.FieldPEPPerson, "no"}, nil)
	s.do(http.MethodPatch, s.primaryPath(), update{application.FieldPEPRelated, "yes"}, nil)

	var row struct {
		ID string `json:"id"`
	}
	s.Equal(http.StatusCreated, s.do(http.MethodPost, s.primaryPath()+"/related-peps", nil, &row))
	s.Equal(http.StatusOK, s.do(http.MethodPatch, s.primaryPath()+"/related-peps/"+row.ID, update{"relationship", "Uncle"}, nil))
	s.Equal(http.StatusBadRequest, s.do(http.MethodPatch, s.primaryPath()+"/related-peps/"+row.ID, update{"shoeSize", "9"}, nil))
	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, s.primaryPath()+"/related-peps/"+row.ID, nil, nil))
}

// =============================================================================
// Files
// =============================================================================

func (s *HandlerSuite) TestUpload() {
	s.Run("oversized pdf is rejected inline", func() {
		big := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{0}, 6<<20)...)
		var body errorBody
		status := s.upload(s.primaryPath()+"/files/passportPhoto", "scan.pdf", "application/pdf", big, &body)

		s.Equal(http.StatusUnprocessableEntity, status)
		s.Equal("file_rejected", body.Error)

		var rec record
		s.do(http.MethodGet, s.primaryPath(), nil, &rec)
		s.Nil(rec.PassportPhoto)
		s.Contains(rec.Errors, "passportPhoto")
	})

	s.Run("png is accepted", func() {
		png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
		var rec record
		status := s.upload(s.primaryPath()+"/files/passportPhoto", "me.png", "image/png", png, &rec)

		s.Equal(http.StatusOK, status)
		s.Require().NotNil(rec.PassportPhoto)
		s.Equal("me.png", rec.PassportPhoto.Name)
		s.NotContains(rec.Errors, "passportPhoto")
	})

	s.Run("unknown slot", func() {
		s.Equal(http.StatusBadRequest, s.upload(s.primaryPath()+"/files/selfie", "me.png", "image/png", []byte("x"), nil))
	})
}

// =============================================================================
// Identity
// =============================================================================

func (s *HandlerSuite) TestIdentityLookupAndProceed() {
	s.do(http.MethodPatch, s.primaryPath(), update{application.FieldIdentificationType, "cid"}, nil)
	s.do(http.MethodPatch, s.primaryPath(), update{application.FieldIdentificationNumber, "11704000123"}, nil)
	s.verifier.EXPECT().
		Lookup(gomock.Any(), identity.LookupRequest{Type: "I", IdentificationTypePKCode: "cid", IdentityNo: "11704000123"}).
		Return(&identity.LookupResponse{Found: true, Record: &identity.RawCustomer{CustomerName: "Dechen Zangmo"}}, nil)

	var result identity.Result
	s.Equal(http.StatusOK, s.do(http.MethodPost, s.primaryPath()+"/identity/lookup", nil, &result))
	s.Equal(identity.StatusFound, result.Status)
	s.Require().NotNil(result.Record)
	s.Equal("Dechen Zangmo", result.Record.Name)

	var rec record
	s.Equal(http.StatusOK, s.do(http.MethodPost, s.primaryPath()+"/identity/proceed", nil, &rec))
	s.Equal("Dechen Zangmo", rec.Name)

	var body errorBody
	s.Equal(http.StatusConflict, s.do(http.MethodPost, s.primaryPath()+"/identity/proceed", nil, &body))
}

// =============================================================================
// Validate and submit
// =============================================================================

func (s *HandlerSuite) TestValidate() {
	var res struct {
		Valid  bool              `json:"valid"`
		Errors map[string]string `json:"errors"`
	}
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/applications/"+s.app.ID+"/validate", nil, &res))
	s.False(res.Valid)
	s.Equal(validation.MsgRequired, res.Errors["primary.name"])

	var rec record
	s.do(http.MethodGet, s.primaryPath(), nil, &rec)
	s.Equal(validation.MsgRequired, rec.Errors[application.FieldName])
}

func (s *HandlerSuite) TestSubmit_Blocked() {
	s.do(http.MethodPatch, s.primaryPath(), update{application.FieldPEPPerson, "yes"}, nil)

	var body errorBody
	status := s.do(http.MethodPost, "/applications/"+s.app.ID+"/submit", nil, &body)

	s.Equal(http.StatusUnprocessableEntity, status)
	s.Equal("validation_error", body.Error)
	s.Equal(validation.MsgRequired, body.Fields["primary.pepCategory"])
}

func (s *HandlerSuite) TestSubmit_Accepted() {
	s.start(s.acceptingValidator())
	s.endpoint.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(&submission.Receipt{Reference: "LA-42"}, nil)

	var receipt submission.Receipt
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/applications/"+s.app.ID+"/submit", nil, &receipt))
	s.Equal("LA-42", receipt.Reference)
}

func (s *HandlerSuite) TestSubmit_EndpointMessage() {
	s.start(s.acceptingValidator())
	s.endpoint.EXPECT().Submit(gomock.Any(), gomock.Any()).
		Return(nil, upstream.FromStatus("core-banking", http.StatusUnprocessableEntity, "Applicant already has an open loan"))

	var body errorBody
	status := s.do(http.MethodPost, "/applications/"+s.app.ID+"/submit", nil, &body)

	s.Equal(http.StatusBadGateway, status)
	s.Equal("submission_failed", body.Error)
	s.Equal("Applicant already has an open loan", body.Description)
}
