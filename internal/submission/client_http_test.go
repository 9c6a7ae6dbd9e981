package submission

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanintake/internal/files"
	"loanintake/internal/upstream"
)

func TestHTTPEndpoint_Submit(t *testing.T) {
	payload := Payload{
		Fields: []Field{{Key: "loan[amount]", Value: "1500000"}, {Key: "primary[name]", Value: "Karma Dorji"}},
		Files:  []File{{Field: string(files.SlotPassportPhoto), Ref: files.Ref{Name: "photo.png", ContentType: "image/png", Data: []byte("png")}}},
	}

	t.Run("multipart body carries fields and files", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/loan-applications", r.URL.Path)
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "1500000", r.FormValue("loan[amount]"))
			assert.Equal(t, "Karma Dorji", r.FormValue("primary[name]"))

			file, header, err := r.FormFile("passportPhoto")
			require.NoError(t, err)
			defer file.Close()
			data, _ := io.ReadAll(file)
			assert.Equal(t, "photo.png", header.Filename)
			assert.Equal(t, "png", string(data))

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(Receipt{Reference: "LA-2026-0001"})
		}))
		defer server.Close()

		receipt, err := NewHTTPEndpoint(server.URL, time.Second).Submit(t.Context(), payload)

		require.NoError(t, err)
		assert.Equal(t, "LA-2026-0001", receipt.Reference)
	})

	t.Run("rejection keeps the endpoint message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"Loan amount exceeds the product limit"}`))
		}))
		defer server.Close()

		_, err := NewHTTPEndpoint(server.URL, time.Second).Submit(t.Context(), payload)

		var pe *upstream.ProviderError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, upstream.ErrorRejected, pe.Category)
		assert.Equal(t, "Loan amount exceeds the product limit", pe.Message)
	})

	t.Run("plain text error body is used as is", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("core banking offline\n"))
		}))
		defer server.Close()

		_, err := NewHTTPEndpoint(server.URL, time.Second).Submit(t.Context(), payload)

		var pe *upstream.ProviderError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, upstream.ErrorProviderOutage, pe.Category)
		assert.Equal(t, "core banking offline", pe.Message)
	})
}
