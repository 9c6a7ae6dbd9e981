package reference_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanintake/internal/reference"
	"loanintake/internal/upstream"
)

func newReferenceServer(t *testing.T, routes map[string]func(http.ResponseWriter)) *reference.HTTPProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		handler(w)
	}))
	t.Cleanup(srv.Close)
	return reference.NewHTTPProvider(srv.URL, 2*time.Second, 0)
}

func writeBody(body string) func(http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestHTTPProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("bare array body", func(t *testing.T) {
		p := newReferenceServer(t, map[string]func(http.ResponseWriter){
			"/countries": writeBody(`[{"country_pk_code":"BT","country_name":"Bhutan"}]`),
		})
		entries, err := p.GetCountries(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Bhutan", entries[0]["country_name"])
	})

	t.Run("data envelope body", func(t *testing.T) {
		p := newReferenceServer(t, map[string]func(http.ResponseWriter){
			"/banks": writeBody(`{"data":[{"bank_pk_code":"BOBL","bank_name":"Bank of Bhutan"}]}`),
		})
		entries, err := p.GetBanks(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "BOBL", entries[0]["bank_pk_code"])
	})

	t.Run("dependent path carries the parent code", func(t *testing.T) {
		p := newReferenceServer(t, map[string]func(http.ResponseWriter){
			"/dzongkhags/THI/gewogs":                  writeBody(`[{"gewog_name":"Kawang"}]`),
			"/pep-categories/domestic/sub-categories": writeBody(`[{"name":"Minister"}]`),
		})
		gewogs, err := p.GetGewogs(ctx, "THI")
		require.NoError(t, err)
		assert.Len(t, gewogs, 1)

		subs, err := p.GetPEPSubCategories(ctx, "domestic")
		require.NoError(t, err)
		assert.Len(t, subs, 1)
	})

	t.Run("server error maps to provider outage", func(t *testing.T) {
		p := newReferenceServer(t, map[string]func(http.ResponseWriter){
			"/occupations": func(w http.ResponseWriter) { w.WriteHeader(http.StatusBadGateway) },
		})
		_, err := p.GetOccupations(ctx)
		require.Error(t, err)
		assert.Equal(t, upstream.ErrorProviderOutage, upstream.GetCategory(err))
	})

	t.Run("malformed body maps to bad data", func(t *testing.T) {
		p := newReferenceServer(t, map[string]func(http.ResponseWriter){
			"/nationalities": writeBody(`{"data":`),
		})
		_, err := p.GetNationalities(ctx)
		require.Error(t, err)
		assert.Equal(t, upstream.ErrorBadData, upstream.GetCategory(err))
	})
}
