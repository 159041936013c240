package addresslookup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portal_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(config.AddressLookupConfig{
		BaseURL:          baseURL,
		Timeout:          timeout,
		DashboardTimeout: timeout,
	})
}

func TestFetchAddress_Success(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/fetch-address", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"address1":" 1 Main St ","city":"Denver","state":"CO","zip":80202,"country":"US"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL+"/", time.Second)
	addr, err := client.FetchAddress(context.Background(), Request{AccountName: "Amazon DEN2", FirstName: "Ann", LastName: "Lee"})
	require.NoError(t, err)

	assert.Equal(t, Request{AccountName: "Amazon DEN2", FirstName: "Ann", LastName: "Lee"}, got)
	assert.Equal(t, "1 Main St", addr.Address1)
	assert.Equal(t, "Denver", addr.City)
	assert.Equal(t, "80202", addr.Zip)
	assert.Empty(t, addr.ShipTo)
	assert.True(t, json.Valid(addr.Raw))
}

func TestFetchAddress_Failures(t *testing.T) {
	t.Run("non 2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL, time.Second).FetchAddress(context.Background(), Request{AccountName: "Amazon X"})
		assert.ErrorContains(t, err, "status 502")
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL, time.Second).FetchAddress(context.Background(), Request{AccountName: "Amazon X"})
		assert.ErrorContains(t, err, "decode address response")
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		start := time.Now()
		_, err := newTestClient(srv.URL, 50*time.Millisecond).FetchAddress(context.Background(), Request{AccountName: "Amazon X"})
		assert.Error(t, err)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("disabled", func(t *testing.T) {
		_, err := newTestClient("", time.Second).FetchAddress(context.Background(), Request{})
		assert.ErrorIs(t, err, ErrDisabled)
	})
}

func TestDashboard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/dashboard", r.URL.Path)
		assert.Equal(t, "CTZ", r.URL.Query().Get("site_code"))
		_, _ = w.Write([]byte(`{"orders":3}`))
	}))
	defer srv.Close()

	raw, err := newTestClient(srv.URL, time.Second).Dashboard(context.Background(), "CTZ")
	require.NoError(t, err)
	assert.JSONEq(t, `{"orders":3}`, string(raw))
}
