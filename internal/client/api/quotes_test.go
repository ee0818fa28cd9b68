package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/movequote/internal/common"
)

func TestHTTPQuoteClient_SubmitSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get_moving_companies/", r.URL.Path)

		var req SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "St. Louis", req.LocationFrom)
		assert.Equal(t, "Boston", req.LocationTo)
		assert.Equal(t, "u1", req.UserID)

		_, _ = w.Write([]byte(`{"moving_query_id": 42}`))
	}))
	defer srv.Close()

	c := NewHTTPQuoteClient(srv.URL, srv.Client())
	id, err := c.SubmitSearch(context.Background(), SearchRequest{
		LocationFrom: "St. Louis",
		LocationTo:   "Boston",
		CreatedAt:    "2025-02-19T18:00:00Z",
		Items:        "Small",
		ItemsDetails: "2 boxes",
		Availability: "2025-02-20T10:00:00Z",
		UserID:       "u1",
		Inquiries:    []int64{},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestHTTPQuoteClient_SubmitSearch_MissingQueryID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"something_else": true}`))
	}))
	defer srv.Close()

	c := NewHTTPQuoteClient(srv.URL, srv.Client())
	_, err := c.SubmitSearch(context.Background(), SearchRequest{})
	assert.ErrorIs(t, err, common.ErrDecoding)
}

func TestHTTPQuoteClient_PlaceCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/call_moving_companies/", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "+14106885756", q.Get("moving_company_number"))
		assert.Equal(t, "4", q.Get("moving_company_id"))
		assert.Equal(t, "42", q.Get("moving_query_id"))

		_, _ = w.Write([]byte(`{"status":"dialing"}`))
	}))
	defer srv.Close()

	c := NewHTTPQuoteClient(srv.URL, srv.Client())
	body, err := c.PlaceCall(context.Background(), "+14106885756", 4, 42)
	require.NoError(t, err)
	assert.Contains(t, body, "dialing")
}

func TestHTTPQuoteClient_ServerErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad location", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewHTTPQuoteClient(srv.URL, srv.Client())
	_, err := c.SubmitSearch(context.Background(), SearchRequest{})

	var serr *common.ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadRequest, serr.StatusCode)
	assert.Equal(t, int32(1), calls.Load(), "server rejections must not be retried")
}

func TestHTTPQuoteClient_TransportFailureRetried(t *testing.T) {
	var calls atomic.Int32
	// the server closes connections without replying for the first two
	// attempts, then answers normally
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			_ = conn.Close()
			return
		}
		_, _ = w.Write([]byte(`{"moving_query_id": 7}`))
	}))
	defer srv.Close()

	c := NewHTTPQuoteClient(srv.URL, srv.Client())
	id, err := c.SubmitSearch(context.Background(), SearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, int32(3), calls.Load())
}
