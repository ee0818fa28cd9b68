package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/movequote/internal/common"
)

// TokenSource supplies the current access token for data-store requests.
// The session manager implements it; reads take a snapshot, so a token
// obtained here stays stable for the duration of one request.
type TokenSource interface {
	AccessToken() string
}

// Filter is one predicate on a table column: equality or set membership.
type Filter struct {
	Column string
	op     string
	value  string
}

// Eq matches rows whose column equals v.
func Eq(column string, v any) Filter {
	return Filter{Column: column, op: "eq", value: fmt.Sprint(v)}
}

// In matches rows whose column is one of vs.
func In[T any](column string, vs []T) Filter {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprint(v)
	}
	return Filter{Column: column, op: "in", value: "(" + strings.Join(parts, ",") + ")"}
}

// Store is the row-oriented data store contract: select with filters,
// single-row select, insert, and update-by-filter.
//
// dest for the select methods must be a pointer: a slice pointer for Select,
// a struct pointer for SelectSingle. SelectSingle returns common.ErrNotFound
// when no row matches.
type Store interface {
	Select(ctx context.Context, table, columns string, filters []Filter, dest any) error
	SelectSingle(ctx context.Context, table, columns string, filters []Filter, dest any) error
	Insert(ctx context.Context, table string, row any) error
	Update(ctx context.Context, table string, patch any, filters []Filter) error
}

// RESTStore implements Store against the hosted data store's REST surface
// (/rest/v1/{table} with column=op.value query filters).
type RESTStore struct {
	baseURL string
	apiKey  string
	tokens  TokenSource
	hc      *http.Client
}

func NewRESTStore(baseURL, apiKey string, tokens TokenSource, hc *http.Client) *RESTStore {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &RESTStore{baseURL: baseURL, apiKey: apiKey, tokens: tokens, hc: hc}
}

func (s *RESTStore) Select(ctx context.Context, table, columns string, filters []Filter, dest any) error {
	resp, err := s.do(ctx, http.MethodGet, table, columns, filters, nil, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDecoding, err)
	}
	return nil
}

func (s *RESTStore) SelectSingle(ctx context.Context, table, columns string, filters []Filter, dest any) error {
	resp, err := s.do(ctx, http.MethodGet, table, columns, filters, nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// the store answers 406 when a single-row request matches zero rows
	if resp.StatusCode == http.StatusNotAcceptable || resp.StatusCode == http.StatusNotFound {
		drain(resp.Body)
		return common.ErrNotFound
	}
	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDecoding, err)
	}
	return nil
}

func (s *RESTStore) Insert(ctx context.Context, table string, row any) error {
	resp, err := s.do(ctx, http.MethodPost, table, "", nil, row, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	drain(resp.Body)
	return checkStatus(resp)
}

func (s *RESTStore) Update(ctx context.Context, table string, patch any, filters []Filter) error {
	resp, err := s.do(ctx, http.MethodPatch, table, "", filters, patch, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	drain(resp.Body)
	return checkStatus(resp)
}

func (s *RESTStore) do(ctx context.Context, method, table, columns string, filters []Filter, body any, single bool) (*http.Response, error) {
	q := url.Values{}
	if columns != "" {
		q.Set("select", columns)
	}
	for _, f := range filters {
		q.Set(f.Column, f.op+"."+f.value)
	}

	u := s.baseURL + "/rest/v1/" + table
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", s.apiKey)
	if tok := s.tokens.AccessToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}

	resp, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &common.ServerError{StatusCode: resp.StatusCode, Body: string(msg)}
}
