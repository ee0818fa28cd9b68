package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/example/movequote/internal/common"
)

// SearchRequest is the quote backend's search submission body. Field names
// follow the backend's wire format.
type SearchRequest struct {
	LocationFrom string  `json:"location_from"`
	LocationTo   string  `json:"location_to"`
	CreatedAt    string  `json:"created_at"` // ISO-8601
	Items        string  `json:"items"`
	ItemsDetails string  `json:"items_details"`
	Availability string  `json:"availability"`
	UserID       string  `json:"user_id"`
	Inquiries    []int64 `json:"inquiries"`
}

// QuoteClient is the quote backend contract.
//
// SubmitSearch returns the id of the moving query the backend created; the
// candidate fan-out happens asynchronously and must be observed through the
// data store afterwards. PlaceCall triggers one outbound call and returns the
// backend's opaque response body for logging.
type QuoteClient interface {
	SubmitSearch(ctx context.Context, req SearchRequest) (int64, error)
	PlaceCall(ctx context.Context, phoneNumber string, companyID, queryID int64) (string, error)
}

// HTTPQuoteClient talks to the quote backend over HTTP. User-initiated calls
// retry transient transport failures a few times with fibonacci backoff;
// server rejections are not retried.
type HTTPQuoteClient struct {
	baseURL    string
	hc         *http.Client
	maxRetries uint64
}

func NewHTTPQuoteClient(baseURL string, hc *http.Client) *HTTPQuoteClient {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPQuoteClient{baseURL: baseURL, hc: hc, maxRetries: 2}
}

func (c *HTTPQuoteClient) SubmitSearch(ctx context.Context, req SearchRequest) (int64, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return 0, err
	}

	body, err := c.postWithRetry(ctx, c.baseURL+"/get_moving_companies/", raw)
	if err != nil {
		return 0, err
	}

	var out struct {
		MovingQueryID int64 `json:"moving_query_id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrDecoding, err)
	}
	if out.MovingQueryID == 0 {
		return 0, fmt.Errorf("%w: response missing moving_query_id", common.ErrDecoding)
	}
	return out.MovingQueryID, nil
}

func (c *HTTPQuoteClient) PlaceCall(ctx context.Context, phoneNumber string, companyID, queryID int64) (string, error) {
	q := url.Values{}
	q.Set("moving_company_number", phoneNumber)
	q.Set("moving_company_id", strconv.FormatInt(companyID, 10))
	q.Set("moving_query_id", strconv.FormatInt(queryID, 10))

	body, err := c.postWithRetry(ctx, c.baseURL+"/call_moving_companies/?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// postWithRetry POSTs raw JSON and returns the response body. Only transport
// failures are retried; any HTTP status is final.
func (c *HTTPQuoteClient) postWithRetry(ctx context.Context, u string, raw []byte) ([]byte, error) {
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewFibonacci(200*time.Millisecond))

	var body []byte
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var rd io.Reader
		if raw != nil {
			rd = bytes.NewReader(raw)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, rd)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.hc.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: %v", common.ErrNetwork, err))
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: %v", common.ErrNetwork, err))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &common.ServerError{StatusCode: resp.StatusCode, Body: string(b)}
		}
		body = b
		return nil
	})
	if err != nil {
		var serr *common.ServerError
		if errors.As(err, &serr) {
			return nil, serr
		}
		return nil, err
	}
	return body, nil
}
