package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/movequote/internal/client/models"
	"github.com/example/movequote/internal/common"
)

// AuthClient is the remote auth service contract.
//
// Contract:
//   - SignIn: password grant; invalid credentials map to common.ErrInvalidCredentials.
//   - SignUp: account creation; backend rejections map to common.ErrRegistrationFailed.
//   - Refresh: exchange a refresh token for a fresh token pair.
//   - SignOut: revoke the session server-side.
//   - ResetPassword: administrative password replacement used by the
//     security-question recovery flow; never requires the old password.
//
// All methods must honor context cancellation/timeouts.
type AuthClient interface {
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, email, password string) (*models.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*models.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	ResetPassword(ctx context.Context, email, newPassword string) error
}

// HTTPAuthClient talks to the hosted auth service over REST.
type HTTPAuthClient struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

func NewHTTPAuthClient(baseURL, apiKey string, hc *http.Client) *HTTPAuthClient {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPAuthClient{baseURL: baseURL, apiKey: apiKey, hc: hc}
}

// authResponse is the wire shape of token-issuing endpoints.
type authResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	ExpiresIn    int64  `json:"expires_in"`
	User         struct {
		ID string `json:"id"`
	} `json:"user"`
}

func (c *HTTPAuthClient) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	body := map[string]string{"email": email, "password": password}

	resp, err := c.post(ctx, "/auth/v1/token?grant_type=password", body, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		drain(resp.Body)
		return nil, common.ErrInvalidCredentials
	}
	return c.decodeSession(resp)
}

func (c *HTTPAuthClient) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	body := map[string]string{"email": email, "password": password}

	resp, err := c.post(ctx, "/auth/v1/signup", body, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: %s", common.ErrRegistrationFailed, string(msg))
	}
	return c.decodeSession(resp)
}

func (c *HTTPAuthClient) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	body := map[string]string{"refresh_token": refreshToken}

	resp, err := c.post(ctx, "/auth/v1/token?grant_type=refresh_token", body, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		drain(resp.Body)
		return nil, common.ErrSessionExpired
	}
	return c.decodeSession(resp)
}

func (c *HTTPAuthClient) SignOut(ctx context.Context, accessToken string) error {
	resp, err := c.post(ctx, "/auth/v1/logout", nil, accessToken)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	drain(resp.Body)

	// 401 on logout means the token is already dead, which is fine
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusUnauthorized {
		return &common.ServerError{StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *HTTPAuthClient) ResetPassword(ctx context.Context, email, newPassword string) error {
	body := map[string]string{"email": email, "password": newPassword}

	resp, err := c.post(ctx, "/auth/v1/admin/reset_password", body, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	drain(resp.Body)

	if resp.StatusCode >= 400 {
		return &common.ServerError{StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *HTTPAuthClient) post(ctx context.Context, path string, body any, bearer string) (*http.Response, error) {
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		buf = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	return resp, nil
}

func (c *HTTPAuthClient) decodeSession(resp *http.Response) (*models.Session, error) {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &common.ServerError{StatusCode: resp.StatusCode, Body: string(msg)}
	}

	var ar authResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecoding, err)
	}

	s := &models.Session{
		UserID:       ar.User.ID,
		AccessToken:  ar.AccessToken,
		RefreshToken: ar.RefreshToken,
		ExpiresAt:    ar.ExpiresAt,
	}
	if s.ExpiresAt == 0 && ar.ExpiresIn > 0 {
		s.ExpiresAt = time.Now().Unix() + ar.ExpiresIn
	}

	// fall back to the access token's own claims for anything the
	// response body left out
	if s.UserID == "" || s.ExpiresAt == 0 {
		sub, exp, err := tokenClaims(s.AccessToken)
		if err == nil {
			if s.UserID == "" {
				s.UserID = sub
			}
			if s.ExpiresAt == 0 {
				s.ExpiresAt = exp
			}
		}
	}

	if !s.Valid() {
		return nil, fmt.Errorf("%w: incomplete auth response", common.ErrDecoding)
	}
	return s, nil
}

// tokenClaims extracts subject and expiry from a JWT without verifying its
// signature. The client has no signing secret; the token is only decoded to
// recover identity hints, never to grant anything locally.
func tokenClaims(token string) (sub string, exp int64, err error) {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err = parser.ParseUnverified(token, &claims); err != nil {
		return "", 0, err
	}
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Unix()
	}
	return claims.Subject, exp, nil
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 4096))
}
