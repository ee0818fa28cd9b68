// Package models defines the data types exchanged with the auth service,
// the data store, and the quote backend.
package models

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

var ErrInvalidSession = errors.New("invalid session data")

// Session is an authenticated user's token pair plus expiry, the unit of
// identity used for all backend calls. A Session is either fully valid or
// treated as absent: partially populated sessions are rejected on decode.
type Session struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // epoch seconds
}

// Valid reports whether every field is populated.
func (s *Session) Valid() bool {
	return s != nil &&
		s.UserID != "" &&
		s.AccessToken != "" &&
		s.RefreshToken != "" &&
		s.ExpiresAt > 0
}

// ExpiresWithin reports whether the session expires before now+buffer,
// i.e. it is already stale or will go stale too soon to be useful.
func (s *Session) ExpiresWithin(buffer time.Duration, now time.Time) bool {
	return time.Unix(s.ExpiresAt, 0).Before(now.Add(buffer))
}

// Encode serializes the session into the opaque blob format used for local
// persistence (base64 over JSON).
func (s *Session) Encode() ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	out := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(out, raw)
	return out, nil
}

// DecodeSession parses a persisted session blob. Malformed or partially
// populated blobs yield ErrInvalidSession; the caller should treat that as
// "no session" and discard the stored state.
func DecodeSession(blob []byte) (*Session, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(blob)))
	n, err := base64.StdEncoding.Decode(raw, blob)
	if err != nil {
		return nil, ErrInvalidSession
	}

	var s Session
	if err := json.Unmarshal(raw[:n], &s); err != nil {
		return nil, ErrInvalidSession
	}
	if !s.Valid() {
		return nil, ErrInvalidSession
	}
	return &s, nil
}
