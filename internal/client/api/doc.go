// Package api contains the remote-service clients used by the movequote CLI.
//
// # Overview
//
// Three external systems are consumed, each behind a small interface so that
// services can be unit-tested against fakes:
//  1. AuthClient — the hosted auth service (sign-up, password sign-in, token
//     refresh, sign-out). The concrete HTTPAuthClient speaks the service's
//     REST endpoints and normalizes responses into models.Session.
//  2. Store — the row-oriented data store (profiles, moving_query,
//     moving_inquiry, moving_company). RESTStore translates equality and
//     membership filters into query parameters and attaches the caller's
//     bearer token on every request.
//  3. QuoteClient — the quote backend that fans out call-placement jobs.
//     HTTPQuoteClient retries transient transport failures with capped
//     backoff; responses to call placement are opaque and only logged.
//
// # Error Handling
//
// Failures are reported through the shared taxonomy in internal/common:
// common.ErrNetwork, common.ErrDecoding, common.ErrNotFound,
// common.ErrInvalidCredentials, and *common.ServerError for other non-2xx
// responses. Match with errors.Is / errors.As.
//
// All clients are constructed explicitly and injected; there is no package
// level client state.
package api
