// Package cli provides the interactive movequote command-line client.
//
// It wires configuration, local storage, the auth and data store clients,
// and an interactive REPL. Typical flow: restore a persisted session (or
// register/log in), submit a moving search, watch the quotes come in while
// the backend calls companies, and place calls to the ones worth talking to.
//
// Key features:
//   - Register / Login / Logout, with security-question password recovery
//   - Submit a moving search and poll its quotes
//   - Place calls to candidate companies
//   - Browse past searches, from cache when offline
//   - View and edit the profile
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
