// Package client contains the transport and bootstrap pieces of the
// DreamTracer client.
//
// # Overview
//
//  1. A transport-agnostic API contract (Client) covering the REST endpoints
//     of the backend: auth, dreams and sync, analysis, visualizations, the
//     community feed and plan/usage accounting.
//  2. A concrete REST implementation (HTTPClient) that rate-limits outbound
//     calls, tags each request with an X-Request-ID, attaches the bearer token
//     from a TokenSource and maps error responses to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Non-2xx responses become *APIError carrying the status code and the
// server's {"detail": ...} message. APIError unwraps to a sentinel from
// internal/common, so callers match with errors.Is:
//
//	401, 403  common.ErrUnauthorized
//	404       common.ErrNotFound
//	400, 422  common.ErrValidation
//	402, 429  common.ErrQuotaExceeded
//	5xx       common.ErrUnavailable
//
// Network failures (refused connection, DNS, timeouts) are wrapped with
// common.ErrUnavailable and keep the original error in the chain.
package client
