// Package services implements the REST client for the catalog backend.
//
// # Interfaces
//
// Callers depend on [AuthService] for credential exchange and [MovieService] for
// catalog records. [APIService] implements both over net/http.
//
// # Credentials
//
// APIService never sets an Authorization header itself. Bearer credentials come
// from the [http.Client] it is built with, normally the session-owned client
// whose transport reads the current token on every request. Use
// [APIService.WithClient] to derive an authenticated service from the
// unauthenticated one used for login and signup.
//
// # Endpoints
//
//   - POST /api/auth/login, POST /api/auth/signup : {token, user}
//   - GET /api/movies?page&limit&search : {movies:[...]}, {data:[...]} or a bare array
//   - POST /api/movies : {movie:{...}} or a bare object
//   - PUT /api/movies/{id}, DELETE /api/movies/{id}
//
// # Error Handling
//
// Non-2xx responses become [*APIError] values that wrap:
//   - [shared.ErrAPIRequest] : every failed status
//   - [shared.ErrAuthFailed] : 401 responses
//   - [shared.ErrRecordNotFound] : 404 responses
//
// Bodies that cannot be decoded wrap [shared.ErrDecodeResponse].
//
// # Rate Limiting
//
// Requests wait on a shared [rate.Limiter] so per-keystroke search stays bounded.
package services
