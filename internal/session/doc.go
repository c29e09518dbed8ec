// Package session owns the authenticated identity of the client.
//
// A [Store] holds the bearer token and user profile in memory and mirrors them to
// durable storage under the "token" and "user" keys. The token is non-empty iff
// the user is set.
//
// # Lifecycle
//
//   - [Store.Restore] reads the persisted pair once at startup. Malformed or partial
//     state is deleted and the store comes up unauthenticated. Loading is true until
//     Restore returns.
//   - [Store.Login] and [Store.Register] exchange credentials through a
//     [services.AuthService] and persist the result.
//   - [Store.Logout] clears memory and storage and never fails.
//
// # Authenticated Client
//
// [Store.Client] returns an [http.Client] whose [oauth2.Transport] asks the store
// for the current token on every request. Logging out takes effect on the next
// request without touching any process-wide state.
package session
