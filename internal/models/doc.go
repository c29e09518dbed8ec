// Package models defines the domain types shared by the cinedex client.
//
// The package contains three groups of types:
//
// 1. Session types: the authenticated identity persisted between runs
//   - [User] : profile returned by the auth endpoints
//   - [Session] : user + bearer token pair; authenticated iff the token is set
//   - [AuthResult] : wire shape of login/signup responses
//
// 2. Catalog types: records exchanged with the backend
//   - [Movie] : a movie or TV show entry with free-text descriptive fields
//   - [MovieFields] : the textual payload sent on create/update (never the image)
//   - [MovieType] : "Movie" or "TV Show"
//   - [ID] : server-assigned identifier tolerant of numeric or string JSON
//
// 3. Query types
//   - [ListQuery] : page, page size and search term for paginated fetches
//
// Storage keys ([KeyToken], [KeyUser], [ImageKey]) name the entries written to
// durable local storage.
package models
