// Package server provides HTTP routing, middleware and an in-memory catalog backend.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /api/movies").
//
// # Catalog Backend
//
// [CatalogHandler] implements the REST contract the client talks to:
//   - POST /api/auth/signup, POST /api/auth/login : {token, user}
//   - GET /api/movies : {movies:[...]} when paginated, a bare array otherwise
//   - POST /api/movies : {movie:{...}}
//   - PUT /api/movies/{id} : {movie:{...}}
//   - DELETE /api/movies/{id} : 204
//
// Movie routes sit behind [RequireBearer]. Passwords are bcrypt hashed and
// tokens are random UUIDs. All state is in memory and lost on restart.
//
// The backend exists for local development (cinedex serve) and end-to-end tests.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
