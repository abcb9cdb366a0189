// Package auth holds the client's authentication state.
//
// A Session carries the bearer token and the validated user. The token is
// restored from a TokenStore at startup, but the user is only populated by a
// successful login or a successful revalidation against GET /auth/me. A
// Manager drives those transitions:
//
//   - Login exchanges credentials for a token and user.
//   - CheckAuth revalidates a held token and clears the session on failure.
//   - Logout drops the token locally without contacting the backend.
//
// The Session is also the api.TokenSource used by the HTTP client, so a
// token stored by Login is attached to the very next request.
package auth
