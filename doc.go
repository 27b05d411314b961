// Package auth implements a credential issuance service: signup, signin,
// signout, current user and account listing over HTTP.
//
// Sessions:
//   - A successful signup or signin issues an HS256 JWT carrying the account
//     ID and email. The token travels in an HTTP-only cookie whose value is the
//     base64 encoding of {"jwt":"<token>"}.
//   - CurrentUserMiddleware decodes and verifies the cookie on every request.
//     A missing or invalid session leaves the request anonymous, RequireAuth
//     rejects anonymous requests with 401.
//   - Retired signing keys may be listed to keep verifying sessions during key
//     rotation, new tokens are always signed with the active key.
//
// Accounts:
//   - Accounts are persisted with Bun on SQLite or PostgreSQL. Passwords are
//     stored as salted hashes (bcrypt by default, scrypt optional) and are
//     never serialized in responses.
//   - Email uniqueness is enforced by a unique index so concurrent signups for
//     the same address yield exactly one account.
//
// Errors:
//   - Every failure is rendered as {"errors":[{"message":..,"field":..}]}.
//     Internal failures are logged with their details and answered with a
//     generic message.
package auth
