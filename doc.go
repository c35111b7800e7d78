// Package landmark is the backend for a small e-commerce platform: account
// registration with email verification, JWT sessions, password recovery, a
// seller-owned product catalog, and per-user baskets.
//
// Accounts:
//   - Users carry a role (user, seller, administrator) and an email
//     verification state. Registration creates an unverified account and
//     emails a single-use verification link; login is refused until the link
//     has been followed. Account deletion is a soft deactivation that makes
//     the row invisible to default reads.
//   - Password recovery and password change both stamp password_changed_at,
//     which invalidates every session token issued before the change.
//
// Sessions:
//   - TokenService issues HS256 JWTs with the user id and role as claims.
//     RouteGuard extracts tokens from the Authorization header or the auth
//     cookie and resolves the acting user, failing closed on expiry,
//     tampering, deactivation, and stale sessions.
//
// Catalog and basket:
//   - Products belong to sellers; sellers manage only their own entries,
//     administrators manage everything. The catalog listing supports
//     filtering, search, sorting, sparse fieldsets, and pagination.
//   - Baskets are created lazily per user. Adding a product already in the
//     basket merges quantities; totals are derived from the loaded lines.
package landmark
