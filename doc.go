// Package credentials provides the account credential lifecycle: email
// verified registration, password authentication, and JWT issuance.
//
// Account lifecycle:
//   - Accounts are created pending with a hashed password and a random
//     verification code that expires after a fixed window. Until the code
//     is confirmed the account cannot authenticate.
//   - Lifecycle centralizes the transition graph, code expiry, resend
//     throttling, and persistence. Errors carry machine readable text
//     codes so HTTP layers and callers can branch without string matching.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by the lifecycle
//     to describe registration, verification, and login events. Sinks run
//     best-effort (errors are logged) so you can forward to a database or
//     queue without blocking authentication.
//
// Tokens:
//   - TokenService signs and validates JWTs for verified accounts. The
//     middleware subpackage extracts tokens from headers or cookies and
//     stores validated claims on the request context.
package credentials
