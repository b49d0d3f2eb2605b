// Package auth implements the two-step admin login.
//
// Step one checks the email and password, gates on the active-admin table and emails a one-time
// code. Step two verifies the code, re-checks the gate and persists the session. [Authenticator]
// exposes the individual operations; [Flow] wraps them in an explicit state machine:
//
//	Anonymous → CredentialsSubmitted → CodeSent → Authenticated
//	                    ↓                  ↓
//	                  Failed             Failed
//
// A failed step remembers where to retry from. Calls made out of order fail with
// [shared.ErrInvalidState].
package auth
