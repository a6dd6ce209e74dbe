// Package auth holds the collaborators the form flows hand their records to:
// an account store for signup, a credential check that opens a two-factor
// challenge for login, the challenge verifier that issues a session token,
// and the profile and upload sinks used by the profile flow.
//
// None of it is a real identity backend. Accounts live in memory or in a
// local SQLite file, and the two-factor code is whatever the configuration
// says it is (any well-formed code when unset).
package auth
