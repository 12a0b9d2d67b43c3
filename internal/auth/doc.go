// Package auth provides the token codec and password hashing used by the
// pizza service.
//
// Tokens are HS256 JWTs carrying the user id as subject, the role
// assignments held at issuance, and a random jti. Verification never
// consults storage; revocation is handled by the session store.
package auth
