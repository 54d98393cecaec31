package ports

// PasswordHasher hashes and verifies passwords (Argon2id).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer signs and validates access JWTs (RS256). Claims carry the user
// id, the sign-in provider, and the role resolved at issue time.
type TokenIssuer interface {
	IssueAccessToken(userID, provider, role string, expiresInSeconds int64) (string, error)
	ValidateAccessToken(tokenString string) (userID, provider, role string, err error)
}
