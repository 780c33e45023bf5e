package ports

// TokenIssuer mints signed identity tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// TokenVerifier checks a token and returns the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}
