package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expensetrack/expense-api/internal/core/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestTokenAuthority_IssueAndVerify(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	a := NewTokenAuthority(testSecret, 2*time.Hour, clock.Now)

	tok, err := a.Issue("user-123")
	require.NoError(t, err)

	sub, err := a.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", sub)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Equal(t, clock.t.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, clock.t.Add(2*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestTokenAuthority_Expired(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	a := NewTokenAuthority(testSecret, time.Minute, clock.Now)

	tok, err := a.Issue("u1")
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Minute + time.Second)
	_, err = a.Verify(tok)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestTokenAuthority_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenAuthority("right-secret-right-secret-right-secret", time.Hour, nil).Issue("u2")
	require.NoError(t, err)

	_, err = NewTokenAuthority("wrong-secret-wrong-secret-wrong-secret", time.Hour, nil).Verify(tok)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestTokenAuthority_TamperedPayload(t *testing.T) {
	t.Parallel()

	a := NewTokenAuthority(testSecret, time.Hour, nil)
	tok, err := a.Issue("u3")
	require.NoError(t, err)

	other, err := a.Issue("someone-else")
	require.NoError(t, err)

	// Splice the other token's payload onto the first token's signature.
	p1 := strings.Split(tok, ".")
	p2 := strings.Split(other, ".")
	forged := p1[0] + "." + p2[1] + "." + p1[2]

	_, err = a.Verify(forged)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestTokenAuthority_Malformed(t *testing.T) {
	t.Parallel()

	a := NewTokenAuthority(testSecret, time.Hour, nil)
	for _, tok := range []string{"", "abc", "not.a.jwt", "a.b"} {
		_, err := a.Verify(tok)
		assert.ErrorIs(t, err, domain.ErrTokenMalformed, "token %q", tok)
	}
}

func TestTokenAuthority_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := jwt.RegisteredClaims{
		Subject:   "u4",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewTokenAuthority(testSecret, time.Hour, nil).Verify(tok)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestTokenAuthority_MissingClaims(t *testing.T) {
	t.Parallel()

	a := NewTokenAuthority(testSecret, time.Hour, nil)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u5"}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = a.Verify(noExp)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = a.Verify(noSub)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestTokenAuthority_Defaults(t *testing.T) {
	t.Parallel()

	a := NewTokenAuthority(testSecret, 0, nil)
	assert.Equal(t, 24*time.Hour, a.TTL())

	_, err := a.Issue("")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
