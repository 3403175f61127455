package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidfetch/vidfetch/database/model"
)

func TestTokenRoundTrip(t *testing.T) {
	s := NewTokenService("k1")
	tok, err := s.Issue(&model.User{Id: 7, Username: "bob"})
	require.NoError(t, err)

	id, err := s.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	_, err = NewTokenService("k2").Parse(tok)
	assert.Error(t, err, "wrong secret")

	_, err = s.Parse("not-a-token")
	assert.Error(t, err)
}

func TestTokenRejectsExpiredAndOtherAlgs(t *testing.T) {
	s := NewTokenService("k1")
	s.ttl = -time.Minute
	tok, err := s.Issue(&model.User{Id: 7})
	require.NoError(t, err)
	_, err = s.Parse(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id": 7, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Parse(none)
	assert.Error(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": 7}).SignedString([]byte("k1"))
	require.NoError(t, err)
	_, err = s.Parse(noExp)
	assert.Error(t, err)
}

func TestLoginLimiter(t *testing.T) {
	l := NewLoginLimiter()
	ip := "10.0.0.1"

	for i := 1; i < maxLoginFailures; i++ {
		assert.Equal(t, i, l.Fail(ip))
		blocked, _ := l.Blocked(ip)
		assert.False(t, blocked)
	}
	l.Fail(ip)
	blocked, wait := l.Blocked(ip)
	assert.True(t, blocked)
	assert.InDelta(t, loginFailureWindow.Seconds(), wait.Seconds(), 5)

	other, _ := l.Blocked("10.0.0.2")
	assert.False(t, other)

	l.Reset(ip)
	blocked, _ = l.Blocked(ip)
	assert.False(t, blocked)
}

func TestIsValidVideoURL(t *testing.T) {
	for _, u := range []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"youtube.com/watch?v=dQw4w9WgXcQ&t=10",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ",
		"http://youtu.be/x",
	} {
		assert.True(t, IsValidVideoURL(u), u)
	}
	for _, u := range []string{
		"",
		"https://vimeo.com/123456",
		"https://www.youtube.com/watch?v=short",
		"ftp://youtube.com/watch?v=dQw4w9WgXcQ",
	} {
		assert.False(t, IsValidVideoURL(u), u)
	}
}
