// Package session keeps the logged-in identity in the gin session and exposes the
// identity resolved for the current request.
package session

import (
	"encoding/gob"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	loginIdentity = "LOGIN_IDENTITY"
	requestKey    = "identity"

	// CookieName is the name of the session cookie.
	CookieName = "vidfetch"
)

// Identity is the session payload of a logged-in user.
type Identity struct {
	UserId   int    `json:"userId"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

func init() {
	gob.Register(Identity{})
}

func SetIdentity(c *gin.Context, id *Identity) error {
	s := sessions.Default(c)
	s.Set(loginIdentity, *id)
	return s.Save()
}

func cookieOptions(maxAge int) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Login stores id with a cookie lifetime of maxAge seconds, in a single save.
func Login(c *gin.Context, id *Identity, maxAge int) error {
	s := sessions.Default(c)
	s.Options(cookieOptions(maxAge))
	s.Set(loginIdentity, *id)
	return s.Save()
}

// GetIdentity returns the identity stored in the session, unverified.
func GetIdentity(c *gin.Context) *Identity {
	s := sessions.Default(c)
	if obj := s.Get(loginIdentity); obj != nil {
		if id, ok := obj.(Identity); ok {
			return &id
		}
	}
	return nil
}

func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(cookieOptions(-1))
	return s.Save()
}

// SetCurrent stores the verified identity of this request on the gin context.
func SetCurrent(c *gin.Context, id *Identity) {
	c.Set(requestKey, id)
}

// Current returns the identity verified for this request, or nil for anonymous requests.
func Current(c *gin.Context) *Identity {
	if v, ok := c.Get(requestKey); ok {
		if id, ok := v.(*Identity); ok {
			return id
		}
	}
	return nil
}
