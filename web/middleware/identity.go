// Package middleware holds the gin middleware of the vidfetch web server.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vidfetch/vidfetch/database"
	"github.com/vidfetch/vidfetch/database/model"
	"github.com/vidfetch/vidfetch/logger"
	"github.com/vidfetch/vidfetch/web/session"
)

// UserLookup loads a user by id.
type UserLookup interface {
	GetUser(id int) (*model.User, error)
}

// TokenParser verifies a bearer token and returns the user id it names.
type TokenParser interface {
	Parse(token string) (int, error)
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// IdentityMiddleware resolves who is calling. A bearer token takes precedence
// over the session. Either way the user is loaded from the store, so deleted
// users lose access at once and admin rights follow the stored flag.
func IdentityMiddleware(users UserLookup, tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := bearerToken(c); tok != "" {
			id, err := tokens.Parse(tok)
			if err != nil {
				logger.Debug("rejected bearer token:", err)
				c.Next()
				return
			}
			if user := loadUser(users, id); user != nil {
				session.SetCurrent(c, identityOf(user))
			}
			c.Next()
			return
		}

		stored := session.GetIdentity(c)
		if stored == nil {
			c.Next()
			return
		}
		user := loadUser(users, stored.UserId)
		if user == nil {
			if err := session.ClearSession(c); err != nil {
				logger.Warning("Unable to clear stale session:", err)
			}
			c.Next()
			return
		}
		current := identityOf(user)
		if *current != *stored {
			if err := session.SetIdentity(c, current); err != nil {
				logger.Warning("Unable to refresh session:", err)
			}
		}
		session.SetCurrent(c, current)
		c.Next()
	}
}

func loadUser(users UserLookup, id int) *model.User {
	user, err := users.GetUser(id)
	if err != nil {
		if !database.IsNotFound(err) {
			logger.Warning("load session user err:", err)
		}
		return nil
	}
	return user
}

func identityOf(u *model.User) *session.Identity {
	return &session.Identity{UserId: u.Id, Username: u.Username, IsAdmin: u.IsAdmin}
}
