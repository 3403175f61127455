package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vidfetch/vidfetch/web/entity"
	"github.com/vidfetch/vidfetch/web/locale"
	"github.com/vidfetch/vidfetch/web/session"
)

// AccessPolicy lists route patterns (as registered with gin) by the access
// they need. Routes in neither list require a logged-in user.
type AccessPolicy struct {
	Public []string
	Admin  []string

	LoginPath string
	HomePath  string
}

func (p AccessPolicy) contains(list []string, route string) bool {
	for _, r := range list {
		if r == route {
			return true
		}
	}
	return false
}

// WantsJSON reports whether the client should get JSON instead of a redirect.
func WantsJSON(c *gin.Context) bool {
	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	if bearerToken(c) != "" {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json") ||
		strings.HasPrefix(c.ContentType(), "application/json")
}

// AccessMiddleware enforces policy on the matched route.
func AccessMiddleware(policy AccessPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		// unmatched requests fall through to the 404 handler
		if route == "" || policy.contains(policy.Public, route) {
			c.Next()
			return
		}

		id := session.Current(c)
		if id == nil {
			deny(c, http.StatusUnauthorized, policy.LoginPath, "login.required")
			return
		}
		if policy.contains(policy.Admin, route) && !id.IsAdmin {
			deny(c, http.StatusForbidden, policy.HomePath, "admin.required")
			return
		}
		c.Next()
	}
}

func deny(c *gin.Context, status int, redirect, msgKey string) {
	if WantsJSON(c) {
		c.AbortWithStatusJSON(status, entity.Msg{
			Success: false,
			Msg:     locale.I18nWeb(c, msgKey),
		})
		return
	}
	c.Redirect(http.StatusFound, redirect)
	c.Abort()
}
