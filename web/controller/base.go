// Package controller provides the HTTP handlers of vidfetch: accounts, video
// lookup and download, history and the admin view.
package controller

import (
	"github.com/vidfetch/vidfetch/web/locale"
	"github.com/vidfetch/vidfetch/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides common functionality for all controllers.
type BaseController struct{}

// currentUser returns the identity verified for this request, or nil.
func (a *BaseController) currentUser(c *gin.Context) *session.Identity {
	return session.Current(c)
}

// I18nWeb retrieves an internationalized message for the current request's language.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	return locale.I18nWeb(c, name, params...)
}

// i18nOr translates key, falling back to msg when no translation exists.
func i18nOr(c *gin.Context, key, msg string, params ...string) string {
	if s := I18nWeb(c, key, params...); s != "" {
		return s
	}
	return msg
}
