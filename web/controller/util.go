package controller

import (
	"net"
	"net/http"
	"strings"

	"github.com/vidfetch/vidfetch/logger"
	"github.com/vidfetch/vidfetch/web/entity"
	"github.com/vidfetch/vidfetch/web/middleware"
	"github.com/vidfetch/vidfetch/web/service"

	"github.com/gin-gonic/gin"
)

// getRemoteIp extracts the real IP address from the request headers or remote address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return strings.TrimSpace(ips[0])
	}
	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}

// jsonMsg sends a JSON response with a message and error status.
func jsonMsg(c *gin.Context, msg string, err error) {
	jsonMsgObj(c, msg, nil, err)
}

// jsonObj sends a JSON response with an object and error status.
func jsonObj(c *gin.Context, obj any, err error) {
	jsonMsgObj(c, "", obj, err)
}

// jsonMsgObj sends a JSON response with a message, object, and error status.
func jsonMsgObj(c *gin.Context, msg string, obj any, err error) {
	m := entity.Msg{
		Obj: obj,
	}
	if err == nil {
		m.Success = true
		if msg != "" {
			m.Msg = msg
		}
	} else {
		m.Success = false
		m.Msg = msg
		logger.Warning(msg+" "+I18nWeb(c, "fail")+": ", err)
	}
	c.JSON(http.StatusOK, m)
}

// pureJsonMsg sends a pure JSON message response with custom status code.
func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entity.Msg{
		Success: success,
		Msg:     msg,
	})
}

// jsonError answers a video endpoint failure with {"error": ...}.
func jsonError(c *gin.Context, err error) {
	if e, ok := service.AsError(err); ok {
		if e.Kind == service.DownloadError {
			logger.Warning("download failed:", e.Msg)
		}
		c.JSON(e.Kind.StatusCode(), entity.ErrorMsg{Error: e.Msg})
		return
	}
	logger.Error("unexpected error:", err)
	c.JSON(http.StatusInternalServerError, entity.ErrorMsg{Error: err.Error()})
}

// isAjax checks if the client expects JSON rather than a redirect.
func isAjax(c *gin.Context) bool {
	return middleware.WantsJSON(c)
}
