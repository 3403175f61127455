package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/vidfetch/vidfetch/logger"
	"github.com/vidfetch/vidfetch/web/service"

	"github.com/gin-gonic/gin"
)

const maxLogLines = 1000

// AdminController serves the admin overview and user removal.
type AdminController struct {
	BaseController

	adminService service.AdminService
	scratchDir   string
}

func NewAdminController(g *gin.RouterGroup, scratchDir string) *AdminController {
	a := &AdminController{scratchDir: scratchDir}
	a.initRouter(g)
	return a
}

func (a *AdminController) initRouter(g *gin.RouterGroup) {
	g.GET("/admin", a.overview)
	g.POST("/delete_user/:id", a.deleteUser)
	g.GET("/admin/logs", a.logs)
}

func (a *AdminController) overview(c *gin.Context) {
	o, err := a.adminService.GetOverview(a.scratchDir)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "admin.loadFailed"), err)
		return
	}
	jsonObj(c, o, nil)
}

// logs returns the newest buffered log lines, ?count=N&level=warning.
func (a *AdminController) logs(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "100"))
	if err != nil || count <= 0 {
		count = 100
	}
	if count > maxLogLines {
		count = maxLogLines
	}
	jsonObj(c, logger.GetLogs(count, c.DefaultQuery("level", "info")), nil)
}

// deleteUser answers browsers with a redirect back to /admin and API
// clients with a Msg.
func (a *AdminController) deleteUser(c *gin.Context) {
	actor := a.currentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		a.deleteResult(c, false, I18nWeb(c, "admin.invalidUserId"))
		return
	}

	deleted, err := a.adminService.DeleteUser(actor.UserId, id)
	switch {
	case err == nil:
		a.deleteResult(c, true, I18nWeb(c, "admin.userDeleted", "Username=="+deleted.Username))
	case errors.Is(err, service.ErrDeleteSelf):
		a.deleteResult(c, false, I18nWeb(c, "admin.cannotDeleteSelf"))
	case errors.Is(err, service.ErrDeleteLastAdmin):
		a.deleteResult(c, false, I18nWeb(c, "admin.cannotDeleteLastAdmin"))
	case errors.Is(err, service.ErrUserNotFound):
		a.deleteResult(c, false, I18nWeb(c, "admin.userNotFound"))
	default:
		logger.Error("delete user failed:", err)
		if isAjax(c) {
			jsonMsg(c, I18nWeb(c, "fail"), err)
			return
		}
		c.Redirect(http.StatusFound, "/admin")
	}
}

func (a *AdminController) deleteResult(c *gin.Context, success bool, msg string) {
	if isAjax(c) {
		pureJsonMsg(c, http.StatusOK, success, msg)
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}
