package controller

import (
	"github.com/vidfetch/vidfetch/web/service"

	"github.com/gin-gonic/gin"
)

// HistoryController lists the caller's downloads.
type HistoryController struct {
	BaseController

	historyService service.HistoryService
}

func NewHistoryController(g *gin.RouterGroup) *HistoryController {
	a := &HistoryController{}
	g.GET("/history", a.history)
	return a
}

func (a *HistoryController) history(c *gin.Context) {
	user := a.currentUser(c)
	rows, err := a.historyService.GetUserHistory(user.UserId)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "history.loadFailed"), err)
		return
	}
	jsonObj(c, gin.H{"username": user.Username, "downloads": rows}, nil)
}
