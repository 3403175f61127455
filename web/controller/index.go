package controller

import (
	"math"
	"net/http"
	"strconv"
	"text/template"

	"github.com/vidfetch/vidfetch/config"
	"github.com/vidfetch/vidfetch/database/model"
	"github.com/vidfetch/vidfetch/logger"
	"github.com/vidfetch/vidfetch/web/entity"
	"github.com/vidfetch/vidfetch/web/locale"
	"github.com/vidfetch/vidfetch/web/service"
	"github.com/vidfetch/vidfetch/web/session"

	"github.com/gin-gonic/gin"
)

// IndexController handles the landing pages and account routes.
type IndexController struct {
	BaseController

	userService  service.UserService
	tokenService *service.TokenService
	limiter      *service.LoginLimiter
}

// NewIndexController creates a new IndexController and initializes its routes.
func NewIndexController(g *gin.RouterGroup, tokens *service.TokenService, limiter *service.LoginLimiter) *IndexController {
	a := &IndexController{tokenService: tokens, limiter: limiter}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.index)
	g.GET("/about", a.about)
	g.GET("/logout", a.logout)

	g.GET("/login", a.loginStatus)
	g.POST("/login", a.login)
	g.GET("/register", a.registerRules)
	g.POST("/register", a.register)

	g.POST("/api/token", a.token)
}

func (a *IndexController) appInfo(c *gin.Context) entity.AppInfo {
	info := entity.AppInfo{
		Name:      config.GetName(),
		Version:   config.GetVersion(),
		Languages: locale.Languages(),
	}
	if user := a.currentUser(c); user != nil {
		info.Username = user.Username
	}
	return info
}

func (a *IndexController) index(c *gin.Context) {
	jsonObj(c, a.appInfo(c), nil)
}

func (a *IndexController) about(c *gin.Context) {
	jsonMsgObj(c, I18nWeb(c, "app.about"), a.appInfo(c), nil)
}

func (a *IndexController) loginStatus(c *gin.Context) {
	user := a.currentUser(c)
	if user == nil {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "login.notLoggedIn"))
		return
	}
	jsonMsgObj(c, I18nWeb(c, "login.alreadyLoggedIn", "Username=="+user.Username), user, nil)
}

// checkCredentials runs the throttled password check shared by the session
// login and the token endpoint. It writes the failure response itself.
func (a *IndexController) checkCredentials(c *gin.Context) *model.User {
	var form entity.LoginForm
	_ = c.ShouldBind(&form)

	// only trusted proxies may set the client address
	ip := c.ClientIP()
	if blocked, wait := a.limiter.Blocked(ip); blocked {
		minutes := strconv.Itoa(int(math.Ceil(wait.Minutes())))
		pureJsonMsg(c, http.StatusTooManyRequests, false,
			i18nOr(c, "login.tooManyAttempts", "Too many failed login attempts", "Minutes=="+minutes))
		return nil
	}

	user := a.userService.CheckUser(form.Username, form.Password)
	if user == nil {
		failures := a.limiter.Fail(ip)
		logger.Warningf("wrong username: \"%s\", IP: \"%s\", failures: %d",
			template.HTMLEscapeString(form.Username), getRemoteIp(c), failures)
		pureJsonMsg(c, http.StatusUnauthorized, false, i18nOr(c, "login.invalid", "Invalid credentials"))
		return nil
	}
	a.limiter.Reset(ip)
	return user
}

func (a *IndexController) login(c *gin.Context) {
	user := a.checkCredentials(c)
	if user == nil {
		return
	}
	if err := a.startSession(c, user); err != nil {
		jsonMsg(c, I18nWeb(c, "login.invalid"), err)
		return
	}
	logger.Infof("%s logged in successfully, Ip Address: %s", user.Username, getRemoteIp(c))
	jsonMsgObj(c, I18nWeb(c, "login.success"), session.Current(c), nil)
}

func (a *IndexController) startSession(c *gin.Context, user *model.User) error {
	id := &session.Identity{UserId: user.Id, Username: user.Username, IsAdmin: user.IsAdmin}
	if err := session.Login(c, id, config.GetSessionMaxAge()*60); err != nil {
		return err
	}
	session.SetCurrent(c, id)
	return nil
}

func (a *IndexController) registerRules(c *gin.Context) {
	jsonMsg(c, I18nWeb(c, "register.rules"), nil)
}

func (a *IndexController) register(c *gin.Context) {
	var form entity.RegisterForm
	_ = c.ShouldBind(&form)

	user, errs := a.userService.Register(&form)
	if len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, i18nOr(c, e.Key, e.Msg))
		}
		c.JSON(http.StatusOK, entity.Msg{
			Success: false,
			Msg:     msgs[0],
			Obj:     gin.H{"errors": msgs, "username": form.Username},
		})
		return
	}

	if err := a.startSession(c, user); err != nil {
		jsonMsg(c, I18nWeb(c, "register.storeFailed"), err)
		return
	}
	logger.Infof("%s registered, Ip Address: %s", user.Username, getRemoteIp(c))
	jsonMsgObj(c, I18nWeb(c, "register.success"), session.Current(c), nil)
}

// logout clears the session and redirects to the index page.
func (a *IndexController) logout(c *gin.Context) {
	if user := a.currentUser(c); user != nil {
		logger.Infof("%s logged out successfully", user.Username)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("Unable to save session after clearing:", err)
	}
	c.Redirect(http.StatusFound, "/")
}

// token issues a bearer token for clients that do not keep cookies.
func (a *IndexController) token(c *gin.Context) {
	user := a.checkCredentials(c)
	if user == nil {
		return
	}
	tok, err := a.tokenService.Issue(user)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "fail"), err)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "api.tokenIssued"), gin.H{"token": tok}, nil)
}
