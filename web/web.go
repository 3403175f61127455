// Package web provides the vidfetch web server: routing, sessions and the
// background jobs that keep scratch storage in check.
package web

import (
	"context"
	"embed"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/vidfetch/vidfetch/config"
	"github.com/vidfetch/vidfetch/extractor"
	"github.com/vidfetch/vidfetch/logger"
	"github.com/vidfetch/vidfetch/util/common"
	"github.com/vidfetch/vidfetch/util/random"
	"github.com/vidfetch/vidfetch/web/cache"
	"github.com/vidfetch/vidfetch/web/controller"
	"github.com/vidfetch/vidfetch/web/entity"
	"github.com/vidfetch/vidfetch/web/job"
	"github.com/vidfetch/vidfetch/web/locale"
	"github.com/vidfetch/vidfetch/web/middleware"
	"github.com/vidfetch/vidfetch/web/service"
	"github.com/vidfetch/vidfetch/web/session"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

//go:embed translation/*
var i18nFS embed.FS

// accessPolicy maps every registered route to the access it needs.
var accessPolicy = middleware.AccessPolicy{
	Public: []string{
		"/", "/about", "/login", "/register", "/logout",
		"/info", "/download", "/api/token",
	},
	Admin:     []string{"/admin", "/admin/logs", "/delete_user/:id"},
	LoginPath: "/login",
	HomePath:  "/",
}

// Server represents the vidfetch web server with its controllers, services and scheduled jobs.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	index   *controller.IndexController
	video   *controller.VideoController
	history *controller.HistoryController
	admin   *controller.AdminController

	videoService *service.VideoService
	userService  service.UserService
	tokenService *service.TokenService
	loginLimiter *service.LoginLimiter

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a web server that fetches videos through ex.
func NewServer(ex extractor.Extractor) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		ctx:    ctx,
		cancel: cancel,
		videoService: service.NewVideoService(ex, service.VideoOptions{
			ScratchDir:      config.GetScratchDir(),
			StrictURLs:      config.IsStrictURLs(),
			ProbeTimeout:    config.GetProbeTimeout(),
			DownloadTimeout: config.GetDownloadTimeout(),
		}),
		loginLimiter: service.NewLoginLimiter(),
	}
}

func sessionSecret() string {
	if secret := config.GetSessionSecret(); secret != "" {
		return secret
	}
	logger.Warning("VIDFETCH_SESSION_SECRET is not set, sessions will not survive a restart")
	return random.Seq(32)
}

// initRouter initializes Gin, registers middleware and controllers and returns
// the configured engine. Redis must be initialized first.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	if err := locale.InitLocalizer(i18nFS); err != nil {
		return nil, err
	}

	engine := gin.Default()
	if err := engine.SetTrustedProxies(config.GetTrustedProxies()); err != nil {
		return nil, err
	}

	// downloads are already compressed video
	engine.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/download"}),
	))

	secret := sessionSecret()
	jwtSecret := config.GetJWTSecret()
	if jwtSecret == "" {
		jwtSecret = secret
	}
	s.tokenService = service.NewTokenService(jwtSecret)

	store := cache.NewRedisStore(cache.GetClient(), []byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   config.GetSessionMaxAge() * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	engine.Use(sessions.Sessions(session.CookieName, store))
	engine.Use(locale.LocalizerMiddleware())
	engine.Use(middleware.IdentityMiddleware(&s.userService, s.tokenService))
	engine.Use(middleware.AccessMiddleware(accessPolicy))

	g := engine.Group("/")
	s.index = controller.NewIndexController(g, s.tokenService, s.loginLimiter)
	s.video = controller.NewVideoController(g, s.videoService,
		middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig(config.GetRateLimit())))
	s.history = controller.NewHistoryController(g)
	s.admin = controller.NewAdminController(g, s.videoService.ScratchDir())

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, entity.Msg{Success: false, Msg: http.StatusText(http.StatusNotFound)})
	})

	return engine, nil
}

// startTask schedules background jobs.
func (s *Server) startTask() {
	cleanup := job.NewScratchCleanupJob(s.videoService.ScratchDir(), config.GetScratchTTL())
	if _, err := s.cron.AddJob("@every 10m", cleanup); err != nil {
		logger.Warning("Add ScratchCleanupJob error", err)
	}
	// leftovers from a previous run
	go cleanup.Run()
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	s.cron = cron.New(cron.WithLocation(time.Local), cron.WithSeconds())
	s.cron.Start()

	if err := cache.InitRedis(config.GetRedisAddr()); err != nil {
		return err
	}
	if cache.IsEmbedded() {
		logger.Warning("VIDFETCH_REDIS_ADDR is not set, sessions and rate limits are kept in memory")
	}

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(config.GetListen(), strconv.Itoa(config.GetPort()))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("Web server running HTTP on", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		// running downloads are cancelled on Stop
		BaseContext: func(net.Listener) context.Context { return s.ctx },
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("web server stopped:", err)
		}
	}()

	if usage, err := service.ScratchDiskUsage(s.videoService.ScratchDir()); err == nil {
		logger.Infof("Scratch dir %s, %s free", usage.Path, common.FormatBytes(int64(usage.Free)))
	}

	s.startTask()
	return nil
}

// Stop gracefully shuts down the web server, cron jobs and redis.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	var err1, err2 error
	if s.httpServer != nil {
		// Shutdown closes the listener too
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err1 = s.httpServer.Shutdown(ctx)
	} else if s.listener != nil {
		err1 = s.listener.Close()
	}
	err2 = cache.Close()
	return common.Combine(err1, err2)
}
