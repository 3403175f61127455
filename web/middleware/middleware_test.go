package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidfetch/vidfetch/database/model"
	"github.com/vidfetch/vidfetch/web/cache"
	"github.com/vidfetch/vidfetch/web/locale"
	"github.com/vidfetch/vidfetch/web/session"
	"gorm.io/gorm"
)

type fakeUsers map[int]*model.User

func (f fakeUsers) GetUser(id int) (*model.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeTokens map[string]int

func (f fakeTokens) Parse(token string) (int, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return 0, assert.AnError
}

var testPolicy = AccessPolicy{
	Public:    []string{"/", "/login", "/as/:id"},
	Admin:     []string{"/admin"},
	LoginPath: "/login",
	HomePath:  "/",
}

func newEngine(t *testing.T, users fakeUsers) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	r := gin.New()
	r.Use(sessions.Sessions(session.CookieName, cache.NewRedisStore(rc, []byte("0123456789abcdef0123456789abcdef"))))
	r.Use(locale.LocalizerMiddleware())
	r.Use(IdentityMiddleware(users, fakeTokens{"admin-token": 1, "ghost-token": 99}))
	r.Use(AccessMiddleware(testPolicy))

	r.GET("/", func(c *gin.Context) {
		if id := session.Current(c); id != nil {
			c.String(http.StatusOK, id.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	// logs in with whatever admin flag the query says, like a session issued
	// before the user's rights changed
	r.GET("/as/:id", func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		u := users[id]
		require.NoError(t, session.SetIdentity(c, &session.Identity{
			UserId: id, Username: u.Username, IsAdmin: c.Query("admin") == "1",
		}))
		c.Status(http.StatusNoContent)
	})
	r.GET("/history", func(c *gin.Context) { c.String(http.StatusOK, "history") })
	r.GET("/admin", func(c *gin.Context) { c.String(http.StatusOK, "admin") })
	return r
}

type client struct {
	t       *testing.T
	engine  *gin.Engine
	cookies []*http.Cookie
}

func (cl *client) do(path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	for _, c := range cl.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	cl.engine.ServeHTTP(w, req)
	if set := w.Result().Cookies(); len(set) > 0 {
		cl.cookies = set
	}
	return w
}

func testUsers() fakeUsers {
	return fakeUsers{
		1: {Id: 1, Username: "admin", IsAdmin: true},
		2: {Id: 2, Username: "bob"},
	}
}

func TestAnonymousIsRedirectedToLogin(t *testing.T) {
	cl := &client{t: t, engine: newEngine(t, testUsers())}

	w := cl.do("/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	w = cl.do("/history")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = cl.do("/admin", "X-Requested-With", "XMLHttpRequest")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)

	w = cl.do("/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNonAdminIsRedirectedHome(t *testing.T) {
	cl := &client{t: t, engine: newEngine(t, testUsers())}
	require.Equal(t, http.StatusNoContent, cl.do("/as/2").Code)

	w := cl.do("/history")
	assert.Equal(t, http.StatusOK, w.Code)

	w = cl.do("/admin")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = cl.do("/admin", "Accept", "application/json")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSessionIsRevalidatedAgainstStore(t *testing.T) {
	users := testUsers()
	cl := &client{t: t, engine: newEngine(t, users)}

	// the session claims admin but the store says otherwise
	cl.do("/as/2?admin=1")
	w := cl.do("/admin")
	assert.Equal(t, http.StatusFound, w.Code)

	// rights granted in the store apply on the next request
	users[2].IsAdmin = true
	w = cl.do("/admin")
	assert.Equal(t, http.StatusOK, w.Code)

	// a deleted user is logged out
	delete(users, 2)
	w = cl.do("/history")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	w = cl.do("/")
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestBearerToken(t *testing.T) {
	cl := &client{t: t, engine: newEngine(t, testUsers())}

	w := cl.do("/admin", "Authorization", "Bearer admin-token")
	assert.Equal(t, http.StatusOK, w.Code)

	w = cl.do("/history", "Authorization", "Bearer bogus")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = cl.do("/history", "Authorization", "Bearer ghost-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimit(t *testing.T) {
	require.NoError(t, cache.InitRedis(""))
	t.Cleanup(func() { _ = cache.Close() })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(locale.LocalizerMiddleware())
	limit := RateLimitMiddleware(DefaultRateLimitConfig(2))
	r.POST("/info", limit, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/other", func(c *gin.Context) { c.Status(http.StatusOK) })

	post := func(path, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, post("/info", "10.0.0.1").Code)
	w := post("/info", "10.0.0.1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = post("/info", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, post("/info", "10.0.0.2").Code)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, post("/other", "10.0.0.1").Code)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	_ = cache.Close()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/info", RateLimitMiddleware(DefaultRateLimitConfig(1)), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/info", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
