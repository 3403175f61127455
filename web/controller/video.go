package controller

import (
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/vidfetch/vidfetch/web/entity"
	"github.com/vidfetch/vidfetch/web/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/unicode/norm"
)

const defaultFilename = "video.mp4"

var filenameStrip = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// VideoController serves format lookup and downloads. Both routes are public;
// downloads of logged-in users are added to their history.
type VideoController struct {
	BaseController

	videoService *service.VideoService
}

func NewVideoController(g *gin.RouterGroup, videoService *service.VideoService, limit ...gin.HandlerFunc) *VideoController {
	a := &VideoController{videoService: videoService}
	a.initRouter(g, limit)
	return a
}

func (a *VideoController) initRouter(g *gin.RouterGroup, limit []gin.HandlerFunc) {
	chain := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, limit...), h)
	}
	g.POST("/info", chain(a.info)...)
	g.POST("/download", chain(a.download)...)
}

func (a *VideoController) info(c *gin.Context) {
	var form entity.VideoForm
	_ = c.ShouldBind(&form)

	info, err := a.videoService.Resolve(c.Request.Context(), form.URL)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (a *VideoController) download(c *gin.Context) {
	var form entity.VideoForm
	_ = c.ShouldBind(&form)

	req := service.FetchRequest{URL: form.URL, FormatID: form.FormatID}
	if user := a.currentUser(c); user != nil {
		req.UserId = user.UserId
	}

	res, err := a.videoService.Fetch(c.Request.Context(), req)
	if err != nil {
		jsonError(c, err)
		return
	}
	// the file is fully written once FileAttachment returns
	defer res.Cleanup()

	c.FileAttachment(res.Path, secureFilename(filepath.Base(res.Path)))
}

// secureFilename reduces name to a safe ASCII file name: accents are folded,
// path separators and whitespace become underscores and anything outside
// [A-Za-z0-9_.-] is dropped. An empty result yields "video.mp4".
func secureFilename(name string) string {
	name = norm.NFKD.String(name)
	var b strings.Builder
	for _, r := range name {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	name = b.String()
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = filenameStrip.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	if name == "" {
		return defaultFilename
	}
	return name
}
