package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/vidfetch/vidfetch/extractor"
	"github.com/vidfetch/vidfetch/logger"
	"github.com/vidfetch/vidfetch/util/common"
	"go.uber.org/atomic"
)

const (
	// ScratchPrefix names the per-download scratch directories.
	ScratchPrefix  = "dl-"
	outputTemplate = "%(title)s.%(ext)s"
	container      = "mp4"
)

var (
	activeDownloads = atomic.NewInt64(0)
	// names of the scratch directories owned by a running or undelivered download
	liveScratch sync.Map
)

// ActiveDownloads is the number of downloads currently running in this process.
func ActiveDownloads() int64 {
	return activeDownloads.Load()
}

// FetchRequest asks for one format of a video. UserId 0 means an anonymous caller.
type FetchRequest struct {
	URL      string
	FormatID string
	UserId   int
}

// FetchResult is a finished download waiting to be delivered.
type FetchResult struct {
	Path    string
	Dir     string
	Title   string
	Quality string
}

// ScratchInUse reports whether the scratch directory called name still
// belongs to a download of this process.
func ScratchInUse(name string) bool {
	_, ok := liveScratch.Load(name)
	return ok
}

// Cleanup removes the scratch directory of the download.
func (r *FetchResult) Cleanup() {
	if r == nil || r.Dir == "" {
		return
	}
	if err := os.RemoveAll(r.Dir); err != nil {
		logger.Warning("remove scratch dir failed:", err)
	}
	liveScratch.Delete(filepath.Base(r.Dir))
}

// Selector asks for the given video format merged with the best audio, or the
// best single file when that pair is unavailable.
func Selector(formatID string) string {
	return formatID + "+bestaudio/best"
}

// QualityLabel renders a format's height as "720p".
func QualityLabel(f *extractor.Format) string {
	if f.Height == nil {
		return "unknown"
	}
	return fmt.Sprintf("%dp", *f.Height)
}

// Fetch downloads the requested format into a fresh scratch directory and
// records it in the caller's history. The caller must Cleanup the result.
func (s *VideoService) Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error) {
	url := strings.TrimSpace(req.URL)
	formatID := strings.TrimSpace(req.FormatID)
	if url == "" || formatID == "" {
		return nil, newError(ValidationError, "Missing URL or format_id", nil)
	}
	if err := s.checkURL(url); err != nil {
		return nil, err
	}

	// formats can change between listing and download, so look again
	info, err := s.probe(ctx, url)
	if err != nil {
		return nil, err
	}
	selected := info.FindFormat(formatID)
	if selected == nil {
		return nil, newError(SelectionError, "Selected format not found", nil)
	}
	if !selected.HasVideo() {
		return nil, newError(SelectionError, "Chosen format is not a video format", nil)
	}

	dir, err := s.newScratchDir()
	if err != nil {
		return nil, newError(DownloadError, "yt-dlp download error: "+err.Error(), err)
	}
	res := &FetchResult{Dir: dir, Quality: QualityLabel(selected)}

	activeDownloads.Inc()
	defer activeDownloads.Dec()

	dctx, cancel := withTimeout(ctx, s.opts.DownloadTimeout)
	defer cancel()

	m, err := s.extractor.Materialize(dctx, url, extractor.MaterializeOptions{
		Selector:       Selector(formatID),
		OutputTemplate: filepath.Join(dir, outputTemplate),
		Container:      container,
	})
	if err != nil {
		res.Cleanup()
		return nil, newError(DownloadError, "yt-dlp download error: "+errorText(err), err)
	}

	res.Path, err = finalPath(dir, m.Path)
	if err != nil {
		res.Cleanup()
		return nil, newError(DownloadError, "yt-dlp download error: "+err.Error(), err)
	}
	res.Title = m.Title
	if res.Title == "" {
		res.Title = info.Title
	}

	if req.UserId != 0 {
		if err := s.historyService.Record(req.UserId, res.Title, url, res.Quality); err != nil {
			logger.Warningf("record download of %s for user %d failed: %v", url, req.UserId, err)
		}
	}
	logger.Infof("fetched %s format %s (%s) into %s", url, formatID, res.Quality, res.Path)
	return res, nil
}

func (s *VideoService) newScratchDir() (string, error) {
	root := s.opts.ScratchDir
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", err
	}
	name := ScratchPrefix + uuid.NewString()
	liveScratch.Store(name, struct{}{})
	dir := filepath.Join(root, name)
	if err := os.Mkdir(dir, 0o700); err != nil {
		liveScratch.Delete(name)
		return "", err
	}
	return dir, nil
}

// finalPath prefers the converted "<base>.mp4" next to the reported file, then
// the reported file, then the only file left in dir.
func finalPath(dir, reported string) (string, error) {
	if reported != "" {
		if !filepath.IsAbs(reported) {
			reported = filepath.Join(dir, reported)
		}
		converted := strings.TrimSuffix(reported, filepath.Ext(reported)) + "." + container
		if isFile(converted) {
			return converted, nil
		}
		if isFile(reported) {
			return reported, nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasSuffix(e.Name(), ".part") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 1 {
		return files[0], nil
	}
	for _, f := range files {
		if strings.EqualFold(filepath.Ext(f), "."+container) {
			return f, nil
		}
	}
	return "", common.NewError("output file not found")
}

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}
