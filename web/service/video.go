package service

import (
	"context"
	"strings"
	"time"

	"github.com/vidfetch/vidfetch/extractor"
)

// VideoOptions configures a VideoService.
type VideoOptions struct {
	// ScratchDir is the root under which each download gets its own directory.
	ScratchDir string
	// StrictURLs rejects URLs that do not look like YouTube links.
	StrictURLs bool
	// ProbeTimeout bounds a metadata lookup; zero means no limit beyond the request.
	ProbeTimeout time.Duration
	// DownloadTimeout bounds a download; zero means no limit beyond the request.
	DownloadTimeout time.Duration
}

// VideoService resolves formats and fetches videos through an extractor.
type VideoService struct {
	extractor      extractor.Extractor
	opts           VideoOptions
	historyService HistoryService
}

func NewVideoService(ex extractor.Extractor, opts VideoOptions) *VideoService {
	return &VideoService{extractor: ex, opts: opts}
}

func (s *VideoService) ScratchDir() string {
	return s.opts.ScratchDir
}

func (s *VideoService) checkURL(url string) error {
	if s.opts.StrictURLs && !IsValidVideoURL(url) {
		return newError(ValidationError, "Invalid YouTube URL", nil)
	}
	return nil
}

func (s *VideoService) probe(ctx context.Context, url string) (*extractor.ProbeResult, error) {
	ctx, cancel := withTimeout(ctx, s.opts.ProbeTimeout)
	defer cancel()

	info, err := s.extractor.Probe(ctx, url)
	if err != nil {
		return nil, newError(ExtractionError, "yt-dlp error: "+errorText(err), err)
	}
	return info, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

func errorText(err error) string {
	return strings.TrimSpace(err.Error())
}
