package job

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidfetch/vidfetch/extractor"
	"github.com/vidfetch/vidfetch/web/service"
)

// slowExtractor holds Materialize until release is closed.
type slowExtractor struct {
	started chan string
	release chan struct{}
}

func (s *slowExtractor) Probe(ctx context.Context, url string) (*extractor.ProbeResult, error) {
	h := 720
	return &extractor.ProbeResult{
		Title:   "Long clip",
		Formats: []extractor.Format{{FormatID: "22", Ext: "mp4", Height: &h, VCodec: "avc1", ACodec: "mp4a.40.2"}},
	}, nil
}

func (s *slowExtractor) Materialize(ctx context.Context, url string, opts extractor.MaterializeOptions) (*extractor.Materialized, error) {
	dir := filepath.Dir(opts.OutputTemplate)
	s.started <- dir
	<-s.release
	path := filepath.Join(dir, "Long clip.mp4")
	if err := os.WriteFile(path, []byte("data"), 0o600); err != nil {
		return nil, err
	}
	return &extractor.Materialized{Title: "Long clip", Path: path}, nil
}

func TestSweepSkipsRunningDownload(t *testing.T) {
	scratch := t.TempDir()
	ex := &slowExtractor{started: make(chan string, 1), release: make(chan struct{})}
	vs := service.NewVideoService(ex, service.VideoOptions{ScratchDir: scratch})

	type result struct {
		res *service.FetchResult
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := vs.Fetch(context.Background(), service.FetchRequest{
			URL:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			FormatID: "22",
		})
		done <- result{res, err}
	}()

	dir := <-ex.started
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(dir, old, old))

	removed, err := NewScratchCleanupJob(scratch, time.Hour).Sweep()
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.DirExists(t, dir)

	close(ex.release)
	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, "Long clip", r.res.Title)
	r.res.Cleanup()

	// once delivered, a leftover of the same age is fair game
	require.NoError(t, os.Mkdir(dir, 0o700))
	require.NoError(t, os.Chtimes(dir, old, old))
	removed, err = NewScratchCleanupJob(scratch, time.Hour).Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
