package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vidfetch/vidfetch/config"
	"github.com/vidfetch/vidfetch/database"
	"github.com/vidfetch/vidfetch/extractor"
)

func setup(t *testing.T) {
	t.Helper()
	c := &config.DatabaseConfig{
		Type:   config.DatabaseTypeSQLite,
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
	}
	require.NoError(t, database.InitDB(c))
	t.Cleanup(func() { _ = database.CloseDB() })
}

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

// fakeExtractor serves a fixed probe result and, on Materialize, writes the
// files named in outputs into the scratch directory.
type fakeExtractor struct {
	probe    *extractor.ProbeResult
	probeErr error

	outputs     []string
	reported    string
	title       string
	downloadErr error

	probes   int
	lastOpts extractor.MaterializeOptions
	lastDir  string
}

func (f *fakeExtractor) Probe(ctx context.Context, url string) (*extractor.ProbeResult, error) {
	f.probes++
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	return f.probe, nil
}

func (f *fakeExtractor) Materialize(ctx context.Context, url string, opts extractor.MaterializeOptions) (*extractor.Materialized, error) {
	f.lastOpts = opts
	f.lastDir = filepath.Dir(opts.OutputTemplate)
	for _, name := range f.outputs {
		if err := os.WriteFile(filepath.Join(f.lastDir, name), []byte("data"), 0o600); err != nil {
			return nil, err
		}
	}
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	reported := ""
	if f.reported != "" {
		reported = filepath.Join(f.lastDir, f.reported)
	}
	return &extractor.Materialized{Title: f.title, Path: reported}, nil
}

func demoProbe() *extractor.ProbeResult {
	return &extractor.ProbeResult{
		Title:     "Demo clip",
		Thumbnail: "https://i.ytimg.com/vi/abc/hq.jpg",
		Formats: []extractor.Format{
			{FormatID: "140", Ext: "m4a", ACodec: "mp4a.40.2", VCodec: "none", TBR: floatp(129)},
			{FormatID: "18", Ext: "mp4", Height: intp(360), ACodec: "mp4a.40.2", VCodec: "avc1.42001E", TBR: floatp(500)},
			{FormatID: "137", Ext: "mp4", Height: intp(1080), VCodec: "avc1.640028", ACodec: "none", TBR: floatp(4400)},
			{FormatID: "248", Ext: "webm", Height: intp(1080), VCodec: "vp9", ACodec: "none", TBR: floatp(2600)},
			{FormatID: "sb0", Ext: "mhtml", FormatNote: "storyboard"},
			{FormatID: "hls", Ext: "mp4", VCodec: "avc1"},
		},
	}
}
