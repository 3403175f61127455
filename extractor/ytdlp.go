package extractor

import (
	"context"
	"strings"

	"github.com/lrstanley/go-ytdlp"
	"github.com/vidfetch/vidfetch/logger"
)

// CommandError carries the engine's own error text.
type CommandError struct {
	Msg string
	Err error
}

func (e *CommandError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Err.Error()
}

func (e *CommandError) Unwrap() error { return e.Err }

// YtDlp drives the yt-dlp binary through go-ytdlp.
type YtDlp struct {
	executable string
}

// NewYtDlp returns an Extractor backed by yt-dlp. An empty executable means
// yt-dlp is looked up on PATH (or in the go-ytdlp install cache).
func NewYtDlp(executable string) *YtDlp {
	return &YtDlp{executable: executable}
}

// Install downloads a yt-dlp binary into the go-ytdlp cache when none is available.
func Install(ctx context.Context) error {
	_, err := ytdlp.Install(ctx, nil)
	return err
}

func (y *YtDlp) command() *ytdlp.Command {
	cmd := ytdlp.New().
		NoPlaylist().
		NoWarnings().
		DumpSingleJSON()
	if y.executable != "" {
		cmd.SetExecutable(y.executable)
	}
	return cmd
}

// Probe lists the formats of the video at url without downloading anything.
func (y *YtDlp) Probe(ctx context.Context, url string) (*ProbeResult, error) {
	res, err := y.command().SkipDownload().Run(ctx, url)
	if err != nil {
		return nil, commandError(res, err)
	}
	probe, err := decodeProbe(res.Stdout)
	if err != nil {
		return nil, &CommandError{Msg: "unreadable metadata: " + err.Error(), Err: err}
	}
	logger.Debugf("probed %s: %d formats", url, len(probe.Formats))
	return probe, nil
}

// Materialize downloads the selected streams, merges them and converts the
// result to opts.Container.
func (y *YtDlp) Materialize(ctx context.Context, url string, opts MaterializeOptions) (*Materialized, error) {
	cmd := y.command().
		NoSimulate().
		Format(opts.Selector).
		Output(opts.OutputTemplate)
	if opts.Container != "" {
		cmd.MergeOutputFormat(opts.Container).RecodeVideo(opts.Container)
	}

	res, err := cmd.Run(ctx, url)
	if err != nil {
		return nil, commandError(res, err)
	}
	m, err := decodeMaterialized(res.Stdout)
	if err != nil {
		return nil, &CommandError{Msg: "unreadable result: " + err.Error(), Err: err}
	}
	logger.Debugf("materialized %s as %s", url, m.Path)
	return m, nil
}

func commandError(res *ytdlp.Result, err error) error {
	msg := ""
	if res != nil {
		msg = engineMessage(res.Stderr)
	}
	return &CommandError{Msg: msg, Err: err}
}

// engineMessage keeps the engine's ERROR lines, which is what it prints for
// unavailable, private or unsupported videos.
func engineMessage(stderr string) string {
	var lines []string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "ERROR:") {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return strings.TrimSpace(lastLine(stderr))
	}
	return strings.Join(lines, "; ")
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "\n"); i >= 0 {
		return s[i+1:]
	}
	return s
}
