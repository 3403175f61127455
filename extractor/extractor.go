// Package extractor is the boundary to the video extraction and transcode
// engine. Everything that crosses it is decoded into the typed values below;
// callers never see the engine's raw JSON.
package extractor

import (
	"context"
)

// Extractor lists the formats of a video and materializes one of them as a local file.
type Extractor interface {
	Probe(ctx context.Context, url string) (*ProbeResult, error)
	Materialize(ctx context.Context, url string, opts MaterializeOptions) (*Materialized, error)
}

// Format is one rendition reported by the engine. Numeric fields are nil when
// the engine did not report them.
type Format struct {
	FormatID   string
	Ext        string
	Height     *int
	Width      *int
	FPS        *float64
	TBR        *float64
	FormatNote string
	ACodec     string
	VCodec     string
}

// HasVideo reports whether the format carries a video stream. A null or
// missing vcodec counts as no video, like "none".
func (f *Format) HasVideo() bool {
	return f.VCodec != "" && f.VCodec != "none"
}

func (f *Format) HeightOrZero() int {
	if f.Height == nil {
		return 0
	}
	return *f.Height
}

func (f *Format) BitrateOrZero() float64 {
	if f.TBR == nil {
		return 0
	}
	return *f.TBR
}

// ProbeResult is the metadata of a single video. Playlists are reduced to their first entry.
type ProbeResult struct {
	Title     string
	Thumbnail string
	Formats   []Format
}

// FindFormat returns the format with the given id, or nil.
func (p *ProbeResult) FindFormat(id string) *Format {
	for i := range p.Formats {
		if p.Formats[i].FormatID == id {
			return &p.Formats[i]
		}
	}
	return nil
}

// MaterializeOptions tells the engine what to download and where.
type MaterializeOptions struct {
	// Selector is an engine format selector, e.g. "137+bestaudio/best".
	Selector string
	// OutputTemplate is an engine output template, e.g. "/tmp/dl-x/%(title)s.%(ext)s".
	OutputTemplate string
	// Container is the merge and conversion target, e.g. "mp4".
	Container string
}

// Materialized describes the file the engine produced.
type Materialized struct {
	Title string
	// Path is the file the engine reported. After conversion the file may live
	// next to it with the target container's extension.
	Path string
}
