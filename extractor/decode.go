package extractor

import (
	"errors"
	"math"
	"strings"

	"github.com/goccy/go-json"
)

var errEmptyOutput = errors.New("extractor returned no metadata")

type rawFormat struct {
	FormatID   string   `json:"format_id"`
	Ext        string   `json:"ext"`
	Height     *float64 `json:"height"`
	Width      *float64 `json:"width"`
	FPS        *float64 `json:"fps"`
	TBR        *float64 `json:"tbr"`
	FormatNote string   `json:"format_note"`
	ACodec     *string  `json:"acodec"`
	VCodec     *string  `json:"vcodec"`
}

type rawDownload struct {
	Filepath string `json:"filepath"`
	Filename string `json:"_filename"`
}

type rawInfo struct {
	Type               string        `json:"_type"`
	Title              string        `json:"title"`
	Thumbnail          string        `json:"thumbnail"`
	Formats            []rawFormat   `json:"formats"`
	Entries            []*rawInfo    `json:"entries"`
	Filename           string        `json:"filename"`
	LegacyFilename     string        `json:"_filename"`
	RequestedDownloads []rawDownload `json:"requested_downloads"`
}

// decodeInfo parses one JSON document and reduces playlists to their first
// available entry.
func decodeInfo(out string) (*rawInfo, error) {
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, errEmptyOutput
	}
	// the document is the last line; anything before it is engine chatter
	if i := strings.LastIndex(out, "\n{"); i >= 0 {
		out = out[i+1:]
	}

	info := &rawInfo{}
	if err := json.Unmarshal([]byte(out), info); err != nil {
		return nil, err
	}
	for len(info.Entries) > 0 {
		var first *rawInfo
		for _, e := range info.Entries {
			if e != nil {
				first = e
				break
			}
		}
		if first == nil {
			return nil, errors.New("playlist has no available entries")
		}
		info = first
	}
	return info, nil
}

func intPtr(f *float64) *int {
	if f == nil {
		return nil
	}
	v := int(math.Round(*f))
	return &v
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *rawInfo) toProbeResult() *ProbeResult {
	res := &ProbeResult{
		Title:     r.Title,
		Thumbnail: r.Thumbnail,
		Formats:   make([]Format, 0, len(r.Formats)),
	}
	for _, f := range r.Formats {
		res.Formats = append(res.Formats, Format{
			FormatID:   f.FormatID,
			Ext:        f.Ext,
			Height:     intPtr(f.Height),
			Width:      intPtr(f.Width),
			FPS:        f.FPS,
			TBR:        f.TBR,
			FormatNote: f.FormatNote,
			ACodec:     strVal(f.ACodec),
			VCodec:     strVal(f.VCodec),
		})
	}
	return res
}

// reportedPath picks the path the engine wrote, preferring the post-processed one.
func (r *rawInfo) reportedPath() string {
	for _, d := range r.RequestedDownloads {
		if d.Filepath != "" {
			return d.Filepath
		}
		if d.Filename != "" {
			return d.Filename
		}
	}
	if r.Filename != "" {
		return r.Filename
	}
	return r.LegacyFilename
}

// decodeProbe turns the engine's JSON dump into a ProbeResult.
func decodeProbe(out string) (*ProbeResult, error) {
	info, err := decodeInfo(out)
	if err != nil {
		return nil, err
	}
	return info.toProbeResult(), nil
}

// decodeMaterialized extracts the title and output path from the engine's
// post-download JSON dump.
func decodeMaterialized(out string) (*Materialized, error) {
	info, err := decodeInfo(out)
	if err != nil {
		return nil, err
	}
	return &Materialized{Title: info.Title, Path: info.reportedPath()}, nil
}
