package service

import (
	"context"
	"sort"
	"strings"

	"github.com/vidfetch/vidfetch/extractor"
	"github.com/vidfetch/vidfetch/logger"
	"github.com/vidfetch/vidfetch/web/entity"
)

type formatKey struct {
	height int
	vcodec string
	ext    string
}

// Resolve lists the video formats offered for url, deduplicated and best first.
func (s *VideoService) Resolve(ctx context.Context, url string) (*entity.VideoInfo, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, newError(ValidationError, "No URL provided", nil)
	}
	if err := s.checkURL(url); err != nil {
		return nil, err
	}

	info, err := s.probe(ctx, url)
	if err != nil {
		return nil, err
	}
	formats := ResolveFormats(info.Formats)
	logger.Debugf("resolved %d of %d formats for %s", len(formats), len(info.Formats), url)

	return &entity.VideoInfo{
		Title:        info.Title,
		Thumbnail:    info.Thumbnail,
		VideoFormats: formats,
	}, nil
}

// ResolveFormats keeps formats that carry video, drops repeats of the same
// (height, video codec, container) and orders the rest by height then bitrate,
// both descending. Ties keep the engine's order.
func ResolveFormats(formats []extractor.Format) []entity.FormatDescriptor {
	seen := make(map[formatKey]struct{})
	kept := make([]extractor.Format, 0, len(formats))
	for _, f := range formats {
		if !f.HasVideo() {
			continue
		}
		key := formatKey{height: f.HeightOrZero(), vcodec: f.VCodec, ext: f.Ext}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, f)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		hi, hj := kept[i].HeightOrZero(), kept[j].HeightOrZero()
		if hi != hj {
			return hi > hj
		}
		return kept[i].BitrateOrZero() > kept[j].BitrateOrZero()
	})

	out := make([]entity.FormatDescriptor, 0, len(kept))
	for _, f := range kept {
		out = append(out, entity.FormatDescriptor{
			FormatID:   f.FormatID,
			Ext:        f.Ext,
			Height:     f.Height,
			Width:      f.Width,
			FPS:        f.FPS,
			TBR:        f.TBR,
			FormatNote: f.FormatNote,
			ACodec:     f.ACodec,
			VCodec:     f.VCodec,
			// audio is always merged in at download time
			HasAudio: true,
		})
	}
	return out
}
