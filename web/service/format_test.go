package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidfetch/vidfetch/extractor"
)

func TestResolveFormatsFiltersDedupsAndRanks(t *testing.T) {
	formats := []extractor.Format{
		{FormatID: "a", Ext: "mp4", Height: intp(720), VCodec: "avc1", TBR: floatp(1000)},
		{FormatID: "audio", Ext: "m4a", VCodec: "none"},
		{FormatID: "b", Ext: "mp4", Height: intp(720), VCodec: "avc1", TBR: floatp(3000)},
		{FormatID: "c", Ext: "webm", Height: intp(720), VCodec: "vp9", TBR: floatp(2000)},
		{FormatID: "d", Ext: "mp4", Height: intp(1080), VCodec: "avc1"},
		{FormatID: "e", Ext: "mp4", VCodec: "avc1", TBR: floatp(9000)},
		{FormatID: "f", Ext: "mp4", Height: intp(0), VCodec: "avc1"},
		{FormatID: "g", Ext: "webm", Height: intp(720), VCodec: "vp9", TBR: floatp(2000)},
		{FormatID: "h", Ext: "mp4", Height: intp(480), VCodec: "avc1", TBR: floatp(2000)},
		{FormatID: "i", Ext: "webm", Height: intp(480), VCodec: "vp9", TBR: floatp(2000)},
	}

	got := ResolveFormats(formats)

	var order []string
	for _, f := range got {
		order = append(order, f.FormatID)
		assert.True(t, f.HasAudio)
		assert.NotEqual(t, "none", f.VCodec)
	}
	// a wins over b for (720, avc1, mp4); f repeats e's (0, avc1, mp4);
	// h and i tie and keep their input order
	assert.Equal(t, []string{"d", "c", "a", "h", "i", "e"}, order)
}

func TestResolveFormatsEmpty(t *testing.T) {
	got := ResolveFormats(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = ResolveFormats([]extractor.Format{{FormatID: "audio", VCodec: "none"}, {FormatID: "x"}})
	assert.Empty(t, got)
}

func TestResolve(t *testing.T) {
	fake := &fakeExtractor{probe: demoProbe()}
	s := NewVideoService(fake, VideoOptions{})

	info, err := s.Resolve(context.Background(), "  https://www.youtube.com/watch?v=dQw4w9WgXcQ ")
	require.NoError(t, err)
	assert.Equal(t, "Demo clip", info.Title)
	assert.Equal(t, "https://i.ytimg.com/vi/abc/hq.jpg", info.Thumbnail)

	var order []string
	for _, f := range info.VideoFormats {
		order = append(order, f.FormatID)
	}
	assert.Equal(t, []string{"137", "248", "18", "hls"}, order)
	assert.Equal(t, 1, fake.probes)
}

func TestResolveValidation(t *testing.T) {
	fake := &fakeExtractor{probe: demoProbe()}
	s := NewVideoService(fake, VideoOptions{})

	_, err := s.Resolve(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, IsKind(err, ValidationError))
	assert.Equal(t, "No URL provided", err.Error())
	assert.Zero(t, fake.probes)

	strict := NewVideoService(fake, VideoOptions{StrictURLs: true})
	_, err = strict.Resolve(context.Background(), "https://example.com/video")
	assert.True(t, IsKind(err, ValidationError))
	assert.Zero(t, fake.probes)
}

func TestResolveExtractionError(t *testing.T) {
	fake := &fakeExtractor{probeErr: errors.New("ERROR: [youtube] abc: Video unavailable")}
	s := NewVideoService(fake, VideoOptions{})

	_, err := s.Resolve(context.Background(), "https://youtu.be/abc")
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ExtractionError, e.Kind)
	assert.Equal(t, http.StatusBadRequest, e.Kind.StatusCode())
	assert.Equal(t, "yt-dlp error: ERROR: [youtube] abc: Video unavailable", e.Msg)
	assert.ErrorIs(t, err, fake.probeErr)
}
