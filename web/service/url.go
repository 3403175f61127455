package service

import (
	"regexp"
	"strings"
)

var videoURLPattern = regexp.MustCompile(
	`^(https?://)?(www\.)?(youtube|youtu|youtube-nocookie)\.(com|be)/(watch\?v=|embed/|v/|.+\?v=)?([^&=%\?]{11})`)

// IsValidVideoURL reports whether url looks like a YouTube video link.
func IsValidVideoURL(url string) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return false
	}
	if videoURLPattern.MatchString(url) {
		return true
	}
	for _, prefix := range []string{"https://youtu.be/", "http://youtu.be/"} {
		if strings.HasPrefix(url, prefix) && len(url) > len(prefix) {
			return true
		}
	}
	return false
}
