// Package entity defines the request and response shapes of the vidfetch web layer.
package entity

import "time"

// Msg represents a standard API response message with success status, message text, and optional data object.
type Msg struct {
	Success bool   `json:"success"` // Indicates if the operation was successful
	Msg     string `json:"msg"`     // Response message text
	Obj     any    `json:"obj"`     // Optional data object
}

// ErrorMsg is the envelope of the video endpoints.
type ErrorMsg struct {
	Error string `json:"error"`
}

// FormatDescriptor is one downloadable rendition as shown to the client.
type FormatDescriptor struct {
	FormatID   string   `json:"format_id"`
	Ext        string   `json:"ext"`
	Height     *int     `json:"height"`
	Width      *int     `json:"width"`
	FPS        *float64 `json:"fps"`
	TBR        *float64 `json:"tbr"`
	FormatNote string   `json:"format_note"`
	ACodec     string   `json:"acodec"`
	VCodec     string   `json:"vcodec"`
	HasAudio   bool     `json:"has_audio"`
}

// VideoInfo is the /info response.
type VideoInfo struct {
	Title        string             `json:"title"`
	Thumbnail    string             `json:"thumbnail"`
	VideoFormats []FormatDescriptor `json:"video_formats"`
}

type VideoForm struct {
	URL      string `json:"url" form:"url"`
	FormatID string `json:"format_id" form:"format_id"`
}

type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type RegisterForm struct {
	Username        string `json:"username" form:"username"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// HistoryEntry is one row of a user's download history.
type HistoryEntry struct {
	VideoTitle   string    `json:"video_title"`
	Quality      string    `json:"quality"`
	DownloadDate time.Time `json:"download_date"`
}

// RecentDownload is a download row joined with its owner's name.
type RecentDownload struct {
	User         string    `json:"user"`
	VideoTitle   string    `json:"video_title"`
	DownloadDate time.Time `json:"download_date"`
}

// UserSummary is a user with the number of downloads they own.
type UserSummary struct {
	Id            int    `json:"id"`
	Username      string `json:"username"`
	DownloadCount int64  `json:"download_count"`
	IsAdmin       bool   `json:"is_admin"`
}

// DiskUsage describes the filesystem holding the scratch directory.
type DiskUsage struct {
	Path        string  `json:"path"`
	Total       uint64  `json:"total"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

// AdminOverview is the /admin response object.
type AdminOverview struct {
	TotalDownloads  int64            `json:"total_downloads"`
	TotalUsers      int64            `json:"total_users"`
	RecentDownloads []RecentDownload `json:"recent_downloads"`
	Users           []UserSummary    `json:"users"`
	ActiveDownloads int64            `json:"active_downloads"`
	ScratchDisk     *DiskUsage       `json:"scratch_disk"`
}

// AppInfo is returned by the index and about pages.
type AppInfo struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Username  string   `json:"username,omitempty"`
	Languages []string `json:"languages"`
}
