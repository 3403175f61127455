// Package model defines the persisted records of vidfetch.
package model

import "time"

// User is an account. Password holds the bcrypt hash, never the raw password.
type User struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"size:255;not null"`
	IsAdmin   bool      `json:"isAdmin" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
}

// Download is one completed download by a logged-in user. Rows are never
// updated and disappear together with their owner.
type Download struct {
	Id           int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId       int       `json:"userId" gorm:"not null;index"`
	User         User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	VideoTitle   string    `json:"videoTitle" gorm:"size:255;not null"`
	VideoUrl     string    `json:"videoUrl" gorm:"type:text;not null"`
	Quality      string    `json:"quality" gorm:"size:20;not null"`
	DownloadDate time.Time `json:"downloadDate" gorm:"autoCreateTime;index"`
}
