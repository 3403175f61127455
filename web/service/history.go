package service

import (
	"github.com/vidfetch/vidfetch/database"
	"github.com/vidfetch/vidfetch/database/model"
	"github.com/vidfetch/vidfetch/web/entity"
)

// HistoryService stores and lists completed downloads.
type HistoryService struct{}

// Record appends one download row for userId.
func (s *HistoryService) Record(userId int, title, url, quality string) error {
	db := database.GetDB()
	d := &model.Download{
		UserId:     userId,
		VideoTitle: truncate(title, 255),
		VideoUrl:   url,
		Quality:    truncate(quality, 20),
	}
	return db.Omit("User").Create(d).Error
}

// GetUserHistory returns the user's downloads, newest first.
func (s *HistoryService) GetUserHistory(userId int) ([]entity.HistoryEntry, error) {
	db := database.GetDB()
	var rows []entity.HistoryEntry
	err := db.Raw(`SELECT video_title, quality, download_date FROM downloads
		WHERE user_id = ? ORDER BY download_date DESC, id DESC`, userId).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []entity.HistoryEntry{}
	}
	return rows, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
