package service

import (
	"errors"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/vidfetch/vidfetch/database"
	"github.com/vidfetch/vidfetch/database/model"
	"github.com/vidfetch/vidfetch/logger"
	"github.com/vidfetch/vidfetch/web/entity"
	"gorm.io/gorm"
)

const recentDownloadsLimit = 10

var (
	ErrDeleteSelf      = errors.New("cannot delete own account")
	ErrDeleteLastAdmin = errors.New("cannot delete the last admin")
	ErrUserNotFound    = errors.New("user not found")
)

// AdminService builds the admin overview and removes users.
type AdminService struct{}

// GetOverview collects store statistics, the users with their download counts,
// in-flight downloads and the usage of the disk holding scratchDir.
func (s *AdminService) GetOverview(scratchDir string) (*entity.AdminOverview, error) {
	db := database.GetDB()
	o := &entity.AdminOverview{
		RecentDownloads: []entity.RecentDownload{},
		Users:           []entity.UserSummary{},
		ActiveDownloads: ActiveDownloads(),
	}

	if err := db.Raw("SELECT COUNT(*) FROM downloads").Scan(&o.TotalDownloads).Error; err != nil {
		return nil, err
	}
	if err := db.Raw("SELECT COUNT(*) FROM users").Scan(&o.TotalUsers).Error; err != nil {
		return nil, err
	}
	err := db.Raw(`SELECT u.username AS user, d.video_title, d.download_date
		FROM downloads d JOIN users u ON d.user_id = u.id
		ORDER BY d.download_date DESC, d.id DESC LIMIT ?`, recentDownloadsLimit).
		Scan(&o.RecentDownloads).Error
	if err != nil {
		return nil, err
	}
	err = db.Raw(`SELECT u.id, u.username, COUNT(d.id) AS download_count, u.is_admin
		FROM users u LEFT JOIN downloads d ON u.id = d.user_id
		GROUP BY u.id, u.username, u.is_admin
		ORDER BY u.id`).
		Scan(&o.Users).Error
	if err != nil {
		return nil, err
	}

	if scratchDir != "" {
		usage, err := ScratchDiskUsage(scratchDir)
		if err != nil {
			logger.Warning("read scratch disk usage failed:", err)
		} else {
			o.ScratchDisk = usage
		}
	}
	return o, nil
}

// ScratchDiskUsage reports the filesystem usage of path.
func ScratchDiskUsage(path string) (*entity.DiskUsage, error) {
	u, err := disk.Usage(path)
	if err != nil {
		return nil, err
	}
	return &entity.DiskUsage{
		Path:        u.Path,
		Total:       u.Total,
		Free:        u.Free,
		UsedPercent: u.UsedPercent,
	}, nil
}

// DeleteUser removes targetId and their downloads in one transaction. An admin
// cannot delete their own account or the last remaining admin.
func (s *AdminService) DeleteUser(actorId, targetId int) (*model.User, error) {
	if actorId == targetId {
		return nil, ErrDeleteSelf
	}

	target := &model.User{}
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", targetId).First(target).Error; err != nil {
			if database.IsNotFound(err) {
				return ErrUserNotFound
			}
			return err
		}
		if target.IsAdmin {
			var admins int64
			if err := tx.Model(model.User{}).Where("is_admin = ?", true).Count(&admins).Error; err != nil {
				return err
			}
			if admins <= 1 {
				return ErrDeleteLastAdmin
			}
		}
		if err := tx.Where("user_id = ?", targetId).Delete(&model.Download{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, targetId).Error
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("user %s (id %d) deleted by user %d", target.Username, targetId, actorId)
	return target, nil
}
