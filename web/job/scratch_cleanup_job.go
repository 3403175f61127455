// Package job holds the cron jobs of the web server.
package job

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vidfetch/vidfetch/logger"
	"github.com/vidfetch/vidfetch/util/common"
	"github.com/vidfetch/vidfetch/web/service"
)

// ScratchCleanupJob removes download scratch directories older than a TTL,
// left behind by crashes or aborted clients.
type ScratchCleanupJob struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

func NewScratchCleanupJob(dir string, ttl time.Duration) *ScratchCleanupJob {
	return &ScratchCleanupJob{dir: dir, ttl: ttl, now: time.Now}
}

// Run is called by cron.
func (j *ScratchCleanupJob) Run() {
	defer common.Recover("scratch cleanup job")

	removed, err := j.Sweep()
	if err != nil {
		logger.Warning("scratch cleanup job err:", err)
	}
	if removed > 0 {
		logger.Infof("scratch cleanup removed %d directories", removed)
	}
}

// Sweep removes expired scratch directories and returns how many it removed.
// Only directories named like download scratch directories are touched, and
// never those of downloads still running in this process.
func (j *ScratchCleanupJob) Sweep() (int, error) {
	entries, err := os.ReadDir(j.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cutoff := j.now().Add(-j.ttl)
	removed := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), service.ScratchPrefix) {
			continue
		}
		// mtime does not move while a file inside is written
		if service.ScratchInUse(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(j.dir, e.Name())); err != nil {
			logger.Warning("remove scratch dir failed:", err)
			continue
		}
		removed++
	}
	return removed, nil
}
