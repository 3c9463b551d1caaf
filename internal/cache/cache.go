// Package cache prunes stale files left behind in the application directories.
package cache

import (
	"os"
	"time"

	"github.com/playspan/playspan/filesystem"
	"github.com/playspan/playspan/log"
	"github.com/spf13/afero"
)

// TempTTL is how long leftovers such as IPC sockets of crashed players survive in the temp directory.
const TempTTL = 24 * time.Hour

// CollectGarbage removes files under dir not modified within ttl and returns how many were removed.
func CollectGarbage(dir string, ttl time.Duration) int {
	var removed int
	now := time.Now()

	_ = afero.Walk(filesystem.API(), dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if now.Sub(info.ModTime()) <= ttl {
			return nil
		}
		if err := filesystem.API().Remove(path); err != nil {
			log.Warnf("collect %s: %v", path, err)
			return nil
		}
		removed++
		return nil
	})

	if removed > 0 {
		log.WithField("dir", dir).Debugf("removed %d stale files", removed)
	}
	return removed
}
