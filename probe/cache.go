package probe

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/playspan/playspan/filesystem"
	"github.com/playspan/playspan/key"
	"github.com/playspan/playspan/log"
	"github.com/playspan/playspan/where"
	"github.com/spf13/viper"
)

const cacheLifetime = 30 * 24 * time.Hour

var (
	cacheOnce sync.Once
	cacheMu   sync.Mutex
	cacher    *gache.Cache[map[string]*Result]
)

func store() *gache.Cache[map[string]*Result] {
	cacheOnce.Do(func() {
		cacher = gache.New[map[string]*Result](&gache.Options{
			Path:       where.Probes(),
			Lifetime:   cacheLifetime,
			FileSystem: &filesystem.GacheFs{},
		})
	})
	return cacher
}

// cacheKey identifies a local file revision. Remote targets are never cached.
func cacheKey(path string) (string, bool) {
	if strings.Contains(path, "://") {
		return "", false
	}

	info, err := filesystem.API().Stat(path)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano()), true
}

// Cached is Probe backed by the on-disk probe cache when probe.cache is enabled.
func Cached(ctx context.Context, path string) (*Result, error) {
	k, ok := cacheKey(path)
	if !ok || !viper.GetBool(key.ProbeCache) {
		return Probe(ctx, path)
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()

	entries, expired, err := store().Get()
	if err != nil || expired || entries == nil {
		entries = make(map[string]*Result)
	}

	if hit, ok := entries[k]; ok {
		log.WithField("component", "probe").Debugf("cache hit for %s", path)
		return hit, nil
	}

	result, err := Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	entries[k] = result
	if err := store().Set(entries); err != nil {
		log.WithField("component", "probe").Warnf("persist probe cache: %v", err)
	}
	return result, nil
}
