// Package version checks for newer releases.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/playspan/playspan/filesystem"
	"github.com/playspan/playspan/network"
	"github.com/playspan/playspan/util"
	"github.com/playspan/playspan/where"
)

const (
	cacheLifetime = 2 * 24 * time.Hour
	fetchTimeout  = 5 * time.Second
)

// ReleasesURL is the endpoint describing the latest release.
var ReleasesURL = "https://api.github.com/repos/playspan/playspan/releases/latest"

var (
	cacheOnce sync.Once
	cacher    *gache.Cache[string]
)

func store() *gache.Cache[string] {
	cacheOnce.Do(func() {
		cacher = gache.New[string](&gache.Options{
			Path:       filepath.Join(where.Cache(), "version.json"),
			Lifetime:   cacheLifetime,
			FileSystem: &filesystem.GacheFs{},
		})
	})
	return cacher
}

// Latest returns the newest released version, cached for two days.
func Latest(ctx context.Context) (string, error) {
	if ver, expired, err := store().Get(); err == nil && !expired && ver != "" {
		return ver, nil
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ReleasesURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := network.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("latest release: %s", resp.Status)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}

	if release.TagName == "" {
		return "", errors.New("empty tag name")
	}

	ver := strings.TrimPrefix(release.TagName, "v")
	_ = store().Set(ver)
	return ver, nil
}
