package cmd

import (
	"context"

	"github.com/playspan/playspan/chapter"
	"github.com/playspan/playspan/config"
	"github.com/playspan/playspan/key"
	"github.com/playspan/playspan/log"
	"github.com/playspan/playspan/playback"
	"github.com/playspan/playspan/probe"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// loadMedia probes target. Chapters from chaptersPath, or from a sidecar
// file next to target, replace the probed ones.
func loadMedia(ctx context.Context, target, chaptersPath string) (*probe.Result, error) {
	result, err := probe.Cached(ctx, target)
	if err != nil {
		return nil, err
	}

	override := chaptersPath
	if override == "" {
		override = chapter.Sidecar(target).OrEmpty()
	}
	if override == "" {
		return result, nil
	}

	chapters, err := chapter.Load(override)
	if err != nil {
		return nil, err
	}

	log.WithField("file", override).Infof("using %d chapters from file", len(chapters))

	// the cached result is shared; override on a copy
	media := *result
	media.Chapters = chapters
	return &media, nil
}

// newPlaybackContext creates a context over demuxer using the configured range and title.
func newPlaybackContext(demuxer playback.Demuxer, target, title string) (*playback.Context, error) {
	rng, err := config.PlayRange()
	if err != nil {
		return nil, err
	}

	c := playback.New(playback.Options{
		Range:       rng,
		Path:        target,
		MediaTitle:  title,
		WindowTitle: viper.GetString(key.PlaybackWindowTitle),
		TitleWidth:  viper.GetInt(key.PlaybackTitleWidth),
	})
	c.Demuxer = demuxer
	return c, nil
}

func optionalSeconds(o mo.Option[float64]) *float64 {
	if v, ok := o.Get(); ok {
		return &v
	}
	return nil
}
