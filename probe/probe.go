// Package probe extracts media facts with ffprobe and exposes them as a playback.Demuxer.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/playspan/playspan/chapter"
	"github.com/playspan/playspan/key"
	"github.com/playspan/playspan/log"
	"github.com/playspan/playspan/playback"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Stream is a single elementary stream reported by ffprobe.
type Stream struct {
	Index     int     `json:"index"`
	CodecType string  `json:"codec_type"`
	CodecName string  `json:"codec_name"`
	Start     float64 `json:"start"`
	HasStart  bool    `json:"has_start"`
}

// NextPTS is the first timestamp of the stream, which is where demuxing resumes before any read.
func (s Stream) NextPTS() mo.Option[float64] {
	if !s.HasStart {
		return mo.None[float64]()
	}
	return mo.Some(s.Start)
}

// Result holds what the resolver needs to know about a media file.
type Result struct {
	Path       string       `json:"path"`
	FormatName string       `json:"format_name"`
	Title      string       `json:"title,omitempty"`
	Duration   float64      `json:"duration"`
	Start      float64      `json:"start"`
	Chapters   chapter.List `json:"chapters"`
	Tracks     []Stream     `json:"streams"`
}

var _ playback.Demuxer = (*Result)(nil)

// Streams implements playback.Demuxer.
func (r *Result) Streams() []playback.Stream {
	return lo.Map(r.Tracks, func(s Stream, _ int) playback.Stream {
		return s
	})
}

// StartTime implements playback.Demuxer.
func (r *Result) StartTime() float64 { return r.Start }

// Length implements playback.Demuxer.
func (r *Result) Length() float64 { return r.Duration }

// ChapterStart implements playback.Demuxer.
func (r *Result) ChapterStart(index int) mo.Option[float64] {
	return r.Chapters.StartTime(index)
}

// raw mirrors the subset of `ffprobe -print_format json` output we read.
type raw struct {
	Format struct {
		FormatName string            `json:"format_name"`
		Duration   string            `json:"duration"`
		StartTime  string            `json:"start_time"`
		Tags       map[string]string `json:"tags"`
	} `json:"format"`
	Streams []struct {
		Index     int    `json:"index"`
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		StartTime string `json:"start_time"`
	} `json:"streams"`
	Chapters []struct {
		StartTime string            `json:"start_time"`
		EndTime   string            `json:"end_time"`
		Tags      map[string]string `json:"tags"`
	} `json:"chapters"`
}

// runner executes ffprobe. Replaced in tests.
var runner = func(ctx context.Context, binary string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, args...).Output()
}

// Probe runs ffprobe on path.
func Probe(ctx context.Context, path string) (*Result, error) {
	if path == "" {
		return nil, fmt.Errorf("probe: empty path")
	}

	binary := viper.GetString(key.ProbeBinary)
	out, err := runner(ctx, binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"-show_chapters",
		path,
	)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", binary, path, err)
	}

	result, err := Parse(out)
	if err != nil {
		return nil, err
	}
	result.Path = path

	log.WithField("component", "probe").Debugf("probed %s: duration=%g chapters=%d", path, result.Duration, len(result.Chapters))
	return result, nil
}

// Parse decodes ffprobe JSON output. Unparseable numbers are treated as unknown.
func Parse(data []byte) (*Result, error) {
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	result := &Result{
		FormatName: r.Format.FormatName,
		Title:      r.Format.Tags["title"],
		Duration:   parseSeconds(r.Format.Duration).OrEmpty(),
		Start:      parseSeconds(r.Format.StartTime).OrEmpty(),
	}

	for _, s := range r.Streams {
		start := parseSeconds(s.StartTime)
		result.Tracks = append(result.Tracks, Stream{
			Index:     s.Index,
			CodecType: s.CodecType,
			CodecName: s.CodecName,
			Start:     start.OrEmpty(),
			HasStart:  start.IsPresent(),
		})
	}

	// ffprobe lists chapters in container order, which is what #N counts.
	chapters := make(chapter.List, 0, len(r.Chapters))
	for i, c := range r.Chapters {
		start := parseSeconds(c.StartTime)

		title := c.Tags["title"]
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}

		chapters = append(chapters, chapter.Chapter{
			Title:        title,
			Start:        start.OrEmpty(),
			End:          parseSeconds(c.EndTime).OrEmpty(),
			StartUnknown: start.IsAbsent(),
		})
	}
	result.Chapters = chapters

	return result, nil
}

func parseSeconds(s string) mo.Option[float64] {
	if s == "" || s == "N/A" {
		return mo.None[float64]()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return mo.None[float64]()
	}
	return mo.Some(v)
}
