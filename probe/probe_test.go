package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/playspan/playspan/filesystem"
	"github.com/playspan/playspan/key"
	"github.com/playspan/playspan/reltime"
	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

const fixture = `{
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "h264", "start_time": "0.042000"},
    {"index": 1, "codec_type": "audio", "codec_name": "aac", "start_time": "N/A"}
  ],
  "chapters": [
    {"id": 0, "start_time": "0.000000", "end_time": "95.000000", "tags": {"title": "Opening"}},
    {"id": 1, "start_time": "95.000000", "end_time": "1300.000000", "tags": {"title": "Part A"}},
    {"id": 2, "start_time": "1300.000000", "end_time": "1420.500000"}
  ],
  "format": {
    "format_name": "matroska,webm",
    "duration": "1420.500000",
    "start_time": "0.042000",
    "tags": {"title": "Episode 1"}
  }
}`

func TestParse(t *testing.T) {
	Convey("Parse", t, func() {
		r, err := Parse([]byte(fixture))
		So(err, ShouldBeNil)

		Convey("Reads the format", func() {
			So(r.FormatName, ShouldEqual, "matroska,webm")
			So(r.Title, ShouldEqual, "Episode 1")
			So(r.Length(), ShouldEqual, 1420.5)
			So(r.StartTime(), ShouldEqual, 0.042)
		})

		Convey("Keeps container order and names untitled ones", func() {
			So(r.Chapters, ShouldHaveLength, 3)
			So(r.Chapters[0].Title, ShouldEqual, "Opening")
			So(r.Chapters[2].Title, ShouldEqual, "Chapter 3")
			So(r.ChapterStart(1), ShouldResemble, mo.Some(95.0))
			So(r.ChapterStart(3).IsAbsent(), ShouldBeTrue)
		})

		Convey("Streams know their first timestamp when ffprobe does", func() {
			streams := r.Streams()
			So(streams, ShouldHaveLength, 2)
			So(streams[0].NextPTS(), ShouldResemble, mo.Some(0.042))
			So(streams[1].NextPTS().IsAbsent(), ShouldBeTrue)
		})

		Convey("Feeds the resolver", func() {
			rng := reltime.Range{Start: reltime.ChapterAt(1), End: reltime.BeforeEnd(120.5)}
			So(rng.PlayStart(r.Length(), r.ChapterStart), ShouldResemble, mo.Some(95.0))
			So(rng.PlayEnd(r.StartTime(), r.Length(), r.ChapterStart), ShouldResemble, mo.Some(1300.0))
		})

		Convey("A chapter without a readable start keeps its number", func() {
			r, err := Parse([]byte(`{"chapters": [
				{"id": 0, "start_time": "0.000000", "tags": {"title": "Opening"}},
				{"id": 1, "start_time": "N/A", "tags": {"title": "Broken"}},
				{"id": 2, "start_time": "600.000000", "tags": {"title": "Part B"}}
			]}`))
			So(err, ShouldBeNil)
			So(r.Chapters, ShouldHaveLength, 3)
			So(r.Chapters[1].StartUnknown, ShouldBeTrue)
			So(r.ChapterStart(1).IsAbsent(), ShouldBeTrue)
			So(r.ChapterStart(2), ShouldResemble, mo.Some(600.0))

			So(reltime.ChapterAt(1).Resolve(mo.Some(7.0), 1000, r.ChapterStart), ShouldResemble, mo.Some(7.0))
			So(reltime.MustParse("#3").Resolve(mo.None[float64](), 1000, r.ChapterStart), ShouldResemble, mo.Some(600.0))
		})

		Convey("Unknown duration stays zero", func() {
			live, err := Parse([]byte(`{"format": {"duration": "N/A"}}`))
			So(err, ShouldBeNil)
			So(live.Length(), ShouldEqual, 0)
		})

		Convey("Rejects malformed output", func() {
			_, err := Parse([]byte(`{`))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestProbe(t *testing.T) {
	Convey("Probe", t, func() {
		original := runner
		Reset(func() { runner = original })

		var calls [][]string
		runner = func(_ context.Context, binary string, args ...string) ([]byte, error) {
			calls = append(calls, append([]string{binary}, args...))
			return []byte(fixture), nil
		}
		viper.Set(key.ProbeBinary, "ffprobe")

		Convey("Passes the media path last and records it", func() {
			r, err := Probe(context.Background(), "/media/ep1.mkv")
			So(err, ShouldBeNil)
			So(r.Path, ShouldEqual, "/media/ep1.mkv")
			So(calls[0][0], ShouldEqual, "ffprobe")
			So(calls[0][len(calls[0])-1], ShouldEqual, "/media/ep1.mkv")
			So(calls[0], ShouldContain, "-show_chapters")
		})

		Convey("Wraps runner failures", func() {
			runner = func(context.Context, string, ...string) ([]byte, error) {
				return nil, errors.New("exit status 1")
			}
			_, err := Probe(context.Background(), "/media/ep1.mkv")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "exit status 1")
		})

		Convey("Rejects an empty path", func() {
			_, err := Probe(context.Background(), "")
			So(err, ShouldNotBeNil)
		})

		Convey("Cached probes a file revision once", func() {
			viper.Set(key.ProbeCache, true)
			lo.Must0(filesystem.API().WriteFile("/media/cached.mkv", []byte("data"), 0o644))

			first, err := Cached(context.Background(), "/media/cached.mkv")
			So(err, ShouldBeNil)
			second, err := Cached(context.Background(), "/media/cached.mkv")
			So(err, ShouldBeNil)

			So(calls, ShouldHaveLength, 1)
			So(second.Duration, ShouldEqual, first.Duration)
		})

		Convey("Cached bypasses the cache for remote targets", func() {
			viper.Set(key.ProbeCache, true)
			_, _ = Cached(context.Background(), "https://example.com/live.m3u8")
			_, _ = Cached(context.Background(), "https://example.com/live.m3u8")
			So(calls, ShouldHaveLength, 2)
		})
	})
}
