package playback

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/playspan/playspan/filesystem"
	"github.com/playspan/playspan/reltime"
	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

type fakeStream struct{ next mo.Option[float64] }

func (s fakeStream) NextPTS() mo.Option[float64] { return s.next }

type fakeDemuxer struct {
	streams  []Stream
	start    float64
	length   float64
	chapters []float64
}

func (d *fakeDemuxer) Streams() []Stream  { return d.streams }
func (d *fakeDemuxer) StartTime() float64 { return d.start }
func (d *fakeDemuxer) Length() float64    { return d.length }
func (d *fakeDemuxer) ChapterStart(i int) mo.Option[float64] {
	if i < 0 || i >= len(d.chapters) {
		return mo.None[float64]()
	}
	return mo.Some(d.chapters[i])
}

type fakeCache struct {
	size, fill int64
	idle       bool
}

func (c fakeCache) Size() int64 { return c.size }
func (c fakeCache) Fill() int64 { return c.fill }
func (c fakeCache) Idle() bool  { return c.idle }

type fakeVO struct {
	titles []string
	err    error
}

func (v *fakeVO) SetWindowTitle(title string) error {
	if v.err != nil {
		return v.err
	}
	v.titles = append(v.titles, title)
	return nil
}

func TestRelativeTime(t *testing.T) {
	Convey("RelativeTime", t, func() {
		base := time.Unix(1000, 0)
		current := base
		c := New(Options{})
		c.now = func() time.Time { return current }
		c.lastTime = base

		current = base.Add(1500 * time.Millisecond)
		So(c.RelativeTime(), ShouldAlmostEqual, 1.5)

		current = current.Add(250 * time.Millisecond)
		So(c.RelativeTime(), ShouldAlmostEqual, 0.25)

		So(c.RelativeTime(), ShouldEqual, 0)
	})
}

func TestPositions(t *testing.T) {
	Convey("Given a context", t, func() {
		c := New(Options{})

		Convey("Without a demuxer everything is neutral", func() {
			So(c.StartTime(), ShouldEqual, 0)
			So(c.TimeLength(), ShouldEqual, 0)
			So(c.ChapterStart(0).IsAbsent(), ShouldBeTrue)
			So(c.MainDemuxPTS().IsAbsent(), ShouldBeTrue)
			So(c.PlayEndPTS().IsAbsent(), ShouldBeTrue)
		})

		Convey("With a demuxer", func() {
			d := &fakeDemuxer{start: 2, length: 600, chapters: []float64{0, 90, 300}}
			c.Demuxer = d

			Convey("RelToAbs resolves against the demuxer", func() {
				So(c.RelToAbs(reltime.ChapterAt(1), mo.None[float64]()), ShouldResemble, mo.Some(90.0))
				So(c.RelToAbs(reltime.BeforeEnd(60), mo.None[float64]()), ShouldResemble, mo.Some(540.0))
			})

			Convey("PlayEndPTS prefers the end over the length", func() {
				c.Options.Range = reltime.Range{End: reltime.ChapterAt(2), Length: reltime.At(5)}
				So(c.PlayEndPTS(), ShouldResemble, mo.Some(300.0))
			})

			Convey("PlayEndPTS measures a length from the media start", func() {
				c.Options.Range = reltime.Range{Length: reltime.At(20)}
				So(c.PlayEndPTS(), ShouldResemble, mo.Some(22.0))
			})

			Convey("MainDemuxPTS picks the first stream with a known timestamp", func() {
				d.streams = []Stream{
					fakeStream{mo.None[float64]()},
					fakeStream{mo.Some(12.5)},
					fakeStream{mo.Some(3.0)},
				}
				So(c.MainDemuxPTS(), ShouldResemble, mo.Some(12.5))
			})

			Convey("MainDemuxPTS is absent when no stream knows", func() {
				d.streams = []Stream{fakeStream{mo.None[float64]()}}
				So(c.MainDemuxPTS().IsAbsent(), ShouldBeTrue)
			})
		})
	})
}

func TestCache(t *testing.T) {
	Convey("Cache statistics", t, func() {
		c := New(Options{})

		Convey("Absent without a cache", func() {
			So(c.CachePercent().IsAbsent(), ShouldBeTrue)
			So(c.CacheIdle(), ShouldBeFalse)
		})

		Convey("Uses integer percent arithmetic", func() {
			c.Cache = fakeCache{size: 1000, fill: 255, idle: true}
			So(c.CachePercent(), ShouldResemble, mo.Some(25))
			So(c.CacheIdle(), ShouldBeTrue)
		})

		Convey("Unknown or tiny sizes are absent", func() {
			for _, fc := range []fakeCache{{size: -1, fill: 10}, {size: 0, fill: 0}, {size: 99, fill: 1}, {size: 1000, fill: -1}} {
				c.Cache = fc
				So(c.CachePercent().IsAbsent(), ShouldBeTrue)
			}
		})
	})
}

func TestWindowTitle(t *testing.T) {
	Convey("Window title", t, func() {
		c := New(Options{
			Path:        "/media/show/episode.mkv",
			WindowTitle: "${media-title} ${play-end:open} $$${missing}",
			Range:       reltime.Range{End: reltime.PercentOf(50)},
		})
		c.Demuxer = &fakeDemuxer{length: 120}

		Convey("Properties expand with fallbacks", func() {
			So(c.ExpandProperties(c.Options.WindowTitle), ShouldEqual, "episode.mkv 00:01:00.000 $")
			c.Options.Range = reltime.Range{}
			So(c.ExpandProperties(c.Options.WindowTitle), ShouldEqual, "episode.mkv open $")
		})

		Convey("Extra properties override built-ins", func() {
			c.Options.Properties = map[string]string{"media-title": "Pilot"}
			So(c.ExpandProperties("${media-title}"), ShouldEqual, "Pilot")
		})

		Convey("Without a video output nothing happens", func() {
			So(c.UpdateWindowTitle(), ShouldBeNil)
		})

		Convey("Only changed titles are pushed", func() {
			vo := &fakeVO{}
			c.VideoOut = vo

			So(c.UpdateWindowTitle(), ShouldBeNil)
			So(c.UpdateWindowTitle(), ShouldBeNil)
			So(vo.titles, ShouldHaveLength, 1)

			c.Options.MediaTitle = "Renamed"
			So(c.UpdateWindowTitle(), ShouldBeNil)
			So(vo.titles, ShouldHaveLength, 2)
			So(vo.titles[1], ShouldStartWith, "Renamed")
		})

		Convey("Titles are truncated to the configured width", func() {
			vo := &fakeVO{}
			c.VideoOut = vo
			c.Options.TitleWidth = 8

			So(c.UpdateWindowTitle(), ShouldBeNil)
			So(vo.titles[0], ShouldEqual, "episode…")
		})

		Convey("A failed push is retried next time", func() {
			vo := &fakeVO{err: errors.New("closed")}
			c.VideoOut = vo
			So(c.UpdateWindowTitle(), ShouldNotBeNil)

			vo.err = nil
			So(c.UpdateWindowTitle(), ShouldBeNil)
			So(vo.titles, ShouldHaveLength, 1)
		})
	})
}

// byteSource serves data in fixed-size reads and tracks its position.
type byteSource struct {
	data  []byte
	pos   int64
	step  int
	known bool
}

func (s *byteSource) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := min(len(p), s.step, len(s.data)-int(s.pos))
	copy(p, s.data[s.pos:s.pos+int64(n)])
	s.pos += int64(n)
	return n, nil
}

func (s *byteSource) Position() int64 { return s.pos }

func (s *byteSource) Span() (int64, int64) {
	if !s.known {
		return 0, -1
	}
	return 0, int64(len(s.data))
}

type stopCommand struct{ runs *int }

func (stopCommand) Name() string { return "quit" }
func (s stopCommand) Run(c *Context) error {
	*s.runs++
	c.Stop()
	return nil
}

type sliceInput struct{ pending []Command }

func (in *sliceInput) Poll() (Command, bool) {
	if len(in.pending) == 0 {
		return nil, false
	}
	cmd := in.pending[0]
	in.pending = in.pending[1:]
	return cmd, true
}

func TestStreamDump(t *testing.T) {
	Convey("StreamDump", t, func() {
		path := "/dumps/capture.ts"
		c := New(Options{DumpPath: path, ChunkSize: 4096})

		Convey("Requires a source and a path", func() {
			So(errors.Is(c.StreamDump(context.Background()), ErrNoSource), ShouldBeTrue)

			c.Source = &byteSource{step: 1}
			c.Options.DumpPath = ""
			So(errors.Is(c.StreamDump(context.Background()), ErrNoDumpPath), ShouldBeTrue)
		})

		Convey("Copies the whole stream until EOF", func() {
			data := bytes.Repeat([]byte("0123456789"), 1000)
			c.Source = &byteSource{data: data, step: 700, known: true}

			So(c.StreamDump(context.Background()), ShouldBeNil)
			So(lo.Must(filesystem.API().ReadFile(path)), ShouldResemble, data)
		})

		Convey("Reports progress while in an odd MiB", func() {
			data := make([]byte, 3*mib)
			var status bytes.Buffer
			c.Status = &status
			c.Options.ChunkSize = 256 * 1024
			c.Source = &byteSource{data: data, step: 256 * 1024, known: true}

			So(c.StreamDump(context.Background()), ShouldBeNil)
			So(status.String(), ShouldContainSubstring, "Dumping 1048576/3145728...")
			So(status.String(), ShouldNotContainSubstring, "Dumping 0/")
		})

		Convey("Stays silent when quiet", func() {
			var status bytes.Buffer
			c.Status = &status
			c.Options.Quiet = true
			c.Source = &byteSource{data: make([]byte, 2*mib), step: mib}

			So(c.StreamDump(context.Background()), ShouldBeNil)
			So(status.Len(), ShouldEqual, 0)
		})

		Convey("Stops when a command asks to", func() {
			runs := 0
			c.Input = &sliceInput{pending: []Command{stopCommand{&runs}}}
			c.Source = &byteSource{data: make([]byte, 10*4096), step: 4096}

			So(c.StreamDump(context.Background()), ShouldBeNil)
			So(runs, ShouldEqual, 1)
			So(c.Stopped(), ShouldBeTrue)
			So(lo.Must(filesystem.API().ReadFile(path)), ShouldHaveLength, 4096)
		})

		Convey("Returns the context error on cancellation", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			c.Source = &byteSource{data: make([]byte, 10), step: 1}

			So(errors.Is(c.StreamDump(ctx), context.Canceled), ShouldBeTrue)
		})
	})
}
