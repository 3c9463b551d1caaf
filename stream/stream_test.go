package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/playspan/playspan/constant"
	"github.com/playspan/playspan/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestOpen(t *testing.T) {
	Convey("Open", t, func() {
		Convey("Local files report their size as the span end", func() {
			lo.Must0(filesystem.API().WriteFile("/media/clip.ts", []byte("abcdef"), 0o644))

			s, err := Open(context.Background(), "/media/clip.ts")
			So(err, ShouldBeNil)
			defer s.Close()

			start, end := s.Span()
			So(start, ShouldEqual, 0)
			So(end, ShouldEqual, 6)

			data, err := io.ReadAll(s)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "abcdef")
			So(s.Position(), ShouldEqual, 6)
		})

		Convey("Missing files and directories fail", func() {
			_, err := Open(context.Background(), "/media/missing.ts")
			So(err, ShouldNotBeNil)

			lo.Must0(filesystem.API().MkdirAll("/media/dir", 0o755))
			_, err = Open(context.Background(), "/media/dir")
			So(err, ShouldNotBeNil)
		})

		Convey("Unknown schemes are rejected", func() {
			_, err := Open(context.Background(), "rtmp://example.com/live")
			So(err, ShouldNotBeNil)
		})

		Convey("HTTP streams", func() {
			var agent string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				agent = r.UserAgent()
				if r.URL.Path == "/missing" {
					http.NotFound(w, r)
					return
				}
				_, _ = w.Write([]byte("0123456789"))
			}))
			defer server.Close()

			Convey("Stream the body and identify the client", func() {
				s, err := Open(context.Background(), server.URL+"/live.ts")
				So(err, ShouldBeNil)
				defer s.Close()

				data, err := io.ReadAll(s)
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, "0123456789")
				So(s.Position(), ShouldEqual, 10)
				So(agent, ShouldEqual, constant.UserAgent)
			})

			Convey("Fail on a non-200 status", func() {
				_, err := Open(context.Background(), server.URL+"/missing")
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "404")
			})
		})
	})
}

// memStream is an in-memory Stream that serves small reads.
type memStream struct {
	*bytes.Reader
	size   int64
	closed bool
}

func newMemStream(data []byte) *memStream {
	return &memStream{Reader: bytes.NewReader(data), size: int64(len(data))}
}

func (m *memStream) Read(p []byte) (int, error) {
	if len(p) > 1000 {
		p = p[:1000]
	}
	return m.Reader.Read(p)
}

func (m *memStream) Position() int64      { return m.size - int64(m.Len()) }
func (m *memStream) Span() (int64, int64) { return 0, m.size }
func (m *memStream) Close() error {
	m.closed = true
	return nil
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestCached(t *testing.T) {
	Convey("Cached", t, func() {
		data := bytes.Repeat([]byte("playspan"), 4096)

		Convey("Delivers the source unchanged", func() {
			c := NewCached(newMemStream(data), 10_000)
			defer c.Close()

			out, err := io.ReadAll(c)
			So(err, ShouldBeNil)
			So(out, ShouldResemble, data)
			So(c.Position(), ShouldEqual, len(data))
		})

		Convey("Fills up to its capacity and then idles", func() {
			c := NewCached(newMemStream(data), 5000)
			defer c.Close()

			So(waitFor(c.Idle), ShouldBeTrue)
			So(c.Size(), ShouldEqual, 5000)
			So(c.Fill(), ShouldEqual, 5000)

			buf := make([]byte, 2000)
			n, err := c.Read(buf)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2000)
			So(c.Position(), ShouldEqual, 2000)

			So(waitFor(func() bool { return c.Fill() == 5000 }), ShouldBeTrue)
		})

		Convey("Reports the source span", func() {
			c := NewCached(newMemStream(data), 1000)
			defer c.Close()

			_, end := c.Span()
			So(end, ShouldEqual, len(data))
		})

		Convey("Close unblocks readers and closes the source", func() {
			src := newMemStream(data)
			c := NewCached(src, 1000)
			So(c.Close(), ShouldBeNil)
			So(src.closed, ShouldBeTrue)

			_, err := c.Read(make([]byte, 10))
			So(errors.Is(err, ErrClosed), ShouldBeTrue)
		})
	})
}
