package input

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/playspan/playspan/playback"
	. "github.com/smartystreets/goconvey/convey"
)

type recordingVO struct{ titles []string }

func (v *recordingVO) SetWindowTitle(title string) error {
	v.titles = append(v.titles, title)
	return nil
}

func TestParse(t *testing.T) {
	Convey("Parse", t, func() {
		Convey("Recognizes quit and its aliases", func() {
			for _, line := range []string{"quit", "q", " STOP "} {
				cmd, err := Parse(line)
				So(err, ShouldBeNil)
				So(cmd, ShouldResemble, Quit{})
			}
		})

		Convey("Keeps the rest of the line as the title", func() {
			cmd, err := Parse("title  Episode 2: The Return ")
			So(err, ShouldBeNil)
			So(cmd, ShouldResemble, Title{Text: "Episode 2: The Return"})
		})

		Convey("Ignores blank lines", func() {
			cmd, err := Parse("   ")
			So(err, ShouldBeNil)
			So(cmd, ShouldBeNil)
		})

		Convey("Rejects unknown commands", func() {
			_, err := Parse("rewind 10")
			So(errors.Is(err, ErrUnknownCommand), ShouldBeTrue)
		})
	})
}

func TestQueue(t *testing.T) {
	Convey("Queue", t, func() {
		q := NewQueue(2)

		Convey("Poll on an empty queue returns immediately", func() {
			_, ok := q.Poll()
			So(ok, ShouldBeFalse)
		})

		Convey("Commands come out in order", func() {
			So(q.Push(Title{Text: "a"}), ShouldBeTrue)
			So(q.Push(Quit{}), ShouldBeTrue)
			So(q.Len(), ShouldEqual, 2)

			first, _ := q.Poll()
			second, _ := q.Poll()
			So(first.Name(), ShouldEqual, "title")
			So(second.Name(), ShouldEqual, "quit")
		})

		Convey("Push drops commands when full", func() {
			q.Push(Quit{})
			q.Push(Quit{})
			So(q.Push(Quit{}), ShouldBeFalse)
		})
	})
}

func TestCommands(t *testing.T) {
	Convey("Commands", t, func() {
		c := playback.New(playback.Options{WindowTitle: "${media-title}"})

		Convey("Quit stops the context", func() {
			So(Quit{}.Run(c), ShouldBeNil)
			So(c.Stopped(), ShouldBeTrue)
		})

		Convey("Title pushes the new window title", func() {
			vo := &recordingVO{}
			c.VideoOut = vo

			So(Title{Text: "Live"}.Run(c), ShouldBeNil)
			So(vo.titles, ShouldResemble, []string{"Live"})
		})

		Convey("Drained through the context", func() {
			q := NewQueue(0)
			q.Push(Title{Text: "Next"})
			q.Push(Quit{})
			c.Input = q

			c.RunPendingCommands()
			So(c.Options.MediaTitle, ShouldEqual, "Next")
			So(c.Stopped(), ShouldBeTrue)
			So(q.Len(), ShouldEqual, 0)
		})
	})
}

func TestListen(t *testing.T) {
	Convey("Listen", t, func() {
		q := NewQueue(0)

		Convey("Queues every parsable line", func() {
			r := strings.NewReader("title One\nbogus\n\nquit\n")
			So(Listen(context.Background(), r, q), ShouldBeNil)
			So(q.Len(), ShouldEqual, 2)
		})

		Convey("Returns when the context is cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()

			blocked := &blockingReader{release: make(chan struct{})}
			defer close(blocked.release)

			err := Listen(ctx, blocked, q)
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		})
	})
}

type blockingReader struct{ release chan struct{} }

func (b *blockingReader) Read([]byte) (int, error) {
	<-b.release
	return 0, context.Canceled
}
