package cmd

import (
	"testing"

	"github.com/playspan/playspan/chapter"
	"github.com/playspan/playspan/key"
	"github.com/playspan/playspan/player"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestNewResolveOutput(t *testing.T) {
	Convey("newResolveOutput", t, func() {
		media := &player.Media{
			Offset:   0.5,
			Duration: 1420,
			Chapters: chapter.New(
				chapter.Chapter{Title: "Opening", Start: 0},
				chapter.Chapter{Title: "Part A", Start: 95},
			),
		}

		Reset(func() {
			viper.Set(key.PlaybackStart, "")
			viper.Set(key.PlaybackEnd, "")
			viper.Set(key.PlaybackLength, "")
		})

		Convey("Start plus length", func() {
			viper.Set(key.PlaybackStart, "#2")
			viper.Set(key.PlaybackLength, "90")

			c, err := newPlaybackContext(media, "ep1.mkv", "Episode 1")
			So(err, ShouldBeNil)

			out := newResolveOutput(c, len(media.Chapters))
			So(out.Media, ShouldEqual, "ep1.mkv")
			So(out.Range, ShouldResemble, rangeSpec{Start: "#2", Length: "90"})
			So(*out.Start, ShouldEqual, 95)
			So(*out.End, ShouldEqual, 185)
			So(*out.Duration, ShouldEqual, 90)
			So(out.Chapters, ShouldEqual, 2)
		})

		Convey("Length alone counts from the media start", func() {
			viper.Set(key.PlaybackLength, "20")

			c, err := newPlaybackContext(media, "ep1.mkv", "")
			So(err, ShouldBeNil)

			out := newResolveOutput(c, 0)
			So(out.Start, ShouldBeNil)
			So(*out.End, ShouldEqual, 20.5)
			So(*out.Duration, ShouldEqual, 20)
		})

		Convey("No range leaves everything open", func() {
			c, err := newPlaybackContext(media, "ep1.mkv", "")
			So(err, ShouldBeNil)

			out := newResolveOutput(c, 0)
			So(out.Start, ShouldBeNil)
			So(out.End, ShouldBeNil)
			So(out.Duration, ShouldBeNil)
		})

		Convey("A malformed range is an error", func() {
			viper.Set(key.PlaybackEnd, "soon")
			_, err := newPlaybackContext(media, "ep1.mkv", "")
			So(err, ShouldNotBeNil)
		})
	})
}
