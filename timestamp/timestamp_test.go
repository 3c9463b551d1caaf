package timestamp

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSentinel(t *testing.T) {
	Convey("Sentinel conversion", t, func() {
		Convey("NoPTS maps to an absent timestamp", func() {
			So(FromPTS(NoPTS).IsAbsent(), ShouldBeTrue)
		})

		Convey("Real values stay present", func() {
			v, ok := FromPTS(12.5).Get()
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 12.5)
		})

		Convey("Absent timestamps encode back to NoPTS", func() {
			So(ToPTS(None()), ShouldEqual, NoPTS)
			So(ToPTS(Some(3)), ShouldEqual, 3)
		})

		Convey("NoPTS is below any plausible timestamp", func() {
			So(NoPTS, ShouldBeLessThan, -1e18)
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Parse", t, func() {
		Convey("Plain seconds", func() {
			v, err := Parse("90")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 90)
			v, _ = Parse("1.25")
			So(v, ShouldEqual, 1.25)
		})

		Convey("Minutes and seconds", func() {
			v, err := Parse("01:30")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 90)
		})

		Convey("Hours, minutes and seconds", func() {
			v, err := Parse("1:02:03.5")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 3723.5)
		})

		Convey("Rejects malformed input", func() {
			for _, in := range []string{"", "abc", "1:2:3:4", "1:75", "-5", "1.5:00"} {
				_, err := Parse(in)
				So(errors.Is(err, ErrInvalid), ShouldBeTrue)
			}
		})
	})
}

func TestFormat(t *testing.T) {
	Convey("Format", t, func() {
		So(Format(None()), ShouldEqual, "none")
		So(Format(Some(3723.5)), ShouldEqual, "01:02:03.500")
		So(FormatSeconds(-1.5), ShouldEqual, "-00:00:01.500")
	})
}
