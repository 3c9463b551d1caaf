package reltime

import (
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Parse", t, func() {
		Convey("Empty and none are unset", func() {
			for _, in := range []string{"", "  ", "none", "NONE"} {
				parsed, err := Parse(in)
				So(err, ShouldBeNil)
				So(parsed.IsSet(), ShouldBeFalse)
			}
		})

		Convey("Absolute times", func() {
			parsed, err := Parse("1:30")
			So(err, ShouldBeNil)
			So(parsed.Kind(), ShouldEqual, Absolute)
			seconds, ok := parsed.Seconds()
			So(ok, ShouldBeTrue)
			So(seconds, ShouldEqual, 90)
		})

		Convey("Negative times count from the end", func() {
			parsed, err := Parse("-10.5")
			So(err, ShouldBeNil)
			So(parsed.Kind(), ShouldEqual, NegativeFromEnd)
			seconds, _ := parsed.Seconds()
			So(seconds, ShouldEqual, 10.5)
		})

		Convey("Percentages", func() {
			parsed, err := Parse("37.5%")
			So(err, ShouldBeNil)
			p, ok := parsed.Percent()
			So(ok, ShouldBeTrue)
			So(p, ShouldEqual, 37.5)

			_, err = Parse("101%")
			So(errors.Is(err, ErrInvalid), ShouldBeTrue)
		})

		Convey("Chapters are one-based in text and zero-based in value", func() {
			parsed, err := Parse("#3")
			So(err, ShouldBeNil)
			index, ok := parsed.Chapter()
			So(ok, ShouldBeTrue)
			So(index, ShouldEqual, 2)

			_, err = Parse("#0")
			So(errors.Is(err, ErrInvalid), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "start at 1")
		})

		Convey("Oversized chapter numbers are reported as such", func() {
			_, err := Parse("#99999999999999999999")
			So(errors.Is(err, ErrInvalid), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "too large")
		})

		Convey("Garbage is rejected", func() {
			for _, in := range []string{"abc", "--5", "#x", "%", "1:2:3:4", "NaN%", "nan%", "Inf%"} {
				_, err := Parse(in)
				So(errors.Is(err, ErrInvalid), ShouldBeTrue)
			}
		})
	})
}

func TestAccessors(t *testing.T) {
	Convey("Payload accessors only answer for their own kind", t, func() {
		_, ok := PercentOf(10).Seconds()
		So(ok, ShouldBeFalse)
		_, ok = At(10).Percent()
		So(ok, ShouldBeFalse)
		_, ok = BeforeEnd(10).Chapter()
		So(ok, ShouldBeFalse)
		_, ok = Time{}.Seconds()
		So(ok, ShouldBeFalse)
	})
}

func TestString(t *testing.T) {
	Convey("String round-trips through Parse", t, func() {
		for _, in := range []Time{{}, At(12.25), BeforeEnd(30), PercentOf(50), ChapterAt(4)} {
			parsed, err := Parse(in.String())
			So(err, ShouldBeNil)
			So(parsed, ShouldResemble, in)
		}
	})

	Convey("Time encodes as text in JSON", t, func() {
		data, err := json.Marshal(Range{Start: ChapterAt(1), End: BeforeEnd(5)})
		So(err, ShouldBeNil)
		So(string(data), ShouldEqual, `{"start":"#2","end":"-5","length":""}`)

		var r Range
		So(json.Unmarshal(data, &r), ShouldBeNil)
		So(r.Start, ShouldResemble, ChapterAt(1))
		So(r.Length.IsSet(), ShouldBeFalse)
	})
}
