package icon

import (
	"testing"

	"github.com/playspan/playspan/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Given a registered icon", t, func() {
		Convey("Every icon renders in every variant", func() {
			for _, variant := range AvailableVariants() {
				viper.Set(key.IconsVariant, variant)
				for i := range icons {
					So(Get(i), ShouldNotBeEmpty)
				}
			}
		})

		Convey("Plain icons are single ASCII-friendly symbols", func() {
			viper.Set(key.IconsVariant, plain)
			So(Get(Success), ShouldEqual, "✓")
			So(Get(Fail), ShouldEqual, "✗")
		})

		Convey("It returns empty for an unknown variant", func() {
			viper.Set(key.IconsVariant, "")
			So(Get(Success), ShouldBeEmpty)
		})
	})
}
