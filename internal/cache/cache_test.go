package cache

import (
	"testing"
	"time"

	"github.com/playspan/playspan/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestCollectGarbage(t *testing.T) {
	Convey("CollectGarbage", t, func() {
		fs := filesystem.API()
		lo.Must0(fs.MkdirAll("/tmp/playspan/nested", 0o755))
		lo.Must0(fs.WriteFile("/tmp/playspan/old.sock", nil, 0o600))
		lo.Must0(fs.WriteFile("/tmp/playspan/nested/old.part", nil, 0o600))
		lo.Must0(fs.WriteFile("/tmp/playspan/fresh.sock", nil, 0o600))

		old := time.Now().Add(-2 * TempTTL)
		lo.Must0(fs.Chtimes("/tmp/playspan/old.sock", old, old))
		lo.Must0(fs.Chtimes("/tmp/playspan/nested/old.part", old, old))

		So(CollectGarbage("/tmp/playspan", TempTTL), ShouldEqual, 2)
		So(lo.Must(fs.Exists("/tmp/playspan/old.sock")), ShouldBeFalse)
		So(lo.Must(fs.Exists("/tmp/playspan/nested/old.part")), ShouldBeFalse)
		So(lo.Must(fs.Exists("/tmp/playspan/fresh.sock")), ShouldBeTrue)

		So(CollectGarbage("/missing", TempTTL), ShouldEqual, 0)
	})
}
