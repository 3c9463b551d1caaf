package where

import (
	"path/filepath"
	"testing"

	"github.com/playspan/playspan/filesystem"
	"github.com/playspan/playspan/key"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	// Use in-memory filesystem for tests to avoid creating real directories
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		for name, fn := range map[string]func() string{
			"Config": Config,
			"Cache":  Cache,
			"Logs":   Logs,
			"Dumps":  Dumps,
			"Temp":   Temp,
		} {
			Convey(name+"()", func() {
				path := fn()
				So(path, ShouldNotBeEmpty)
				So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
			})
		}

		Convey("Probes() lives in the cache directory", func() {
			So(filepath.Dir(Probes()), ShouldEqual, Cache())
		})

		Convey("Dumps() honours dump.dir", func() {
			viper.Set(key.DumpDir, "/captures")
			Reset(func() { viper.Set(key.DumpDir, "") })

			So(Dumps(), ShouldEqual, "/captures")
			So(lo.Must(filesystem.API().IsDir("/captures")), ShouldBeTrue)
		})
	})
}
