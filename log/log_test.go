package log

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/playspan/playspan/filesystem"
	"github.com/playspan/playspan/key"
	"github.com/playspan/playspan/where"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Setup", t, func() {
		Reset(func() {
			viper.Set(key.LogsWrite, false)
			viper.Set(key.LogsJson, false)
		})

		Convey("Discards everything when disabled", func() {
			viper.Set(key.LogsWrite, false)
			So(Setup(), ShouldBeNil)
			So(logger.Out, ShouldNotBeNil)
			Info("dropped")
		})

		Convey("Writes JSON entries to the dated log file", func() {
			viper.Set(key.LogsWrite, true)
			viper.Set(key.LogsJson, true)
			viper.Set(key.LogsLevel, "debug")
			So(Setup(), ShouldBeNil)

			WithField("component", "test").Debug("hello")

			path := filepath.Join(where.Logs(), time.Now().Format("2006-01-02")+".log")
			content := string(lo.Must(filesystem.API().ReadFile(path)))
			So(content, ShouldContainSubstring, `"msg":"hello"`)
			So(content, ShouldContainSubstring, `"component":"test"`)
		})

		Convey("Falls back to info on an unknown level", func() {
			viper.Set(key.LogsWrite, true)
			viper.Set(key.LogsLevel, "loud")
			So(Setup(), ShouldBeNil)
			So(logger.GetLevel(), ShouldEqual, logrus.InfoLevel)
		})
	})
}

func TestSetOutput(t *testing.T) {
	Convey("SetOutput captures entries", t, func() {
		var buf bytes.Buffer
		SetOutput(&buf, logrus.WarnLevel)

		Infof("quiet %d", 1)
		Warnf("loud %d", 2)

		So(strings.Contains(buf.String(), "quiet"), ShouldBeFalse)
		So(buf.String(), ShouldContainSubstring, "loud 2")
	})
}
