package version

import (
	"context"
	"fmt"

	"github.com/playspan/playspan/color"
	"github.com/playspan/playspan/constant"
	"github.com/playspan/playspan/icon"
	"github.com/playspan/playspan/key"
	"github.com/playspan/playspan/style"
	"github.com/playspan/playspan/util"
	"github.com/spf13/viper"
)

// Notify displays a terminal alert if a more recent stable application version is available.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Checking if new version is available...", icon.Get(icon.Progress)))
	version, err := Latest(context.Background())
	erase()
	if err != nil {
		return
	}
	if comp, err := Compare(version, constant.Version); err != nil || comp <= 0 {
		return
	}

	fmt.Printf(`
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(version),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint("https://github.com/playspan/playspan/releases/tag/v"+version),
	)

}
