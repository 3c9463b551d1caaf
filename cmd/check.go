package cmd

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/playspan/playspan/constant"
	"github.com/playspan/playspan/icon"
	"github.com/playspan/playspan/style"
	"github.com/spf13/viper"
)

// installHints maps a dependency to its install command per platform.
var installHints = map[string]map[string]string{
	"mpv": {
		constant.Darwin:  "brew install mpv",
		constant.Linux:   "sudo apt install mpv",
		constant.Windows: "scoop install mpv",
	},
	"ffprobe": {
		constant.Darwin:  "brew install ffmpeg",
		constant.Linux:   "sudo apt install ffmpeg",
		constant.Windows: "scoop install ffmpeg",
	},
}

// checkDependency verifies that the executable configured under binaryKey is in PATH.
func checkDependency(binaryKey string) error {
	binary := viper.GetString(binaryKey)
	if _, err := exec.LookPath(binary); err != nil {
		printMissingDependencyError(binary, binaryKey)
		return fmt.Errorf("%s not found", binary)
	}
	return nil
}

func printMissingDependencyError(dep, binaryKey string) {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The required dependency '%s' was not found in your PATH.", dep))

	suggestion := fmt.Sprintf("\n\nPoint %s at another executable with:\n  %s",
		style.New().Foreground(style.SecondaryColor).Render(binaryKey),
		style.New().Foreground(style.AccentColor).Bold(true).Render(fmt.Sprintf("%s config set %s <path>", constant.Playspan, binaryKey)),
	)
	if installCmd, ok := installHints[dep][runtime.GOOS]; ok {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd)) + suggestion
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
