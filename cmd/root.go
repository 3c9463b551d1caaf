// Package cmd implements the command-line interface for playspan.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/playspan/playspan/color"
	"github.com/playspan/playspan/constant"
	"github.com/playspan/playspan/icon"
	"github.com/playspan/playspan/key"
	"github.com/playspan/playspan/log"
	"github.com/playspan/playspan/style"
	"github.com/playspan/playspan/version"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	// the range flags are shared so that each key is bound to exactly one flag
	rangeFlags := []struct{ name, key, usage string }{
		{"start", key.PlaybackStart, "Where playback starts: 1:30, -30, 25% or #2"},
		{"end", key.PlaybackEnd, "Where playback stops, same syntax as --start"},
		{"length", key.PlaybackLength, "How long playback lasts from the start, ignored with --end"},
	}
	for _, f := range rangeFlags {
		rootCmd.PersistentFlags().String(f.name, "", f.usage)
		lo.Must0(viper.BindPFlag(f.key, rootCmd.PersistentFlags().Lookup(f.name)))
	}

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})
}

// rootCmd defines the entry point for the playspan application.
var rootCmd = &cobra.Command{
	Use:   constant.Playspan,
	Short: "Resolve relative play ranges and drive playback within them",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Resolve relative play ranges and drive playback within them"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		handleErr(cmd.Help())
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
