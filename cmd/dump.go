package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/playspan/playspan/color"
	"github.com/playspan/playspan/icon"
	"github.com/playspan/playspan/input"
	"github.com/playspan/playspan/key"
	"github.com/playspan/playspan/log"
	"github.com/playspan/playspan/playback"
	"github.com/playspan/playspan/stream"
	"github.com/playspan/playspan/style"
	"github.com/playspan/playspan/tui"
	"github.com/playspan/playspan/util"
	"github.com/playspan/playspan/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringP("output", "o", "", "File to write the stream to. Defaults to a file in the dumps directory")
	dumpCmd.Flags().BoolP("quiet", "q", false, "Do not print progress while dumping")
	lo.Must0(viper.BindPFlag(key.DumpQuiet, dumpCmd.Flags().Lookup("quiet")))

	dumpCmd.SetOut(os.Stdout)
}

var dumpCmd = &cobra.Command{
	Use:   "dump <url|file>",
	Short: "Copy a stream to a file as it is read",
	Long: `Copy a local file or an http(s) stream to disk chunk by chunk.

In a terminal a progress view is shown. q stops the dump after the current
chunk and pressing ctrl+c twice abandons it.
Otherwise lines read from standard input are run as commands:
  quit         stop dumping and keep what was written
  title <text> change the media title`,
	Example: "  playspan dump https://example.com/live.ts -o live.ts",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target := args[0]

		output := lo.Must(cmd.Flags().GetString("output"))
		if output == "" {
			output = filepath.Join(where.Dumps(), util.DumpFilename(target))
		}

		written, err := runDump(cmd.Context(), target, output)
		if errors.Is(err, context.Canceled) {
			cmd.Printf("%s interrupted after %s\n", style.Fg(color.Yellow)(icon.Get(icon.Dump)), util.Quantify(int(written), "byte", "bytes"))
			return
		}
		handleErr(err)

		cmd.Printf(
			"%s wrote %s to %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			util.Quantify(int(written), "byte", "bytes"),
			style.Fg(color.Purple)(output),
		)
	},
}

// runDump dumps target into output and returns how many bytes were consumed from the stream.
func runDump(ctx context.Context, target, output string) (int64, error) {
	src, err := stream.Open(ctx, target)
	if err != nil {
		return 0, err
	}

	c := playback.New(playback.Options{
		Path:      target,
		DumpPath:  output,
		ChunkSize: viper.GetInt(key.DumpChunkSize),
		Quiet:     viper.GetBool(key.DumpQuiet),
	})

	var source stream.Stream = src
	if size := viper.GetInt(key.DumpCacheSize); size > 0 {
		cached := stream.NewCached(src, size)
		c.Cache = cached
		source = cached
	}
	defer util.Ignore(source.Close)

	c.Source = source

	queue := input.NewQueue(0)
	c.Input = queue

	start, _ := source.Span()
	if input.Interactive() && !c.Options.Quiet {
		err = tui.RunDump(ctx, tui.DumpOptions{
			Title:   filepath.Base(output),
			Context: c,
			Queue:   queue,
			Dump:    c.StreamDump,
		})
	} else {
		if !c.Options.Quiet {
			c.Status = os.Stderr
		}

		listenCtx, stopListening := context.WithCancel(ctx)
		defer stopListening()

		go func() {
			if err := input.Listen(listenCtx, os.Stdin, queue); err != nil && !errors.Is(err, context.Canceled) {
				log.Warnf("read commands: %v", err)
			}
		}()

		err = c.StreamDump(ctx)
		if c.Status != nil {
			_, _ = fmt.Fprintln(c.Status)
		}
	}

	if p, ok := c.CachePercent().Get(); ok {
		log.WithField("component", "dump").Debugf("cache %d%% full at exit", p)
	}

	return source.Position() - start, err
}
