package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/muesli/reflow/truncate"
	"github.com/playspan/playspan/chapter"
	"github.com/playspan/playspan/color"
	"github.com/playspan/playspan/icon"
	"github.com/playspan/playspan/style"
	"github.com/playspan/playspan/timestamp"
	"github.com/playspan/playspan/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(chaptersCmd)

	chaptersCmd.Flags().StringP("chapters", "c", "", "Read chapters from a JSON or YAML file instead of the media")
	chaptersCmd.Flags().StringP("find", "f", "", "Print the #N reference of the chapter whose title best matches")
	chaptersCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")

	chaptersCmd.SetOut(os.Stdout)
}

var chaptersCmd = &cobra.Command{
	Use:     "chapters <media>",
	Short:   "List the chapters of a media file",
	Long:    "List the chapters of a media file together with the #N references usable in --start, --end and --length.",
	Example: "  playspan chapters episode.mkv --find opening",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		media, err := loadMedia(cmd.Context(), args[0], lo.Must(cmd.Flags().GetString("chapters")))
		handleErr(err)

		if query := lo.Must(cmd.Flags().GetString("find")); query != "" {
			index, ok := media.Chapters.Find(query).Get()
			if !ok {
				handleErr(fmt.Errorf("no chapter matches %q", query))
			}
			cmd.Println("#" + strconv.Itoa(index+1))
			return
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(media.Chapters))
			return
		}

		if len(media.Chapters) == 0 {
			cmd.Println(style.Faint("no chapters"))
			return
		}

		printChapters(cmd, media.Chapters)
	},
}

func printChapters(cmd *cobra.Command, chapters chapter.List) {
	refWidth := len(strconv.Itoa(len(chapters))) + 1
	titleWidth := util.Max(util.TerminalWidth(80)-refWidth-30, 10)

	for i, ch := range chapters {
		ref := fmt.Sprintf("%-*s", refWidth, "#"+strconv.Itoa(i+1))
		span := "?"
		if start, ok := ch.StartTime().Get(); ok {
			span = timestamp.FormatSeconds(start)
		}
		if ch.End > 0 {
			span += " - " + timestamp.FormatSeconds(ch.End)
		}

		cmd.Printf(
			"%s %s %s %s\n",
			icon.Get(icon.Chapter),
			style.Fg(color.Purple)(ref),
			style.Fg(color.Yellow)(span),
			truncate.StringWithTail(ch.Title, uint(titleWidth), "…"),
		)
	}

	cmd.Println()
	cmd.Println(style.Faint(util.Quantify(len(chapters), "chapter", "chapters")))
}
