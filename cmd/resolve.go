package cmd

import (
	"encoding/json"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/playspan/playspan/color"
	"github.com/playspan/playspan/icon"
	"github.com/playspan/playspan/playback"
	"github.com/playspan/playspan/style"
	"github.com/playspan/playspan/timestamp"
	"github.com/playspan/playspan/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// resolveOutput is the structured result of the resolve command.
type resolveOutput struct {
	Media    string    `json:"media" jsonschema:"description=Path or URL that was probed."`
	Title    string    `json:"title,omitempty" jsonschema:"description=Media title from the container tags."`
	Range    rangeSpec `json:"range" jsonschema:"description=Play range as configured."`
	Length   float64   `json:"length" jsonschema:"description=Media duration in seconds. 0 when unknown."`
	Chapters int       `json:"chapters" jsonschema:"description=Number of chapters available to #N references."`
	Start    *float64  `json:"start" jsonschema:"description=Resolved start in seconds. Null when playback starts at the beginning of the media."`
	End      *float64  `json:"end" jsonschema:"description=Resolved end in seconds. Null when playback is not cut."`
	Duration *float64  `json:"duration" jsonschema:"description=Seconds between the effective start and the resolved end. Null without an end."`
}

type rangeSpec struct {
	Start  string `json:"start" jsonschema:"description=Start specification, empty when unset."`
	End    string `json:"end" jsonschema:"description=End specification, empty when unset."`
	Length string `json:"length" jsonschema:"description=Length specification, empty when unset."`
}

func newResolveOutput(c *playback.Context, chapters int) resolveOutput {
	rng := c.Options.Range
	start := c.PlayStartPTS()
	end := c.PlayEndPTS()

	out := resolveOutput{
		Media:    c.Options.Path,
		Title:    c.Options.MediaTitle,
		Length:   c.TimeLength(),
		Chapters: chapters,
		Range: rangeSpec{
			Start:  rng.Start.String(),
			End:    rng.End.String(),
			Length: rng.Length.String(),
		},
		Start: optionalSeconds(start),
		End:   optionalSeconds(end),
	}

	if e, ok := end.Get(); ok {
		d := e - start.OrElse(c.StartTime())
		out.Duration = &d
	}

	return out
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringP("chapters", "c", "", "Read chapters from a JSON or YAML file instead of the media")
	resolveCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	resolveCmd.Flags().Bool("schema", false, "Print the JSON schema of the --json output and exit")

	resolveCmd.SetOut(os.Stdout)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <media>",
	Short: "Resolve the configured play range against a media file",
	Long: `Probe a media file and resolve the play range into absolute timestamps.

The range comes from --start, --end and --length or from the playback.* config keys.`,
	Example: "  playspan resolve episode.mkv --start '#2' --length 1:30",
	Args: func(cmd *cobra.Command, args []string) error {
		if lo.Must(cmd.Flags().GetBool("schema")) {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("schema")) {
			reflector := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(reflector.Reflect(&resolveOutput{})))
			return
		}

		target := args[0]
		media, err := loadMedia(cmd.Context(), target, lo.Must(cmd.Flags().GetString("chapters")))
		handleErr(err)

		c, err := newPlaybackContext(media, target, media.Title)
		handleErr(err)

		out := newResolveOutput(c, len(media.Chapters))

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(out))
			return
		}

		printResolveOutput(cmd, out, c.Options.Range.String())
	},
}

func printResolveOutput(cmd *cobra.Command, out resolveOutput, rangeText string) {
	var (
		header = style.New().Bold(true).Foreground(color.HiPurple).Render
		label  = style.Faint
		value  = style.Fg(color.Yellow)
	)

	seconds := func(s *float64, absent string) string {
		if s == nil {
			return style.Faint(absent)
		}
		return value(timestamp.FormatSeconds(*s))
	}

	name := out.Title
	if name == "" {
		name = out.Media
	}

	cmd.Printf("%s %s\n\n", style.Fg(color.Purple)("▇▇▇"), header(name))
	cmd.Printf("  %s  %s\n", label("Range   "), value(rangeText))

	length := style.Faint("unknown")
	if out.Length > 0 {
		length = value(timestamp.FormatSeconds(out.Length))
	}
	cmd.Printf("  %s  %s %s\n", label("Length  "), length, style.Faint("("+util.Quantify(out.Chapters, "chapter", "chapters")+")"))
	cmd.Printf("  %s  %s %s\n", label("Start   "), icon.Get(icon.Clock), seconds(out.Start, "beginning"))
	cmd.Printf("  %s  %s %s\n", label("End     "), icon.Get(icon.Clock), seconds(out.End, "end of media"))
	cmd.Printf("  %s  %s\n", label("Duration"), seconds(out.Duration, "until the end"))
}
