package cmd

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/playspan/playspan/color"
	"github.com/playspan/playspan/icon"
	"github.com/playspan/playspan/key"
	"github.com/playspan/playspan/log"
	"github.com/playspan/playspan/playback"
	"github.com/playspan/playspan/player"
	"github.com/playspan/playspan/style"
	"github.com/playspan/playspan/timestamp"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("chapters", "c", "", "Read chapters from a JSON or YAML file instead of the media")
	playCmd.Flags().StringP("title", "t", "", "Override the media title shown in the window title")

	playCmd.SetOut(os.Stdout)
}

var playCmd = &cobra.Command{
	Use:   "play <media>",
	Short: "Play a media file in mpv within the configured range",
	Long: `Start mpv on a media file, keep playback within the configured range and
maintain the window title from the playback.window_title template.

When ffprobe cannot read the media, the range is resolved from what mpv reports once the file is loaded.`,
	Example: "  playspan play episode.mkv --start 25% --end -1:30",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(checkDependency(key.PlayerBinary))

		target := args[0]
		session, err := newPlaySession(cmd, target)
		handleErr(err)

		handleErr(session.run(cmd))
	},
}

// playSession ties a playback context to a running mpv.
type playSession struct {
	mu      sync.Mutex
	context *playback.Context
	mpv     *player.MPV
	guard   *player.Guard

	// probed is false when the demuxer has to be taken from mpv after load.
	probed bool
}

func newPlaySession(cmd *cobra.Command, target string) (*playSession, error) {
	var (
		demuxer playback.Demuxer = &player.Media{}
		title                    = lo.Must(cmd.Flags().GetString("title"))
		probed                   bool
	)

	media, err := loadMedia(cmd.Context(), target, lo.Must(cmd.Flags().GetString("chapters")))
	if err != nil {
		log.WithField("media", target).Warnf("probe failed, resolving from the player: %v", err)
	} else {
		demuxer, probed = media, true
		if title == "" {
			title = media.Title
		}
	}

	c, err := newPlaybackContext(demuxer, target, title)
	if err != nil {
		return nil, err
	}

	mpv := player.NewMPV()
	c.VideoOut = mpv

	return &playSession{
		context: c,
		mpv:     mpv,
		guard:   player.NewGuard(mpv, c.PlayStartPTS(), c.PlayEndPTS()),
		probed:  probed,
	}, nil
}

func (s *playSession) run(cmd *cobra.Command) error {
	opts := player.PlayOptions{MediaTitle: s.context.Options.MediaTitle}
	if s.probed {
		opts.Start, opts.End = s.guard.Range()
	}

	if err := s.mpv.Play(s.context.Options.Path, opts); err != nil {
		return err
	}
	defer func() { _ = s.mpv.Close() }()

	s.printRange(cmd)

	listener := player.NewEventListener(s.mpv.Socket(), s.handle)
	if err := listener.Start(); err != nil {
		return err
	}
	defer listener.Stop()

	s.mu.Lock()
	s.updateTitle()
	s.mu.Unlock()

	select {
	case <-s.mpv.Wait():
	case <-listener.Done():
	case <-cmd.Context().Done():
	}

	return nil
}

func (s *playSession) handle(e player.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e.Name {
	case "duration", "chapter-list":
		if !s.probed {
			s.refreshFromPlayer()
		}
	case "media-title":
		var title string
		if err := json.Unmarshal(e.Data, &title); err == nil && title != "" {
			s.context.Options.MediaTitle = title
		}
	case "time-pos":
		action, err := s.guard.Handle(e)
		if err != nil {
			log.Warn(err)
		}
		if action != player.ActionNone {
			log.WithField("action", action.String()).Debug("range enforced")
		}
	default:
		return
	}

	s.updateTitle()
}

// refreshFromPlayer re-resolves the range from what mpv knows about the loaded file.
func (s *playSession) refreshFromPlayer() {
	media, err := s.mpv.Media()
	if err != nil {
		log.Warnf("read media from player: %v", err)
		return
	}

	s.context.Demuxer = media
	s.guard.SetRange(s.context.PlayStartPTS(), s.context.PlayEndPTS())
}

func (s *playSession) updateTitle() {
	if err := s.context.UpdateWindowTitle(); err != nil {
		log.Warnf("update window title: %v", err)
	}
}

func (s *playSession) printRange(cmd *cobra.Command) {
	bound := func(ts mo.Option[float64], absent string) string {
		if v, ok := ts.Get(); ok {
			return timestamp.FormatSeconds(v)
		}
		return absent
	}

	start, end := s.guard.Range()
	cmd.Printf(
		"%s %s %s %s\n",
		style.Fg(color.Green)(icon.Get(icon.Play)),
		style.Bold(s.context.Options.MediaTitle),
		style.Fg(color.Yellow)(bound(start, "start")+" - "+bound(end, "end")),
		style.Faint("("+s.context.Options.Range.String()+")"),
	)
}
