package player

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/playspan/playspan/chapter"
	"github.com/playspan/playspan/constant"
	"github.com/playspan/playspan/key"
	"github.com/playspan/playspan/log"
	"github.com/playspan/playspan/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

// MPV implements Player using mpv's JSON-IPC protocol.
type MPV struct {
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when the mpv process exits
	mu         sync.Mutex    // serializes IPC round trips
}

var _ Player = (*MPV)(nil)

// NewMPV creates a new MPV player instance (does not start playback).
func NewMPV() *MPV {
	return &MPV{
		exited: make(chan struct{}),
	}
}

// Connect attaches to an mpv instance already listening on socketPath.
func Connect(socketPath string) *MPV {
	return &MPV{socketPath: socketPath, exited: make(chan struct{})}
}

// Play starts mpv on target and waits until its IPC socket accepts connections.
func (m *MPV) Play(target string, opts PlayOptions) error {
	safeTarget, err := sanitizeMediaTarget(target)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	if m.socketPath == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("generate socket name: %w", err)
		}
		m.socketPath = filepath.Join(where.Temp(), fmt.Sprintf("%s-%x.sock", constant.Playspan, randomBytes))
	}

	binary := viper.GetString(key.PlayerBinary)
	m.cmd = exec.Command(binary, mpvArgs(m.socketPath, safeTarget, opts)...)
	m.cmd.SysProcAttr = sysProcAttr()

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", binary, err)
	}

	// reap the process so it never lingers as a zombie
	m.exited = make(chan struct{})
	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitForSocket(); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(m.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	log.WithField("socket", m.socketPath).Infof("mpv started on %s", safeTarget)
	return nil
}

// mpvArgs passes only the socket, the title and the range; the user's mpv.conf decides the rest.
func mpvArgs(socketPath, target string, opts PlayOptions) []string {
	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--force-window=yes",
		"--input-ipc-server=" + socketPath,
	}

	if title := sanitizeTitle(opts.MediaTitle); title != "" {
		args = append(args, "--force-media-title="+title)
	}
	if start, ok := opts.Start.Get(); ok {
		args = append(args, "--start="+formatSeconds(start))
	}
	if end, ok := opts.End.Get(); ok {
		args = append(args, "--end="+formatSeconds(end))
	}

	// "--" keeps a target such as "-clip.mkv" from being read as an option
	return append(args, "--", target)
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

// Wait returns a channel that is closed when the mpv process exits.
func (m *MPV) Wait() <-chan struct{} {
	return m.exited
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return errors.New("mpv exited before socket was ready")
		default:
		}

		conn, err := dial(m.socketPath)
		if err == nil {
			_ = conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// TimePos returns the current playback position in seconds.
func (m *MPV) TimePos() (float64, error) {
	return m.getFloatProperty("time-pos")
}

// Duration returns the total duration of the current media in seconds.
func (m *MPV) Duration() (float64, error) {
	return m.getFloatProperty("duration")
}

type mpvChapter struct {
	Title string  `json:"title"`
	Time  float64 `json:"time"`
}

// Chapters reads mpv's chapter-list. Chapter ends are derived from the next chapter start.
func (m *MPV) Chapters() (chapter.List, error) {
	data, err := m.sendCommand("get_property", "chapter-list")
	if err != nil {
		return nil, err
	}

	var raw []mpvChapter
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("chapter-list: %w", err)
	}

	list := chapter.New(lo.Map(raw, func(c mpvChapter, i int) chapter.Chapter {
		title := c.Title
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}
		return chapter.Chapter{Title: title, Start: c.Time}
	})...)

	for i := 0; i+1 < len(list); i++ {
		list[i].End = list[i+1].Start
	}
	return list, nil
}

// Media snapshots duration, start offset and chapters of the loaded file.
// Properties mpv does not know yet stay at their zero value.
func (m *MPV) Media() (*Media, error) {
	media := &Media{}

	var err error
	if media.Duration, err = m.Duration(); err != nil && !errors.Is(err, ErrPropertyUnavailable) {
		return nil, err
	}
	if media.Offset, err = m.getFloatProperty("demuxer-start-time"); err != nil && !errors.Is(err, ErrPropertyUnavailable) {
		return nil, err
	}
	if media.Chapters, err = m.Chapters(); err != nil && !errors.Is(err, ErrPropertyUnavailable) {
		return nil, err
	}

	return media, nil
}

// Seek moves playback to the given absolute position in seconds.
func (m *MPV) Seek(seconds float64) error {
	_, err := m.sendCommand("seek", seconds, "absolute")
	return err
}

// Quit asks mpv to exit.
func (m *MPV) Quit() error {
	_, err := m.sendCommand("quit")
	return err
}

// SetWindowTitle implements playback.VideoOut.
func (m *MPV) SetWindowTitle(title string) error {
	return m.Set("title", sanitizeTitle(title))
}

// Set a property.
func (m *MPV) Set(property string, value any) error {
	_, err := m.sendCommand("set_property", property, value)
	return err
}

// IsRunning reports whether mpv is responding to IPC commands.
func (m *MPV) IsRunning() bool {
	if m.socketPath == "" {
		return false
	}

	select {
	case <-m.exited:
		return false
	default:
	}

	_, err := m.sendCommand("get_property", "pid")
	return err == nil
}

// Close shuts down the mpv process and cleans up resources.
func (m *MPV) Close() error {
	if m.socketPath == "" {
		return nil
	}

	_ = m.Quit()

	if m.cmd != nil {
		select {
		case <-m.exited:
		case <-time.After(quitTimeout):
			_ = killProcess(m.cmd)
		}
		_ = os.Remove(m.socketPath)
	}

	return nil
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand("get_property", name)
	if err != nil {
		return 0, err
	}

	var val *float64
	if err := json.Unmarshal(data, &val); err != nil {
		return 0, fmt.Errorf("property %s: %w", name, err)
	}
	if val == nil {
		return 0, fmt.Errorf("property %s: %w", name, ErrPropertyUnavailable)
	}

	return *val, nil
}

// sanitizeMediaTarget accepts http(s) URLs and local paths.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", errors.New("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", errors.New("invalid control characters in URL")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

// sanitizeTitle flattens the title to a single line.
func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
