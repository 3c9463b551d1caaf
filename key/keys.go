// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Play Range - relative time specifications bounding playback.
const (
	PlaybackStart  = "playback.start"
	PlaybackEnd    = "playback.end"
	PlaybackLength = "playback.length"
)

// Window Title - template and width applied to the video output title.
const (
	PlaybackWindowTitle = "playback.window_title"
	PlaybackTitleWidth  = "playback.title_width"
)

// Stream Dump - capture behaviour of the dump command.
const (
	DumpQuiet     = "dump.quiet"
	DumpDir       = "dump.dir"
	DumpChunkSize = "dump.chunk_size"
	DumpCacheSize = "dump.cache_size"
)

// Media Probing - ffprobe invocation and result caching.
const (
	ProbeBinary = "probe.binary"
	ProbeCache  = "probe.cache"
)

// Media Playback - external player integration.
const (
	PlayerBinary = "player.binary"
)

// Networking - transport used for remote streams.
const (
	NetworkBrowserTLS = "network.browser_tls"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these settings govern CLI presentation.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
	IconsVariant    = "icons.variant"
)
