// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Media Playback - these keys configure the player and the initial source selection.
const (
	Player             = "player.default"
	VideoFormat        = "player.video_format"
	DefaultResolution  = "player.default_resolution"
	DefaultSubtitle    = "player.default_subtitle"
	Autoplay           = "player.autoplay"
	PlayerPollInterval = "player.poll_interval_ms"
)

// Watch Positions - these keys configure the persistence of playback progress.
const (
	PositionsEnable  = "positions.enable"
	PositionsBackend = "positions.backend"
)

// Recent Videos - these keys configure the watched video record used for completion.
const (
	RecentSuggestions = "recent.suggestions"
)

// SponsorBlock - these keys govern segment skipping.
const (
	SponsorBlockEnable        = "sponsorblock.enable"
	SponsorBlockNotifications = "sponsorblock.notifications"
	SponsorBlockCategories    = "sponsorblock.categories"
)

// Backend - these keys select the streaming API instance.
const (
	PipedInstance = "piped.instance"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-interactive application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
