// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Strategy Chain - these keys decide which backend attempts an item first.
const (
	StrategyRobustPriority   = "strategy.robust_priority"
	StrategyPlatformPriority = "strategy.platform_priority"
	StrategyContainerBias    = "strategy.container_bias"
	StrategyScripts          = "strategy.scripts"
)

// Decoder Ranking
const (
	DecoderBundledPrefixes = "decoder.bundled_prefixes"
	DecoderVendorMarkers   = "decoder.vendor_markers"
)

// Playback Monitor - these keys tune how lifecycle transitions are classified.
const (
	MonitorAnomalyWindow           = "monitor.anomaly_window_ms"
	MonitorNearZeroPosition        = "monitor.near_zero_ms"
	MonitorMinDuration             = "monitor.min_duration_ms"
	MonitorIncompatibilityKeywords = "monitor.incompatibility_keywords"
)

// Handover Controller - per-backend failure budgets.
const (
	HandoverRobustRetries   = "handover.robust_retries"
	HandoverPlatformRetries = "handover.platform_retries"
	HandoverAnomalyRetries  = "handover.anomaly_retries"
)

// Backends - these keys locate and configure the external decode processes.
const (
	PlayerMPVBinary       = "player.mpv_binary"
	PlayerGstBinary       = "player.gst_binary"
	PlayerGstInspect      = "player.gst_inspect"
	PlayerFullscreen      = "player.fullscreen"
	PlayerImageDuration   = "player.image_duration_ms"
	PlayerStopGracePeriod = "player.stop_grace_ms"
)

// Queue
const (
	QueueMode = "queue.mode"
)

// Stream URL Resolution - these keys govern how item links become playable URLs.
const (
	ResolveToken     = "resolve.token"
	ResolveTokenKey  = "resolve.token_param"
	ResolveUserAgent = "resolve.user_agent"
	ResolveProbe     = "resolve.probe"
)

// History Tracking
const (
	HistorySave = "history.save"
)

// Driving Mode - these keys configure the vehicle state source.
const (
	DriveSignalPath   = "drive.signal_path"
	DrivePollInterval = "drive.poll_interval_ms"
)

// Metrics
const (
	MetricsAddr = "metrics.addr"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
