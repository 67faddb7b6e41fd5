package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/dashreel/dashreel/color"
	"github.com/dashreel/dashreel/constant"
	"github.com/dashreel/dashreel/key"
	"github.com/dashreel/dashreel/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Dashreel + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.StrategyRobustPriority, 0, "Priority of the robust (embedded decoder) backend in the strategy chain.\nLower is tried first")
	register(key.StrategyPlatformPriority, 10, "Priority of the platform decoder backend in the strategy chain")
	register(key.StrategyContainerBias, true, "Send every generic container (.mp4, .mkv, ...) to the robust backend.\nDisable to route them by codec metadata only")
	register(key.StrategyScripts, true, "Load Lua strategy scripts from the strategies directory")
	register(key.DecoderBundledPrefixes, []string{"c2.android.", "avdec_"}, "Name prefixes of software decoders bundled with the platform.\nThese are preferred for fragile codecs")
	register(key.DecoderVendorMarkers, []string{"qcom", "mtk", "hisi", "exynos", "qti", "v4l2", "vaapi", "nvdec", "nvv4l2", "msdk"}, "Substrings that mark a decoder as vendor hardware")
	register(key.MonitorAnomalyWindow, 1000, "Milliseconds since the last state change under which an early end counts as a decode failure")
	register(key.MonitorNearZeroPosition, 1000, "Playback position in milliseconds considered to be the start of the item")
	register(key.MonitorMinDuration, 5000, "Items longer than this (milliseconds) cannot legitimately end immediately")
	register(key.MonitorIncompatibilityKeywords, []string{"nosupport", "profilelevel", "codec.profilelevel", "hev1", "hevc", "not supported", "unsupported", "missing a plug-in", "no decoder"}, "Error cause substrings that mark a stream as undecodable by the active backend")
	register(key.HandoverRobustRetries, 2, "Decode failures tolerated on the robust backend before handing over")
	register(key.HandoverPlatformRetries, 1, "Decode failures tolerated on the platform backend before handing over")
	register(key.HandoverAnomalyRetries, 2, "Immediate ends tolerated before handing over")
	register(key.PlayerMPVBinary, "mpv", "Path or name of the mpv executable")
	register(key.PlayerGstBinary, "gst-play-1.0", "Path or name of the gst-play executable")
	register(key.PlayerGstInspect, "gst-inspect-1.0", "Path or name of the gst-inspect executable used to list decoders")
	register(key.PlayerFullscreen, true, "Start backends in fullscreen")
	register(key.PlayerImageDuration, 5000, "How long an image stays on screen, in milliseconds")
	register(key.PlayerStopGracePeriod, 3000, "Milliseconds to wait for a backend to quit before killing it")
	register(key.QueueMode, "sequential", "Queue play mode.\nAvailable options are: sequential, loop, shuffle")
	register(key.ResolveToken, "", "Access token appended to remote links.\nThe keyring entry set with \"dashreel token set\" takes precedence")
	register(key.ResolveTokenKey, "access_token", "Query parameter that carries the access token")
	register(key.ResolveUserAgent, constant.UserAgent, "User-Agent sent to the media host")
	register(key.ResolveProbe, false, "Follow redirects of remote links before playback")
	register(key.HistorySave, true, "Record played and unplayable items")
	register(key.DriveSignalPath, "", "File whose content (1/0, true/false, drive/park) reports driving state.\nEmpty disables polling")
	register(key.DrivePollInterval, 1000, "Driving state poll interval in milliseconds")
	register(key.MetricsAddr, "", "Serve prometheus metrics on this address while playing (e.g. :9464)")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
