package decoder

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Inventory lists the decoders available for a codec.
type Inventory interface {
	Decoders(ctx context.Context, codecMime string) ([]Candidate, error)
}

// Feature is one element factory reported by gst-inspect.
type Feature struct {
	Plugin      string
	Name        string
	Description string
}

// plugin:  feature: description
var featureLine = regexp.MustCompile(`^(?P<plugin>[\w.-]+):\s+(?P<name>[\w.-]+):\s+(?P<desc>.+)$`)

// ParseInspect parses the feature listing printed by gst-inspect-1.0 without arguments.
func ParseInspect(r io.Reader) ([]Feature, error) {
	var features []Feature

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m := featureLine.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		features = append(features, Feature{Plugin: m[1], Name: m[2], Description: m[3]})
	}

	return features, scanner.Err()
}

// IsVideoDecoder reports whether the feature decodes video.
func (f Feature) IsVideoDecoder() bool {
	desc := strings.ToLower(f.Description)
	if strings.Contains(desc, "audio") || strings.Contains(desc, "subtitle") {
		return false
	}
	return strings.Contains(desc, "decoder") || strings.HasSuffix(f.Name, "dec")
}

// codec families and the markers that identify their decoders
var families = map[string][]string{
	"h265":  {"h265", "hevc", "265"},
	"h264":  {"h264", "avc", "264"},
	"vp9":   {"vp9"},
	"vp8":   {"vp8"},
	"av1":   {"av1"},
	"mpeg2": {"mpeg2"},
	"mpeg4": {"mpeg4", "xvid", "divx"},
}

// Family maps a codec MIME to a decoder family, or "" when unknown.
func Family(codecMime string) string {
	codecMime = strings.ToLower(codecMime)
	switch {
	case IsFragile(codecMime):
		return "h265"
	case strings.Contains(codecMime, "avc"), strings.Contains(codecMime, "h264"):
		return "h264"
	}

	for _, family := range []string{"vp9", "vp8", "av1", "mpeg2", "mpeg4"} {
		if strings.Contains(codecMime, family) {
			return family
		}
	}
	return ""
}

// Filter keeps the video decoders of a codec family. An unknown family keeps every video decoder.
func Filter(features []Feature, codecMime string) []Feature {
	markers := families[Family(codecMime)]
	return lo.Filter(features, func(f Feature, _ int) bool {
		if !f.IsVideoDecoder() {
			return false
		}
		if len(markers) == 0 {
			return true
		}
		haystack := strings.ToLower(f.Name + " " + f.Description)
		return lo.SomeBy(markers, func(m string) bool { return strings.Contains(haystack, m) })
	})
}

// GstInspect lists decoders by running gst-inspect. The listing is read once.
type GstInspect struct {
	Binary     string
	Classifier Classifier

	once     sync.Once
	features []Feature
	err      error
}

func (g *GstInspect) load(ctx context.Context) ([]Feature, error) {
	g.once.Do(func() {
		var out bytes.Buffer
		cmd := exec.CommandContext(ctx, g.Binary)
		cmd.Stdout = &out
		if err := cmd.Run(); err != nil {
			g.err = fmt.Errorf("%s: %w", g.Binary, err)
			return
		}
		g.features, g.err = ParseInspect(&out)
	})
	return g.features, g.err
}

func (g *GstInspect) Decoders(ctx context.Context, codecMime string) ([]Candidate, error) {
	features, err := g.load(ctx)
	if err != nil {
		return nil, err
	}

	return lo.Map(Filter(features, codecMime), func(f Feature, _ int) Candidate {
		return g.Classifier.Classify(f.Name)
	}), nil
}

// Feature ranks understood by GStreamer.
const (
	RankNone    = 0
	RankPrimary = 256
)

// RankEnv builds a GST_PLUGIN_FEATURE_RANK value that makes GStreamer try ranked decoders
// in order. In conservative mode hardware decoders are disabled.
func RankEnv(ranked []Candidate, conservative bool) string {
	parts := make([]string, 0, len(ranked))
	for i, c := range ranked {
		rank := RankPrimary + len(ranked) - i
		if conservative && c.Hardware {
			rank = RankNone
		}
		parts = append(parts, fmt.Sprintf("%s:%d", c.Name, rank))
	}
	return strings.Join(parts, ",")
}
