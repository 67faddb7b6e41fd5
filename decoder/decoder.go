// Package decoder classifies and ranks the decoder implementations a platform backend can use.
package decoder

import (
	"sort"
	"strings"

	"github.com/dashreel/dashreel/key"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Candidate is one decoder implementation the platform offers.
type Candidate struct {
	Name     string `json:"name"`
	Software bool   `json:"software"`
	Hardware bool   `json:"hardware"`
}

var (
	fragileMarkers   = []string{"hevc", "hev1", "hvc1", "h265", "h.265", "x-h265"}
	softwareMarkers  = []string{"ffmpeg", "libde265", "openh264", "dav1d", "libvpx", "software"}
	hardwarePrefixes = []string{"omx."}
)

// IsFragile reports whether a codec MIME belongs to the family that platform hardware
// decoders often reject for valid but uncommon profile/level combinations.
func IsFragile(codecMime string) bool {
	codecMime = strings.ToLower(codecMime)
	return lo.SomeBy(fragileMarkers, func(m string) bool {
		return strings.Contains(codecMime, m)
	})
}

// Classifier tags decoder names as software or hardware.
type Classifier struct {
	// Bundled are name prefixes of the platform's own software decoders.
	Bundled []string
	// Vendors are substrings that mark a vendor hardware decoder.
	Vendors []string
}

// DefaultClassifier reads the prefix and marker lists from the configuration.
func DefaultClassifier() Classifier {
	return Classifier{
		Bundled: viper.GetStringSlice(key.DecoderBundledPrefixes),
		Vendors: viper.GetStringSlice(key.DecoderVendorMarkers),
	}
}

// IsBundled reports whether name is one of the platform's bundled software decoders.
func (c Classifier) IsBundled(name string) bool {
	name = strings.ToLower(name)
	return lo.SomeBy(c.Bundled, func(p string) bool {
		return strings.HasPrefix(name, strings.ToLower(p))
	})
}

// IsSoftware reports whether name is a software decoder.
func (c Classifier) IsSoftware(name string) bool {
	if c.IsBundled(name) {
		return true
	}

	name = strings.ToLower(name)
	return lo.SomeBy(softwareMarkers, func(m string) bool {
		return strings.Contains(name, m)
	})
}

// IsHardware reports whether name is a hardware decoder. Software detection wins over it.
func (c Classifier) IsHardware(name string) bool {
	if c.IsSoftware(name) {
		return false
	}

	name = strings.ToLower(name)
	if lo.SomeBy(hardwarePrefixes, func(p string) bool { return strings.HasPrefix(name, p) }) {
		return true
	}
	return lo.SomeBy(c.Vendors, func(m string) bool {
		return strings.Contains(name, strings.ToLower(m))
	})
}

// Classify builds a candidate from a decoder name.
func (c Classifier) Classify(name string) Candidate {
	return Candidate{
		Name:     name,
		Software: c.IsSoftware(name),
		Hardware: c.IsHardware(name),
	}
}

// tier orders candidates; lower is preferred.
func (c Classifier) tier(fragile bool, candidate Candidate) int {
	if fragile {
		switch {
		case candidate.Software && c.IsBundled(candidate.Name):
			return 0
		case candidate.Software:
			return 1
		case candidate.Hardware:
			return 2
		default:
			return 3
		}
	}

	switch {
	case candidate.Hardware:
		return 0
	case candidate.Software:
		return 2
	default:
		return 1
	}
}

// Rank returns every candidate in preference order for the codec. For the fragile family
// bundled software comes first, then other software, then hardware. For other codecs
// hardware comes first and software last. Ties are broken by name. Unclassified decoders
// sit after hardware for fragile codecs and between the two groups otherwise.
func (c Classifier) Rank(codecMime string, candidates []Candidate) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)

	fragile := IsFragile(codecMime)
	sort.SliceStable(ranked, func(i, j int) bool {
		ti, tj := c.tier(fragile, ranked[i]), c.tier(fragile, ranked[j])
		if ti != tj {
			return ti < tj
		}
		return ranked[i].Name < ranked[j].Name
	})

	return ranked
}

// Rank ranks candidates with the configured classifier.
func Rank(codecMime string, candidates []Candidate) []Candidate {
	return DefaultClassifier().Rank(codecMime, candidates)
}
