package player

import (
	"fmt"

	"github.com/dashreel/dashreel/config"
	"github.com/dashreel/dashreel/decoder"
	"github.com/dashreel/dashreel/key"
	"github.com/dashreel/dashreel/strategy"
	"github.com/spf13/viper"
)

// New builds the configured backend for an id.
func New(id string) (Backend, error) {
	grace := config.Millis(key.PlayerStopGracePeriod)

	switch id {
	case strategy.RobustBackend:
		return NewMPV(viper.GetString(key.PlayerMPVBinary), viper.GetBool(key.PlayerFullscreen), grace), nil
	case strategy.PlatformBackend:
		classifier := decoder.DefaultClassifier()
		inventory := &decoder.GstInspect{Binary: viper.GetString(key.PlayerGstInspect), Classifier: classifier}
		return NewGStreamer(viper.GetString(key.PlayerGstBinary), inventory, classifier, grace), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
	}
}

// NewAll builds one backend per id.
func NewAll(ids []string) (map[string]Backend, error) {
	backends := make(map[string]Backend, len(ids))
	for _, id := range ids {
		b, err := New(id)
		if err != nil {
			for _, built := range backends {
				_ = built.Close()
			}
			return nil, err
		}
		backends[id] = b
	}
	return backends, nil
}
