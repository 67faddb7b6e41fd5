// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dashreel/dashreel/constant"
	"github.com/dashreel/dashreel/filesystem"
	"github.com/dashreel/dashreel/key"
	"github.com/dashreel/dashreel/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// EnvKeyReplacer is a strings.Replacer used to normalize configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// QueueModes lists the accepted values of key.QueueMode.
var QueueModes = []string{"sequential", "loop", "shuffle"}

// Setup initializes the global configuration state: defaults, environment bindings and the config file.
func Setup() error {
	viper.SetConfigName(constant.Dashreel)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Dashreel)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return Validate()
}

// Validate rejects values the playback engine cannot work with.
func Validate() error {
	for _, k := range []string{key.HandoverRobustRetries, key.HandoverPlatformRetries, key.HandoverAnomalyRetries} {
		if viper.GetInt(k) < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", k, viper.GetInt(k))
		}
	}

	for _, k := range []string{key.MonitorAnomalyWindow, key.MonitorNearZeroPosition, key.MonitorMinDuration, key.PlayerImageDuration} {
		if viper.GetInt(k) < 0 {
			return fmt.Errorf("%s must not be negative", k)
		}
	}

	if mode := viper.GetString(key.QueueMode); !lo.Contains(QueueModes, mode) {
		return fmt.Errorf("unknown %s %q, expected one of %s", key.QueueMode, mode, strings.Join(QueueModes, ", "))
	}

	return nil
}

// Millis reads an integer millisecond key as a duration.
func Millis(k string) time.Duration {
	return time.Duration(viper.GetInt(k)) * time.Millisecond
}
