// Package where resolves the application's filesystem locations.
package where

import (
	"os"
	"path/filepath"

	"github.com/dashreel/dashreel/constant"
	"github.com/dashreel/dashreel/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the configuration directory.
const EnvConfigPath = "DASHREEL_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the configuration directory, honoring EnvConfigPath.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Dashreel))
}

// Cache resolves the persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Dashreel))
}

// Logs resolves the directory for log files.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Strategies resolves the directory holding Lua strategy scripts.
func Strategies() string {
	return ensureDir(filepath.Join(Config(), "strategies"))
}

// History resolves the playback history file.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// Unplayable resolves the file listing items no backend could play.
func Unplayable() string {
	return filepath.Join(Config(), "unplayable.json")
}

// Temp resolves the volatile directory used for IPC sockets.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Dashreel))
}
