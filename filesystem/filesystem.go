// Package filesystem routes every disk access through a swappable afero backend.
package filesystem

import (
	"strings"

	"github.com/spf13/afero"
)

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active filesystem.
func API() afero.Afero {
	return backend
}

// SetOsFs restores the operating system filesystem.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs swaps in an in-memory filesystem, used by tests.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// ReadTrimmed reads a small state file, returning its content without surrounding whitespace.
func ReadTrimmed(path string) (string, error) {
	data, err := API().ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
