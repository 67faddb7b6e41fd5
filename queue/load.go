package queue

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dashreel/dashreel/filesystem"
	"github.com/dashreel/dashreel/media"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// Load turns inputs into items. Inputs are paths, URLs or .m3u/.m3u8 playlists.
func Load(inputs []string) ([]*media.Item, error) {
	var items []*media.Item
	for _, input := range inputs {
		if isPlaylist(input) && !strings.Contains(input, "://") {
			loaded, err := loadPlaylist(input)
			if err != nil {
				return nil, err
			}
			items = append(items, loaded...)
			continue
		}
		items = append(items, media.New(input))
	}
	return items, nil
}

func isPlaylist(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".m3u" || ext == ".m3u8"
}

// loadPlaylist reads an m3u list. Relative entries are relative to the list.
func loadPlaylist(path string) ([]*media.Item, error) {
	file, err := filesystem.API().Open(path)
	if err != nil {
		return nil, fmt.Errorf("open playlist: %w", err)
	}
	defer file.Close()

	dir := filepath.Dir(path)
	var items []*media.Item

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.Contains(line, "://") && !filepath.IsAbs(line) {
			line = filepath.Join(dir, line)
		}
		items = append(items, media.New(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read playlist %s: %w", path, err)
	}
	return items, nil
}

// Match keeps the items whose name fuzzily matches pattern.
func Match(items []*media.Item, pattern string) []*media.Item {
	if pattern == "" {
		return items
	}
	return lo.Filter(items, func(item *media.Item, _ int) bool {
		return fuzzy.MatchNormalizedFold(pattern, item.Name)
	})
}
