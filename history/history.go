// Package history keeps the last play of every item and the reports of items that could not be played.
package history

import (
	"sort"
	"time"

	"github.com/dashreel/dashreel/filesystem"
	"github.com/dashreel/dashreel/key"
	"github.com/dashreel/dashreel/log"
	"github.com/dashreel/dashreel/media"
	"github.com/dashreel/dashreel/where"
	"github.com/google/uuid"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

var (
	played = gache.New[map[string]*Record](
		&gache.Options{
			Path:       where.History(),
			FileSystem: &filesystem.GacheFs{},
		},
	)

	unplayable = gache.New[[]*Report](
		&gache.Options{
			Path:       where.Unplayable(),
			FileSystem: &filesystem.GacheFs{},
		},
	)
)

var now = time.Now

// Get returns every play record keyed by item path.
func Get() (map[string]*Record, error) {
	cached, expired, err := played.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Record), nil
	}
	return cached, nil
}

// Recent returns play records, most recent first.
func Recent() ([]*Record, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	records := lo.Values(saved)
	sort.Slice(records, func(i, j int) bool {
		return records[i].PlayedAt.After(records[j].PlayedAt)
	})
	return records, nil
}

// Save records a play of item on backend. Replays keep the record's id and creation time.
func Save(item *media.Item, backend string) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	record := newRecord(item, backend, now())
	if existing, ok := saved[record.encode()]; ok {
		existing.Backend = backend
		existing.PlayedAt = record.PlayedAt
		existing.Plays++
		record = existing
	}

	saved[record.encode()] = record
	return played.Set(saved)
}

// Remove deletes the record of one item.
func Remove(record *Record) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, record.encode())
	return played.Set(saved)
}

// Unplayable returns the reports, oldest first.
func Unplayable() ([]*Report, error) {
	cached, expired, err := unplayable.Get()
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, nil
	}
	return cached, nil
}

// Flag stores that no backend could play item.
func Flag(item *media.Item, reason string, tried []string) error {
	reports, err := Unplayable()
	if err != nil {
		return err
	}

	reports = append(reports, &Report{
		ID:     uuid.NewString(),
		Path:   item.Path,
		Name:   item.Name,
		Reason: reason,
		Tried:  append([]string(nil), tried...),
		At:     now(),
	})
	return unplayable.Set(reports)
}

// Clear removes all records and reports.
func Clear() error {
	if err := played.Set(make(map[string]*Record)); err != nil {
		return err
	}
	return unplayable.Set(nil)
}

// Recorder feeds a playback session into the history. Failures are logged, never fatal.
type Recorder struct{}

func (Recorder) Played(item *media.Item, backend string) {
	if !viper.GetBool(key.HistorySave) {
		return
	}
	if err := Save(item, backend); err != nil {
		log.Warnf("history: save %s: %s", item, err)
	}
}

func (Recorder) Unplayable(item *media.Item, reason string, tried []string) {
	if err := Flag(item, reason, tried); err != nil {
		log.Warnf("history: report %s: %s", item, err)
	}
}
