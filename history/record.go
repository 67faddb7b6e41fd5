package history

import (
	"fmt"
	"time"

	"github.com/dashreel/dashreel/media"
	"github.com/google/uuid"
)

// Record is the last play of an item.
type Record struct {
	ID        string     `json:"id"`
	Path      string     `json:"path"`
	Name      string     `json:"name"`
	FileID    int64      `json:"fs_id,omitempty"`
	Kind      media.Kind `json:"kind"`
	Backend   string     `json:"backend"`
	Plays     int        `json:"plays"`
	CreatedAt time.Time  `json:"created_at"`
	PlayedAt  time.Time  `json:"played_at"`
}

func (r *Record) encode() string {
	return r.Path
}

func (r *Record) String() string {
	return fmt.Sprintf("%s : %s (%s, %dx)", r.Name, r.PlayedAt.Format(time.DateTime), r.Backend, r.Plays)
}

func newRecord(item *media.Item, backend string, now time.Time) *Record {
	return &Record{
		ID:        uuid.NewString(),
		Path:      item.Path,
		Name:      item.Name,
		FileID:    item.FileID,
		Kind:      item.Kind,
		Backend:   backend,
		Plays:     1,
		CreatedAt: now,
		PlayedAt:  now,
	}
}

// Report describes an item no backend could play.
type Report struct {
	ID     string    `json:"id"`
	Path   string    `json:"path"`
	Name   string    `json:"name"`
	Reason string    `json:"reason"`
	Tried  []string  `json:"tried"`
	At     time.Time `json:"at"`
}

func (r *Report) String() string {
	return fmt.Sprintf("%s : %s", r.Name, r.Reason)
}
