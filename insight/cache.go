package insight

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/finance/date"
)

// Report is a generated set of insights with its summary.
type Report struct {
	Generated time.Time `json:"generated"`
	AsOf      date.Date `json:"as_of"`
	Insights  []Insight `json:"insights"`
	Summary   string    `json:"summary,omitempty"`
	// Stale is set when the summary could not be refreshed and comes from
	// an earlier report.
	Stale bool `json:"stale,omitempty"`
	// Cached is set when the report was served from the cache.
	Cached bool `json:"cached,omitempty"`
}

// Cache stores the last report in a JSON file.
type Cache struct {
	Path string
}

// Load returns the cached report, os.ErrNotExist when there is none.
func (c Cache) Load() (Report, error) {
	var r Report
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("invalid insight cache %q: %w", c.Path, err)
	}
	return r, nil
}

// Save replaces the cached report.
func (c Cache) Save(r Report) error {
	r.Cached, r.Stale = false, false
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return err
	}
	tmp := c.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.Path)
}

func isMissing(err error) bool { return errors.Is(err, os.ErrNotExist) }
