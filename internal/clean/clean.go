// Package clean turns raw source tables into typed tables that respect the
// archive's referential integrity. Cleaners never fail on bad data: every
// defective row is either repaired or dropped and counted in Stats.
package clean

import (
	"github.com/franz/fma-janitor/internal/catalog"
	"github.com/franz/fma-janitor/internal/util"
)

// Stats counts what a cleaner did to one table
type Stats struct {
	Entity catalog.Entity

	Input           int // raw rows
	MissingIdentity int // dropped: a required field was null
	InvalidKey      int // dropped: primary key is not an integer
	Duplicates      int // dropped: primary key already seen
	Rejected        int // dropped: failed a cross-entity check
	Repaired        int // kept after rewriting a field
	Output          int // cleaned rows
}

// Removed returns the number of raw rows that did not survive cleaning
func (s Stats) Removed() int {
	return s.Input - s.Output
}

type keyed struct {
	id  int64
	row catalog.Row
}

// identify drops rows lacking a required field, rows whose key does not
// parse, and repeated keys after their first occurrence. Survivors keep
// input order.
func identify(raw *catalog.RawTable, key string, required []string, parse func(string) (int64, bool), stats *Stats) []keyed {
	stats.Input = raw.Len()
	if raw == nil {
		return nil
	}

	out := make([]keyed, 0, len(raw.Rows))
	seen := make(map[int64]struct{}, len(raw.Rows))

rows:
	for _, row := range raw.Rows {
		for _, col := range required {
			if _, ok := row.Get(col); !ok {
				stats.MissingIdentity++
				continue rows
			}
		}

		v, _ := row.Get(key)
		id, ok := parse(v)
		if !ok {
			stats.InvalidKey++
			continue
		}

		if _, dup := seen[id]; dup {
			stats.Duplicates++
			continue
		}
		seen[id] = struct{}{}

		out = append(out, keyed{id: id, row: row})
	}

	return out
}

func logDropped(stats *Stats) {
	if stats.MissingIdentity > 0 {
		util.InfoLog("  Dropped %s %s rows missing a required field",
			util.FormatCount(stats.MissingIdentity), stats.Entity)
	}
	if stats.InvalidKey > 0 {
		util.InfoLog("  Dropped %s %s rows with a non-integer key",
			util.FormatCount(stats.InvalidKey), stats.Entity)
	}
	if stats.Duplicates > 0 {
		util.InfoLog("  Dropped %s duplicate %s rows",
			util.FormatCount(stats.Duplicates), stats.Entity)
	}
}
