package analyze

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/franz/fma-janitor/internal/catalog"
)

// LinkReport summarizes the track-to-genre links held in track_genres
type LinkReport struct {
	Cells      int // non-null cells examined
	Parsed     int // cells that parsed as a list of mappings
	Malformed  int // cells skipped because they did not parse
	Records    int // mappings examined in parsed cells
	BadRecords int // mappings with a missing or non-integer genre_id; each ends its cell
	ValidLinks int // mappings whose genre_id is a cleaned genre
}

// Justified reports whether a track-genre linking table would hold data
func (r LinkReport) Justified() bool {
	return r.ValidLinks > 0
}

// CountLinks counts records in nested-list cells whose genre_id is in valid.
// A malformed cell is skipped and counted. A record with an unusable id
// abandons the rest of its cell; links counted before it stand.
func CountLinks(cells []sql.NullString, valid map[int64]struct{}) LinkReport {
	var r LinkReport
	for _, cell := range cells {
		if !cell.Valid {
			continue
		}
		r.Cells++

		records, err := ParseRecordList(cell.String)
		if err != nil {
			r.Malformed++
			continue
		}
		r.Parsed++

		for _, rec := range records {
			r.Records++
			id, ok := coerceID(rec["genre_id"])
			if !ok {
				r.BadRecords++
				break
			}
			if _, ok := valid[id]; ok {
				r.ValidLinks++
			}
		}
	}
	return r
}

// GenreLinks counts track-genre links against the cleaned genre ids
func GenreLinks(tracks catalog.TrackTable, genres catalog.GenreTable) LinkReport {
	cells := make([]sql.NullString, len(tracks))
	for i, t := range tracks {
		cells[i] = t.Genres
	}
	return CountLinks(cells, genres.IDs())
}

// coerceID converts a literal value to an integer id the way int() would:
// floats truncate, strings must hold a base-10 integer.
func coerceID(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case float64:
		return catalog.TruncateInt(x)
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
