package clean

import (
	"github.com/franz/fma-janitor/internal/catalog"
	"github.com/franz/fma-janitor/internal/util"
)

// CleanGenres types the genre table and clears parent references that do
// not resolve within it. Orphaned genres become top-level genres.
func CleanGenres(raw *catalog.RawTable) (catalog.GenreTable, Stats) {
	stats := Stats{Entity: catalog.Genres}
	rows := identify(raw, "genre_id", []string{"genre_id"}, catalog.ParseInt, &stats)

	ids := make(map[int64]struct{}, len(rows))
	for _, k := range rows {
		ids[k.id] = struct{}{}
	}

	genres := make(catalog.GenreTable, 0, len(rows))
	for _, k := range rows {
		g := catalog.Genre{
			ID:       k.id,
			ParentID: k.row.Int("genre_parent_id"),
			Title:    k.row.Text("genre_title"),
		}

		// A parent that is present but unparsable is an orphan too.
		if _, present := k.row.Get("genre_parent_id"); present {
			_, known := ids[g.ParentID.Int64]
			if !g.ParentID.Valid || !known {
				g.ParentID.Valid = false
				g.ParentID.Int64 = 0
				stats.Repaired++
			}
		}

		genres = append(genres, g)
	}

	stats.Output = len(genres)
	logDropped(&stats)
	if stats.Repaired > 0 {
		util.InfoLog("  Found %s genres with invalid parent references", util.FormatCount(stats.Repaired))
		util.InfoLog("  Converting them to top-level genres")
	}

	return genres, stats
}
