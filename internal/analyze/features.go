package analyze

import "github.com/franz/fma-janitor/internal/catalog"

// UnmatchedFeatures counts feature rows whose track_id is not a cleaned
// track. Such rows are kept in the output; the count is informational.
func UnmatchedFeatures(features catalog.FeatureTable, tracks catalog.TrackTable) int {
	ids := tracks.IDs()
	n := 0
	for _, f := range features {
		if _, ok := ids[f.TrackID]; !ok {
			n++
		}
	}
	return n
}
