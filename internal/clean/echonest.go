package clean

import "github.com/franz/fma-janitor/internal/catalog"

// CleanEchonest renames the positional first column to track_id and keeps
// rows where it is a finite number, truncated to an integer. The grouped
// header rows that precede the data ("track_id" label row) fall out here.
func CleanEchonest(raw *catalog.RawTable) (catalog.FeatureTable, Stats) {
	stats := Stats{Entity: catalog.Echonest}
	rows := identify(raw, catalog.PositionalColumn, []string{catalog.PositionalColumn}, trackKey, &stats)

	features := make(catalog.FeatureTable, 0, len(rows))
	for _, k := range rows {
		r := k.row
		features = append(features, catalog.FeatureRow{
			TrackID:           k.id,
			Acousticness:      r.Float("acousticness"),
			Danceability:      r.Float("danceability"),
			Energy:            r.Float("energy"),
			Instrumentalness:  r.Float("instrumentalness"),
			Liveness:          r.Float("liveness"),
			Speechiness:       r.Float("speechiness"),
			Tempo:             r.Float("tempo"),
			Valence:           r.Float("valence"),
			ArtistDiscovery:   r.Float("artist_discovery"),
			ArtistFamiliarity: r.Float("artist_familiarity"),
			ArtistHotttnesss:  r.Float("artist_hotttnesss"),
			SongCurrency:      r.Float("song_currency"),
			SongHotttnesss:    r.Float("song_hotttnesss"),
		})
	}

	stats.Output = len(features)
	logDropped(&stats)
	return features, stats
}

func trackKey(s string) (int64, bool) {
	return catalog.TruncateInt(catalog.ParseNumber(s))
}
