package clean

import "github.com/franz/fma-janitor/internal/catalog"

// CleanArtists types the artist table. Artists have no upstream dependency.
func CleanArtists(raw *catalog.RawTable) (catalog.ArtistTable, Stats) {
	stats := Stats{Entity: catalog.Artists}
	rows := identify(raw, "artist_id", []string{"artist_id"}, catalog.ParseInt, &stats)

	artists := make(catalog.ArtistTable, 0, len(rows))
	for _, k := range rows {
		r := k.row
		artists = append(artists, catalog.Artist{
			ID:               k.id,
			ActiveYearBegin:  r.Int("artist_active_year_begin"),
			AssociatedLabels: r.Text("artist_associated_labels"),
			Contact:          r.Text("artist_contact"),
			Favorites:        r.Int("artist_favorites"),
			Handle:           r.Text("artist_handle"),
			Members:          r.Text("artist_members"),
			Name:             r.Text("artist_name"),
			Website:          r.Text("artist_website"),
			Latitude:         r.Float("artist_latitude"),
			Longitude:        r.Float("artist_longitude"),
			Location:         r.Text("artist_location"),
		})
	}

	stats.Output = len(artists)
	logDropped(&stats)
	return artists, stats
}
