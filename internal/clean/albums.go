package clean

import (
	"github.com/franz/fma-janitor/internal/catalog"
	"github.com/franz/fma-janitor/internal/util"
)

// CleanAlbums types the album table and removes albums whose artist_name is
// not the name of a cleaned artist.
func CleanAlbums(raw *catalog.RawTable, artists catalog.ArtistTable) (catalog.AlbumTable, Stats) {
	stats := Stats{Entity: catalog.Albums}
	rows := identify(raw, "album_id", []string{"album_id", "artist_name"}, catalog.ParseInt, &stats)

	names := artists.Names()

	albums := make(catalog.AlbumTable, 0, len(rows))
	for _, k := range rows {
		r := k.row
		name, _ := r.Get("artist_name")
		if _, ok := names[name]; !ok {
			stats.Rejected++
			continue
		}

		albums = append(albums, catalog.Album{
			ID:           k.id,
			DateReleased: r.Text("album_date_released"),
			Engineer:     r.Text("album_engineer"),
			Favorites:    r.Int("album_favorites"),
			Listens:      r.Int("album_listens"),
			Producer:     r.Text("album_producer"),
			Title:        r.Text("album_title"),
			Tracks:       r.Int("album_tracks"),
			Type:         r.Text("album_type"),
			ArtistName:   name,
			URL:          r.Text("album_url"),
		})
	}

	stats.Output = len(albums)
	logDropped(&stats)
	if stats.Rejected > 0 {
		util.InfoLog("  Removed %s albums with unknown artists", util.FormatCount(stats.Rejected))
	}

	return albums, stats
}
