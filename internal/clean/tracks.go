package clean

import (
	"github.com/franz/fma-janitor/internal/catalog"
	"github.com/franz/fma-janitor/internal/util"
)

// CleanTracks types the track table and keeps only tracks whose album and
// artist both survived cleaning. Null or non-numeric references never match.
func CleanTracks(raw *catalog.RawTable, albums catalog.AlbumTable, artists catalog.ArtistTable) (catalog.TrackTable, Stats) {
	stats := Stats{Entity: catalog.Tracks}
	rows := identify(raw, "track_id", []string{"track_id", "track_title"}, catalog.ParseInt, &stats)

	albumIDs := albums.IDs()
	artistIDs := artists.IDs()

	tracks := make(catalog.TrackTable, 0, len(rows))
	for _, k := range rows {
		r := k.row

		album := r.Int("album_id")
		artist := r.Int("artist_id")
		if !album.Valid || !artist.Valid {
			stats.Rejected++
			continue
		}
		_, albumOK := albumIDs[album.Int64]
		_, artistOK := artistIDs[artist.Int64]
		if !albumOK || !artistOK {
			stats.Rejected++
			continue
		}

		title, _ := r.Get("track_title")
		tracks = append(tracks, catalog.Track{
			ID:           k.id,
			AlbumID:      album.Int64,
			ArtistID:     artist.Int64,
			LicenseTitle: r.Text("license_title"),
			LicenseURL:   r.Text("license_url"),
			BitRate:      r.Int("track_bit_rate"),
			Composer:     r.Text("track_composer"),
			DateRecorded: r.Text("track_date_recorded"),
			Duration:     r.Text("track_duration"),
			Favorites:    r.Int("track_favorites"),
			Genres:       r.Text("track_genres"),
			LanguageCode: r.Text("track_language_code"),
			Listens:      r.Int("track_listens"),
			Lyricist:     r.Text("track_lyricist"),
			Title:        title,
			URL:          r.Text("track_url"),
		})
	}

	stats.Output = len(tracks)
	logDropped(&stats)
	if stats.Rejected > 0 {
		util.InfoLog("  Removed %s tracks with invalid album/artist references", util.FormatCount(stats.Rejected))
	}

	return tracks, stats
}
