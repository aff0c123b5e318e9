package catalog

import (
	"database/sql"
	"strconv"
)

// Table is a cleaned, rectangular entity table ready to be persisted
type Table interface {
	Entity() Entity
	Header() []string
	Len() int
	Record(i int) []string
}

// Genre is a node of the genre tree. A null ParentID marks a top-level genre.
type Genre struct {
	ID       int64
	ParentID sql.NullInt64
	Title    sql.NullString
}

// Artist is a performer. Albums reference artists by Name, not ID.
type Artist struct {
	ID               int64
	ActiveYearBegin  sql.NullInt64
	AssociatedLabels sql.NullString
	Contact          sql.NullString
	Favorites        sql.NullInt64
	Handle           sql.NullString
	Members          sql.NullString
	Name             sql.NullString
	Website          sql.NullString
	Latitude         sql.NullFloat64
	Longitude        sql.NullFloat64
	Location         sql.NullString
}

// Album is a release. ArtistName is required and joins to Artist.Name.
type Album struct {
	ID           int64
	DateReleased sql.NullString
	Engineer     sql.NullString
	Favorites    sql.NullInt64
	Listens      sql.NullInt64
	Producer     sql.NullString
	Title        sql.NullString
	Tracks       sql.NullInt64
	Type         sql.NullString
	ArtistName   string
	URL          sql.NullString
}

// Track is a single recording. Genres holds the unparsed nested genre list.
type Track struct {
	ID           int64
	AlbumID      int64
	ArtistID     int64
	LicenseTitle sql.NullString
	LicenseURL   sql.NullString
	BitRate      sql.NullInt64
	Composer     sql.NullString
	DateRecorded sql.NullString
	Duration     sql.NullString
	Favorites    sql.NullInt64
	Genres       sql.NullString
	LanguageCode sql.NullString
	Listens      sql.NullInt64
	Lyricist     sql.NullString
	Title        string
	URL          sql.NullString
}

// FeatureRow holds echonest audio and social features for one track
type FeatureRow struct {
	TrackID           int64
	Acousticness      sql.NullFloat64
	Danceability      sql.NullFloat64
	Energy            sql.NullFloat64
	Instrumentalness  sql.NullFloat64
	Liveness          sql.NullFloat64
	Speechiness       sql.NullFloat64
	Tempo             sql.NullFloat64
	Valence           sql.NullFloat64
	ArtistDiscovery   sql.NullFloat64
	ArtistFamiliarity sql.NullFloat64
	ArtistHotttnesss  sql.NullFloat64
	SongCurrency      sql.NullFloat64
	SongHotttnesss    sql.NullFloat64
}

type (
	GenreTable   []Genre
	ArtistTable  []Artist
	AlbumTable   []Album
	TrackTable   []Track
	FeatureTable []FeatureRow
)

func (GenreTable) Entity() Entity { return Genres }
func (t GenreTable) Len() int { return len(t) }
func (GenreTable) Header() []string { return []string{"genre_id", "genre_parent_id", "genre_title"} }
func (t GenreTable) Record(i int) []string {
	g := t[i]
	return []string{strconv.FormatInt(g.ID, 10), formatInt(g.ParentID), formatText(g.Title)}
}

// IDs returns the set of genre ids
func (t GenreTable) IDs() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(t))
	for _, g := range t {
		ids[g.ID] = struct{}{}
	}
	return ids
}

func (ArtistTable) Entity() Entity { return Artists }
func (t ArtistTable) Len() int { return len(t) }
func (ArtistTable) Header() []string {
	return []string{
		"artist_id", "artist_active_year_begin", "artist_associated_labels", "artist_contact",
		"artist_favorites", "artist_handle", "artist_members", "artist_name", "artist_website",
		"artist_latitude", "artist_longitude", "artist_location",
	}
}
func (t ArtistTable) Record(i int) []string {
	a := t[i]
	return []string{
		strconv.FormatInt(a.ID, 10), formatInt(a.ActiveYearBegin), formatText(a.AssociatedLabels),
		formatText(a.Contact), formatInt(a.Favorites), formatText(a.Handle), formatText(a.Members),
		formatText(a.Name), formatText(a.Website), formatFloat(a.Latitude), formatFloat(a.Longitude),
		formatText(a.Location),
	}
}

// IDs returns the set of artist ids
func (t ArtistTable) IDs() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(t))
	for _, a := range t {
		ids[a.ID] = struct{}{}
	}
	return ids
}

// Names returns the set of non-null artist names
func (t ArtistTable) Names() map[string]struct{} {
	names := make(map[string]struct{}, len(t))
	for _, a := range t {
		if a.Name.Valid {
			names[a.Name.String] = struct{}{}
		}
	}
	return names
}

func (AlbumTable) Entity() Entity { return Albums }
func (t AlbumTable) Len() int { return len(t) }
func (AlbumTable) Header() []string {
	return []string{
		"album_id", "album_date_released", "album_engineer", "album_favorites", "album_listens",
		"album_producer", "album_title", "album_tracks", "album_type", "artist_name", "album_url",
	}
}
func (t AlbumTable) Record(i int) []string {
	a := t[i]
	return []string{
		strconv.FormatInt(a.ID, 10), formatText(a.DateReleased), formatText(a.Engineer),
		formatInt(a.Favorites), formatInt(a.Listens), formatText(a.Producer), formatText(a.Title),
		formatInt(a.Tracks), formatText(a.Type), a.ArtistName, formatText(a.URL),
	}
}

// IDs returns the set of album ids
func (t AlbumTable) IDs() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(t))
	for _, a := range t {
		ids[a.ID] = struct{}{}
	}
	return ids
}

func (TrackTable) Entity() Entity { return Tracks }
func (t TrackTable) Len() int { return len(t) }
func (TrackTable) Header() []string {
	return []string{
		"track_id", "album_id", "artist_id", "license_title", "license_url", "track_bit_rate",
		"track_composer", "track_date_recorded", "track_duration", "track_favorites", "track_genres",
		"track_language_code", "track_listens", "track_lyricist", "track_title", "track_url",
	}
}
func (t TrackTable) Record(i int) []string {
	tr := t[i]
	return []string{
		strconv.FormatInt(tr.ID, 10), strconv.FormatInt(tr.AlbumID, 10), strconv.FormatInt(tr.ArtistID, 10),
		formatText(tr.LicenseTitle), formatText(tr.LicenseURL), formatInt(tr.BitRate),
		formatText(tr.Composer), formatText(tr.DateRecorded), formatText(tr.Duration),
		formatInt(tr.Favorites), formatText(tr.Genres), formatText(tr.LanguageCode),
		formatInt(tr.Listens), formatText(tr.Lyricist), tr.Title, formatText(tr.URL),
	}
}

// IDs returns the set of track ids
func (t TrackTable) IDs() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(t))
	for _, tr := range t {
		ids[tr.ID] = struct{}{}
	}
	return ids
}

func (FeatureTable) Entity() Entity { return Echonest }
func (t FeatureTable) Len() int { return len(t) }
func (FeatureTable) Header() []string {
	return []string{
		"track_id", "acousticness", "danceability", "energy", "instrumentalness", "liveness",
		"speechiness", "tempo", "valence", "artist_discovery", "artist_familiarity",
		"artist_hotttnesss", "song_currency", "song_hotttnesss",
	}
}
func (t FeatureTable) Record(i int) []string {
	f := t[i]
	return []string{
		strconv.FormatInt(f.TrackID, 10), formatFloat(f.Acousticness), formatFloat(f.Danceability),
		formatFloat(f.Energy), formatFloat(f.Instrumentalness), formatFloat(f.Liveness),
		formatFloat(f.Speechiness), formatFloat(f.Tempo), formatFloat(f.Valence),
		formatFloat(f.ArtistDiscovery), formatFloat(f.ArtistFamiliarity), formatFloat(f.ArtistHotttnesss),
		formatFloat(f.SongCurrency), formatFloat(f.SongHotttnesss),
	}
}

// Dataset is the full set of cleaned tables produced by one run
type Dataset struct {
	Genres   GenreTable
	Artists  ArtistTable
	Albums   AlbumTable
	Tracks   TrackTable
	Echonest FeatureTable
}

// Tables returns every table in dependency order
func (d *Dataset) Tables() []Table {
	return []Table{d.Genres, d.Artists, d.Albums, d.Tracks, d.Echonest}
}
