package catalog

import "fmt"

// Entity names one of the five archive tables. The name is also the stem of
// the raw and cleaned file names.
type Entity string

const (
	Genres   Entity = "genres"
	Artists  Entity = "artists"
	Albums   Entity = "albums"
	Tracks   Entity = "tracks"
	Echonest Entity = "echonest"
)

// Entities lists every entity in dependency order
var Entities = []Entity{Genres, Artists, Albums, Tracks, Echonest}

// PositionalColumn is the canonical name of the unnamed first column of the
// echonest table, which carries the track id.
const PositionalColumn = "unnamed: 0"

// Source describes how a raw table is read
type Source struct {
	Entity Entity

	// Columns are the canonical (lower-cased) names that must be present.
	// Everything else in the file is ignored.
	Columns []string

	// HeaderRow is the zero-based index of the record holding column names.
	// Records before it are discarded.
	HeaderRow int
}

// FileName returns the raw file name, e.g. raw_genres.csv
func (s Source) FileName() string {
	return RawFileName(s.Entity)
}

// RawFileName returns the input file name for an entity
func RawFileName(e Entity) string {
	return fmt.Sprintf("raw_%s.csv", e)
}

// CleanFileName returns the output file name for an entity
func CleanFileName(e Entity) string {
	return fmt.Sprintf("clean_%s.csv", e)
}

var sources = map[Entity]Source{
	Genres: {
		Entity:  Genres,
		Columns: []string{"genre_id", "genre_parent_id", "genre_title"},
	},
	Artists: {
		Entity: Artists,
		Columns: []string{
			"artist_id", "artist_active_year_begin", "artist_associated_labels", "artist_contact",
			"artist_favorites", "artist_handle", "artist_members", "artist_name", "artist_website",
			"artist_latitude", "artist_longitude", "artist_location",
		},
	},
	Albums: {
		Entity: Albums,
		Columns: []string{
			"album_id", "album_date_released", "album_engineer", "album_favorites", "album_listens",
			"album_producer", "album_title", "album_tracks", "album_type", "artist_name", "album_url",
		},
	},
	Tracks: {
		Entity: Tracks,
		Columns: []string{
			"track_id", "album_id", "artist_id", "license_title", "license_url", "track_bit_rate",
			"track_composer", "track_date_recorded", "track_duration", "track_favorites", "track_genres",
			"track_language_code", "track_listens", "track_lyricist", "track_title", "track_url",
		},
	},
	Echonest: {
		Entity: Echonest,
		Columns: []string{
			PositionalColumn, "acousticness", "danceability", "energy", "instrumentalness", "liveness",
			"speechiness", "tempo", "valence", "artist_discovery", "artist_familiarity",
			"artist_hotttnesss", "song_currency", "song_hotttnesss",
		},
		// Two rows of grouped headers precede the feature names.
		HeaderRow: 2,
	},
}

// SourceFor returns the read policy for an entity
func SourceFor(e Entity) (Source, bool) {
	s, ok := sources[e]
	if !ok {
		return Source{}, false
	}
	s.Columns = append([]string(nil), s.Columns...)
	return s, true
}

// RawTable is a source table restricted to its required columns. Cells that
// were empty or held an NA marker are absent from a row.
type RawTable struct {
	Entity  Entity
	Columns []string
	Rows    []Row
}

// Len returns the number of data rows
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Row holds the non-null cells of one raw record keyed by canonical column name
type Row map[string]string

// Get returns the cell value and whether it is non-null
func (r Row) Get(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}
