package load

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franz/fma-janitor/internal/catalog"
	"github.com/franz/fma-janitor/internal/util"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestLoadGenresKeepsRequiredColumnsOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "raw_genres.csv",
		"Genre_ID,genre_color,GENRE_PARENT_ID,genre_title\n"+
			"1,#fff,,Rock\n"+
			"2,#000,1,Punk\n")

	src, _ := catalog.SourceFor(catalog.Genres)
	tbl, err := New(&Config{Dir: dir}).Load(src)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if tbl.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.Len())
	}
	if _, ok := tbl.Rows[0]["genre_color"]; ok {
		t.Error("unrequested column genre_color should not be loaded")
	}
	if v, ok := tbl.Rows[0].Get("genre_id"); !ok || v != "1" {
		t.Errorf("genre_id = %q, %v", v, ok)
	}
	if _, ok := tbl.Rows[0].Get("genre_parent_id"); ok {
		t.Error("empty parent cell should be null")
	}
	if v, _ := tbl.Rows[1].Get("genre_parent_id"); v != "1" {
		t.Errorf("genre_parent_id = %q, expected 1", v)
	}
}

func TestReadEchonestHeaderOnThirdRow(t *testing.T) {
	data := strings.Join([]string{
		",echonest,echonest,echonest,echonest,echonest,echonest,echonest,echonest,echonest,echonest,echonest,echonest,echonest",
		",audio_features,audio_features,audio_features,audio_features,audio_features,audio_features,audio_features,audio_features,metadata,metadata,metadata,social_features,social_features",
		",acousticness,danceability,energy,instrumentalness,liveness,speechiness,tempo,valence,artist_discovery,artist_familiarity,artist_hotttnesss,song_currency,song_hotttnesss",
		"track_id,,,,,,,,,,,,,",
		"2,0.41,0.67,0.63,0.01,0.17,0.15,165.9,0.57,0.38,0.38,0.29,0,0",
	}, "\n") + "\n"

	src, _ := catalog.SourceFor(catalog.Echonest)
	tbl, err := Read(strings.NewReader(data), src)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if tbl.Len() != 2 {
		t.Fatalf("expected 2 data rows (label row + track), got %d", tbl.Len())
	}
	if v, _ := tbl.Rows[0].Get(catalog.PositionalColumn); v != "track_id" {
		t.Errorf("first positional cell = %q, expected track_id", v)
	}
	if v, _ := tbl.Rows[1].Get("tempo"); v != "165.9" {
		t.Errorf("tempo = %q", v)
	}
}

func TestReadTreatsNAMarkersAsNull(t *testing.T) {
	data := "genre_id,genre_parent_id,genre_title\n1,NaN,NA\n2,null,N/A\n3,,None\n"

	src, _ := catalog.SourceFor(catalog.Genres)
	tbl, err := Read(strings.NewReader(data), src)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	for i, row := range tbl.Rows {
		if _, ok := row.Get("genre_parent_id"); ok {
			t.Errorf("row %d parent should be null", i)
		}
		if _, ok := row.Get("genre_title"); ok {
			t.Errorf("row %d title should be null", i)
		}
	}
}

func TestReadMultilineQuotedField(t *testing.T) {
	data := "genre_id,genre_parent_id,genre_title\n1,,\"Folk\nand more\"\n2,,Jazz\n"

	src, _ := catalog.SourceFor(catalog.Genres)
	tbl, err := Read(strings.NewReader(data), src)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.Len())
	}
	if v, _ := tbl.Rows[0].Get("genre_title"); v != "Folk\nand more" {
		t.Errorf("title = %q", v)
	}
}

func TestLoadMissingFile(t *testing.T) {
	src, _ := catalog.SourceFor(catalog.Tracks)
	_, err := New(&Config{Dir: t.TempDir()}).Load(src)
	if err == nil {
		t.Fatal("expected error for missing file")
	}

	var missing *MissingSourceError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingSourceError, got %T: %v", err, err)
	}
	if missing.Entity != catalog.Tracks {
		t.Errorf("entity = %s", missing.Entity)
	}
	if !errors.Is(err, util.ErrNotFound) {
		t.Error("expected errors.Is(err, util.ErrNotFound)")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("expected underlying fs.ErrNotExist")
	}
	if !strings.Contains(err.Error(), "raw_tracks.csv") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestLoadMissingColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "raw_genres.csv", "genre_id,genre_title\n1,Rock\n")

	src, _ := catalog.SourceFor(catalog.Genres)
	_, err := New(&Config{Dir: dir}).Load(src)

	var missing *MissingSourceError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingSourceError, got %v", err)
	}
	if len(missing.Columns) != 1 || missing.Columns[0] != "genre_parent_id" {
		t.Errorf("missing columns = %v", missing.Columns)
	}
	if !strings.HasSuffix(missing.Path, "raw_genres.csv") {
		t.Errorf("path = %q", missing.Path)
	}
}

func TestLoadAllAbortsOnFirstFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "raw_genres.csv", "genre_id,genre_parent_id,genre_title\n1,,Rock\n")

	tables, err := New(&Config{Dir: dir}).LoadAll()
	if err == nil {
		t.Fatal("expected error when artists are missing")
	}
	if tables != nil {
		t.Error("no tables should be returned on failure")
	}
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestCanonicalColumn(t *testing.T) {
	tests := []struct {
		header string
		pos    int
		want   string
	}{
		{"Genre_ID", 0, "genre_id"},
		{"  track_title ", 3, "track_title"},
		{"", 0, "unnamed: 0"},
		{"   ", 4, "unnamed: 4"},
		{"\uFEFFalbum_id", 0, "album_id"},
		{"Café", 1, "café"},
	}

	for _, tt := range tests {
		if got := CanonicalColumn(tt.header, tt.pos); got != tt.want {
			t.Errorf("CanonicalColumn(%q, %d) = %q, expected %q", tt.header, tt.pos, got, tt.want)
		}
	}
}
