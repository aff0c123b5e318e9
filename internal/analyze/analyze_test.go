package analyze

import (
	"database/sql"
	"math"
	"reflect"
	"testing"

	"github.com/franz/fma-janitor/internal/catalog"
)

func text(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func parent(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: true}
}

func TestCountLinksSkipsMalformedCells(t *testing.T) {
	valid := map[int64]struct{}{1: {}, 2: {}, 3: {}}
	cells := []sql.NullString{
		text("[{'genre_id': '1'}, {'genre_id': '9'}]"),
		text("[{'genre_id': 2}, {'genre_id': 3.0}]"),
		text("not a list"),
		{},
		text("[{'genre_id': None}, {'genre_title': 'x'}, {'genre_id': '3'}]"),
	}

	r := CountLinks(cells, valid)

	if r.ValidLinks != 3 {
		t.Errorf("ValidLinks = %d, expected 3", r.ValidLinks)
	}
	if r.Malformed != 1 {
		t.Errorf("Malformed = %d, expected 1", r.Malformed)
	}
	if r.Cells != 4 || r.Parsed != 3 {
		t.Errorf("Cells/Parsed = %d/%d, expected 4/3", r.Cells, r.Parsed)
	}
	if r.BadRecords != 1 {
		t.Errorf("BadRecords = %d, expected 1", r.BadRecords)
	}
	if !r.Justified() {
		t.Error("links exist, table should be justified")
	}
}

func TestCountLinksBadRecordEndsCell(t *testing.T) {
	valid := map[int64]struct{}{1: {}, 2: {}}
	cells := []sql.NullString{
		text("[{'genre_id': '1'}, {'genre_id': 'abc'}, {'genre_id': '2'}]"),
		text("[{'genre_id': '2'}]"),
	}

	r := CountLinks(cells, valid)

	if r.ValidLinks != 2 {
		t.Errorf("ValidLinks = %d, expected 2 (the link after 'abc' is not counted)", r.ValidLinks)
	}
	if r.BadRecords != 1 || r.Records != 3 {
		t.Errorf("BadRecords/Records = %d/%d, expected 1/3", r.BadRecords, r.Records)
	}
	if r.Malformed != 0 {
		t.Errorf("Malformed = %d, expected 0", r.Malformed)
	}
}

func TestCountLinksNoValidLinks(t *testing.T) {
	r := CountLinks([]sql.NullString{text("[]"), text("[{'genre_id': 7}]")}, map[int64]struct{}{1: {}})
	if r.ValidLinks != 0 || r.Justified() {
		t.Errorf("expected no links, got %+v", r)
	}
}

func TestCoverage(t *testing.T) {
	values := []sql.NullString{
		text("Alice, Bob"),
		text("Bob & Carol"),
		text("Alice,"),
		{}, {}, {}, {}, {}, {}, {},
	}

	r := Coverage("Engineers", values, DefaultThreshold)

	if r.Total != 10 || r.NonNull != 3 {
		t.Errorf("Total/NonNull = %d/%d", r.Total, r.NonNull)
	}
	if math.Abs(r.Percent-30) > 1e-9 {
		t.Errorf("Percent = %v, expected 30", r.Percent)
	}
	// Alice, Bob, Carol and the empty fragment after the trailing comma
	if r.Distinct != 4 {
		t.Errorf("Distinct = %d, expected 4", r.Distinct)
	}
	if !r.WorthTable() {
		t.Error("30% coverage should be worth a table")
	}
}

func TestCoverageThreshold(t *testing.T) {
	values := make([]sql.NullString, 100)
	for i := 0; i < 5; i++ {
		values[i] = text("x")
	}

	if r := Coverage("Lyricists", values, DefaultThreshold); r.WorthTable() {
		t.Errorf("exactly 5%% should not exceed the threshold, got %v", r.Percent)
	}
	if r := Coverage("Lyricists", values, 4.9); !r.WorthTable() {
		t.Error("5% should exceed a 4.9% threshold")
	}
	if r := Coverage("Empty", nil, DefaultThreshold); r.Percent != 0 || r.WorthTable() {
		t.Errorf("empty column = %+v", r)
	}
}

func TestDetectGenreCycles(t *testing.T) {
	genres := catalog.GenreTable{
		{ID: 1},
		{ID: 2, ParentID: parent(1)},
		{ID: 3, ParentID: parent(4)},
		{ID: 4, ParentID: parent(3)},
		{ID: 5, ParentID: parent(3)},
		{ID: 6, ParentID: parent(6)},
	}

	r := DetectGenreCycles(genres)

	if !reflect.DeepEqual(r.Members, []int64{3, 4, 6}) {
		t.Errorf("cycle members = %v, expected [3 4 6]", r.Members)
	}
	if r.Cyclic() != 3 {
		t.Errorf("Cyclic = %d", r.Cyclic())
	}
}

func TestRunFindings(t *testing.T) {
	ds := &catalog.Dataset{
		Genres:  catalog.GenreTable{{ID: 21}},
		Artists: catalog.ArtistTable{{ID: 1, AssociatedLabels: text("Label A")}},
		Albums:  catalog.AlbumTable{{ID: 10, ArtistName: "A"}},
		Tracks: catalog.TrackTable{
			{ID: 100, AlbumID: 10, ArtistID: 1, Title: "t", Genres: text("[{'genre_id': '21'}]"), LicenseTitle: text("CC BY")},
		},
		Echonest: catalog.FeatureTable{{TrackID: 100}, {TrackID: 555}},
	}

	f := Run(ds, 0)

	if len(f.Coverage) != len(Candidates) {
		t.Fatalf("expected %d coverage reports, got %d", len(Candidates), len(f.Coverage))
	}
	labels := []string{"Engineers", "Lyricists", "Labels", "Licenses"}
	for i, want := range labels {
		if f.Coverage[i].Label != want {
			t.Errorf("coverage[%d] = %s, expected %s", i, f.Coverage[i].Label, want)
		}
		if f.Coverage[i].Threshold != DefaultThreshold {
			t.Errorf("threshold = %v", f.Coverage[i].Threshold)
		}
	}
	if f.Coverage[0].WorthTable() || !f.Coverage[3].WorthTable() {
		t.Errorf("coverage = %+v", f.Coverage)
	}
	if f.Coverage[2].Column != "artists.artist_associated_labels" {
		t.Errorf("column = %s", f.Coverage[2].Column)
	}
	if f.GenreLinks.ValidLinks != 1 {
		t.Errorf("links = %+v", f.GenreLinks)
	}
	if f.UnmatchedFeatures != 1 {
		t.Errorf("UnmatchedFeatures = %d, expected 1", f.UnmatchedFeatures)
	}
}
