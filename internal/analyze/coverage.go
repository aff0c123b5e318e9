package analyze

import (
	"database/sql"
	"strings"

	"github.com/franz/fma-janitor/internal/catalog"
)

// DefaultThreshold is the coverage percentage above which a column is worth
// its own table
const DefaultThreshold = 5.0

// fragmentSeparators split multi-valued free-text cells
const fragmentSeparators = ",&\n"

// CoverageReport describes how populated an optional column is
type CoverageReport struct {
	Label     string
	Column    string
	Total     int
	NonNull   int
	Percent   float64
	Distinct  int
	Threshold float64
}

// WorthTable reports whether coverage exceeds the threshold
func (r CoverageReport) WorthTable() bool {
	return r.Percent > r.Threshold
}

// Coverage measures a column. Non-null values are split into fragments on
// commas, ampersands and newlines; trimmed fragments are counted once each,
// including the empty fragment.
func Coverage(label string, values []sql.NullString, threshold float64) CoverageReport {
	r := CoverageReport{
		Label:     label,
		Total:     len(values),
		Threshold: threshold,
	}

	distinct := make(map[string]struct{})
	for _, v := range values {
		if !v.Valid {
			continue
		}
		r.NonNull++
		for _, frag := range splitFragments(v.String) {
			distinct[strings.TrimSpace(frag)] = struct{}{}
		}
	}

	if r.Total > 0 {
		r.Percent = 100 * float64(r.NonNull) / float64(r.Total)
	}
	r.Distinct = len(distinct)
	return r
}

// splitFragments splits on every separator and keeps empty pieces, unlike
// strings.FieldsFunc
func splitFragments(s string) []string {
	var pieces []string
	start := 0
	for i, r := range s {
		if strings.ContainsRune(fragmentSeparators, r) {
			pieces = append(pieces, s[start:i])
			start = i + 1
		}
	}
	return append(pieces, s[start:])
}

// Candidate names a free-text column that could be promoted to a table
type Candidate struct {
	Label  string
	Entity catalog.Entity
	Column string
	values func(*catalog.Dataset) []sql.NullString
}

// Candidates are the columns examined on every run
var Candidates = []Candidate{
	{
		Label: "Engineers", Entity: catalog.Albums, Column: "album_engineer",
		values: func(d *catalog.Dataset) []sql.NullString {
			out := make([]sql.NullString, len(d.Albums))
			for i, a := range d.Albums {
				out[i] = a.Engineer
			}
			return out
		},
	},
	{
		Label: "Lyricists", Entity: catalog.Tracks, Column: "track_lyricist",
		values: func(d *catalog.Dataset) []sql.NullString {
			out := make([]sql.NullString, len(d.Tracks))
			for i, t := range d.Tracks {
				out[i] = t.Lyricist
			}
			return out
		},
	},
	{
		Label: "Labels", Entity: catalog.Artists, Column: "artist_associated_labels",
		values: func(d *catalog.Dataset) []sql.NullString {
			out := make([]sql.NullString, len(d.Artists))
			for i, a := range d.Artists {
				out[i] = a.AssociatedLabels
			}
			return out
		},
	},
	{
		Label: "Licenses", Entity: catalog.Tracks, Column: "license_title",
		values: func(d *catalog.Dataset) []sql.NullString {
			out := make([]sql.NullString, len(d.Tracks))
			for i, t := range d.Tracks {
				out[i] = t.LicenseTitle
			}
			return out
		},
	},
}

// Measure runs Coverage over the candidate's column in ds
func (c Candidate) Measure(ds *catalog.Dataset, threshold float64) CoverageReport {
	r := Coverage(c.Label, c.values(ds), threshold)
	r.Column = string(c.Entity) + "." + c.Column
	return r
}
