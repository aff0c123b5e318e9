// Package analyze measures a cleaned dataset: how well optional columns are
// populated, how many nested track-genre links resolve, and structural
// findings that cleaning deliberately leaves alone. Nothing here mutates
// its input.
package analyze

import (
	"github.com/franz/fma-janitor/internal/catalog"
	"github.com/franz/fma-janitor/internal/util"
)

// Findings is the full analysis of one dataset
type Findings struct {
	Coverage          []CoverageReport
	GenreLinks        LinkReport
	GenreCycles       CycleReport
	UnmatchedFeatures int
}

// Run analyzes ds. A non-positive threshold selects DefaultThreshold.
func Run(ds *catalog.Dataset, threshold float64) *Findings {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	f := &Findings{
		Coverage: make([]CoverageReport, 0, len(Candidates)),
	}
	for _, c := range Candidates {
		r := c.Measure(ds, threshold)
		f.Coverage = append(f.Coverage, r)
		util.DebugLog("%s: %s/%s rows (%s), %s distinct", r.Label,
			util.FormatCount(r.NonNull), util.FormatCount(r.Total),
			util.FormatPercent(r.Percent), util.FormatCount(r.Distinct))
	}

	f.GenreLinks = GenreLinks(ds.Tracks, ds.Genres)
	if f.GenreLinks.Malformed > 0 {
		util.WarnLog("Skipped %s malformed track_genres cells", util.FormatCount(f.GenreLinks.Malformed))
	}

	f.GenreCycles = DetectGenreCycles(ds.Genres)
	if f.GenreCycles.Cyclic() > 0 {
		util.WarnLog("%d genres sit on a parent cycle", f.GenreCycles.Cyclic())
	}

	f.UnmatchedFeatures = UnmatchedFeatures(ds.Echonest, ds.Tracks)
	return f
}
