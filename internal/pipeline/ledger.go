package pipeline

import (
	"fmt"
	"strings"

	"github.com/franz/fma-janitor/internal/analyze"
	"github.com/franz/fma-janitor/internal/store"
)

// maxCycleMembers bounds the ids listed in a cycle finding
const maxCycleMembers = 20

// LedgerRun converts a result into the run recorded in the ledger. The
// stdout and Markdown reports are both rendered from this value.
func (r *Result) LedgerRun(id string) *store.Run {
	run := &store.Run{
		ID:         id,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		InputDir:   r.InputDir,
		OutputDir:  r.OutputDir,
		State:      r.State.String(),
		Threshold:  r.Threshold,
	}
	if r.Err != nil {
		run.Error = r.Err.Error()
	}

	writes := make(map[string]int, len(r.Writes))
	for i, w := range r.Writes {
		writes[string(w.Entity)] = i
	}

	for _, st := range r.Stats {
		e := store.RunEntity{
			Entity:          string(st.Entity),
			InputRows:       st.Input,
			MissingIdentity: st.MissingIdentity,
			InvalidKey:      st.InvalidKey,
			Duplicates:      st.Duplicates,
			Rejected:        st.Rejected,
			Repaired:        st.Repaired,
			OutputRows:      st.Output,
		}
		if i, ok := writes[e.Entity]; ok {
			w := r.Writes[i]
			e.OutputPath = w.Path
			e.OutputBytes = w.Bytes
			if w.Err != nil {
				e.WriteError = w.Err.Error()
			}
		}
		run.Entities = append(run.Entities, e)
	}

	if r.Findings != nil {
		run.Findings = findings(r.Findings)
	}
	return run
}

func findings(f *analyze.Findings) []store.Finding {
	out := make([]store.Finding, 0, len(f.Coverage)+3)

	for _, c := range f.Coverage {
		out = append(out, store.Finding{
			Kind:        store.FindingCoverage,
			Label:       c.Label,
			Subject:     c.Column,
			Count:       int64(c.NonNull),
			Total:       int64(c.Total),
			Distinct:    int64(c.Distinct),
			Percent:     c.Percent,
			Threshold:   c.Threshold,
			Recommended: c.WorthTable(),
		})
	}

	l := f.GenreLinks
	out = append(out, store.Finding{
		Kind:        store.FindingGenreLinks,
		Label:       "Track-Genre Links",
		Subject:     "tracks.track_genres",
		Count:       int64(l.ValidLinks),
		Total:       int64(l.Records),
		Skipped:     int64(l.Malformed),
		Recommended: l.Justified(),
		Detail: fmt.Sprintf("%d cells, %d parsed, %d records without a usable genre_id",
			l.Cells, l.Parsed, l.BadRecords),
	})

	out = append(out, store.Finding{
		Kind:    store.FindingGenreCycles,
		Label:   "Genres on a parent cycle",
		Subject: "genres.genre_parent_id",
		Count:   int64(f.GenreCycles.Cyclic()),
		Detail:  formatIDs(f.GenreCycles.Members, maxCycleMembers),
	})

	out = append(out, store.Finding{
		Kind:    store.FindingUnmatchedFeatures,
		Label:   "Feature rows without a track",
		Subject: "echonest.track_id",
		Count:   int64(f.UnmatchedFeatures),
	})

	return out
}

func formatIDs(ids []int64, limit int) string {
	parts := make([]string, 0, limit+1)
	for i, id := range ids {
		if i == limit {
			parts = append(parts, fmt.Sprintf("... %d more", len(ids)-limit))
			break
		}
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return strings.Join(parts, ", ")
}
