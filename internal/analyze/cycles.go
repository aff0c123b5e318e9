package analyze

import (
	"sort"

	"github.com/franz/fma-janitor/internal/catalog"
)

// CycleReport lists genres whose parent chain loops back on itself.
// Orphan repair only fixes dangling parents; loops survive cleaning.
type CycleReport struct {
	Members []int64 // ids of genres on a cycle, ascending
}

// Cyclic returns the number of genres on a cycle
func (r CycleReport) Cyclic() int {
	return len(r.Members)
}

// DetectGenreCycles walks each genre's parent chain once
func DetectGenreCycles(genres catalog.GenreTable) CycleReport {
	parent := make(map[int64]int64, len(genres))
	for _, g := range genres {
		if g.ParentID.Valid {
			parent[g.ID] = g.ParentID.Int64
		}
	}

	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[int64]int, len(genres))
	var members []int64

	for _, g := range genres {
		if state[g.ID] != unvisited {
			continue
		}

		var path []int64
		pos := make(map[int64]int)
		id := g.ID
		for {
			if state[id] == done {
				break
			}
			if state[id] == onPath {
				members = append(members, path[pos[id]:]...)
				break
			}
			state[id] = onPath
			pos[id] = len(path)
			path = append(path, id)

			next, ok := parent[id]
			if !ok {
				break
			}
			id = next
		}

		for _, p := range path {
			state[p] = done
		}
	}

	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
	return CycleReport{Members: members}
}
