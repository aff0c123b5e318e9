package load

import (
	"fmt"
	"strings"

	"github.com/franz/fma-janitor/internal/catalog"
	"github.com/franz/fma-janitor/internal/util"
)

// MissingSourceError reports a raw table that cannot be read: either the file
// is absent or it lacks required columns. It is fatal for a pipeline run.
type MissingSourceError struct {
	Entity  catalog.Entity
	Path    string
	Columns []string // missing required columns; empty when the file is absent
	Err     error
}

func (e *MissingSourceError) Error() string {
	where := e.Path
	if where == "" {
		where = catalog.RawFileName(e.Entity)
	}
	if len(e.Columns) > 0 {
		return fmt.Sprintf("%s: missing required columns in %s: %s",
			e.Entity, where, strings.Join(e.Columns, ", "))
	}
	return fmt.Sprintf("%s: source file not found: %s", e.Entity, where)
}

func (e *MissingSourceError) Unwrap() error {
	return e.Err
}

// Is lets callers match every missing-source failure with util.ErrNotFound
func (e *MissingSourceError) Is(target error) bool {
	return target == util.ErrNotFound
}
