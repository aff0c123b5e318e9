package load

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/franz/fma-janitor/internal/catalog"
	"github.com/franz/fma-janitor/internal/util"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/text/unicode/norm"
)

// naMarkers are cell values read as null, in addition to the empty string
var naMarkers = map[string]bool{
	"#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true, "-1.#QNAN": true,
	"-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true, "<NA>": true,
	"N/A": true, "NA": true, "NULL": true, "NaN": true, "None": true,
	"n/a": true, "nan": true, "null": true,
}

// IsNull reports whether a raw cell holds no value
func IsNull(cell string) bool {
	return cell == "" || naMarkers[cell]
}

// Config holds loader configuration
type Config struct {
	// Dir is the directory holding raw_<entity>.csv files
	Dir string

	// Progress draws a byte progress bar on stderr while reading
	Progress bool
}

// Loader reads raw source tables
type Loader struct {
	dir      string
	progress bool
}

// New creates a new Loader
func New(cfg *Config) *Loader {
	return &Loader{
		dir:      cfg.Dir,
		progress: cfg.Progress,
	}
}

// LoadAll reads every entity table. The first failure aborts the whole load
// and no tables are returned.
func (l *Loader) LoadAll() (map[catalog.Entity]*catalog.RawTable, error) {
	tables := make(map[catalog.Entity]*catalog.RawTable, len(catalog.Entities))
	for _, e := range catalog.Entities {
		src, _ := catalog.SourceFor(e)
		t, err := l.Load(src)
		if err != nil {
			return nil, err
		}
		tables[e] = t
	}
	return tables, nil
}

// Load reads one raw table restricted to its required columns
func (l *Loader) Load(src catalog.Source) (*catalog.RawTable, error) {
	path := filepath.Join(l.dir, src.FileName())

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingSourceError{Entity: src.Entity, Path: path, Err: err}
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if l.progress {
		if info, err := f.Stat(); err == nil {
			bar := progressbar.NewOptions64(info.Size(),
				progressbar.OptionSetDescription(fmt.Sprintf("Loading %s", src.Entity)),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowBytes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionThrottle(100*time.Millisecond),
				progressbar.OptionClearOnFinish(),
			)
			pr := progressbar.NewReader(f, bar)
			r = &pr
			defer bar.Finish()
		}
	}

	t, err := Read(r, src)
	if err != nil {
		var missing *MissingSourceError
		if errors.As(err, &missing) {
			missing.Path = path
		}
		return nil, err
	}

	util.InfoLog("Loaded %s: %s rows", src.Entity, util.FormatCount(t.Len()))
	return t, nil
}

// Read parses CSV from r according to the source policy. Records before
// src.HeaderRow are skipped; the header is canonicalized and only the
// required columns are kept.
func Read(r io.Reader, src catalog.Source) (*catalog.RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	for i := 0; i < src.HeaderRow; i++ {
		if _, err := cr.Read(); err != nil {
			return nil, headerError(src, err)
		}
	}

	hdr, err := cr.Read()
	if err != nil {
		return nil, headerError(src, err)
	}

	index := make(map[string]int, len(hdr))
	for i, h := range hdr {
		name := CanonicalColumn(h, i)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	colIx := make([]int, len(src.Columns))
	var missing []string
	for i, c := range src.Columns {
		ix, ok := index[c]
		if !ok {
			missing = append(missing, c)
			continue
		}
		colIx[i] = ix
	}
	if len(missing) > 0 {
		return nil, &MissingSourceError{Entity: src.Entity, Columns: missing}
	}

	t := &catalog.RawTable{
		Entity:  src.Entity,
		Columns: append([]string(nil), src.Columns...),
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", src.Entity, util.ErrCorrupt, err)
		}

		row := make(catalog.Row, len(src.Columns))
		for i, c := range src.Columns {
			ix := colIx[i]
			if ix >= len(rec) || IsNull(rec[ix]) {
				continue
			}
			row[c] = rec[ix]
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// CanonicalColumn normalizes a header cell: BOM and surrounding space are
// removed, the name is NFC-normalized and lower-cased. A blank header takes
// the positional name "unnamed: <pos>".
func CanonicalColumn(h string, pos int) string {
	if pos == 0 {
		h = strings.TrimPrefix(h, "\uFEFF")
	}
	h = strings.ToLower(norm.NFC.String(strings.TrimSpace(h)))
	if h == "" {
		return fmt.Sprintf("unnamed: %d", pos)
	}
	return h
}

func headerError(src catalog.Source, err error) error {
	if err == io.EOF {
		return &MissingSourceError{Entity: src.Entity, Columns: src.Columns}
	}
	return fmt.Errorf("%s header: %w: %v", src.Entity, util.ErrCorrupt, err)
}
