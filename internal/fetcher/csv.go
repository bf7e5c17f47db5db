package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune            // default ','
	HasHeader  bool            // first row is not sent on the row channel
	HeaderCh   chan<- []string // optional: receives the header row
	Comment    rune            // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool

	// Required lists the columns the header must carry. Each entry holds the
	// accepted names for one column, matched as HeaderIndex keys. Setting it
	// implies HasHeader, and a missing or empty header is an error.
	Required [][]string
}

// StreamCSV reads r and sends each row on the returned channel. At most one
// error is sent on the error channel. Both channels close when reading stops.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		reader.Comment = opts.Comment
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1

		header := opts.HasHeader || len(opts.Required) > 0
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				if header && len(opts.Required) > 0 {
					errCh <- eris.New("csv: missing header row")
				}
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}
			if opts.TrimSpace {
				for i := range record {
					record[i] = strings.TrimSpace(record[i])
				}
			}

			if header {
				header = false
				if missing := MissingColumns(HeaderIndex(record), opts.Required); len(missing) > 0 {
					errCh <- eris.Errorf("csv: header missing columns %s", strings.Join(missing, ", "))
					return
				}
				if opts.HeaderCh != nil {
					select {
					case opts.HeaderCh <- record:
					case <-ctx.Done():
						errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled sending header")
						return
					}
				}
				continue
			}

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// HeaderIndex maps lower-cased, trimmed column names to their positions.
// The first occurrence of a duplicated name wins.
func HeaderIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, ok := idx[key]; !ok {
			idx[key] = i
		}
	}
	return idx
}

// Column returns the position of the first of names present in idx, or -1.
func Column(idx map[string]int, names ...string) int {
	for _, n := range names {
		if i, ok := idx[n]; ok {
			return i
		}
	}
	return -1
}

// MissingColumns returns the first accepted name of each required column
// absent from idx.
func MissingColumns(idx map[string]int, required [][]string) []string {
	var missing []string
	for _, names := range required {
		if len(names) > 0 && Column(idx, names...) < 0 {
			missing = append(missing, names[0])
		}
	}
	return missing
}
