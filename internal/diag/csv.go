package diag

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/lestrrat-go/strftime"
)

// CSVSink appends one row per diagnostic to a file, directly grounded
// on the teacher's log.go log_write: open-for-append on first use,
// write a header if the file didn't already exist, flush every row.
// Repurposed here from "packet heard" rows to "pipeline diagnostic"
// rows (timestamp, kind, detail).
type CSVSink struct {
	f      *os.File
	w      *csv.Writer
	format string
}

// NewCSVSink opens (or creates) path for append. format is a strftime
// layout for the timestamp column; an empty format falls back to RFC
// 3339, matching the original direwolf -T option's "precede with a
// strftime timestamp, or don't" behavior.
func NewCSVSink(path string, format string) (*CSVSink, error) {
	_, statErr := os.Stat(path)
	alreadyThere := statErr == nil

	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("diag: opening %s: %w", path, err)
	}

	if format != "" {
		if _, err := strftime.Format(format, time.Now()); err != nil {
			f.Close()
			return nil, fmt.Errorf("diag: timestamp format %q: %w", format, err)
		}
	}

	w := csv.NewWriter(f)
	if !alreadyThere {
		if err := w.Write([]string{"timestamp", "kind", "detail"}); err != nil {
			f.Close()
			return nil, fmt.Errorf("diag: writing header: %w", err)
		}
		w.Flush()
	}

	return &CSVSink{f: f, w: w, format: format}, nil
}

func (c *CSVSink) Report(kind, detail string) {
	now := time.Now().UTC()
	stamp := now.Format(time.RFC3339)
	if c.format != "" {
		if formatted, err := strftime.Format(c.format, now); err == nil {
			stamp = formatted
		}
	}
	_ = c.w.Write([]string{stamp, kind, detail})
	c.w.Flush()
}

// Close flushes and closes the underlying file.
func (c *CSVSink) Close() error {
	c.w.Flush()
	return c.f.Close()
}
