// Package dumpdates reads the backup history the NDMP daemon keeps in its
// dumpdates file. Each line is "path<TAB>level<TAB>date"; tabs and spaces
// inside the path are escaped with a backslash.
package dumpdates

import (
	"bufio"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/ndmpd/ndmpadm/pkg/models"
)

// DefaultPath is where the daemon writes its dumpdates file
const DefaultPath = "/var/log/ndmp/dumpdates"

// ErrMissing is returned by Open when there is no dumpdates file yet
var ErrMissing = errors.New("backup history not found")

// Reader iterates over the records of one dumpdates file
type Reader struct {
	path    string
	file    *os.File
	skipped int
	err     error
}

// Open opens the dumpdates file at path. Reading starts fresh on every Open.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrMissing, err)
		}
		return nil, err
	}
	return &Reader{path: path, file: f}, nil
}

// Records yields the well-formed records in file order. Lines with fewer
// than three fields are skipped and counted. The sequence can be consumed
// once; check Err afterwards.
func (r *Reader) Records() iter.Seq[models.BackupRecord] {
	return func(yield func(models.BackupRecord) bool) {
		scanner := bufio.NewScanner(r.file)
		n := 0
		for scanner.Scan() {
			n++
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			rec, ok := ParseLine(line)
			if !ok {
				r.skipped++
				slog.Debug("skipping malformed dumpdates line", "path", r.path, "line", n, "text", line)
				continue
			}
			if !yield(rec) {
				return
			}
		}
		r.err = scanner.Err()
	}
}

// Skipped returns the number of malformed lines seen so far
func (r *Reader) Skipped() int {
	return r.skipped
}

// Err returns the first read error hit by Records
func (r *Reader) Err() error {
	return r.err
}

// Close closes the underlying file
func (r *Reader) Close() error {
	return r.file.Close()
}

// ParseLine splits one dumpdates line into a record
func ParseLine(line string) (models.BackupRecord, bool) {
	fields := splitFields(line)
	if len(fields) < 3 {
		return models.BackupRecord{}, false
	}
	return models.BackupRecord{
		Path:  fields[0],
		Level: fields[1],
		Date:  fields[2],
	}, true
}

// splitFields splits on unescaped tabs, dropping the escaping backslash
func splitFields(line string) []string {
	var (
		fields []string
		cur    strings.Builder
	)

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line) && (line[i+1] == '\t' || line[i+1] == ' '):
			i++
			cur.WriteByte(line[i])
		case c == '\t':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	fields = append(fields, cur.String())

	return fields
}
