package ndmpconf

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultPath is where the daemon reads its configuration from
const DefaultPath = "/etc/ndmpd.conf"

var (
	// ErrRead is returned when the configuration file cannot be read
	ErrRead = errors.New("config read failure")
	// ErrWrite is returned when the configuration file cannot be replaced
	ErrWrite = errors.New("config write failure")
)

// Load parses the configuration file at path
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer fh.Close()

	f, err := Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	return f, nil
}

// ReadRaw returns the unparsed content of the configuration file
func ReadRaw(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return data, nil
}

// Read returns the key/value entries of the configuration file. Lines that
// are not key=value pairs are skipped and logged.
func Read(path string) (map[string]string, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}

	for _, l := range f.Malformed() {
		slog.Debug("skipping malformed config line", "path", path, "line", l.Number, "text", l.Raw)
	}

	return f.Values(), nil
}

// Write merges changes into the configuration file. See Merge.
func Write(path string, changes map[string]string) error {
	_, err := Merge(path, changes)
	return err
}

// Merge rewrites the value of every line whose key is in changes, keeping all
// other lines and their order as they are. Keys that do not already appear in
// the file are returned and not written.
func Merge(path string, changes map[string]string) (missing []string, err error) {
	current, err := ReadRaw(path)
	if err != nil {
		return nil, err
	}
	return MergeContent(path, current, changes)
}

// MergeContent is Merge for a caller that already holds the current content
// of path
func MergeContent(path string, current []byte, changes map[string]string) (missing []string, err error) {
	f, err := Parse(bytes.NewReader(current))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}

	missing = f.Apply(changes)

	if err := WriteAll(path, f.Bytes()); err != nil {
		return nil, err
	}
	return missing, nil
}

// WriteAll atomically replaces the file at path with data. The content goes
// to a temp file in the same directory which is synced and renamed over path,
// so a failure never leaves a truncated configuration behind. A symlinked
// path is followed and its target replaced. Mode and ownership of the old
// file are kept.
func WriteAll(path string, data []byte) error {
	target, err := filepath.EvalSymlinks(path)
	switch {
	case err == nil:
		path = target
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	mode := os.FileMode(0644)
	info, statErr := os.Stat(path)
	if statErr == nil {
		mode = info.Mode().Perm()
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if statErr == nil {
		if err := copyOwner(tmpName, info); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
