package ndmpconf

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
)

// LineKind classifies a configuration line
type LineKind int

const (
	LineBlank LineKind = iota
	LineComment
	LineEntry
	LineMalformed
)

// Line is one line of the configuration file. Raw and EOL are kept verbatim
// so that lines not touched by a change-set are written back unchanged.
type Line struct {
	Number int
	Raw    string
	EOL    string // "\n", "\r\n", or "" for a last line without newline
	Kind   LineKind
	Key    string
	Value  string
}

// File is a parsed configuration file
type File struct {
	Lines []Line
}

// Parse reads a configuration file line by line
func Parse(r io.Reader) (*File, error) {
	f := &File{}

	br := bufio.NewReader(r)
	for n := 1; ; n++ {
		text, err := br.ReadString('\n')
		if text != "" {
			raw, eol := splitEOL(text)
			line := parseLine(n, raw)
			line.EOL = eol
			f.Lines = append(f.Lines, line)
		}
		if errors.Is(err, io.EOF) {
			return f, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func splitEOL(text string) (raw, eol string) {
	switch {
	case strings.HasSuffix(text, "\r\n"):
		return text[:len(text)-2], "\r\n"
	case strings.HasSuffix(text, "\n"):
		return text[:len(text)-1], "\n"
	default:
		return text, ""
	}
}

func parseLine(n int, raw string) Line {
	line := Line{Number: n, Raw: raw}

	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "":
		line.Kind = LineBlank
	case strings.HasPrefix(trimmed, "#"):
		line.Kind = LineComment
	default:
		key, value, found := strings.Cut(trimmed, "=")
		if !found {
			line.Kind = LineMalformed
			return line
		}
		line.Kind = LineEntry
		line.Key = strings.TrimSpace(key)
		line.Value = strings.TrimSpace(value)
	}

	return line
}

// Values returns the entries as a map. Later duplicates win.
func (f *File) Values() map[string]string {
	values := make(map[string]string)
	for _, l := range f.Lines {
		if l.Kind == LineEntry {
			values[l.Key] = l.Value
		}
	}
	return values
}

// Malformed returns the lines that are neither entries, comments nor blank
func (f *File) Malformed() []Line {
	var out []Line
	for _, l := range f.Lines {
		if l.Kind == LineMalformed {
			out = append(out, l)
		}
	}
	return out
}

// Apply rewrites, in place, every entry whose key is in changes. Keys that
// never appear in the file are not appended; they are returned as missing.
func (f *File) Apply(changes map[string]string) (missing []string) {
	seen := make(map[string]bool, len(changes))

	for i := range f.Lines {
		l := &f.Lines[i]
		if l.Kind != LineEntry {
			continue
		}
		value, ok := changes[l.Key]
		if !ok {
			continue
		}
		l.Value = value
		l.Raw = l.Key + "=" + value
		seen[l.Key] = true
	}

	for _, key := range Keys {
		if _, ok := changes[key]; ok && !seen[key] {
			missing = append(missing, key)
		}
	}
	for key := range changes {
		if !seen[key] && !IsKnownKey(key) {
			missing = append(missing, key)
		}
	}

	return missing
}

// Bytes renders the file, each line followed by its original terminator
func (f *File) Bytes() []byte {
	var buf bytes.Buffer
	for _, l := range f.Lines {
		buf.WriteString(l.Raw)
		buf.WriteString(l.EOL)
	}
	return buf.Bytes()
}
