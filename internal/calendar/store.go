package calendar

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Store loads and saves the calendar document at a fixed path. The path is
// explicit per instance so multiple calendars (and tests) can coexist.
type Store struct {
	path string
}

// NewStore returns a store for the calendar file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the backing file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads and validates the calendar document. A missing file is a
// CalendarNotFound error; malformed YAML or a structural violation is a
// CalendarParseError. No partially-parsed document is ever returned.
func (s *Store) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, wrapError(KindCalendarNotFound, err, "calendar file %s does not exist", s.path)
		}
		return nil, wrapError(KindCalendarNotFound, err, "calendar file %s is not readable", s.path)
	}

	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, wrapError(KindCalendarParseError, err, "calendar file %s is malformed", s.path)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Save serializes the document canonically and replaces the backing file
// atomically (temp file + rename), so a crash mid-write never corrupts the
// previous contents. The serialization is deterministic: field order is
// fixed and times are always formatted HH:MM:SS, so Save(Load()) is
// byte-for-byte idempotent.
func (s *Store) Save(doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return wrapError(KindCalendarWriteError, err, "cannot serialize calendar")
	}
	if err := enc.Close(); err != nil {
		return wrapError(KindCalendarWriteError, err, "cannot serialize calendar")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return wrapError(KindCalendarWriteError, err, "cannot create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".meetsched-calendar-*.tmp")
	if err != nil {
		return wrapError(KindCalendarWriteError, err, "cannot create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return wrapError(KindCalendarWriteError, err, "cannot write %s", tmpName)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return wrapError(KindCalendarWriteError, err, "cannot sync %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return wrapError(KindCalendarWriteError, err, "cannot close %s", tmpName)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return wrapError(KindCalendarWriteError, err, "cannot chmod %s", tmpName)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return wrapError(KindCalendarWriteError, err, "cannot replace %s", s.path)
	}
	return nil
}
