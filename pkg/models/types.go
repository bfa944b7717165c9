package models

import (
	"strings"
	"time"
)

// ConfigEntry is a single key=value line of the daemon configuration
type ConfigEntry struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Interface is a network interface and the IPv4 addresses assigned to it
type Interface struct {
	Name      string   `json:"name"`
	Addresses []string `json:"addresses"`
}

// String renders the interface the way listnic prints it: name(addr1,addr2)
func (i Interface) String() string {
	return i.Name + "(" + strings.Join(i.Addresses, ",") + ")"
}

// BackupRecord is one entry of the daemon's dumpdates log
type BackupRecord struct {
	Path  string `json:"path"`
	Level string `json:"level"` // 0-9, or F/A/I/D for LBR-style backups
	Date  string `json:"date"`  // ctime formatted, as written by the daemon
}

// Time parses the record date. The daemon writes dates with ctime(3).
func (r BackupRecord) Time() (time.Time, error) {
	return time.ParseInLocation(time.ANSIC, r.Date, time.Local)
}

// Revision describes a stored copy of the configuration file
type Revision struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Reason     string    `json:"reason,omitempty"`
	Hash       string    `json:"hash"`        // SHA-256 of the plain content
	Size       int64     `json:"size"`        // Plain content size
	StoredSize int64     `json:"stored_size"` // Size after compression/encryption
	Compressed bool      `json:"compressed"`
	Encrypted  bool      `json:"encrypted"`
}

// TreeStats summarises a generated test tree
type TreeStats struct {
	Dirs  int   `json:"dirs"`
	Files int   `json:"files"`
	Bytes int64 `json:"bytes"`
}

// ChangeType classifies a configuration change
type ChangeType string

const (
	ChangeAdded     ChangeType = "added"
	ChangeModified  ChangeType = "modified"
	ChangeDeleted   ChangeType = "deleted"
	ChangeUnchanged ChangeType = "unchanged"
)

// ConfigChange is the difference of one key between two configurations
type ConfigChange struct {
	Key      string     `json:"key"`
	Type     ChangeType `json:"type"`
	OldValue string     `json:"old_value,omitempty"`
	NewValue string     `json:"new_value,omitempty"`
}
