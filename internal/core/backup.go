package core

import (
	"errors"
	"strings"
)

// BackupVersion is the current backup file format version.
const BackupVersion = 1

// Backup is the JSON backup object used for export and re-import. The
// field names match the files produced by earlier clients, so old
// backups keep importing.
type Backup struct {
	Version    int          `json:"version"`
	Username   string       `json:"username"`
	HourlyRate float64      `json:"hourlyRate"`
	Entries    []DailyEntry `json:"entries"`
}

var (
	ErrBackupUsername = errors.New("backup is missing a username")
	ErrBackupEntries  = errors.New("backup is missing an entries array")
)

// NewBackup assembles a backup for export.
func NewBackup(username string, rate Money, entries []DailyEntry) Backup {
	if entries == nil {
		entries = []DailyEntry{}
	}
	return Backup{
		Version:    BackupVersion,
		Username:   username,
		HourlyRate: rate.Euros(),
		Entries:    entries,
	}
}

// Validate checks the required fields of an imported backup. Import
// must not touch any stored data when this fails.
func (b Backup) Validate() error {
	if strings.TrimSpace(b.Username) == "" {
		return ErrBackupUsername
	}
	if b.Entries == nil {
		return ErrBackupEntries
	}
	for _, e := range b.Entries {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}
