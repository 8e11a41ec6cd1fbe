// Package storage is the local SQLite repository. It is the durable,
// authoritative copy of entries and profiles; the hosted store is
// reconciled from it asynchronously by the sync worker.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"evidenca/internal/core"

	_ "modernc.org/sqlite"
)

var (
	ErrDuplicateProfile = errors.New("profile already exists")
	ErrNotFound         = errors.New("not found")
)

type Repository struct {
	db *sql.DB
}

// PendingEntry identifies an entry that has not been synced to the
// hosted store yet.
type PendingEntry struct {
	Username string
	Date     core.Date
	Version  int64
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) CreateProfile(ctx context.Context, p core.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	admin := 0
	if p.Admin {
		admin = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (username, password_hash, hourly_rate_cents, is_admin) VALUES (?, ?, ?, ?)`,
		strings.TrimSpace(p.Username), p.PasswordHash, p.HourlyRate.Cents, admin)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "constraint") {
			return ErrDuplicateProfile
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (r *Repository) GetProfile(ctx context.Context, username string) (core.Profile, bool, error) {
	var (
		p     core.Profile
		admin int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT username, password_hash, hourly_rate_cents, is_admin FROM profiles WHERE username = ?`,
		username).Scan(&p.Username, &p.PasswordHash, &p.HourlyRate.Cents, &admin)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Profile{}, false, nil
	}
	if err != nil {
		return core.Profile{}, false, fmt.Errorf("get profile: %w", err)
	}
	p.Admin = admin != 0
	return p, true, nil
}

func (r *Repository) ListProfiles(ctx context.Context) ([]core.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT username, password_hash, hourly_rate_cents, is_admin FROM profiles ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []core.Profile
	for rows.Next() {
		var (
			p     core.Profile
			admin int
		)
		if err := rows.Scan(&p.Username, &p.PasswordHash, &p.HourlyRate.Cents, &admin); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		p.Admin = admin != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateHourlyRate(ctx context.Context, username string, rate core.Money) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET hourly_rate_cents = ? WHERE username = ?`, rate.Cents, username)
	if err != nil {
		return fmt.Errorf("update hourly rate: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) ListEntries(ctx context.Context, username string) ([]core.DailyEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, shifts_json, comment FROM entries WHERE username = ? ORDER BY date ASC`, username)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []core.DailyEntry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) GetEntry(ctx context.Context, username string, date core.Date) (core.DailyEntry, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT date, shifts_json, comment FROM entries WHERE username = ? AND date = ?`,
		username, date.String())
	e, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DailyEntry{}, false, nil
	}
	if err != nil {
		return core.DailyEntry{}, false, err
	}
	return e, true, nil
}

// UpsertEntry stores the entry for (username, date), overwriting any
// previous record, and returns the new version for sync bookkeeping.
func (r *Repository) UpsertEntry(ctx context.Context, username string, e core.DailyEntry) (int64, error) {
	shifts, err := json.Marshal(e.Shifts)
	if err != nil {
		return 0, fmt.Errorf("marshal shifts: %w", err)
	}

	var version int64
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO entries (username, date, shifts_json, comment, version, synced, updated_at)
		 VALUES (?, ?, ?, ?, 1, 0, ?)
		 ON CONFLICT (username, date) DO UPDATE SET
		   shifts_json = excluded.shifts_json,
		   comment = excluded.comment,
		   version = entries.version + 1,
		   synced = 0,
		   updated_at = excluded.updated_at
		 RETURNING version`,
		username, e.Date.String(), string(shifts), e.Comment,
		time.Now().UTC().Format(time.RFC3339)).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("upsert entry: %w", err)
	}
	return version, nil
}

func (r *Repository) DeleteEntry(ctx context.Context, username string, date core.Date) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM entries WHERE username = ? AND date = ?`, username, date.String()); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// ListPendingSync returns entries whose latest version has not reached
// the hosted store, oldest first.
func (r *Repository) ListPendingSync(ctx context.Context, limit int) ([]PendingEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT username, date, version FROM entries WHERE synced = 0 ORDER BY updated_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending sync: %w", err)
	}
	defer rows.Close()

	var out []PendingEntry
	for rows.Next() {
		var (
			p   PendingEntry
			raw string
		)
		if err := rows.Scan(&p.Username, &raw, &p.Version); err != nil {
			return nil, fmt.Errorf("scan pending entry: %w", err)
		}
		if p.Date, err = core.ParseDate(raw); err != nil {
			return nil, fmt.Errorf("pending entry %q: %w", raw, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkSynced flags a version as delivered. A newer local version keeps
// the row pending, so the guard on version avoids losing updates that
// raced with the sync.
func (r *Repository) MarkSynced(ctx context.Context, username string, date core.Date, version int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE entries SET synced = 1 WHERE username = ? AND date = ? AND version = ?`,
		username, date.String(), version); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

func scanEntry(scan func(dest ...any) error) (core.DailyEntry, error) {
	var (
		e       core.DailyEntry
		rawDate string
		shifts  string
	)
	if err := scan(&rawDate, &shifts, &e.Comment); err != nil {
		return core.DailyEntry{}, err
	}
	date, err := core.ParseDate(rawDate)
	if err != nil {
		return core.DailyEntry{}, fmt.Errorf("stored entry date %q: %w", rawDate, err)
	}
	e.Date = date
	if err := json.Unmarshal([]byte(shifts), &e.Shifts); err != nil {
		return core.DailyEntry{}, fmt.Errorf("unmarshal shifts: %w", err)
	}
	return e, nil
}
