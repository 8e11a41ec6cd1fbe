// Package sheets implements the record store on a hosted Google
// Sheets spreadsheet: one tab per user holding one row per daily
// entry, plus a Profiles tab for accounts. It serves as the remote,
// shareable copy that the sync worker reconciles.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"evidenca/internal/core"
	"evidenca/internal/store"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const profilesSheet = "Profiles"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var (
	_ store.EntryStore   = (*Client)(nil)
	_ store.ProfileStore = (*Client)(nil)
)

// NewFromEnv creates a client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Credentials come from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// Application Default Credentials, in that order.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	if raw := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); raw != "" {
		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON([]byte(raw)),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}
	if file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")); file != "" {
		return gsheet.NewService(ctx,
			goption.WithCredentialsFile(file),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}
	// Application Default Credentials.
	return gsheet.NewService(ctx, goption.WithScopes(gsheet.SpreadsheetsScope))
}

func (c *Client) ListEntries(ctx context.Context, username string) ([]core.DailyEntry, error) {
	rows, err := c.readRange(ctx, entryRange(username))
	if err != nil {
		return nil, err
	}

	var out []core.DailyEntry
	for i, row := range rows {
		e, err := entryFromRow(row)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed entry row",
				"username", username, "row", i+2, "error", err)
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (c *Client) GetEntry(ctx context.Context, username string, date core.Date) (core.DailyEntry, bool, error) {
	entries, err := c.ListEntries(ctx, username)
	if err != nil {
		return core.DailyEntry{}, false, err
	}
	for _, e := range entries {
		if e.Date.String() == date.String() {
			return e, true, nil
		}
	}
	return core.DailyEntry{}, false, nil
}

func (c *Client) UpsertEntry(ctx context.Context, username string, e core.DailyEntry) error {
	if err := c.ensureSheet(ctx, username); err != nil {
		return err
	}

	row, err := entryToRow(e)
	if err != nil {
		return err
	}

	idx, err := c.findRow(ctx, entryRange(username), e.Date.String())
	if err != nil {
		return err
	}
	if idx >= 0 {
		rng := fmt.Sprintf("'%s'!A%d:C%d", username, idx+2, idx+2)
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng,
			&gsheet.ValueRange{Values: [][]interface{}{row}}).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update entry row: %w", err)
		}
		return nil
	}

	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, entryRange(username),
		&gsheet.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append entry row: %w", err)
	}
	return nil
}

func (c *Client) DeleteEntry(ctx context.Context, username string, date core.Date) error {
	idx, err := c.findRow(ctx, entryRange(username), date.String())
	if err != nil || idx < 0 {
		return err
	}
	return c.deleteRow(ctx, username, idx+1) // +1 for the header row
}

func (c *Client) GetProfile(ctx context.Context, username string) (core.Profile, bool, error) {
	profiles, err := c.ListProfiles(ctx)
	if err != nil {
		return core.Profile{}, false, err
	}
	for _, p := range profiles {
		if p.Username == username {
			return p, true, nil
		}
	}
	return core.Profile{}, false, nil
}

func (c *Client) ListProfiles(ctx context.Context) ([]core.Profile, error) {
	rows, err := c.readRange(ctx, profileRange())
	if err != nil {
		return nil, err
	}

	var out []core.Profile
	for i, row := range rows {
		p, err := profileFromRow(row)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed profile row", "row", i+2, "error", err)
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (c *Client) CreateProfile(ctx context.Context, p core.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := c.ensureSheet(ctx, profilesSheet); err != nil {
		return err
	}
	if _, exists, err := c.GetProfile(ctx, p.Username); err != nil {
		return err
	} else if exists {
		return store.ErrProfileExists
	}

	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, profileRange(),
		&gsheet.ValueRange{Values: [][]interface{}{profileToRow(p)}}).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append profile row: %w", err)
	}
	return nil
}

func (c *Client) UpdateHourlyRate(ctx context.Context, username string, rate core.Money) error {
	idx, err := c.findRow(ctx, profileRange(), username)
	if err != nil {
		return err
	}
	if idx < 0 {
		return store.ErrProfileNotFound
	}
	rng := fmt.Sprintf("'%s'!C%d", profilesSheet, idx+2)
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng,
		&gsheet.ValueRange{Values: [][]interface{}{{strconv.FormatInt(rate.Cents, 10)}}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update rate cell: %w", err)
	}
	return nil
}

func entryRange(username string) string {
	return fmt.Sprintf("'%s'!A2:C", username)
}

func profileRange() string {
	return fmt.Sprintf("'%s'!A2:D", profilesSheet)
}

// readRange returns the data rows of a range, or nil when the sheet
// does not exist yet.
func (c *Client) readRange(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		if strings.Contains(err.Error(), "Unable to parse range") {
			return nil, nil
		}
		return nil, fmt.Errorf("read range %s: %w", rng, err)
	}
	return resp.Values, nil
}

// findRow returns the zero-based data row index whose first column
// equals key, or -1.
func (c *Client) findRow(ctx context.Context, rng, key string) (int, error) {
	rows, err := c.readRange(ctx, rng)
	if err != nil {
		return -1, err
	}
	for i, row := range rows {
		if len(row) > 0 && cell(row, 0) == key {
			return i, nil
		}
	}
	return -1, nil
}

func (c *Client) deleteRow(ctx context.Context, sheetTitle string, rowIndex int) error {
	sheetID, err := c.sheetID(ctx, sheetTitle)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIndex),
					EndIndex:   int64(rowIndex + 1),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row: %w", err)
	}
	return nil
}

func (c *Client) sheetID(ctx context.Context, title string) (int64, error) {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return s.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", title)
}

// ensureSheet creates the tab with a header row if it is missing.
func (c *Client) ensureSheet(ctx context.Context, title string) error {
	if _, err := c.sheetID(ctx, title); err == nil {
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		// Lost a race with a concurrent create; the tab exists now.
		if strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return fmt.Errorf("add sheet %q: %w", title, err)
	}

	header := [][]interface{}{{"date", "shifts", "comment"}}
	if title == profilesSheet {
		header = [][]interface{}{{"username", "password_hash", "hourly_rate_cents", "is_admin"}}
	}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("'%s'!A1", title),
		&gsheet.ValueRange{Values: header}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header for %q: %w", title, err)
	}
	return nil
}

func entryToRow(e core.DailyEntry) ([]interface{}, error) {
	shifts, err := json.Marshal(e.Shifts)
	if err != nil {
		return nil, fmt.Errorf("marshal shifts: %w", err)
	}
	return []interface{}{e.Date.String(), string(shifts), e.Comment}, nil
}

func entryFromRow(row []interface{}) (core.DailyEntry, error) {
	date, err := core.ParseDate(cell(row, 0))
	if err != nil {
		return core.DailyEntry{}, err
	}
	e := core.DailyEntry{Date: date, Comment: cell(row, 2)}
	if raw := cell(row, 1); raw != "" {
		if err := json.Unmarshal([]byte(raw), &e.Shifts); err != nil {
			return core.DailyEntry{}, fmt.Errorf("unmarshal shifts: %w", err)
		}
	}
	return e, nil
}

func profileToRow(p core.Profile) []interface{} {
	return []interface{}{
		p.Username,
		p.PasswordHash,
		strconv.FormatInt(p.HourlyRate.Cents, 10),
		strconv.FormatBool(p.Admin),
	}
}

func profileFromRow(row []interface{}) (core.Profile, error) {
	p := core.Profile{
		Username:     cell(row, 0),
		PasswordHash: cell(row, 1),
	}
	if p.Username == "" {
		return core.Profile{}, errors.New("empty username")
	}
	if raw := cell(row, 2); raw != "" {
		cents, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return core.Profile{}, fmt.Errorf("rate cents %q: %w", raw, err)
		}
		p.HourlyRate = core.Money{Cents: cents}
	}
	p.Admin = strings.EqualFold(cell(row, 3), "true")
	return p, nil
}

func cell(row []interface{}, i int) string {
	if i >= len(row) {
		return ""
	}
	s, _ := row[i].(string)
	return strings.TrimSpace(s)
}
