package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nikbrunner/dex/internal/model"
)

const entryColumns = `id, name, height, weight, details, species_url, is_active, is_hidden, created_at, updated_at`

// EntryFilter narrows ListEntries. The zero value lists active, visible entries.
type EntryFilter struct {
	Names           []string // exact names, any order
	NameContains    string   // case-insensitive substring
	IncludeHidden   bool
	IncludeInactive bool
	Limit           int // 0 = no limit
}

// ListEntries returns entries matching the filter ordered by id.
func (s *SQLiteStorage) ListEntries(ctx context.Context, f EntryFilter) ([]model.Entry, error) {
	var where []string
	var args []any

	if !f.IncludeInactive {
		where = append(where, "is_active = 1")
	}
	if !f.IncludeHidden {
		where = append(where, "is_hidden = 0")
	}
	if f.Names != nil {
		if len(f.Names) == 0 {
			return []model.Entry{}, nil
		}
		placeholders := make([]string, len(f.Names))
		for i, name := range f.Names {
			placeholders[i] = "?"
			args = append(args, name)
		}
		where = append(where, "name IN ("+strings.Join(placeholders, ", ")+")")
	}
	if f.NameContains != "" {
		where = append(where, "name LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(strings.ToLower(f.NameContains))+"%")
	}

	query := "SELECT " + entryColumns + " FROM entries"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// SearchableNames returns names of active, non-hidden entries ordered by id.
func (s *SQLiteStorage) SearchableNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM entries
		WHERE is_active = 1 AND is_hidden = 0
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// GetEntry returns the entry with the given id regardless of its flags.
func (s *SQLiteStorage) GetEntry(ctx context.Context, id int) (*model.Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM entries WHERE id = ?", id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEntryByName returns the active entry with the given name.
func (s *SQLiteStorage) GetEntryByName(ctx context.Context, name string) (*model.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE name = ? AND is_active = 1",
		strings.ToLower(name))
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// InsertEntry adds a new entry. Returns ErrDuplicate if the id or active name is taken.
func (s *SQLiteStorage) InsertEntry(ctx context.Context, e model.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entryArgs(e)...)
	if isUniqueViolation(err) {
		return fmt.Errorf("entry %d (%s): %w", e.ID, e.Name, ErrDuplicate)
	}
	return err
}

// UpsertEntries inserts or replaces entries keyed on id in one transaction.
// Upserted entries are reactivated; the hidden flag and created_at are preserved,
// and so are stored details when the incoming entry carries none.
func (s *SQLiteStorage) UpsertEntries(ctx context.Context, entries []model.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			height = excluded.height,
			weight = excluded.weight,
			details = CASE WHEN excluded.details = '{}' THEN entries.details ELSE excluded.details END,
			species_url = excluded.species_url,
			is_active = 1,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, entryArgs(e)...); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("entry %d (%s): %w", e.ID, e.Name, ErrDuplicate)
			}
			return err
		}
	}

	return tx.Commit()
}

// SetEntryActive flips the soft-delete flag.
func (s *SQLiteStorage) SetEntryActive(ctx context.Context, id int, active bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE entries SET is_active = ?, updated_at = ? WHERE id = ?",
		boolToInt(active), formatTime(time.Now()), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// SetEntryHidden flips the visibility flag.
func (s *SQLiteStorage) SetEntryHidden(ctx context.Context, id int, hidden bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE entries SET is_hidden = ?, updated_at = ? WHERE id = ?",
		boolToInt(hidden), formatTime(time.Now()), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (model.Entry, error) {
	var e model.Entry
	var details string
	var speciesURL sql.NullString
	var active, hidden int
	var createdAt, updatedAt string

	if err := r.Scan(
		&e.ID, &e.Name, &e.Height, &e.Weight, &details, &speciesURL,
		&active, &hidden, &createdAt, &updatedAt,
	); err != nil {
		return model.Entry{}, err
	}

	e.Details = []byte(details)
	if speciesURL.Valid {
		e.SpeciesURL = speciesURL.String
	}
	e.Active = active == 1
	e.Hidden = hidden == 1
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)

	return e, nil
}

func entryArgs(e model.Entry) []any {
	details := string(e.Details)
	if details == "" {
		details = "{}"
	}

	var speciesURL *string
	if e.SpeciesURL != "" {
		speciesURL = &e.SpeciesURL
	}

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	updatedAt := e.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	return []any{
		e.ID, strings.ToLower(e.Name), e.Height, e.Weight, details, speciesURL,
		boolToInt(e.Active), boolToInt(e.Hidden), formatTime(createdAt), formatTime(updatedAt),
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
