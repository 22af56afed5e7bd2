package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nikbrunner/dex/internal/model"
)

const membershipColumns = `id, user_id, entry_id, entry_name, is_favorite, added_at, updated_at`

// GetMembership returns the user's row for an entry, or ErrNotFound.
func (s *SQLiteStorage) GetMembership(ctx context.Context, userID string, entryID int) (*model.Membership, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE user_id = ? AND entry_id = ?",
		userID, entryID)
	m, err := scanMembership(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMemberships returns all rows for a user, oldest first.
func (s *SQLiteStorage) ListMemberships(ctx context.Context, userID string) ([]model.Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE user_id = ? ORDER BY added_at, entry_id",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memberships := []model.Membership{}
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}

	return memberships, rows.Err()
}

// InsertMembership adds a row. Returns ErrDuplicate if the (user, entry) pair exists.
func (s *SQLiteStorage) InsertMembership(ctx context.Context, m model.Membership) error {
	if m.ID == "" {
		m.ID = model.GenerateUUID()
	}
	added := m.AddedAt
	if added.IsZero() {
		added = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memberships (`+membershipColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.UserID, m.EntryID, m.EntryName, boolToInt(m.IsFavorite),
		formatTime(added), formatTime(added))
	if isUniqueViolation(err) {
		return fmt.Errorf("membership %s/%d: %w", m.UserID, m.EntryID, ErrDuplicate)
	}
	return err
}

// SetFavorite updates the favorite flag on an existing row.
func (s *SQLiteStorage) SetFavorite(ctx context.Context, userID string, entryID int, favorite bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE memberships SET is_favorite = ?, updated_at = ? WHERE user_id = ? AND entry_id = ?",
		boolToInt(favorite), formatTime(time.Now()), userID, entryID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeleteMembership removes the user's row for an entry. Missing rows are not an error.
func (s *SQLiteStorage) DeleteMembership(ctx context.Context, userID string, entryID int) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM memberships WHERE user_id = ? AND entry_id = ?",
		userID, entryID)
	return err
}

func scanMembership(r rowScanner) (model.Membership, error) {
	var m model.Membership
	var favorite int
	var addedAt, updatedAt string

	if err := r.Scan(&m.ID, &m.UserID, &m.EntryID, &m.EntryName, &favorite, &addedAt, &updatedAt); err != nil {
		return model.Membership{}, err
	}

	m.IsFavorite = favorite == 1
	m.AddedAt = parseTime(addedAt)
	m.UpdatedAt = parseTime(updatedAt)

	return m, nil
}
