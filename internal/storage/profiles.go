package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nikbrunner/dex/internal/model"
)

const profileColumns = `id, email, full_name, username, phone, bio, avatar_url, banner_url,
	website, location, birth_date, is_public, role, email_notifications, created_at, updated_at`

// GetProfile returns the profile with the given id, or ErrNotFound.
func (s *SQLiteStorage) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM profiles WHERE id = ?", id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// InsertProfile adds a profile. Returns ErrDuplicate if the id exists.
func (s *SQLiteStorage) InsertProfile(ctx context.Context, p model.Profile) error {
	if p.Role == "" {
		p.Role = model.RoleUser
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, profileArgs(p)...)
	if isUniqueViolation(err) {
		return fmt.Errorf("profile %s: %w", p.ID, ErrDuplicate)
	}
	return err
}

// UpdateProfile writes the editable columns of p. Role and timestamps of creation are untouched.
func (s *SQLiteStorage) UpdateProfile(ctx context.Context, p model.Profile) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET
			email = ?, full_name = ?, username = ?, phone = ?, bio = ?,
			avatar_url = ?, banner_url = ?, website = ?, location = ?, birth_date = ?,
			is_public = ?, email_notifications = ?, updated_at = ?
		WHERE id = ?
	`, nullIfEmpty(p.Email), p.FullName, p.Username, p.Phone, p.Bio,
		p.AvatarURL, p.BannerURL, p.Website, p.Location, p.BirthDate,
		boolToInt(p.IsPublic), boolToInt(p.EmailNotifications), formatTime(time.Now()),
		p.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// SetRole changes a profile's role.
func (s *SQLiteStorage) SetRole(ctx context.Context, id, role string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE profiles SET role = ?, updated_at = ? WHERE id = ?",
		role, formatTime(time.Now()), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// CountAdmins returns how many profiles hold the admin role.
func (s *SQLiteStorage) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles WHERE role = ?", model.RoleAdmin).Scan(&n)
	return n, err
}

// ListNotifiable returns profiles that opted into email and have an address.
func (s *SQLiteStorage) ListNotifiable(ctx context.Context) ([]model.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+profileColumns+` FROM profiles
		WHERE email_notifications = 1 AND email IS NOT NULL AND email != ''
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []model.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

func scanProfile(r rowScanner) (model.Profile, error) {
	var p model.Profile
	var email sql.NullString
	var public, notifications int
	var createdAt, updatedAt string

	if err := r.Scan(
		&p.ID, &email, &p.FullName, &p.Username, &p.Phone, &p.Bio, &p.AvatarURL, &p.BannerURL,
		&p.Website, &p.Location, &p.BirthDate, &public, &p.Role, &notifications,
		&createdAt, &updatedAt,
	); err != nil {
		return model.Profile{}, err
	}

	if email.Valid {
		p.Email = email.String
	}
	p.IsPublic = public == 1
	p.EmailNotifications = notifications == 1
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)

	return p, nil
}

func profileArgs(p model.Profile) []any {
	return []any{
		p.ID, nullIfEmpty(p.Email), p.FullName, p.Username, p.Phone, p.Bio, p.AvatarURL, p.BannerURL,
		p.Website, p.Location, p.BirthDate, boolToInt(p.IsPublic), p.Role, boolToInt(p.EmailNotifications),
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
