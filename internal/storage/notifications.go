package storage

import (
	"context"
	"time"

	"github.com/nikbrunner/dex/internal/model"
)

// InsertNotificationLog records one delivery attempt.
func (s *SQLiteStorage) InsertNotificationLog(ctx context.Context, l model.NotificationLog) error {
	if l.ID == "" {
		l.ID = model.GenerateUUID()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notification_log (id, user_id, entry_id, entry_name, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, l.ID, l.UserID, l.EntryID, l.EntryName, l.Status, formatTime(l.CreatedAt))
	return err
}

// ListNotificationLogs returns attempts for an entry, oldest first.
func (s *SQLiteStorage) ListNotificationLogs(ctx context.Context, entryID int) ([]model.NotificationLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, entry_id, entry_name, status, created_at
		FROM notification_log
		WHERE entry_id = ?
		ORDER BY created_at, user_id
	`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []model.NotificationLog{}
	for rows.Next() {
		var l model.NotificationLog
		var createdAt string
		if err := rows.Scan(&l.ID, &l.UserID, &l.EntryID, &l.EntryName, &l.Status, &createdAt); err != nil {
			return nil, err
		}
		l.CreatedAt = parseTime(createdAt)
		logs = append(logs, l)
	}

	return logs, rows.Err()
}
