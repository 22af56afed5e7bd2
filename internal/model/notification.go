package model

import "time"

// Delivery statuses recorded for notification attempts.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// NotificationLog records one email attempt for one recipient.
type NotificationLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	EntryID   int       `json:"entryId"`
	EntryName string    `json:"entryName"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
