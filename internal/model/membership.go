package model

import "time"

// Membership links a user to a catalog entry.
// A row means the entry is in the user's library; IsFavorite marks it a favorite.
type Membership struct {
	ID         string    `json:"id" yaml:"id"`
	UserID     string    `json:"userId" yaml:"userId"`
	EntryID    int       `json:"entryId" yaml:"entryId"`
	EntryName  string    `json:"entryName" yaml:"entryName"`
	IsFavorite bool      `json:"isFavorite" yaml:"isFavorite"`
	AddedAt    time.Time `json:"addedAt" yaml:"addedAt"`
	UpdatedAt  time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// NewMembershipParams holds parameters for creating a new Membership.
type NewMembershipParams struct {
	UserID     string
	Entry      Entry
	IsFavorite bool
}

// NewMembership creates a Membership with generated UUID and timestamps.
func NewMembership(params NewMembershipParams) Membership {
	now := time.Now().UTC()
	return Membership{
		ID:         GenerateUUID(),
		UserID:     params.UserID,
		EntryID:    params.Entry.ID,
		EntryName:  params.Entry.Name,
		IsFavorite: params.IsFavorite,
		AddedAt:    now,
		UpdatedAt:  now,
	}
}
