package model

import "time"

// Role names stored on profiles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Profile holds per-user account data.
type Profile struct {
	ID                 string    `json:"id" yaml:"id"`
	Email              string    `json:"email,omitempty" yaml:"email,omitempty"`
	FullName           string    `json:"fullName,omitempty" yaml:"fullName,omitempty"`
	Username           string    `json:"username,omitempty" yaml:"username,omitempty"`
	Phone              string    `json:"phone,omitempty" yaml:"phone,omitempty"`
	Bio                string    `json:"bio,omitempty" yaml:"bio,omitempty"`
	AvatarURL          string    `json:"avatarUrl,omitempty" yaml:"avatarUrl,omitempty"`
	BannerURL          string    `json:"bannerUrl,omitempty" yaml:"bannerUrl,omitempty"`
	Website            string    `json:"website,omitempty" yaml:"website,omitempty"`
	Location           string    `json:"location,omitempty" yaml:"location,omitempty"`
	BirthDate          string    `json:"birthDate,omitempty" yaml:"birthDate,omitempty"` // YYYY-MM-DD
	IsPublic           bool      `json:"isPublic" yaml:"isPublic"`
	Role               string    `json:"role" yaml:"role"`
	EmailNotifications bool      `json:"emailNotifications" yaml:"emailNotifications"`
	CreatedAt          time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// NewProfile creates an empty public profile with the user role.
func NewProfile(id string) Profile {
	now := time.Now().UTC()
	return Profile{
		ID:        id,
		IsPublic:  true,
		Role:      RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin reports whether the profile carries the admin role.
func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Greeting returns the name used to address the user in messages.
func (p Profile) Greeting() string {
	if p.FullName != "" {
		return p.FullName
	}
	return "Pokemon Trainer"
}
