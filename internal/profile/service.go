// Package profile reads and edits user profiles.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/storage"
	"github.com/rs/zerolog/log"
)

// Store persists profiles.
type Store interface {
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	InsertProfile(ctx context.Context, p model.Profile) error
	UpdateProfile(ctx context.Context, p model.Profile) error
}

// Update lists the fields a user may change. Nil fields are left alone.
type Update struct {
	FullName           *string `json:"fullName,omitempty"`
	Username           *string `json:"username,omitempty"`
	Phone              *string `json:"phone,omitempty"`
	Bio                *string `json:"bio,omitempty"`
	AvatarURL          *string `json:"avatarUrl,omitempty"`
	BannerURL          *string `json:"bannerUrl,omitempty"`
	Website            *string `json:"website,omitempty"`
	Location           *string `json:"location,omitempty"`
	BirthDate          *string `json:"birthDate,omitempty"`
	IsPublic           *bool   `json:"isPublic,omitempty"`
	EmailNotifications *bool   `json:"emailNotifications,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u == Update{}
}

func (u Update) apply(p *model.Profile) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = SanitizeInput(*src)
		}
	}
	setString(&p.FullName, u.FullName)
	setString(&p.Username, u.Username)
	setString(&p.Phone, u.Phone)
	setString(&p.Bio, u.Bio)
	setString(&p.AvatarURL, u.AvatarURL)
	setString(&p.BannerURL, u.BannerURL)
	setString(&p.Website, u.Website)
	setString(&p.Location, u.Location)
	setString(&p.BirthDate, u.BirthDate)
	if u.IsPublic != nil {
		p.IsPublic = *u.IsPublic
	}
	if u.EmailNotifications != nil {
		p.EmailNotifications = *u.EmailNotifications
	}
}

// Service reads and writes profiles.
type Service struct {
	store Store
}

// NewService creates a Service over store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get returns the user's profile, creating an empty one on first read.
func (s *Service) Get(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	created := model.NewProfile(userID)
	if err := s.store.InsertProfile(ctx, created); err != nil && !errors.Is(err, storage.ErrDuplicate) {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	log.Ctx(ctx).Info().Str("user", userID).Msg("created profile")

	return s.store.GetProfile(ctx, userID)
}

// Update writes the whitelisted fields of u and returns the stored profile.
func (s *Service) Update(ctx context.Context, userID string, u Update) (*model.Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Empty() {
		return p, nil
	}

	u.apply(p)
	if err := s.store.UpdateProfile(ctx, *p); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return s.store.GetProfile(ctx, userID)
}

// SetEmail records the address notifications are sent to. It stands in for the
// identity provider, which owns the address in a hosted deployment.
func (s *Service) SetEmail(ctx context.Context, userID, email string) (*model.Profile, error) {
	email = strings.TrimSpace(email)
	if err := validate().Var(email, "omitempty,email"); err != nil {
		return nil, fmt.Errorf("invalid email %q", email)
	}

	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.Email = email
	if err := s.store.UpdateProfile(ctx, *p); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.store.GetProfile(ctx, userID)
}
