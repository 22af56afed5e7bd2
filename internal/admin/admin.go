// Package admin holds catalog curation operations. Every call checks the caller's
// role before touching the store.
package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikbrunner/dex/internal/importer"
	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/notify"
	"github.com/nikbrunner/dex/internal/storage"
	"github.com/rs/zerolog/log"
)

// ErrNotAuthorized is returned when a non-admin calls an admin operation.
var ErrNotAuthorized = errors.New("admin role required")

// Store is the catalog surface admin operations write to.
type Store interface {
	GetEntry(ctx context.Context, id int) (*model.Entry, error)
	InsertEntry(ctx context.Context, e model.Entry) error
	SetEntryActive(ctx context.Context, id int, active bool) error
	SetEntryHidden(ctx context.Context, id int, hidden bool) error
	Stats(ctx context.Context) (storage.Stats, error)
	ApplySeed(ctx context.Context, seed *storage.Seed) error
	SetRole(ctx context.Context, id, role string) error
	CountAdmins(ctx context.Context) (int, error)
}

// Importer runs batch imports.
type Importer interface {
	ImportRange(ctx context.Context, start, end int, onProgress importer.ProgressFunc) (importer.Result, error)
}

// Notifier announces entries.
type Notifier interface {
	NotifyEntry(ctx context.Context, entry model.Entry, onProgress notify.ProgressFunc) (*notify.Result, error)
}

// Service performs admin operations on behalf of one caller.
type Service struct {
	caller   model.Profile
	store    Store
	importer Importer
	notifier Notifier
}

// NewService creates a Service acting as caller. importer and notifier may be nil
// when those operations are not needed.
func NewService(caller model.Profile, store Store, im Importer, n Notifier) *Service {
	return &Service{caller: caller, store: store, importer: im, notifier: n}
}

func (s *Service) authorize(ctx context.Context, op string) error {
	if !s.caller.IsAdmin() {
		log.Ctx(ctx).Warn().Str("user", s.caller.ID).Str("op", op).Msg("admin operation denied")
		return fmt.Errorf("%s: %w", op, ErrNotAuthorized)
	}
	return nil
}

// AddEntry inserts a new catalog entry.
func (s *Service) AddEntry(ctx context.Context, params model.NewEntryParams) (*model.Entry, error) {
	if err := s.authorize(ctx, "add entry"); err != nil {
		return nil, err
	}
	if params.ID <= 0 {
		return nil, fmt.Errorf("add entry: id must be positive")
	}

	e := model.NewEntry(params)
	if e.Name == "" {
		return nil, fmt.Errorf("add entry: name is required")
	}

	if err := s.store.InsertEntry(ctx, e); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, fmt.Errorf("entry %d (%s) already exists: %w", e.ID, e.Name, err)
		}
		return nil, fmt.Errorf("add entry: %w", err)
	}

	log.Ctx(ctx).Info().Int("entry", e.ID).Str("name", e.Name).Msg("entry added")
	return &e, nil
}

// Deactivate soft-deletes an entry.
func (s *Service) Deactivate(ctx context.Context, id int) error {
	if err := s.authorize(ctx, "deactivate"); err != nil {
		return err
	}
	if err := s.store.SetEntryActive(ctx, id, false); err != nil {
		return fmt.Errorf("deactivate %d: %w", id, err)
	}
	log.Ctx(ctx).Info().Int("entry", id).Msg("entry deactivated")
	return nil
}

// SetHidden hides or unhides an entry from search.
func (s *Service) SetHidden(ctx context.Context, id int, hidden bool) error {
	if err := s.authorize(ctx, "set hidden"); err != nil {
		return err
	}
	if err := s.store.SetEntryHidden(ctx, id, hidden); err != nil {
		return fmt.Errorf("set hidden %d: %w", id, err)
	}
	log.Ctx(ctx).Info().Int("entry", id).Bool("hidden", hidden).Msg("entry visibility changed")
	return nil
}

// ImportRange pulls ids start..end from PokeAPI.
func (s *Service) ImportRange(ctx context.Context, start, end int, onProgress importer.ProgressFunc) (importer.Result, error) {
	if err := s.authorize(ctx, "import"); err != nil {
		return importer.Result{}, err
	}
	if s.importer == nil {
		return importer.Result{}, fmt.Errorf("import: no importer configured")
	}
	return s.importer.ImportRange(ctx, start, end, onProgress)
}

// Stats returns dataset and usage counters.
func (s *Service) Stats(ctx context.Context) (storage.Stats, error) {
	if err := s.authorize(ctx, "stats"); err != nil {
		return storage.Stats{}, err
	}
	return s.store.Stats(ctx)
}

// Notify emails opted-in users about one entry.
func (s *Service) Notify(ctx context.Context, entryID int, onProgress notify.ProgressFunc) (*notify.Result, error) {
	if err := s.authorize(ctx, "notify"); err != nil {
		return nil, err
	}
	if s.notifier == nil {
		return nil, fmt.Errorf("notify: no notifier configured")
	}

	e, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("notify %d: %w", entryID, err)
	}
	return s.notifier.NotifyEntry(ctx, *e, onProgress)
}

// Seed applies a seed file's entries and profiles.
func (s *Service) Seed(ctx context.Context, seed *storage.Seed) error {
	if err := s.authorize(ctx, "seed"); err != nil {
		return err
	}
	return s.store.ApplySeed(ctx, seed)
}

// Grant gives userID the admin role. While no admin exists, a caller may grant
// the role to themselves.
func (s *Service) Grant(ctx context.Context, userID string) error {
	if !s.caller.IsAdmin() {
		n, err := s.store.CountAdmins(ctx)
		if err != nil {
			return fmt.Errorf("grant: %w", err)
		}
		if n > 0 || userID != s.caller.ID {
			return s.authorize(ctx, "grant")
		}
	}
	if err := s.store.SetRole(ctx, userID, model.RoleAdmin); err != nil {
		return fmt.Errorf("grant %s: %w", userID, err)
	}
	log.Ctx(ctx).Info().Str("user", userID).Str("by", s.caller.ID).Msg("admin role granted")
	return nil
}
