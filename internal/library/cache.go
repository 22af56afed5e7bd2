// Package library tracks which catalog entries a user keeps in their library and
// which of those are favorites.
package library

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/storage"
	"github.com/rs/zerolog/log"
)

// Store persists membership rows.
type Store interface {
	GetMembership(ctx context.Context, userID string, entryID int) (*model.Membership, error)
	ListMemberships(ctx context.Context, userID string) ([]model.Membership, error)
	InsertMembership(ctx context.Context, m model.Membership) error
	SetFavorite(ctx context.Context, userID string, entryID int, favorite bool) error
	DeleteMembership(ctx context.Context, userID string, entryID int) error
}

// EntrySource resolves entry ids to records for listing.
type EntrySource interface {
	ListEntries(ctx context.Context, f storage.EntryFilter) ([]model.Entry, error)
}

// Cache is a per-user replica of the membership table. Local sets change only after
// the store call succeeds; Load replaces them wholesale.
type Cache struct {
	userID  string
	store   Store
	entries EntrySource

	mu          sync.RWMutex
	libraryIDs  map[int]bool
	favoriteIDs map[int]bool
}

// New creates an empty cache for userID. Call Load to fill it.
func New(userID string, store Store, entries EntrySource) *Cache {
	return &Cache{
		userID:      userID,
		store:       store,
		entries:     entries,
		libraryIDs:  map[int]bool{},
		favoriteIDs: map[int]bool{},
	}
}

// UserID returns the owner of the cache.
func (c *Cache) UserID() string {
	return c.userID
}

// Load replaces both sets with the store's current rows.
func (c *Cache) Load(ctx context.Context) error {
	rows, err := c.store.ListMemberships(ctx, c.userID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("user", c.userID).Msg("failed to load library")
		return fmt.Errorf("load library: %w", err)
	}

	library := make(map[int]bool, len(rows))
	favorites := map[int]bool{}
	for _, m := range rows {
		library[m.EntryID] = true
		if m.IsFavorite {
			favorites[m.EntryID] = true
		}
	}

	c.mu.Lock()
	c.libraryIDs = library
	c.favoriteIDs = favorites
	c.mu.Unlock()

	return nil
}

// IsInLibrary reports whether the entry has a membership row.
func (c *Cache) IsInLibrary(entryID int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.libraryIDs[entryID]
}

// IsInFavorites reports whether the entry is marked favorite.
func (c *Cache) IsInFavorites(entryID int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.favoriteIDs[entryID]
}

// LibraryIDs returns library entry ids in ascending order.
func (c *Cache) LibraryIDs() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.libraryIDs)
}

// FavoriteIDs returns favorite entry ids in ascending order.
func (c *Cache) FavoriteIDs() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.favoriteIDs)
}

// AddToLibrary inserts a membership row. Already present is a no-op.
func (c *Cache) AddToLibrary(ctx context.Context, entry model.Entry) error {
	if c.IsInLibrary(entry.ID) {
		return nil
	}

	m := model.NewMembership(model.NewMembershipParams{UserID: c.userID, Entry: entry})
	if err := c.store.InsertMembership(ctx, m); err != nil {
		log.Ctx(ctx).Error().Err(err).Int("entry", entry.ID).Msg("failed to add to library")
		return fmt.Errorf("add %s to library: %w", entry.Name, err)
	}

	c.mu.Lock()
	c.libraryIDs[entry.ID] = true
	c.mu.Unlock()

	return nil
}

// RemoveFromLibrary deletes the membership row, which also drops favorite status.
func (c *Cache) RemoveFromLibrary(ctx context.Context, entryID int) error {
	if err := c.store.DeleteMembership(ctx, c.userID, entryID); err != nil {
		log.Ctx(ctx).Error().Err(err).Int("entry", entryID).Msg("failed to remove from library")
		return fmt.Errorf("remove %d from library: %w", entryID, err)
	}

	c.mu.Lock()
	delete(c.libraryIDs, entryID)
	delete(c.favoriteIDs, entryID)
	c.mu.Unlock()

	return nil
}

// AddToFavorites sets the favorite flag, creating the library row if needed.
// The entry ends up in both sets.
func (c *Cache) AddToFavorites(ctx context.Context, entry model.Entry) error {
	_, err := c.store.GetMembership(ctx, c.userID, entry.ID)
	switch {
	case err == nil:
		err = c.store.SetFavorite(ctx, c.userID, entry.ID, true)
	case errors.Is(err, storage.ErrNotFound):
		m := model.NewMembership(model.NewMembershipParams{UserID: c.userID, Entry: entry, IsFavorite: true})
		err = c.store.InsertMembership(ctx, m)
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Int("entry", entry.ID).Msg("failed to add to favorites")
		return fmt.Errorf("add %s to favorites: %w", entry.Name, err)
	}

	c.mu.Lock()
	c.libraryIDs[entry.ID] = true
	c.favoriteIDs[entry.ID] = true
	c.mu.Unlock()

	return nil
}

// RemoveFromFavorites clears the favorite flag. The library row stays.
func (c *Cache) RemoveFromFavorites(ctx context.Context, entryID int) error {
	err := c.store.SetFavorite(ctx, c.userID, entryID, false)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Ctx(ctx).Error().Err(err).Int("entry", entryID).Msg("failed to remove from favorites")
		return fmt.Errorf("remove %d from favorites: %w", entryID, err)
	}

	c.mu.Lock()
	delete(c.favoriteIDs, entryID)
	c.mu.Unlock()

	return nil
}

// ToggleLibrary adds or removes the entry and reports the new membership state.
func (c *Cache) ToggleLibrary(ctx context.Context, entry model.Entry) (bool, error) {
	if c.IsInLibrary(entry.ID) {
		return false, c.RemoveFromLibrary(ctx, entry.ID)
	}
	return true, c.AddToLibrary(ctx, entry)
}

// ToggleFavorite adds or removes favorite status and reports the new state.
func (c *Cache) ToggleFavorite(ctx context.Context, entry model.Entry) (bool, error) {
	if c.IsInFavorites(entry.ID) {
		return false, c.RemoveFromFavorites(ctx, entry.ID)
	}
	return true, c.AddToFavorites(ctx, entry)
}

// Entries returns the library's records ordered by id.
func (c *Cache) Entries(ctx context.Context) ([]model.Entry, error) {
	return c.list(ctx, c.LibraryIDs())
}

// Favorites returns the favorite records ordered by id.
func (c *Cache) Favorites(ctx context.Context) ([]model.Entry, error) {
	return c.list(ctx, c.FavoriteIDs())
}

func (c *Cache) list(ctx context.Context, ids []int) ([]model.Entry, error) {
	if len(ids) == 0 {
		return []model.Entry{}, nil
	}

	// Library rows may point at hidden or deactivated entries; keep them listed.
	all, err := c.entries.ListEntries(ctx, storage.EntryFilter{IncludeHidden: true, IncludeInactive: true})
	if err != nil {
		return nil, fmt.Errorf("list library entries: %w", err)
	}

	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	entries := make([]model.Entry, 0, len(ids))
	for _, e := range all {
		if want[e.ID] {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func sortedKeys(m map[int]bool) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
