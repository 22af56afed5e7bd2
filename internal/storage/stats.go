package storage

import "context"

// Stats holds dataset and usage counters for the admin dashboard.
type Stats struct {
	Users           int `json:"users" yaml:"users"`
	LibraryRows     int `json:"libraryRows" yaml:"libraryRows"`
	FavoriteRows    int `json:"favoriteRows" yaml:"favoriteRows"`
	ActiveEntries   int `json:"activeEntries" yaml:"activeEntries"`
	HiddenEntries   int `json:"hiddenEntries" yaml:"hiddenEntries"`
	InactiveEntries int `json:"inactiveEntries" yaml:"inactiveEntries"`
}

// Stats counts users, memberships and entries by state.
func (s *SQLiteStorage) Stats(ctx context.Context) (Stats, error) {
	var st Stats

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM profiles", &st.Users},
		{"SELECT COUNT(*) FROM memberships", &st.LibraryRows},
		{"SELECT COUNT(*) FROM memberships WHERE is_favorite = 1", &st.FavoriteRows},
		{"SELECT COUNT(*) FROM entries WHERE is_active = 1", &st.ActiveEntries},
		{"SELECT COUNT(*) FROM entries WHERE is_active = 1 AND is_hidden = 1", &st.HiddenEntries},
		{"SELECT COUNT(*) FROM entries WHERE is_active = 0", &st.InactiveEntries},
	}

	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return Stats{}, err
		}
	}

	return st, nil
}
