package search

import (
	"context"

	"github.com/rs/zerolog/log"
)

// NameSource reads the names of searchable entries.
type NameSource interface {
	SearchableNames(ctx context.Context) ([]string, error)
}

// NameIndex loads the names of active, visible entries. It keeps no state between
// calls; every Load is a full reload.
type NameIndex struct {
	source NameSource
}

// NewNameIndex creates a NameIndex reading from source.
func NewNameIndex(source NameSource) *NameIndex {
	return &NameIndex{source: source}
}

// Load returns the current searchable names. A store failure is logged and yields an
// empty list.
func (n *NameIndex) Load(ctx context.Context) []string {
	names, err := n.source.SearchableNames(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to load name index")
		return []string{}
	}
	return names
}
