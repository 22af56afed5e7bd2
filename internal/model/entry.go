package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// APIBaseURL is the PokeAPI endpoint entries are imported from.
const APIBaseURL = "https://pokeapi.co/api/v2/pokemon"

// Entry is one record of the curated catalog.
type Entry struct {
	ID         int             `json:"id" yaml:"id"`
	Name       string          `json:"name" yaml:"name"`
	Height     int             `json:"height" yaml:"height"`
	Weight     int             `json:"weight" yaml:"weight"`
	Details    json.RawMessage `json:"details,omitempty" yaml:"-"` // types, abilities, stats, sprites
	SpeciesURL string          `json:"speciesUrl,omitempty" yaml:"speciesUrl,omitempty"`
	Active     bool            `json:"active" yaml:"active"`
	Hidden     bool            `json:"hidden" yaml:"hidden"`
	CreatedAt  time.Time       `json:"createdAt" yaml:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt" yaml:"updatedAt"`
}

// NewEntryParams holds parameters for creating a new Entry.
type NewEntryParams struct {
	ID         int
	Name       string
	Height     int
	Weight     int
	Details    json.RawMessage
	SpeciesURL string
}

// NewEntry creates an active, visible Entry with timestamps set to now.
// Names are stored lowercase.
func NewEntry(params NewEntryParams) Entry {
	now := time.Now().UTC()
	details := params.Details
	if len(details) == 0 {
		details = json.RawMessage("{}")
	}

	return Entry{
		ID:         params.ID,
		Name:       strings.ToLower(strings.TrimSpace(params.Name)),
		Height:     params.Height,
		Weight:     params.Weight,
		Details:    details,
		SpeciesURL: params.SpeciesURL,
		Active:     true,
		Hidden:     false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Searchable reports whether the entry belongs in the name index.
func (e Entry) Searchable() bool {
	return e.Active && !e.Hidden
}

// DisplayName returns the name with its first letter upper-cased.
func (e Entry) DisplayName() string {
	return Capitalize(e.Name)
}

// APIURL returns the PokeAPI resource URL for the entry.
func (e Entry) APIURL() string {
	return fmt.Sprintf("%s/%d/", APIBaseURL, e.ID)
}

// Types returns the type names from the detail payload, in slot order.
func (e Entry) Types() []string {
	var types []string
	for _, t := range gjson.GetBytes(e.Details, "types.#.type.name").Array() {
		types = append(types, t.String())
	}
	return types
}

// StatOrder is the display order of base stats.
var StatOrder = []string{"hp", "attack", "defense", "special-attack", "special-defense", "speed"}

// Stats returns base stats keyed by stat name.
func (e Entry) Stats() map[string]int {
	stats := make(map[string]int)
	gjson.GetBytes(e.Details, "stats").ForEach(func(_, s gjson.Result) bool {
		stats[s.Get("stat.name").String()] = int(s.Get("base_stat").Int())
		return true
	})
	return stats
}

// ImageURL returns the best available artwork URL.
// Falls back from official artwork to the front sprite to the sprite repository.
func (e Entry) ImageURL() string {
	if u := gjson.GetBytes(e.Details, `sprites.other.official-artwork.front_default`).String(); u != "" {
		return u
	}
	if u := gjson.GetBytes(e.Details, "sprites.front_default").String(); u != "" {
		return u
	}
	return fmt.Sprintf("https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/%d.png", e.ID)
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
