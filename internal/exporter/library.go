// Package exporter writes a user's library to a portable YAML or JSON document.
package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/dex/internal/model"
	"gopkg.in/yaml.v3"
)

// Format is an export file format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Document is the exported library.
type Document struct {
	User       string    `json:"user" yaml:"user"`
	ExportedAt time.Time `json:"exportedAt" yaml:"exportedAt"`
	Count      int       `json:"count" yaml:"count"`
	Entries    []Entry   `json:"entries" yaml:"entries"`
}

// Entry is one library row in an export.
type Entry struct {
	ID       int      `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Types    []string `json:"types,omitempty" yaml:"types,omitempty,flow"`
	Favorite bool     `json:"favorite" yaml:"favorite"`
	APIURL   string   `json:"apiUrl" yaml:"apiUrl"`
	ImageURL string   `json:"imageUrl" yaml:"imageUrl"`
}

// Membership reports favorite status for an entry id.
type Membership interface {
	IsInFavorites(entryID int) bool
}

// NewDocument builds an export of entries for userID.
func NewDocument(userID string, entries []model.Entry, m Membership, now time.Time) Document {
	doc := Document{
		User:       userID,
		ExportedAt: now.UTC().Truncate(time.Second),
		Count:      len(entries),
		Entries:    make([]Entry, len(entries)),
	}

	for i, e := range entries {
		doc.Entries[i] = Entry{
			ID:       e.ID,
			Name:     e.Name,
			Types:    e.Types(),
			Favorite: m.IsInFavorites(e.ID),
			APIURL:   e.APIURL(),
			ImageURL: e.ImageURL(),
		}
	}

	return doc
}

// Write encodes doc to w in the given format.
func Write(w io.Writer, doc Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteFile writes doc to path, creating the directory if needed.
func WriteFile(path string, doc Document, format Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := Write(f, doc, format); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// FormatFromPath picks the format from the file extension. Unknown extensions are YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/dex-library-YYYY-MM-DD.<ext>
func DefaultExportPath(format Format) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("dex-library-%s.%s", time.Now().Format("2006-01-02"), format)
	return filepath.Join(home, "Downloads", filename), nil
}
