// Package importer pulls catalog entries from PokeAPI into the local store.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nikbrunner/dex/internal/model"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrFetch is returned when an entry cannot be fetched or decoded.
var ErrFetch = errors.New("pokeapi fetch failed")

// Default range for ImportRange callers that pass nothing.
const (
	DefaultStart = 1
	DefaultEnd   = 100
)

// Store receives imported entries.
type Store interface {
	UpsertEntries(ctx context.Context, entries []model.Entry) error
}

// Config tunes the importer.
type Config struct {
	BaseURL           string
	Concurrency       int
	RequestsPerSecond float64
	Timeout           time.Duration
	Attempts          uint
	RetryDelay        time.Duration
}

// DefaultConfig returns the settings used against the public API.
func DefaultConfig() Config {
	return Config{
		BaseURL:           model.APIBaseURL,
		Concurrency:       8,
		RequestsPerSecond: 10,
		Timeout:           15 * time.Second,
		Attempts:          3,
		RetryDelay:        500 * time.Millisecond,
	}
}

// Result summarizes one import run.
type Result struct {
	Imported int   `json:"imported"`
	Failed   []int `json:"failed,omitempty"`
}

// ProgressFunc is called after each id is processed.
type ProgressFunc func(completed, total int)

// Importer fetches entries by id and upserts them.
type Importer struct {
	cfg     Config
	store   Store
	client  *http.Client
	limiter *rate.Limiter
}

// New creates an Importer. Zero fields in cfg take their defaults.
func New(store Store, cfg Config) *Importer {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = def.Attempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}

	return &Importer{
		cfg:     cfg,
		store:   store,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Concurrency),
	}
}

// ImportRange fetches ids start..end inclusive and upserts every entry that could be
// fetched. Ids that fail after retries are reported in Result.Failed.
func (im *Importer) ImportRange(ctx context.Context, start, end int, onProgress ProgressFunc) (Result, error) {
	if start < 1 || end < start {
		return Result{}, fmt.Errorf("invalid range %d..%d", start, end)
	}

	logger := log.Ctx(ctx)
	logger.Info().Int("start", start).Int("end", end).Msg("importing entries")

	total := end - start + 1
	var (
		mu        sync.Mutex
		entries   []model.Entry
		failed    []int
		completed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.cfg.Concurrency)

	for id := start; id <= end; id++ {
		g.Go(func() error {
			entry, err := im.Fetch(gctx, id)

			mu.Lock()
			if err != nil {
				failed = append(failed, id)
			} else {
				entries = append(entries, entry)
			}
			completed++
			done := completed
			mu.Unlock()

			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn().Err(err).Int("id", id).Msg("skipping entry")
			}
			if onProgress != nil {
				onProgress(done, total)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("import %d..%d: %w", start, end, err)
	}

	slices.SortFunc(entries, func(a, b model.Entry) int { return a.ID - b.ID })
	slices.Sort(failed)

	if err := im.store.UpsertEntries(ctx, entries); err != nil {
		return Result{}, fmt.Errorf("store imported entries: %w", err)
	}

	logger.Info().Int("imported", len(entries)).Int("failed", len(failed)).Msg("import finished")
	return Result{Imported: len(entries), Failed: failed}, nil
}

// Fetch retrieves one entry by id, retrying transient failures.
func (im *Importer) Fetch(ctx context.Context, id int) (model.Entry, error) {
	url := fmt.Sprintf("%s/%d", im.cfg.BaseURL, id)

	var body []byte
	err := retry.Do(func() error {
		if err := im.limiter.Wait(ctx); err != nil {
			return retry.Unrecoverable(err)
		}
		b, err := im.get(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(im.cfg.Attempts),
		retry.Delay(im.cfg.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Debug().Err(err).Int("id", id).Uint("attempt", n+1).Msg("retrying fetch")
		}),
	)
	if err != nil {
		return model.Entry{}, err
	}

	return ParseEntry(body)
}

func (im *Importer) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("%w: %v", ErrFetch, err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := im.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: %s: status %d", ErrFetch, url, resp.StatusCode)
		// Client errors other than throttling will not improve on retry
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, retry.Unrecoverable(err)
		}
		return nil, err
	}

	return body, nil
}

// detailFields are copied verbatim from the API payload into Entry.Details.
var detailFields = []string{"types", "abilities", "stats", "sprites"}

// ParseEntry decodes a PokeAPI pokemon document.
func ParseEntry(data []byte) (model.Entry, error) {
	if !gjson.ValidBytes(data) {
		return model.Entry{}, fmt.Errorf("%w: invalid JSON", ErrFetch)
	}

	doc := gjson.ParseBytes(data)
	id := int(doc.Get("id").Int())
	name := doc.Get("name").String()
	if id <= 0 || name == "" {
		return model.Entry{}, fmt.Errorf("%w: missing id or name", ErrFetch)
	}

	details := []byte("{}")
	for _, field := range detailFields {
		v := doc.Get(field)
		if !v.Exists() {
			continue
		}
		var err error
		details, err = sjson.SetRawBytes(details, field, []byte(v.Raw))
		if err != nil {
			return model.Entry{}, fmt.Errorf("%w: %v", ErrFetch, err)
		}
	}

	return model.NewEntry(model.NewEntryParams{
		ID:         id,
		Name:       name,
		Height:     int(doc.Get("height").Int()),
		Weight:     int(doc.Get("weight").Int()),
		Details:    details,
		SpeciesURL: doc.Get("species.url").String(),
	}), nil
}
