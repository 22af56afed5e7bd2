// Package notify emails opted-in users when a new entry is added to the catalog.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nikbrunner/dex/internal/model"
	"github.com/rs/zerolog/log"
)

// Store provides recipients and records delivery attempts.
type Store interface {
	ListNotifiable(ctx context.Context) ([]model.Profile, error)
	InsertNotificationLog(ctx context.Context, l model.NotificationLog) error
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config holds sender identity and link targets.
type Config struct {
	FromEmail string
	FromName  string
	SiteURL   string
	Workers   int
}

// DefaultConfig returns the fallback sender settings.
func DefaultConfig() Config {
	return Config{
		FromEmail: "noreply@yoursite.com",
		FromName:  "PokéSearch Team",
		SiteURL:   "https://yoursite.com",
		Workers:   4,
	}
}

// RecipientResult is the outcome for one address.
type RecipientResult struct {
	Email   string `json:"email"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Details breaks a run down per recipient.
type Details struct {
	SuccessCount int               `json:"successCount"`
	FailureCount int               `json:"failureCount"`
	Results      []RecipientResult `json:"results"`
}

// Result summarizes a notification run.
type Result struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Details *Details `json:"details,omitempty"`
}

// ProgressFunc is called after each recipient is processed.
type ProgressFunc func(completed, total int)

// Notifier fans an entry announcement out to every opted-in user.
type Notifier struct {
	store  Store
	sender Sender
	cfg    Config
}

// New creates a Notifier. Zero fields in cfg take their defaults.
func New(store Store, sender Sender, cfg Config) *Notifier {
	def := DefaultConfig()
	if cfg.FromEmail == "" {
		cfg.FromEmail = def.FromEmail
	}
	if cfg.FromName == "" {
		cfg.FromName = def.FromName
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = def.SiteURL
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	return &Notifier{store: store, sender: sender, cfg: cfg}
}

// NotifyEntry emails every recipient about entry. Individual send failures are
// reported in the result; only a failure to list recipients is returned as an error.
func (n *Notifier) NotifyEntry(ctx context.Context, entry model.Entry, onProgress ProgressFunc) (*Result, error) {
	logger := log.Ctx(ctx).With().Int("entry", entry.ID).Str("name", entry.Name).Logger()

	recipients, err := n.store.ListNotifiable(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch profiles: %w", err)
	}

	if len(recipients) == 0 {
		logger.Info().Msg("no users with email notifications enabled")
		return &Result{Success: true, Message: "No users to notify"}, nil
	}

	logger.Info().Int("recipients", len(recipients)).Msg("sending notifications")

	results := make([]RecipientResult, len(recipients))
	jobs := make(chan int, len(recipients))
	var wg sync.WaitGroup

	var progressMu sync.Mutex
	completed := 0

	workers := min(n.cfg.Workers, len(recipients))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = n.deliver(ctx, entry, recipients[idx])

				if onProgress != nil {
					progressMu.Lock()
					completed++
					onProgress(completed, len(recipients))
					progressMu.Unlock()
				}
			}
		}()
	}

	for i := range recipients {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	details := &Details{Results: results}
	for _, r := range results {
		if r.Success {
			details.SuccessCount++
		} else {
			details.FailureCount++
		}
	}

	logger.Info().
		Int("sent", details.SuccessCount).
		Int("failed", details.FailureCount).
		Msg("notifications finished")

	return &Result{
		Success: true,
		Message: fmt.Sprintf("Notifications sent to %d users", details.SuccessCount),
		Details: details,
	}, nil
}

// deliver sends to one recipient and writes the log row.
func (n *Notifier) deliver(ctx context.Context, entry model.Entry, to model.Profile) RecipientResult {
	result := RecipientResult{Email: to.Email}

	err := n.send(ctx, entry, to)
	if err != nil {
		result.Error = normalizeError(err.Error())
		log.Ctx(ctx).Warn().Err(err).Str("email", to.Email).Msg("failed to send notification")
	} else {
		result.Success = true
	}

	status := model.StatusSent
	if !result.Success {
		status = model.StatusFailed
	}
	row := model.NotificationLog{
		ID:        model.GenerateUUID(),
		UserID:    to.ID,
		EntryID:   entry.ID,
		EntryName: entry.Name,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	if err := n.store.InsertNotificationLog(ctx, row); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("user", to.ID).Msg("failed to write notification log")
	}

	return result
}

func (n *Notifier) send(ctx context.Context, entry model.Entry, to model.Profile) error {
	email, err := RenderEmail(entry, to, n.cfg.SiteURL)
	if err != nil {
		return err
	}

	return n.sender.Send(ctx, Message{
		ToEmail:   to.Email,
		ToName:    to.Greeting(),
		FromEmail: n.cfg.FromEmail,
		FromName:  n.cfg.FromName,
		Subject:   email.Subject,
		HTML:      email.HTML,
		Text:      email.Text,
	})
}

// normalizeError shortens transport errors to something readable in a result list.
func normalizeError(errStr string) string {
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	default:
		return errStr
	}
}
