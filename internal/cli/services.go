package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/nikbrunner/dex/internal/admin"
	"github.com/nikbrunner/dex/internal/importer"
	"github.com/nikbrunner/dex/internal/notify"
)

func (a *app) importer() *importer.Importer {
	c := a.cfg.Importer
	return importer.New(a.store, importer.Config{
		BaseURL:           c.BaseURL,
		Concurrency:       c.Concurrency,
		RequestsPerSecond: c.RequestsPerSecond,
		Timeout:           c.Timeout(),
	})
}

func (a *app) notifier() *notify.Notifier {
	c := a.cfg.Notify
	return notify.New(a.store, notify.NewClient(c.APIURL, c.APIKey), notify.Config{
		FromEmail: c.FromEmail,
		FromName:  c.FromName,
		SiteURL:   c.SiteURL,
		Workers:   c.Workers,
	})
}

func (a *app) admin() *admin.Service {
	return admin.NewService(a.sess.Profile, a.store, a.importer(), a.notifier())
}

// progress returns a callback that redraws a "label n/total" counter on w.
// Callbacks may arrive concurrently and out of order; the counter never goes back.
func progress(w io.Writer, label string) func(completed, total int) {
	var (
		mu   sync.Mutex
		last int
	)
	return func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		if completed <= last {
			return
		}
		last = completed
		fmt.Fprintf(w, "\r%s %d/%d", label, completed, total)
		if completed == total {
			fmt.Fprintln(w)
		}
	}
}
