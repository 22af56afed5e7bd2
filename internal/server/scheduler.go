package server

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// ImportScheduler runs a range import on a cron schedule.
type ImportScheduler struct {
	cron     *cron.Cron
	importer Importer
	start    int
	end      int
}

// NewImportScheduler registers an import of start..end at spec (standard five-field
// cron syntax or descriptors such as "@daily").
func NewImportScheduler(ctx context.Context, spec string, im Importer, start, end int) (*ImportScheduler, error) {
	s := &ImportScheduler{
		cron:     cron.New(),
		importer: im,
		start:    start,
		end:      end,
	}

	logger := log.Ctx(ctx)
	if _, err := s.cron.AddFunc(spec, func() { s.run(logger.WithContext(context.Background())) }); err != nil {
		return nil, fmt.Errorf("invalid import schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins running the schedule in the background.
func (s *ImportScheduler) Start(ctx context.Context) {
	s.cron.Start()
	log.Ctx(ctx).Info().Int("start", s.start).Int("end", s.end).Msg("import scheduler started")
}

// Stop halts the schedule and waits for a running import to finish.
func (s *ImportScheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *ImportScheduler) run(ctx context.Context) {
	res, err := s.importer.ImportRange(ctx, s.start, s.end, nil)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("scheduled import failed")
		return
	}
	log.Ctx(ctx).Info().Int("imported", res.Imported).Ints("failed", res.Failed).Msg("scheduled import finished")
}
