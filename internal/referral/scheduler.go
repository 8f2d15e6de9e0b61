package referral

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"creatorpay/internal/logger"
	"creatorpay/internal/metrics"
)

// CreatorLister enumerates the creators to sync on the background schedule.
// Implemented by ledger.Repository.
type CreatorLister interface {
	ListCreatorIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Scheduler runs the periodic referral sync. Singleton mode keeps a slow pass
// from stacking on top of itself; the upsert keeps an overlap with a manual
// trigger harmless anyway.
type Scheduler struct {
	scheduler gocron.Scheduler
	service   *Service
	creators  CreatorLister
	interval  time.Duration
}

func NewScheduler(service *Service, creators CreatorLister, interval time.Duration) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		scheduler: s,
		service:   service,
		creators:  creators,
		interval:  interval,
	}, nil
}

func (s *Scheduler) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.runOnce),
		gocron.WithName("referral-sync"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	logger.Infof("referral sync scheduled every %s", s.interval)
	return nil
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	creatorIDs, err := s.creators.ListCreatorIDs(ctx)
	if err != nil {
		logger.Errorf("referral sync: failed to list creators: %v", err)
		return
	}

	for _, creatorID := range creatorIDs {
		result, err := s.service.Sync(ctx, creatorID)
		if err != nil {
			logger.Warnf("scheduled referral sync failed for %s: %v", creatorID, err)
			metrics.RecordReferralSync("scheduled", "error", 0)
			continue
		}
		if result.NewRecordsFound > 0 {
			logger.Infof("referral sync found %d new records (%s) for %s",
				result.NewRecordsFound, result.NewAmount.StringFixed(2), creatorID)
		}
		metrics.RecordReferralSync("scheduled", "ok", result.NewRecordsFound)
	}
}

func (s *Scheduler) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		logger.Errorf("failed to shut down referral sync scheduler: %v", err)
	}
}
